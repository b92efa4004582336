package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bendahara/internal/authz"
	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
	"bendahara/internal/revalidate"
)

// categoryPaths are the views that render the category catalog.
var categoryPaths = []string{revalidate.PathAdminCategories, revalidate.PathKomiteFinance}

// categoryService handles category-related business logic.
type categoryService struct {
	db       *gorm.DB
	notifier revalidate.Notifier
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, notifier revalidate.Notifier) CategoryServicer {
	return &categoryService{db: db, notifier: notifier}
}

// ListVisible returns the active categories whose visibility flag matches role,
// ordered by name. Roles without a visibility flag get an empty list.
func (s *categoryService) ListVisible(ctx context.Context, role models.Role, categoryType *models.CategoryType) ([]models.TransactionCategory, error) {
	var column string
	switch role {
	case models.RoleAdmin:
		column = "show_to_admin"
	case models.RoleKomite:
		column = "show_to_komite"
	default:
		return []models.TransactionCategory{}, nil
	}

	query := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(column+" = ?", true)
	if categoryType != nil {
		if !categoryType.Valid() {
			return nil, apperrors.ErrInvalidCategoryType
		}
		query = query.Where("type = ?", *categoryType)
	}

	categories := []models.TransactionCategory{}
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}
	return categories, nil
}

// ListAll returns every category regardless of visibility or active flags.
func (s *categoryService) ListAll(ctx context.Context, actor authz.Actor) ([]models.TransactionCategory, error) {
	if err := authz.Require(actor, authz.ViewCategoryCatalog); err != nil {
		return nil, err
	}

	categories := []models.TransactionCategory{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}
	return categories, nil
}

// Create registers a user-defined category under the code derived from its name.
func (s *categoryService) Create(ctx context.Context, actor authz.Actor, input CreateCategoryInput) (*models.TransactionCategory, error) {
	if err := authz.Require(actor, authz.ManageCategories); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidCategoryType
	}
	if input.DefaultAmount != nil && *input.DefaultAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "default amount cannot be negative")
	}

	code := models.DeriveCategoryCode(name)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.TransactionCategory{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCode
	}

	requiresHandover := models.DefaultRequiresHandover(code)
	if input.RequiresHandover != nil {
		requiresHandover = *input.RequiresHandover
	}

	category := &models.TransactionCategory{
		Code:             code,
		Name:             name,
		Type:             input.Type,
		ShowToKomite:     input.ShowToKomite,
		ShowToAdmin:      input.ShowToAdmin,
		RequiresHandover: requiresHandover,
		IsSystem:         false,
		IsActive:         true,
		DefaultAmount:    input.DefaultAmount,
	}

	// The count above can race a concurrent Create; the unique index decides.
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCode
		}
		return nil, apperrors.Persistence(err)
	}

	s.notifier.Revalidate(ctx, categoryPaths...)
	return category, nil
}

// Update changes the mutable fields of a category. Code and type are never touched.
func (s *categoryService) Update(ctx context.Context, actor authz.Actor, id string, input UpdateCategoryInput) (*models.TransactionCategory, error) {
	if err := authz.Require(actor, authz.ManageCategories); err != nil {
		return nil, err
	}

	category, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		updates["name"] = name
	}
	if input.ShowToKomite != nil {
		updates["show_to_komite"] = *input.ShowToKomite
	}
	if input.ShowToAdmin != nil {
		updates["show_to_admin"] = *input.ShowToAdmin
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.RequiresHandover != nil {
		updates["requires_handover"] = *input.RequiresHandover
	}
	if input.DefaultAmount != nil {
		if *input.DefaultAmount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "default amount cannot be negative")
		}
		updates["default_amount"] = *input.DefaultAmount
	}

	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}

	s.notifier.Revalidate(ctx, categoryPaths...)
	return s.getByID(ctx, id)
}

// Delete removes a user-defined category. Transactions keep the orphaned code.
func (s *categoryService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := authz.Require(actor, authz.ManageCategories); err != nil {
		return err
	}

	category, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return apperrors.ErrSystemCategoryProtected
	}

	// Hard delete frees the code for reuse under the unique index.
	if err := s.db.WithContext(ctx).Unscoped().Delete(category).Error; err != nil {
		return apperrors.Persistence(err)
	}

	s.notifier.Revalidate(ctx, categoryPaths...)
	return nil
}

// GetByCode looks a category up by its code.
func (s *categoryService) GetByCode(ctx context.Context, code string) (*models.TransactionCategory, error) {
	var category models.TransactionCategory
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Persistence(err)
	}
	return &category, nil
}

// ResolveHandover reports whether transactions of code take part in handover.
// A code with no category record gets the schema default.
func (s *categoryService) ResolveHandover(ctx context.Context, code string) (bool, error) {
	category, err := s.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return models.DefaultRequiresHandover(code), nil
		}
		return false, err
	}
	return category.RequiresHandover, nil
}

func (s *categoryService) getByID(ctx context.Context, id string) (*models.TransactionCategory, error) {
	var category models.TransactionCategory
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Persistence(err)
	}
	return &category, nil
}
