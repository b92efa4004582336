package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bendahara/internal/authz"
	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
)

// installmentService manages per-student SPP installment plans.
type installmentService struct {
	db *gorm.DB
}

// NewInstallmentService creates a new InstallmentServicer.
func NewInstallmentService(db *gorm.DB) InstallmentServicer {
	return &installmentService{db: db}
}

// SetInstallment turns a student's installment plan on or off, creating the
// setting on first use.
func (s *installmentService) SetInstallment(ctx context.Context, actor authz.Actor, studentID string, active bool) (*models.SppInstallmentSetting, error) {
	if err := authz.Require(actor, authz.ManageInstallments); err != nil {
		return nil, err
	}

	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "student ID is required")
	}

	var student models.User
	if err := s.db.WithContext(ctx).Where("id = ? AND role = ?", studentID, models.RoleSantri).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Persistence(err)
	}

	setting := &models.SppInstallmentSetting{StudentID: studentID, IsActive: active}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_active": active}),
	}).Create(setting).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}

	return s.find(ctx, studentID)
}

// GetInstallment returns the student's setting. A student who never had one
// gets an inactive setting that is not persisted.
func (s *installmentService) GetInstallment(ctx context.Context, actor authz.Actor, studentID string) (*models.SppInstallmentSetting, error) {
	if err := authz.Require(actor, authz.ManageInstallments); err != nil {
		return nil, err
	}

	setting, err := s.find(ctx, studentID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &models.SppInstallmentSetting{StudentID: studentID, IsActive: false}, nil
	}
	return setting, err
}

func (s *installmentService) find(ctx context.Context, studentID string) (*models.SppInstallmentSetting, error) {
	var setting models.SppInstallmentSetting
	if err := s.db.WithContext(ctx).Where("student_id = ?", studentID).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Persistence(err)
	}
	return &setting, nil
}
