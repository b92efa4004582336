package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bendahara/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates an active user with the given role and a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	n := nextID()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("%s User %d", role, n),
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// SeedSystemCategories inserts the system categories directly.
func SeedSystemCategories(t *testing.T, db *gorm.DB) []models.TransactionCategory {
	t.Helper()

	seed := models.SystemCategories()
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("failed to seed system categories: %v", err)
	}
	return seed
}

// CreateTestCategory creates a user-defined category visible to both admin and komite.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.TransactionCategory {
	t.Helper()

	name := fmt.Sprintf("Test Category %d", nextID())
	category := &models.TransactionCategory{
		Code:         models.DeriveCategoryCode(name),
		Name:         name,
		Type:         categoryType,
		ShowToKomite: true,
		ShowToAdmin:  true,
		IsActive:     true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction row directly, bypassing the services.
// Handover state follows creator role and code the same way the services do.
func CreateTestTransaction(t *testing.T, db *gorm.DB, creator *models.User, code string, amount int64, date time.Time, studentID *string) *models.Transaction {
	t.Helper()

	isHandover := creator.Role == models.RoleAdmin && models.DefaultRequiresHandover(code)
	tx := &models.Transaction{
		Type:           code,
		Amount:         amount,
		Date:           date,
		StudentID:      studentID,
		CreatorID:      creator.ID,
		IsHandover:     isHandover,
		HandoverStatus: models.InitialHandoverStatus(isHandover),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestInstallment creates an installment plan setting for a student.
func CreateTestInstallment(t *testing.T, db *gorm.DB, studentID string, active bool) *models.SppInstallmentSetting {
	t.Helper()

	setting := &models.SppInstallmentSetting{StudentID: studentID, IsActive: active}
	if err := db.Create(setting).Error; err != nil {
		t.Fatalf("failed to create test installment setting: %v", err)
	}
	return setting
}
