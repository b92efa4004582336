package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
)

// AssertAppError fails unless err is an *AppError carrying code. The code is
// what clients branch on, so the message is not compared.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected %s, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Errorf("expected %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

// AssertNoError stops the test on any error.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertHandoverStatus reloads transaction id and checks its custody state.
// A COMPLETED row must carry a handover date and any other state must not.
func AssertHandoverStatus(t *testing.T, db *gorm.DB, id string, want models.HandoverStatus) *models.Transaction {
	t.Helper()

	var row models.Transaction
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload transaction %s: %v", id, err)
	}
	if row.HandoverStatus != want {
		t.Errorf("transaction %s: expected %s, got %s", id, want, row.HandoverStatus)
	}
	switch {
	case want == models.HandoverStatusCompleted && row.HandoverDate == nil:
		t.Errorf("transaction %s: COMPLETED without handover date", id)
	case want != models.HandoverStatusCompleted && row.HandoverDate != nil:
		t.Errorf("transaction %s: %s with handover date %v", id, row.HandoverStatus, row.HandoverDate)
	}
	return &row
}
