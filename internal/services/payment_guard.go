package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
)

// paymentGuard blocks a second SPP payment for a student in the same calendar month.
type paymentGuard struct {
	db *gorm.DB
}

// NewPaymentGuard creates a new PaymentGuard.
func NewPaymentGuard(db *gorm.DB) PaymentGuard {
	return &paymentGuard{db: db}
}

// MonthWindow returns the calendar month containing date as the half-open
// interval [start, end), computed in date's own location.
func MonthWindow(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 1, 0)
}

// CanPaySPP reports whether an SPP payment for studentID dated date is safe:
// either the student pays in installments or no SPP row exists in that month.
func (g *paymentGuard) CanPaySPP(ctx context.Context, studentID string, date time.Time) (bool, error) {
	payable, _, err := g.Partition(ctx, []string{studentID}, date)
	if err != nil {
		return false, err
	}
	return len(payable) == 1, nil
}

// Partition splits studentIDs into those who may pay SPP for date's month and
// those who already have. Input order is preserved in both slices.
func (g *paymentGuard) Partition(ctx context.Context, studentIDs []string, date time.Time) (payable, skipped []string, err error) {
	payable = []string{}
	skipped = []string{}
	if len(studentIDs) == 0 {
		return payable, skipped, nil
	}

	var installment []string
	if err := g.db.WithContext(ctx).Model(&models.SppInstallmentSetting{}).
		Where("student_id IN ? AND is_active = ?", studentIDs, true).
		Pluck("student_id", &installment).Error; err != nil {
		return nil, nil, apperrors.Persistence(err)
	}
	exempt := toSet(installment)

	start, end := MonthWindow(date)
	var paid []string
	if err := g.db.WithContext(ctx).Model(&models.Transaction{}).
		Distinct("student_id").
		Where("type = ? AND student_id IN ?", models.CodeSPP, studentIDs).
		Where("date >= ? AND date < ?", start, end).
		Pluck("student_id", &paid).Error; err != nil {
		return nil, nil, apperrors.Persistence(err)
	}
	alreadyPaid := toSet(paid)

	for _, id := range studentIDs {
		if _, ok := exempt[id]; ok {
			payable = append(payable, id)
			continue
		}
		if _, ok := alreadyPaid[id]; ok {
			skipped = append(skipped, id)
			continue
		}
		payable = append(payable, id)
	}
	return payable, skipped, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
