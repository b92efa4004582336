package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bendahara/internal/authz"
	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
	"bendahara/internal/revalidate"
)

var handoverPaths = []string{revalidate.PathAdminHandover, revalidate.PathKomiteFinance}

// handoverService moves admin-collected cash from PENDING to COMPLETED.
type handoverService struct {
	db       *gorm.DB
	notifier revalidate.Notifier
	now      func() time.Time
}

// NewHandoverService creates a new HandoverServicer.
func NewHandoverService(db *gorm.DB, notifier revalidate.Notifier) HandoverServicer {
	return &handoverService{db: db, notifier: notifier, now: time.Now}
}

// PerformHandover completes every pending handover in one UPDATE statement and
// returns the number of rows moved. COMPLETED rows are never touched again, so
// a second call with nothing pending is a no-op.
func (s *handoverService) PerformHandover(ctx context.Context, actor authz.Actor) (int64, error) {
	if err := authz.Require(actor, authz.PerformHandover); err != nil {
		return 0, err
	}

	result := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("is_handover = ? AND handover_status = ?", true, models.HandoverStatusPending).
		Updates(map[string]interface{}{
			"handover_status": models.HandoverStatusCompleted,
			"handover_date":   s.now(),
		})
	if result.Error != nil {
		return 0, apperrors.Persistence(result.Error)
	}

	if result.RowsAffected > 0 {
		s.notifier.Revalidate(ctx, handoverPaths...)
	}
	return result.RowsAffected, nil
}
