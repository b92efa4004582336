// Package revalidate tells downstream views that ledger data they render has
// changed. Notifications are fire-and-forget: a failure is logged and never
// reaches the operation that triggered it.
package revalidate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bendahara/internal/logger"
)

// View paths that render ledger data.
const (
	PathAdminCategories = "/admin/kategori"
	PathAdminFinance    = "/admin/keuangan"
	PathAdminHandover   = "/admin/serah-terima"
	PathKomiteFinance   = "/komite/keuangan"
	PathSantriFinance   = "/santri/keuangan"
)

// Notifier signals that the given view paths are stale.
type Notifier interface {
	Revalidate(ctx context.Context, paths ...string)
}

// Event is the payload published for each notification.
type Event struct {
	Paths []string  `json:"paths"`
	At    time.Time `json:"at"`
}

// LogNotifier only records the notification in the application log.
type LogNotifier struct{}

// Revalidate implements Notifier.
func (LogNotifier) Revalidate(_ context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}
	logger.Get().Debugw("views marked stale", "paths", paths)
}

// RedisNotifier publishes an Event on a Redis channel that the presentation
// layer subscribes to.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisNotifier creates a RedisNotifier publishing on channel.
func NewRedisNotifier(client redis.UniversalClient, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

// Revalidate implements Notifier.
func (n *RedisNotifier) Revalidate(ctx context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}

	payload, err := json.Marshal(Event{Paths: paths, At: time.Now().UTC()})
	if err != nil {
		logger.Get().Errorw("failed to encode revalidation event", "error", err, "paths", paths)
		return
	}

	// The caller's request may already be finishing; publishing should not be cut short by it.
	if err := n.client.Publish(context.WithoutCancel(ctx), n.channel, payload).Err(); err != nil {
		logger.Get().Errorw("failed to publish revalidation event",
			"error", err,
			"channel", n.channel,
			"paths", paths,
		)
	}
}
