package services

import (
	"context"
	"sync"

	"bendahara/internal/authz"
	"bendahara/internal/logger"
	"bendahara/internal/models"
)

func init() {
	logger.Init("test")
}

// recordingNotifier captures revalidation calls.
type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]string
}

func (n *recordingNotifier) Revalidate(_ context.Context, paths ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, paths)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func (n *recordingNotifier) last() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return nil
	}
	return n.calls[len(n.calls)-1]
}

func actorOf(u *models.User) authz.Actor {
	return authz.Actor{UserID: u.ID, Role: u.Role}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func int64Ptr(v int64) *int64 { return &v }

func categoryTypePtr(t models.CategoryType) *models.CategoryType { return &t }
