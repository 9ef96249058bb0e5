package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

type purgeRecorder struct {
	cutoff time.Time
	purged int64
	err    error
}

func (r *purgeRecorder) PurgeRead(_ context.Context, before time.Time) (int64, error) {
	r.cutoff = before
	return r.purged, r.err
}

func (r *purgeRecorder) Create(context.Context, *notification.Notification) error { return nil }

func (r *purgeRecorder) GetByID(context.Context, string) (*notification.Notification, error) {
	return nil, shared.ErrNotFound
}

func (r *purgeRecorder) ListForRecipient(context.Context, shared.UserID, notification.ListOptions) ([]*notification.Notification, error) {
	return nil, nil
}

func (r *purgeRecorder) CountUnread(context.Context, shared.UserID) (int, error) { return 0, nil }

func (r *purgeRecorder) MarkRead(context.Context, string, shared.UserID) error { return nil }

func (r *purgeRecorder) ListUndelivered(context.Context, int) ([]*notification.Notification, error) {
	return nil, nil
}

func (r *purgeRecorder) UpdateDelivery(context.Context, *notification.Notification) error {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPurgeNotificationsJobUsesRetentionCutoff(t *testing.T) {
	repo := &purgeRecorder{purged: 3}
	job := NewPurgeNotificationsJob(repo, 30*24*time.Hour, discardLogger())

	before := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, job.Run(context.Background()))
	after := time.Now().Add(-30 * 24 * time.Hour)

	assert.False(t, repo.cutoff.Before(before))
	assert.False(t, repo.cutoff.After(after))
}

func TestPurgeNotificationsJobPropagatesErrors(t *testing.T) {
	repo := &purgeRecorder{err: errors.New("database unreachable")}
	job := NewPurgeNotificationsJob(repo, time.Hour, discardLogger())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge read notifications")
}

func TestPurgeNotificationsJobMetadata(t *testing.T) {
	job := NewPurgeNotificationsJob(&purgeRecorder{}, 720*time.Hour, nil)

	assert.Equal(t, "purge-notifications", job.Name())
	assert.Contains(t, job.Description(), "720h")
}
