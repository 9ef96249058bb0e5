// Package jobs contains the scheduled maintenance jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/notification"
)

// PurgeNotificationsJob deletes read notifications that are older than the
// retention period. Unread notifications are never purged.
type PurgeNotificationsJob struct {
	notifications notification.Repository
	retention     time.Duration
	logger        *slog.Logger
}

// NewPurgeNotificationsJob creates the retention job.
func NewPurgeNotificationsJob(
	notifications notification.Repository,
	retention time.Duration,
	logger *slog.Logger,
) *PurgeNotificationsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeNotificationsJob{
		notifications: notifications,
		retention:     retention,
		logger:        logger,
	}
}

// Name returns the unique job name.
func (j *PurgeNotificationsJob) Name() string {
	return "purge-notifications"
}

// Description returns a human-readable description.
func (j *PurgeNotificationsJob) Description() string {
	return fmt.Sprintf("deletes read notifications older than %s", j.retention)
}

// Run purges read notifications created before the retention cutoff.
func (j *PurgeNotificationsJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	purged, err := j.notifications.PurgeRead(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge read notifications: %w", err)
	}

	if purged > 0 {
		j.logger.Info("purged read notifications",
			"count", purged,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}

	return nil
}
