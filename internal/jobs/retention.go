// Package jobs holds the background maintenance jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"gorm.io/gorm"
)

const DefaultRetentionDays = 30

type RetentionResult struct {
	Updates    int64
	Trends     int64
	SystemLogs int64
	Cutoff     time.Time
}

// RetentionJob deletes feed posts and persisted error logs older than
// RetentionDays. Running it twice in a row deletes nothing the second time.
type RetentionJob struct {
	db            *gorm.DB
	logger        *slog.Logger
	metrics       *metrics.Collector
	RetentionDays int
	now           func() time.Time
}

func NewRetentionJob(db *gorm.DB, logger *slog.Logger, m *metrics.Collector) *RetentionJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionJob{
		db:            db,
		logger:        logger,
		metrics:       m,
		RetentionDays: DefaultRetentionDays,
		now:           time.Now,
	}
}

func (j *RetentionJob) Run(ctx context.Context) (*RetentionResult, error) {
	start := j.now()
	days := j.RetentionDays
	if days <= 0 {
		days = DefaultRetentionDays
	}
	res := &RetentionResult{Cutoff: start.UTC().AddDate(0, 0, -days)}

	steps := []struct {
		table  string
		column string
		model  any
		out    *int64
	}{
		{"updates", "created_at", &models.Update{}, &res.Updates},
		{"trends", "created_at", &models.Trend{}, &res.Trends},
		{"system_logs", "timestamp", &models.SystemLog{}, &res.SystemLogs},
	}
	for _, step := range steps {
		result := j.db.WithContext(ctx).Where(step.column+" < ?", res.Cutoff).Delete(step.model)
		if result.Error != nil {
			j.metrics.RecordRetentionRun(false)
			j.logger.Error("retention job failed",
				slog.String("table", step.table),
				slog.String("error", result.Error.Error()),
				slog.Int("retention_days", days),
			)
			return res, fmt.Errorf("retention cleanup of %s failed: %w", step.table, result.Error)
		}
		*step.out = result.RowsAffected
		j.metrics.RecordRetention(step.table, result.RowsAffected)
	}

	j.metrics.RecordRetentionRun(true)
	j.logger.Info("retention job completed",
		slog.Int64("updates_deleted", res.Updates),
		slog.Int64("trends_deleted", res.Trends),
		slog.Int64("system_logs_deleted", res.SystemLogs),
		slog.Int("retention_days", days),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return res, nil
}
