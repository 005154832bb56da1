package repository

import (
	"context"
	"errors"
	"time"

	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// SnapshotRepoIface represents the interface for storing daily KPI snapshots.
type SnapshotRepoIface interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	GetSnapshotByDate(ctx context.Context, date time.Time) (models.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]models.Snapshot, error)
	GetLastSnapshotDate(ctx context.Context) (time.Time, error)
}

func NewSnapshotRepository(db Database, m *metrics.Metrics) SnapshotRepoIface {
	return &Repository{db: db, metrics: m}
}

func (r *Repository) observe(queryType string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}
