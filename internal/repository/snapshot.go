package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/jackc/pgx/v5"
)

const snapshotColumns = `snapshot_date, total_tasks, total_open, overdue, critical, completed_this_week, stale,
	completion_rate, by_status, by_priority, created_at, updated_at`

// maxListedSnapshots bounds ListSnapshots.
const maxListedSnapshots = 366

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SaveSnapshot inserts the snapshot of its day or replaces the one already stored for it.
func (r *Repository) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	defer r.observe("save_snapshot", time.Now())

	byStatus, err := json.Marshal(orEmpty(snap.ByStatus))
	if err != nil {
		return fmt.Errorf("failed to encode status histogram: %w", err)
	}
	byPriority, err := json.Marshal(orEmpty(snap.ByPriority))
	if err != nil {
		return fmt.Errorf("failed to encode priority histogram: %w", err)
	}

	query := `
		INSERT INTO kpi_snapshots (snapshot_date, total_tasks, total_open, overdue, critical, completed_this_week,
			stale, completion_rate, by_status, by_priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			total_tasks = EXCLUDED.total_tasks,
			total_open = EXCLUDED.total_open,
			overdue = EXCLUDED.overdue,
			critical = EXCLUDED.critical,
			completed_this_week = EXCLUDED.completed_this_week,
			stale = EXCLUDED.stale,
			completion_rate = EXCLUDED.completion_rate,
			by_status = EXCLUDED.by_status,
			by_priority = EXCLUDED.by_priority,
			updated_at = CURRENT_TIMESTAMP;`

	_, err = r.db.Exec(ctx, query,
		truncateDay(snap.Date),
		snap.TotalTasks,
		snap.TotalOpen,
		snap.Overdue,
		snap.Critical,
		snap.CompletedThisWeek,
		snap.Stale,
		snap.CompletionRate,
		byStatus,
		byPriority,
	)
	if err != nil {
		return fmt.Errorf("failed to execute snapshot upsert: %w", err)
	}

	return nil
}

// GetSnapshotByDate returns the snapshot of the given day or ErrSnapshotNotFound.
func (r *Repository) GetSnapshotByDate(ctx context.Context, date time.Time) (models.Snapshot, error) {
	defer r.observe("get_snapshot", time.Now())

	query := "SELECT " + snapshotColumns + " FROM kpi_snapshots WHERE snapshot_date = $1"

	snap, err := scanSnapshot(r.db.QueryRow(ctx, query, truncateDay(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get snapshot for %s: %w", date.Format(time.DateOnly), err)
	}

	return snap, nil
}

// ListSnapshots returns up to limit snapshots, newest first.
func (r *Repository) ListSnapshots(ctx context.Context, limit int) ([]models.Snapshot, error) {
	defer r.observe("list_snapshots", time.Now())

	if limit <= 0 || limit > maxListedSnapshots {
		limit = maxListedSnapshots
	}

	query := "SELECT " + snapshotColumns + " FROM kpi_snapshots ORDER BY snapshot_date DESC LIMIT $1"

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := make([]models.Snapshot, 0, limit)
	for rows.Next() {
		snap, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", scanErr)
		}
		snaps = append(snaps, snap)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snaps, nil
}

// GetLastSnapshotDate returns the day of the newest snapshot or ErrSnapshotNotFound.
func (r *Repository) GetLastSnapshotDate(ctx context.Context) (time.Time, error) {
	defer r.observe("last_snapshot_date", time.Now())

	query := "SELECT snapshot_date FROM kpi_snapshots ORDER BY snapshot_date DESC LIMIT 1"

	var lastDate time.Time
	err := r.db.QueryRow(ctx, query).Scan(&lastDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrSnapshotNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last snapshot date: %w", err)
	}

	return lastDate, nil
}

func scanSnapshot(row pgx.Row) (models.Snapshot, error) {
	var (
		snap       models.Snapshot
		byStatus   []byte
		byPriority []byte
	)

	err := row.Scan(
		&snap.Date,
		&snap.TotalTasks,
		&snap.TotalOpen,
		&snap.Overdue,
		&snap.Critical,
		&snap.CompletedThisWeek,
		&snap.Stale,
		&snap.CompletionRate,
		&byStatus,
		&byPriority,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		return models.Snapshot{}, err
	}

	if err = decodeHistogram(byStatus, &snap.ByStatus); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode status histogram: %w", err)
	}
	if err = decodeHistogram(byPriority, &snap.ByPriority); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode priority histogram: %w", err)
	}
	return snap, nil
}

func decodeHistogram(raw []byte, out *map[string]int) error {
	*out = map[string]int{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func orEmpty(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
