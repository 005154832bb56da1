// Package snapshots keeps a daily record of the dashboard KPIs.
package snapshots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/insights"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	loginRetries    = 3
	loginRetryDelay = 5 * time.Second
	runTimeout      = 30 * time.Second
)

// ErrNoSession is returned when a snapshot is requested without any credential to fetch with.
var ErrNoSession = errors.New("no session to fetch tasks with")

// Source is the part of the API client a snapshot run reads from.
type Source interface {
	ListAllTasks(ctx context.Context) ([]models.Task, error)
	ListTeamMembers(ctx context.Context) ([]models.TeamMember, error)
}

type Credentials struct {
	Email    string
	Password string
}

// Service computes the dashboard KPIs and stores one snapshot per day.
type Service struct {
	log     *slog.Logger
	src     Source
	authn   auth.Authenticator
	repo    repository.SnapshotRepoIface
	metrics *metrics.Metrics
	creds   Credentials
	now     func() time.Time

	// runMu serializes snapshot runs.
	runMu   sync.Mutex
	mu      sync.Mutex
	session *auth.Session
}

func NewService(
	log *slog.Logger,
	src Source,
	authn auth.Authenticator,
	repo repository.SnapshotRepoIface,
	m *metrics.Metrics,
	creds Credentials,
) *Service {
	return &Service{log: log, src: src, authn: authn, repo: repo, metrics: m, creds: creds, now: time.Now}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) initLogger(opn string) *slog.Logger {
	return sl.With(s.log, opn, "snapshots")
}

// Start logs in with the service account, takes today's snapshot when it is missing, and then takes a
// snapshot on every tick until ctx is done.
func (s *Service) Start(ctx context.Context, interval time.Duration) error {
	const opn = "Snapshots.Start"
	log := s.initLogger(opn)

	// 1. Login
	log.InfoContext(ctx, "Attempting login...")
	if err := s.login(ctx, log); err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	// 2. Catch-up mode
	if err := s.catchUp(ctx); err != nil {
		log.ErrorContext(ctx, "Catch-up snapshot failed", sl.Err(err))
	}

	// 3. Maintenance mode
	log.InfoContext(ctx, "Switching to maintenance mode.", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.InfoContext(ctx, "Periodic snapshot triggered.")
			if _, err := s.TakeSnapshot(ctx); err != nil {
				log.ErrorContext(ctx, "Periodic run failed", sl.Err(err))
			}
		case <-ctx.Done():
			log.InfoContext(ctx, "Service shutting down.")
			return nil
		}
	}
}

func (s *Service) login(ctx context.Context, log *slog.Logger) error {
	session, err := auth.RetryLogin(ctx, log, s.authn, s.creds.Email, s.creds.Password, loginRetries, loginRetryDelay)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return nil
}

func (s *Service) catchUp(ctx context.Context) error {
	const opn = "Snapshots.catchUp"
	log := s.initLogger(opn)

	today := truncateDay(s.now())
	last, err := s.repo.GetLastSnapshotDate(ctx)
	switch {
	case errors.Is(err, repository.ErrSnapshotNotFound):
		log.InfoContext(ctx, "No snapshot stored yet")
	case err != nil:
		return fmt.Errorf("failed to get last snapshot date: %w", err)
	case !truncateDay(last).Before(today):
		log.InfoContext(ctx, "Catch-up complete. Today's snapshot exists.", "lastDate", last.Format(time.DateOnly))
		return nil
	}

	_, err = s.TakeSnapshot(ctx)
	return err
}

// TakeSnapshot computes and stores today's snapshot. The session in ctx is used when present, otherwise the
// service account's. A service-account session rejected by the API is renewed once.
func (s *Service) TakeSnapshot(ctx context.Context) (models.Snapshot, error) {
	const opn = "Snapshots.TakeSnapshot"
	log := s.initLogger(opn)

	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	defer func() { s.metrics.SnapshotDuration.Observe(time.Since(start).Seconds()) }()

	_, callerSession := auth.FromContext(ctx)
	snap, err := s.take(ctx)
	if err != nil && !callerSession && client.IsUnauthorized(err) {
		log.WarnContext(ctx, "Service session expired, logging in again")
		if err = s.login(ctx, log); err == nil {
			snap, err = s.take(ctx)
		}
	}
	if err != nil {
		s.metrics.SnapshotRuns.WithLabelValues("failure").Inc()
		return models.Snapshot{}, err
	}

	s.metrics.SnapshotRuns.WithLabelValues("success").Inc()
	s.metrics.LastSuccessfulSnap.Set(float64(s.now().Unix()))
	log.InfoContext(ctx, "Snapshot stored", "date", snap.Date.Format(time.DateOnly), "tasks", snap.TotalTasks)

	return snap, nil
}

func (s *Service) take(pctx context.Context) (models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(pctx, runTimeout)
	defer cancel()

	if _, ok := auth.FromContext(ctx); !ok {
		s.mu.Lock()
		session := s.session
		s.mu.Unlock()
		if session == nil {
			return models.Snapshot{}, ErrNoSession
		}
		ctx = auth.WithSession(ctx, session)
	}

	var (
		tasks   []models.Task
		members []models.TeamMember
	)
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		tasks, err = s.src.ListAllTasks(gctx)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		var err error
		members, err = s.src.ListTeamMembers(gctx)
		if err != nil {
			return fmt.Errorf("failed to list team members: %w", err)
		}
		return nil
	})
	if err := grp.Wait(); err != nil {
		return models.Snapshot{}, err
	}

	snap := Build(tasks, members, s.now())
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return snap, nil
}

// Build derives the snapshot of now's day from the task and member lists.
func Build(tasks []models.Task, members []models.TeamMember, now time.Time) models.Snapshot {
	summary := insights.Dashboard(tasks, members, now)
	byStatus := summary.ByStatus

	return models.Snapshot{
		Date:              truncateDay(now),
		TotalTasks:        len(tasks),
		TotalOpen:         summary.KPIs.TotalOpen,
		Overdue:           summary.KPIs.Overdue,
		Critical:          summary.KPIs.Critical,
		CompletedThisWeek: summary.KPIs.CompletedThisWeek,
		Stale:             summary.KPIs.Stale,
		CompletionRate:    insights.CompletionRate(byStatus.Get(string(models.StatusCompleted)), len(tasks)),
		ByStatus:          byStatus.Map(),
		ByPriority:        summary.ByPriority.Map(),
	}
}

// History returns up to limit stored snapshots, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.Snapshot, error) {
	snaps, err := s.repo.ListSnapshots(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
