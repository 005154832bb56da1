package snapshots_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/UnknownOlympus/athena/internal/services/snapshots"
	mocks "github.com/UnknownOlympus/athena/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func fixtures() ([]models.Task, []models.TeamMember) {
	tasks := []models.Task{
		{ID: "t-1", Status: models.StatusOpen, Priority: models.PriorityCritical, AssignedTo: "tm-1", UpdatedAt: daysAgo(5)},
		{ID: "t-2", Status: models.StatusOverdue, Priority: models.PriorityHigh, AssignedTo: "tm-1", UpdatedAt: daysAgo(1)},
		{ID: "t-3", Status: models.StatusCompleted, Priority: models.PriorityLow, AssignedTo: "tm-2", UpdatedAt: daysAgo(2)},
		{ID: "t-4", Status: models.StatusCompleted, Priority: models.PriorityLow, AssignedTo: "tm-2", UpdatedAt: daysAgo(20)},
	}
	members := []models.TeamMember{{ID: "tm-1", Name: "Ada"}, {ID: "tm-2", Name: "Grace"}}
	return tasks, members
}

func newService(t *testing.T) (*snapshots.Service, *mocks.TaskAPI, *mocks.SnapshotRepoIface, *metrics.Metrics) {
	t.Helper()

	api := mocks.NewTaskAPI(t)
	repo := mocks.NewSnapshotRepoIface(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := snapshots.NewService(sl.Discard(), api, api, repo, m, snapshots.Credentials{Email: "svc@example.com", Password: "pw"}).
		WithClock(func() time.Time { return now })

	return svc, api, repo, m
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tasks, members := fixtures()

	snap := snapshots.Build(tasks, members, now)

	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), snap.Date)
	assert.Equal(t, 4, snap.TotalTasks)
	assert.Equal(t, 1, snap.TotalOpen)
	assert.Equal(t, 1, snap.Overdue)
	assert.Equal(t, 1, snap.Critical)
	assert.Equal(t, 1, snap.CompletedThisWeek)
	assert.Equal(t, 2, snap.Stale)
	assert.Equal(t, 50, snap.CompletionRate)
	assert.Equal(t, 2, snap.ByStatus["completed"])
	assert.Equal(t, 2, snap.ByPriority["low"])
}

func TestTakeSnapshotWithCallerSession(t *testing.T) {
	t.Parallel()

	svc, api, repo, m := newService(t)
	tasks, members := fixtures()

	api.On("ListAllTasks", mock.Anything).Return(tasks, nil).Once()
	api.On("ListTeamMembers", mock.Anything).Return(members, nil).Once()
	repo.On("SaveSnapshot", mock.Anything, mock.MatchedBy(func(s models.Snapshot) bool {
		return s.TotalTasks == 4 && s.CompletionRate == 50
	})).Return(nil).Once()

	ctx := auth.WithSession(context.Background(), auth.NewSession(models.LoginResult{Token: "tok"}))
	snap, err := svc.TakeSnapshot(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, snap.TotalTasks)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotRuns.WithLabelValues("success")), 0)
	assert.InDelta(t, float64(now.Unix()), testutil.ToFloat64(m.LastSuccessfulSnap), 0)
	api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestTakeSnapshotWithoutSession(t *testing.T) {
	t.Parallel()

	svc, _, _, m := newService(t)

	_, err := svc.TakeSnapshot(context.Background())

	require.ErrorIs(t, err, snapshots.ErrNoSession)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotRuns.WithLabelValues("failure")), 0)
}

func TestTakeSnapshotSaveError(t *testing.T) {
	t.Parallel()

	svc, api, repo, _ := newService(t)
	tasks, members := fixtures()

	api.On("ListAllTasks", mock.Anything).Return(tasks, nil)
	api.On("ListTeamMembers", mock.Anything).Return(members, nil)
	repo.On("SaveSnapshot", mock.Anything, mock.Anything).Return(assert.AnError)

	ctx := auth.WithSession(context.Background(), auth.NewSession(models.LoginResult{Token: "tok"}))
	_, err := svc.TakeSnapshot(ctx)

	require.ErrorIs(t, err, assert.AnError)
}

func TestStartCatchUpAndSessionRenewal(t *testing.T) {
	t.Parallel()

	svc, api, repo, _ := newService(t)
	tasks, members := fixtures()
	expired := &client.APIError{Method: http.MethodGet, Path: "/tasks", StatusCode: http.StatusUnauthorized}

	api.On("Login", mock.Anything, "svc@example.com", "pw").Return(models.LoginResult{Token: "svc-token"}, nil).Twice()
	repo.On("GetLastSnapshotDate", mock.Anything).Return(time.Time{}, repository.ErrSnapshotNotFound).Once()
	api.On("ListAllTasks", mock.Anything).Return(nil, expired).Once()
	api.On("ListAllTasks", mock.MatchedBy(func(ctx context.Context) bool {
		s, ok := auth.FromContext(ctx)
		return ok && s.Token == "svc-token"
	})).Return(tasks, nil).Once()
	api.On("ListTeamMembers", mock.Anything).Return(members, nil)
	repo.On("SaveSnapshot", mock.Anything, mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Start(ctx, time.Hour))
}

func TestStartSkipsExistingSnapshot(t *testing.T) {
	t.Parallel()

	svc, api, repo, _ := newService(t)

	api.On("Login", mock.Anything, "svc@example.com", "pw").Return(models.LoginResult{Token: "svc-token"}, nil).Once()
	repo.On("GetLastSnapshotDate", mock.Anything).Return(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Start(ctx, time.Hour))
	repo.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	svc, _, repo, _ := newService(t)
	want := []models.Snapshot{{TotalTasks: 3}}
	repo.On("ListSnapshots", mock.Anything, 30).Return(want, nil).Once()

	got, err := svc.History(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
