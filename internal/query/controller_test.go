package query_test

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu          sync.Mutex
	tasks       []models.Task
	bare        bool
	tasksErr    error
	membersErr  error
	memberCalls int
	requests    []url.Values
}

func (f *fakeSource) ListTasks(_ context.Context, params url.Values) (models.TaskPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, params)
	if f.tasksErr != nil {
		return models.TaskPage{}, f.tasksErr
	}
	if f.bare {
		return models.TaskPage{Tasks: f.tasks}, nil
	}

	page, _ := strconv.Atoi(params.Get("page"))
	size, _ := strconv.Atoi(params.Get("pageSize"))
	start := min((page-1)*size, len(f.tasks))
	end := min(start+size, len(f.tasks))

	return models.TaskPage{
		Tasks: f.tasks[start:end],
		Meta:  models.ListMeta{Page: page, PageSize: size, Total: len(f.tasks)},
		Paged: true,
	}, nil
}

func (f *fakeSource) ListTeamMembers(_ context.Context) ([]models.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.memberCalls++
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return []models.TeamMember{{ID: "tm-1", Name: "Ada Lovelace"}}, nil
}

func tasksN(n int) []models.Task {
	out := make([]models.Task, n)
	for i := range out {
		out[i] = models.Task{ID: "t-" + strconv.Itoa(i), Title: "Task " + strconv.Itoa(i), AssignedTo: "tm-1"}
	}
	return out
}

func TestControllerJoinsNamesAndMemoizesMembers(t *testing.T) {
	t.Parallel()

	src := &fakeSource{tasks: tasksN(3)}
	ctrl := query.NewController(src, query.Options{})
	state := query.Default(query.Options{})

	res, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)
	_, err = ctrl.Load(context.Background(), state.SetQuery("Task"))
	require.NoError(t, err)

	assert.Len(t, res.Tasks, 3)
	assert.Equal(t, "Ada Lovelace", res.Tasks[0].AssigneeName)
	assert.Equal(t, 3, res.Meta.Total)
	assert.Equal(t, 1, res.Meta.TotalPages)
	assert.Equal(t, 1, src.memberCalls)
	assert.Len(t, src.requests, 2)
}

func TestControllerClampsAndRefetches(t *testing.T) {
	t.Parallel()

	src := &fakeSource{tasks: tasksN(3)}
	ctrl := query.NewController(src, query.Options{})

	res, err := ctrl.Load(context.Background(), query.Default(query.Options{}).SetPage(4))
	require.NoError(t, err)

	assert.Equal(t, 1, res.State.Page)
	assert.Len(t, res.Tasks, 3)
	require.Len(t, src.requests, 2)
	assert.Equal(t, "4", src.requests[0].Get("page"))
	assert.Equal(t, "1", src.requests[1].Get("page"))
}

func TestControllerAppliesLocallyForBareArrays(t *testing.T) {
	t.Parallel()

	src := &fakeSource{tasks: tasksN(25), bare: true}
	ctrl := query.NewController(src, query.Options{})

	state := query.Default(query.Options{}).ToggleSort(query.SortTitle).SetPage(3)
	res, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 25, res.Meta.Total)
	assert.Equal(t, 3, res.Meta.TotalPages)
	assert.Equal(t, 3, res.State.Page)
	assert.Len(t, res.Tasks, 5)
}

func TestControllerLockedAssignee(t *testing.T) {
	t.Parallel()

	opts := query.Options{LockedAssignee: "tm-9"}
	src := &fakeSource{tasks: tasksN(1)}
	ctrl := query.NewController(src, opts)

	state := query.Default(query.Options{}).SetAssignee(query.Options{}, "tm-1")
	res, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, []string{"tm-9"}, res.State.Assignee)
	assert.Equal(t, "tm-9", src.requests[0].Get("assignedTo"))
	assert.Equal(t, opts, ctrl.Options())
}

func TestControllerReturnsStaleResultOnError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{tasks: tasksN(2)}
	ctrl := query.NewController(src, query.Options{})

	first, err := ctrl.Load(context.Background(), query.Default(query.Options{}))
	require.NoError(t, err)

	src.tasksErr = errors.New("boom")
	res, err := ctrl.Load(context.Background(), query.Default(query.Options{}).SetQuery("x"))

	require.Error(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, first.Tasks, res.Tasks)
}

func TestControllerErrorWithoutPriorResult(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("upstream down")
	src := &fakeSource{membersErr: wantErr}
	ctrl := query.NewController(src, query.Options{})

	res, err := ctrl.Load(context.Background(), query.Default(query.Options{}))

	require.ErrorIs(t, err, wantErr)
	assert.False(t, res.Stale)
	assert.Empty(t, res.Tasks)

	src.membersErr = nil
	_, err = ctrl.Members(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.memberCalls, "failed member fetches are retried")
}
