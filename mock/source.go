package mocks

import (
	"context"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/stretchr/testify/mock"
)

// TaskAPI is a mock of the API client surface used by background services.
type TaskAPI struct {
	mock.Mock
}

func (_m *TaskAPI) ListAllTasks(ctx context.Context) ([]models.Task, error) {
	ret := _m.Called(ctx)
	tasks, _ := ret.Get(0).([]models.Task)
	return tasks, ret.Error(1)
}

func (_m *TaskAPI) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	ret := _m.Called(ctx)
	members, _ := ret.Get(0).([]models.TeamMember)
	return members, ret.Error(1)
}

func (_m *TaskAPI) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	ret := _m.Called(ctx, email, password)
	return ret.Get(0).(models.LoginResult), ret.Error(1)
}

// NewTaskAPI creates the mock and asserts its expectations on cleanup.
func NewTaskAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *TaskAPI {
	m := &TaskAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
