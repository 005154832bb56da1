// Package mocks holds testify mocks of the repository and client interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/stretchr/testify/mock"
)

// SnapshotRepoIface is a mock of repository.SnapshotRepoIface.
type SnapshotRepoIface struct {
	mock.Mock
}

func (_m *SnapshotRepoIface) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	ret := _m.Called(ctx, snap)
	return ret.Error(0)
}

func (_m *SnapshotRepoIface) GetSnapshotByDate(ctx context.Context, date time.Time) (models.Snapshot, error) {
	ret := _m.Called(ctx, date)
	return ret.Get(0).(models.Snapshot), ret.Error(1)
}

func (_m *SnapshotRepoIface) ListSnapshots(ctx context.Context, limit int) ([]models.Snapshot, error) {
	ret := _m.Called(ctx, limit)
	snaps, _ := ret.Get(0).([]models.Snapshot)
	return snaps, ret.Error(1)
}

func (_m *SnapshotRepoIface) GetLastSnapshotDate(ctx context.Context) (time.Time, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(time.Time), ret.Error(1)
}

// NewSnapshotRepoIface creates the mock and asserts its expectations on cleanup.
func NewSnapshotRepoIface(t interface {
	mock.TestingT
	Cleanup(func())
}) *SnapshotRepoIface {
	m := &SnapshotRepoIface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
