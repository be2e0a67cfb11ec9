// Package storagetest provides a hand-written testify mock of the storage
// interfaces for use in service and handler tests.
package storagetest

import (
	"context"
	"time"

	"leadscout/pkg/domain"
	"leadscout/pkg/storage"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/mock"
)

// Mock implements storage.Storage and storage.TxStorage on top of
// testify's mock.Mock.
type Mock struct {
	mock.Mock
}

var (
	_ storage.Storage   = (*Mock)(nil)
	_ storage.TxStorage = (*Mock)(nil)
)

func (m *Mock) StoreLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *Mock) LeadByID(ctx context.Context, userID domain.UserID, id domain.LeadID) (*domain.Lead, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *Mock) UserLeads(ctx context.Context,
	userID domain.UserID,
	stage domain.PipelineStage,
	cursor time.Time,
	limit uint) (storage.UserLeads, error) {
	args := m.Called(ctx, userID, stage, cursor, limit)

	return args.Get(0).(storage.UserLeads), args.Error(1)
}

func (m *Mock) LeadsByRunID(ctx context.Context, userID domain.UserID, runID domain.RunID) ([]domain.Lead, error) {
	args := m.Called(ctx, userID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Lead), args.Error(1)
}

func (m *Mock) UpdateLeadByID(ctx context.Context,
	userID domain.UserID,
	id domain.LeadID,
	updates storage.LeadUpdates) (*domain.Lead, error) {
	args := m.Called(ctx, userID, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *Mock) DeleteLead(ctx context.Context, userID domain.UserID, id domain.LeadID) (*domain.Lead, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *Mock) StoreRun(ctx context.Context, run domain.DiscoveryRun) (*domain.DiscoveryRun, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DiscoveryRun), args.Error(1)
}

func (m *Mock) RunByID(ctx context.Context, userID domain.UserID, id domain.RunID) (*domain.DiscoveryRun, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DiscoveryRun), args.Error(1)
}

func (m *Mock) UpdateRunByID(ctx context.Context,
	id domain.RunID,
	updates storage.RunUpdates) (*domain.DiscoveryRun, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DiscoveryRun), args.Error(1)
}

func (m *Mock) EnsurePlan(ctx context.Context, plan domain.UserPlanState) (*domain.UserPlanState, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserPlanState), args.Error(1)
}

func (m *Mock) PlanByUserID(ctx context.Context, userID domain.UserID) (*domain.UserPlanState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserPlanState), args.Error(1)
}

func (m *Mock) PlanByBillingCustomerID(ctx context.Context, customerID string) (*domain.UserPlanState, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserPlanState), args.Error(1)
}

func (m *Mock) ResetUsageIfDue(ctx context.Context, userID domain.UserID, now, nextReset time.Time) error {
	args := m.Called(ctx, userID, now, nextReset)

	return args.Error(0)
}

func (m *Mock) ConsumeQuota(ctx context.Context, userID domain.UserID, n int) (*domain.UserPlanState, error) {
	args := m.Called(ctx, userID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserPlanState), args.Error(1)
}

func (m *Mock) UpdatePlanByUserID(ctx context.Context,
	userID domain.UserID,
	updates storage.PlanUpdates) (*domain.UserPlanState, error) {
	args := m.Called(ctx, userID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserPlanState), args.Error(1)
}

func (m *Mock) RecordBillingEvent(ctx context.Context, record storage.BillingEventRecord) (bool, error) {
	args := m.Called(ctx, record)

	return args.Bool(0), args.Error(1)
}

func (m *Mock) AddJob(ctx context.Context, jobArgs river.JobArgs, opts *river.InsertOpts) (bool, error) {
	args := m.Called(ctx, jobArgs, opts)

	return args.Bool(0), args.Error(1)
}

func (m *Mock) Close() error {
	args := m.Called()

	return args.Error(0)
}

func (m *Mock) Commit() error {
	args := m.Called()

	return args.Error(0)
}

func (m *Mock) Rollback() error {
	args := m.Called()

	return args.Error(0)
}

func (m *Mock) Begin(ctx context.Context) (storage.TxStorage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(storage.TxStorage), args.Error(1)
}

// WithTx runs the callback against the mock itself, so per-method
// expectations drive transactional behavior. The expectation's error, when
// non-nil, is returned before the callback runs.
func (m *Mock) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}

	return cb(m)
}
