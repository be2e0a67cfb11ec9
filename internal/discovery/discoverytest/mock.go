// Package discoverytest provides a hand-written testify mock of the
// Discoverer interface for use in handler tests.
package discoverytest

import (
	"context"

	"leadscout/internal/discovery"
	"leadscout/pkg/domain"
	"leadscout/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// Mock implements discovery.Discoverer on top of testify's mock.Mock.
type Mock struct {
	mock.Mock
}

var _ discovery.Discoverer = (*Mock)(nil)

func (m *Mock) StartRun(ctx context.Context,
	userID domain.UserID,
	query, location string) (*domain.DiscoveryRun, error) {
	args := m.Called(ctx, userID, query, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DiscoveryRun), args.Error(1)
}

func (m *Mock) Run(ctx context.Context,
	userID domain.UserID,
	runID domain.RunID) (*domain.DiscoveryRun, []domain.Lead, error) {
	args := m.Called(ctx, userID, runID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}

	var leads []domain.Lead
	if args.Get(1) != nil {
		leads = args.Get(1).([]domain.Lead)
	}

	return args.Get(0).(*domain.DiscoveryRun), leads, args.Error(2)
}

func (m *Mock) AddLead(ctx context.Context,
	userID domain.UserID,
	candidate domain.DiscoveryCandidate) (*domain.Lead, error) {
	args := m.Called(ctx, userID, candidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *Mock) UserLeads(ctx context.Context,
	userID domain.UserID,
	stage domain.PipelineStage,
	cursor string,
	limit uint) ([]domain.Lead, string, error) {
	args := m.Called(ctx, userID, stage, cursor, limit)

	var leads []domain.Lead
	if args.Get(0) != nil {
		leads = args.Get(0).([]domain.Lead)
	}

	return leads, args.String(1), args.Error(2)
}

func (m *Mock) Lead(ctx context.Context, userID domain.UserID, leadID domain.LeadID) (*domain.Lead, error) {
	args := m.Called(ctx, userID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *Mock) UpdateLead(ctx context.Context,
	userID domain.UserID,
	leadID domain.LeadID,
	updates storage.LeadUpdates) (*domain.Lead, error) {
	args := m.Called(ctx, userID, leadID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *Mock) DeleteLead(ctx context.Context, userID domain.UserID, leadID domain.LeadID) error {
	args := m.Called(ctx, userID, leadID)

	return args.Error(0)
}
