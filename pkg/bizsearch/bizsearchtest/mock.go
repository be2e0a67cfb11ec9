// Package bizsearchtest provides a hand-written testify mock of the
// business-search client for use in worker tests.
package bizsearchtest

import (
	"context"

	"leadscout/pkg/bizsearch"
	"leadscout/pkg/domain"

	"github.com/stretchr/testify/mock"
)

// Mock implements bizsearch.Client on top of testify's mock.Mock.
type Mock struct {
	mock.Mock
}

var _ bizsearch.Client = (*Mock)(nil)

func (m *Mock) Search(ctx context.Context,
	query, location string,
	limit int) ([]domain.DiscoveryCandidate, bizsearch.RateLimitStatus, error) {
	args := m.Called(ctx, query, location, limit)

	var candidates []domain.DiscoveryCandidate
	if args.Get(0) != nil {
		candidates = args.Get(0).([]domain.DiscoveryCandidate)
	}

	return candidates, args.Get(1).(bizsearch.RateLimitStatus), args.Error(2)
}
