package quota_test

import (
	"context"
	"testing"
	"time"

	"leadscout/internal/quota"
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"
	"leadscout/pkg/storage/storagetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGuard() quota.Guard {
	return quota.New(quota.Options{FreeLimit: 10, ProLimit: 250})
}

func TestGuard_LimitFor(t *testing.T) {
	g := newGuard()
	require.Equal(t, 10, g.LimitFor(domain.PlanFree))
	require.Equal(t, 250, g.LimitFor(domain.PlanPro))
}

func TestGuard_TryConsume_Success(t *testing.T) {
	g := newGuard()
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}

	current := &domain.UserPlanState{
		UserID:         userID,
		Status:         domain.PlanFree,
		DiscoveriesUsed: 3,
		DiscoveryLimit:  10,
		UsageResetDate:  time.Now().Add(24 * time.Hour),
	}
	after := *current
	after.DiscoveriesUsed = 4

	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(current, nil)
	store.On("ConsumeQuota", mock.Anything, userID, 1).Return(&after, nil)

	updated, err := g.TryConsume(context.Background(), store, userID, 1)
	require.NoError(t, err)
	require.Equal(t, 4, updated.DiscoveriesUsed)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "ResetUsageIfDue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGuard_TryConsume_QuotaExceeded(t *testing.T) {
	g := newGuard()
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}

	// budget fully used up
	exhausted := &domain.UserPlanState{
		UserID:          userID,
		Status:          domain.PlanFree,
		DiscoveriesUsed: 10,
		DiscoveryLimit:  10,
		UsageResetDate:  time.Now().Add(24 * time.Hour),
	}
	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(exhausted, nil)
	store.On("ConsumeQuota", mock.Anything, userID, 1).Return(nil, nil)

	_, err := g.TryConsume(context.Background(), store, userID, 1)
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrQuotaExceeded)
	require.Contains(t, err.Error(), "10/10")
	store.AssertExpectations(t)
}

func TestGuard_CurrentPlan_ResetsWhenDue(t *testing.T) {
	g := newGuard()
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}

	stale := &domain.UserPlanState{
		UserID:          userID,
		Status:          domain.PlanFree,
		DiscoveriesUsed: 9,
		DiscoveryLimit:  10,
		UsageResetDate:  time.Now().Add(-time.Hour),
	}
	fresh := *stale
	fresh.DiscoveriesUsed = 0
	fresh.UsageResetDate = domain.NextUsageResetDate(time.Now())

	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(stale, nil)
	store.On("ResetUsageIfDue", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)
	store.On("PlanByUserID", mock.Anything, userID).Return(&fresh, nil)

	plan, err := g.CurrentPlan(context.Background(), store, userID)
	require.NoError(t, err)
	require.Zero(t, plan.DiscoveriesUsed)
	store.AssertExpectations(t)
}

func TestGuard_CheckHeadroom(t *testing.T) {
	g := newGuard()
	userID := domain.UserID(uuid.New())

	t.Run("headroom left", func(t *testing.T) {
		store := &storagetest.Mock{}
		store.On("EnsurePlan", mock.Anything, mock.Anything).Return(&domain.UserPlanState{
			UserID:          userID,
			DiscoveriesUsed: 9,
			DiscoveryLimit:  10,
			UsageResetDate:  time.Now().Add(24 * time.Hour),
		}, nil)

		plan, err := g.CheckHeadroom(context.Background(), store, userID)
		require.NoError(t, err)
		require.Equal(t, 1, plan.Remaining())
	})

	t.Run("exhausted", func(t *testing.T) {
		store := &storagetest.Mock{}
		store.On("EnsurePlan", mock.Anything, mock.Anything).Return(&domain.UserPlanState{
			UserID:          userID,
			DiscoveriesUsed: 10,
			DiscoveryLimit:  10,
			UsageResetDate:  time.Now().Add(24 * time.Hour),
		}, nil)

		_, err := g.CheckHeadroom(context.Background(), store, userID)
		require.Error(t, err)
		require.ErrorIs(t, err, serrors.ErrQuotaExceeded)
	})
}
