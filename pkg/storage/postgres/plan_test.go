package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leadscout/pkg/domain"
	"leadscout/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func freePlan(userID domain.UserID) domain.UserPlanState {
	return domain.UserPlanState{
		UserID:         userID,
		Status:         domain.PlanFree,
		DiscoveryLimit: 10,
		UsageResetDate: domain.NextUsageResetDate(time.Now()),
	}
}

func TestPgSQL_EnsurePlan(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	created, err := pg.EnsurePlan(ctx, freePlan(userID))
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, domain.PlanFree, created.Status)
	require.Equal(t, 10, created.DiscoveryLimit)
	require.Zero(t, created.DiscoveriesUsed)

	// a second ensure keeps the existing record, defaults are ignored
	changed := freePlan(userID)
	changed.DiscoveryLimit = 9999
	existing, err := pg.EnsurePlan(ctx, changed)
	require.NoError(t, err)
	require.NotNil(t, existing)
	require.Equal(t, 10, existing.DiscoveryLimit)
}

func TestPgSQL_ConsumeQuota(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	plan := freePlan(userID)
	plan.DiscoveryLimit = 3
	_, err := pg.EnsurePlan(ctx, plan)
	require.NoError(t, err)

	updated, err := pg.ConsumeQuota(ctx, userID, 2)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, 2, updated.DiscoveriesUsed)

	// consuming past the limit changes nothing
	denied, err := pg.ConsumeQuota(ctx, userID, 2)
	require.NoError(t, err)
	require.Nil(t, denied)

	// exactly reaching the limit is allowed
	last, err := pg.ConsumeQuota(ctx, userID, 1)
	require.NoError(t, err)
	require.NotNil(t, last)
	require.Equal(t, 3, last.DiscoveriesUsed)
	require.Zero(t, last.Remaining())
}

func TestPgSQL_ConsumeQuota_Concurrent(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	const limit = 5
	plan := freePlan(userID)
	plan.DiscoveryLimit = limit
	_, err := pg.EnsurePlan(ctx, plan)
	require.NoError(t, err)

	// 20 workers race for 5 units; the conditional update must admit exactly 5
	var granted atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := pg.ConsumeQuota(ctx, userID, 1)
			require.NoError(t, err)
			if res != nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(limit), granted.Load())

	final, err := pg.PlanByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, final)
	require.Equal(t, limit, final.DiscoveriesUsed)
}

func TestPgSQL_ResetUsageIfDue(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	now := time.Now().UTC()
	plan := freePlan(userID)
	plan.UsageResetDate = now.Add(-time.Hour)
	_, err := pg.EnsurePlan(ctx, plan)
	require.NoError(t, err)
	_, err = pg.ConsumeQuota(ctx, userID, 4)
	require.NoError(t, err)

	nextReset := domain.NextUsageResetDate(now)
	require.NoError(t, pg.ResetUsageIfDue(ctx, userID, now, nextReset))

	after, err := pg.PlanByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, after)
	require.Zero(t, after.DiscoveriesUsed)
	require.WithinDuration(t, nextReset, after.UsageResetDate, time.Second)

	// not due anymore: a second call is a no-op
	_, err = pg.ConsumeQuota(ctx, userID, 2)
	require.NoError(t, err)
	require.NoError(t, pg.ResetUsageIfDue(ctx, userID, now, domain.NextUsageResetDate(nextReset)))

	unchanged, err := pg.PlanByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 2, unchanged.DiscoveriesUsed)
	require.WithinDuration(t, nextReset, unchanged.UsageResetDate, time.Second)
}

func TestPgSQL_UpdatePlanByUserID(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	_, err := pg.EnsurePlan(ctx, freePlan(userID))
	require.NoError(t, err)

	// upgrade to pro, linking billing identifiers
	customer := "cus_123"
	sub := "sub_456"
	upgraded, err := pg.UpdatePlanByUserID(ctx, userID, storage.PlanUpdates{
		Status:                domain.PlanPro,
		DiscoveryLimit:        250,
		BillingCustomerID:     &customer,
		BillingSubscriptionID: &sub,
	})
	require.NoError(t, err)
	require.NotNil(t, upgraded)
	require.Equal(t, domain.PlanPro, upgraded.Status)
	require.Equal(t, 250, upgraded.DiscoveryLimit)
	require.Equal(t, "cus_123", upgraded.BillingCustomerID)
	require.Equal(t, "sub_456", upgraded.BillingSubscriptionID)

	byCustomer, err := pg.PlanByBillingCustomerID(ctx, "cus_123")
	require.NoError(t, err)
	require.NotNil(t, byCustomer)
	require.Equal(t, userID, byCustomer.UserID)

	// downgrade: clear the subscription and zero the counter
	_, err = pg.ConsumeQuota(ctx, userID, 7)
	require.NoError(t, err)
	empty := ""
	downgraded, err := pg.UpdatePlanByUserID(ctx, userID, storage.PlanUpdates{
		Status:                domain.PlanFree,
		DiscoveryLimit:        10,
		BillingSubscriptionID: &empty,
		ResetUsage:            true,
	})
	require.NoError(t, err)
	require.NotNil(t, downgraded)
	require.Equal(t, domain.PlanFree, downgraded.Status)
	require.Empty(t, downgraded.BillingSubscriptionID)
	require.Zero(t, downgraded.DiscoveriesUsed)
	// the customer link survives a downgrade
	require.Equal(t, "cus_123", downgraded.BillingCustomerID)

	// unknown user
	missing, err := pg.UpdatePlanByUserID(ctx, domain.UserID(uuid.New()), storage.PlanUpdates{
		Status:         domain.PlanFree,
		DiscoveryLimit: 10,
	})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPgSQL_PlanByUserID_NotFound(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	plan, err := pg.PlanByUserID(context.Background(), domain.UserID(uuid.New()))
	require.NoError(t, err)
	require.Nil(t, plan)

	byCustomer, err := pg.PlanByBillingCustomerID(context.Background(), "cus_unknown")
	require.NoError(t, err)
	require.Nil(t, byCustomer)
}
