package discovery_test

import (
	"context"
	"testing"
	"time"

	"leadscout/internal/discovery"
	"leadscout/internal/quota"
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"
	"leadscout/pkg/storage"
	"leadscout/pkg/storage/storagetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(store storage.Storage) discovery.Discoverer {
	return discovery.New(store,
		quota.New(quota.Options{FreeLimit: 10, ProLimit: 250}),
		discovery.Options{MaxAttempts: 3, UniqueRunPeriod: 15 * time.Minute})
}

func planWithHeadroom(userID domain.UserID, used int) *domain.UserPlanState {
	return &domain.UserPlanState{
		UserID:          userID,
		Status:          domain.PlanFree,
		DiscoveriesUsed: used,
		DiscoveryLimit:  10,
		UsageResetDate:  time.Now().Add(24 * time.Hour),
	}
}

func TestService_StartRun_JobAdded(t *testing.T) {
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	stored := &domain.DiscoveryRun{
		ID:          domain.RunID(uuid.New()),
		OwnerUserID: userID,
		Query:       "plumbers",
		Location:    "Austin, TX",
		Status:      domain.RunStatusPending,
	}

	store.On("WithTx", mock.Anything).Return(nil)
	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(planWithHeadroom(userID, 3), nil)
	store.On("StoreRun", mock.Anything, mock.MatchedBy(func(run domain.DiscoveryRun) bool {
		return run.Query == "plumbers" && run.Status == domain.RunStatusPending
	})).Return(stored, nil)
	store.On("AddJob", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	run, err := s.StartRun(context.Background(), userID, " plumbers ", "Austin, TX")
	require.NoError(t, err)
	require.Equal(t, stored.ID, run.ID)
	store.AssertExpectations(t)
}

func TestService_StartRun_DuplicateInFlight(t *testing.T) {
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	store.On("WithTx", mock.Anything).Return(nil)
	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(planWithHeadroom(userID, 3), nil)
	store.On("StoreRun", mock.Anything, mock.Anything).Return(&domain.DiscoveryRun{
		ID:          domain.RunID(uuid.New()),
		OwnerUserID: userID,
	}, nil)
	// river reports the job as a duplicate
	store.On("AddJob", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	_, err := s.StartRun(context.Background(), userID, "plumbers", "")
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestService_StartRun_QuotaExhausted(t *testing.T) {
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	store.On("WithTx", mock.Anything).Return(nil)
	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(planWithHeadroom(userID, 10), nil)

	_, err := s.StartRun(context.Background(), userID, "plumbers", "")
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrQuotaExceeded)
	store.AssertNotCalled(t, "StoreRun", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "AddJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_StartRun_EmptyQuery(t *testing.T) {
	store := &storagetest.Mock{}
	s := newTestService(store)

	_, err := s.StartRun(context.Background(), domain.UserID(uuid.New()), "   ", "")
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestService_Run(t *testing.T) {
	userID := domain.UserID(uuid.New())
	runID := domain.RunID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	store.On("RunByID", mock.Anything, userID, runID).Return(&domain.DiscoveryRun{
		ID:     runID,
		Status: domain.RunStatusCompleted,
	}, nil)
	store.On("LeadsByRunID", mock.Anything, userID, runID).Return([]domain.Lead{
		{CompanyName: "Joe's Pizza"},
	}, nil)

	run, leads, err := s.Run(context.Background(), userID, runID)
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusCompleted, run.Status)
	require.Len(t, leads, 1)
}

func TestService_Run_NotFound(t *testing.T) {
	userID := domain.UserID(uuid.New())
	runID := domain.RunID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	store.On("RunByID", mock.Anything, userID, runID).Return(nil, nil)

	_, _, err := s.Run(context.Background(), userID, runID)
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestService_AddLead_Success(t *testing.T) {
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	stored := &domain.Lead{
		ID:          domain.LeadID(uuid.New()),
		OwnerUserID: userID,
		CompanyName: "Joe's Pizza",
	}

	store.On("WithTx", mock.Anything).Return(nil)
	store.On("StoreLead", mock.Anything, mock.MatchedBy(func(lead domain.Lead) bool {
		return lead.CompanyKey == "joespizzanyc.com" && lead.Stage == domain.StageNew
	})).Return(stored, nil)
	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(planWithHeadroom(userID, 3), nil)
	store.On("ConsumeQuota", mock.Anything, userID, 1).Return(planWithHeadroom(userID, 4), nil)

	lead, err := s.AddLead(context.Background(), userID, domain.DiscoveryCandidate{
		Domain:      "https://www.JoesPizzaNYC.com",
		DisplayName: "Joe's Pizza",
	})
	require.NoError(t, err)
	require.Equal(t, stored.ID, lead.ID)
	store.AssertExpectations(t)
}

func TestService_AddLead_NoiseRejected(t *testing.T) {
	store := &storagetest.Mock{}
	s := newTestService(store)

	_, err := s.AddLead(context.Background(), domain.UserID(uuid.New()), domain.DiscoveryCandidate{
		Domain:      "yelp.com/biz/joes-pizza",
		DisplayName: "Joe's Pizza",
	})
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	store.AssertNotCalled(t, "WithTx", mock.Anything)
}

func TestService_AddLead_Duplicate(t *testing.T) {
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	store.On("WithTx", mock.Anything).Return(nil)
	store.On("StoreLead", mock.Anything, mock.Anything).Return(nil, nil)

	_, err := s.AddLead(context.Background(), userID, domain.DiscoveryCandidate{
		Domain:      "joespizzanyc.com",
		DisplayName: "Joe's Pizza",
	})
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrConflict)
	// duplicates never consume budget
	store.AssertNotCalled(t, "ConsumeQuota", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AddLead_QuotaExceeded(t *testing.T) {
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	store.On("WithTx", mock.Anything).Return(nil)
	store.On("StoreLead", mock.Anything, mock.Anything).Return(&domain.Lead{}, nil)
	store.On("EnsurePlan", mock.Anything, mock.Anything).Return(planWithHeadroom(userID, 10), nil)
	store.On("ConsumeQuota", mock.Anything, userID, 1).Return(nil, nil)

	_, err := s.AddLead(context.Background(), userID, domain.DiscoveryCandidate{
		Domain:      "joespizzanyc.com",
		DisplayName: "Joe's Pizza",
	})
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrQuotaExceeded)
}

func TestService_UserLeads(t *testing.T) {
	userID := domain.UserID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	next := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.On("UserLeads", mock.Anything, userID, domain.StageNew, mock.Anything, uint(20)).
		Return(storage.UserLeads{
			Leads:      []domain.Lead{{CompanyName: "Joe's Pizza"}},
			NextCursor: &next,
		}, nil)

	leads, cursor, err := s.UserLeads(context.Background(), userID, domain.StageNew, "", 20)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Equal(t, next.Format(time.RFC3339), cursor)
}

func TestService_UserLeads_BadInput(t *testing.T) {
	store := &storagetest.Mock{}
	s := newTestService(store)
	userID := domain.UserID(uuid.New())

	_, _, err := s.UserLeads(context.Background(), userID, "SHINY", "", 20)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, _, err = s.UserLeads(context.Background(), userID, "", "not-a-time", 20)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestService_UpdateLead_StageRules(t *testing.T) {
	userID := domain.UserID(uuid.New())
	leadID := domain.LeadID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	t.Run("invalid stage", func(t *testing.T) {
		bad := domain.PipelineStage("SHINY")
		_, err := s.UpdateLead(context.Background(), userID, leadID, storage.LeadUpdates{Stage: &bad})
		require.ErrorIs(t, err, serrors.ErrBadRequest)
	})

	t.Run("terminal stage locked", func(t *testing.T) {
		store.On("LeadByID", mock.Anything, userID, leadID).Return(&domain.Lead{
			ID:    leadID,
			Stage: domain.StageWon,
		}, nil).Once()

		next := domain.StageContacted
		_, err := s.UpdateLead(context.Background(), userID, leadID, storage.LeadUpdates{Stage: &next})
		require.ErrorIs(t, err, serrors.ErrConflict)
	})

	t.Run("valid transition", func(t *testing.T) {
		store.On("LeadByID", mock.Anything, userID, leadID).Return(&domain.Lead{
			ID:    leadID,
			Stage: domain.StageNew,
		}, nil).Once()
		store.On("UpdateLeadByID", mock.Anything, userID, leadID, mock.Anything).Return(&domain.Lead{
			ID:    leadID,
			Stage: domain.StageContacted,
		}, nil).Once()

		next := domain.StageContacted
		lead, err := s.UpdateLead(context.Background(), userID, leadID, storage.LeadUpdates{Stage: &next})
		require.NoError(t, err)
		require.Equal(t, domain.StageContacted, lead.Stage)
	})
}

func TestService_DeleteLead_NotFound(t *testing.T) {
	userID := domain.UserID(uuid.New())
	leadID := domain.LeadID(uuid.New())
	store := &storagetest.Mock{}
	s := newTestService(store)

	store.On("DeleteLead", mock.Anything, userID, leadID).Return(nil, nil)

	err := s.DeleteLead(context.Background(), userID, leadID)
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}
