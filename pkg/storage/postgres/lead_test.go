package postgres_test

import (
	"context"
	"testing"
	"time"

	"leadscout/pkg/domain"
	"leadscout/pkg/storage"
	"leadscout/pkg/storage/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testLead(owner domain.UserID, companyKey string) domain.Lead {
	return domain.Lead{
		OwnerUserID:   owner,
		CompanyName:   "Joe's Plumbing",
		CompanyKey:    companyKey,
		Domain:        companyKey,
		ContactEmail:  "joe@" + companyKey,
		WebsiteURL:    "https://" + companyKey,
		WebsiteIssues: []string{"no-ssl"},
		SocialMedia:   []string{},
		Stage:         domain.StageNew,
	}
}

func storeRunForUser(t *testing.T, pg *postgres.PgSQL, owner domain.UserID) *domain.DiscoveryRun {
	t.Helper()
	run, err := pg.StoreRun(context.Background(), domain.DiscoveryRun{
		OwnerUserID: owner,
		Query:       "plumbers",
		Location:    "Austin, TX",
		Status:      domain.RunStatusPending,
	})
	require.NoError(t, err)
	require.NotNil(t, run)

	return run
}

func TestPgSQL_StoreLead_Dedup(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	stored, err := pg.StoreLead(ctx, testLead(owner, "joesplumbing.com"))
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotEqual(t, uuid.Nil, uuid.UUID(stored.ID))
	require.False(t, stored.CreatedAt.IsZero())
	require.Equal(t, domain.StageNew, stored.Stage)
	require.Equal(t, []string{"no-ssl"}, stored.WebsiteIssues)
	require.Empty(t, stored.SocialMedia)

	// same owner, same company key: first write wins
	dup, err := pg.StoreLead(ctx, testLead(owner, "joesplumbing.com"))
	require.NoError(t, err)
	require.Nil(t, dup)

	// a different owner may hold the same company key
	other, err := pg.StoreLead(ctx, testLead(domain.UserID(uuid.New()), "joesplumbing.com"))
	require.NoError(t, err)
	require.NotNil(t, other)
}

func TestPgSQL_StoreLead_KeyFreedBySoftDelete(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	stored, err := pg.StoreLead(ctx, testLead(owner, "acme-bakery.com"))
	require.NoError(t, err)
	require.NotNil(t, stored)

	deleted, err := pg.DeleteLead(ctx, owner, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	require.False(t, deleted.DeletedAt.IsZero())

	// the unique index only covers live rows, so the key is reusable
	again, err := pg.StoreLead(ctx, testLead(owner, "acme-bakery.com"))
	require.NoError(t, err)
	require.NotNil(t, again)
	require.NotEqual(t, stored.ID, again.ID)
}

func TestPgSQL_LeadByID(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	stored, err := pg.StoreLead(ctx, testLead(owner, "lookup.example.com"))
	require.NoError(t, err)
	require.NotNil(t, stored)

	found, err := pg.LeadByID(ctx, owner, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, stored.ID, found.ID)
	require.Equal(t, "Joe's Plumbing", found.CompanyName)

	// other users never see the lead
	missing, err := pg.LeadByID(ctx, domain.UserID(uuid.New()), stored.ID)
	require.NoError(t, err)
	require.Nil(t, missing)

	// soft-deleted leads are invisible
	_, err = pg.DeleteLead(ctx, owner, stored.ID)
	require.NoError(t, err)
	gone, err := pg.LeadByID(ctx, owner, stored.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestPgSQL_UserLeads_PaginationAndStageFilter(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	var contacted *domain.Lead
	for i, key := range []string{"a.example.com", "b.example.com", "c.example.com"} {
		stored, err := pg.StoreLead(ctx, testLead(owner, key))
		require.NoError(t, err)
		require.NotNil(t, stored)

		if i == 1 {
			stage := domain.StageContacted
			contacted, err = pg.UpdateLeadByID(ctx, owner, stored.ID, storage.LeadUpdates{Stage: &stage})
			require.NoError(t, err)
			require.NotNil(t, contacted)
		}
		// keep created_at strictly ordered for the cursor
		time.Sleep(10 * time.Millisecond)
	}

	// first page of two with a next cursor
	page, err := pg.UserLeads(ctx, owner, "", time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, page.Leads, 2)
	require.NotNil(t, page.NextCursor)
	require.Equal(t, "c.example.com", page.Leads[0].Domain)
	require.Equal(t, "b.example.com", page.Leads[1].Domain)

	// next page picks up where the cursor left off
	rest, err := pg.UserLeads(ctx, owner, "", *page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, rest.Leads, 1)
	require.Nil(t, rest.NextCursor)
	require.Equal(t, "a.example.com", rest.Leads[0].Domain)

	// stage filter
	filtered, err := pg.UserLeads(ctx, owner, domain.StageContacted, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, filtered.Leads, 1)
	require.Equal(t, contacted.ID, filtered.Leads[0].ID)
}

func TestPgSQL_LeadsByRunID(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.UserID(uuid.New())
	run := storeRunForUser(t, pg, owner)

	for _, key := range []string{"one.example.com", "two.example.com"} {
		lead := testLead(owner, key)
		lead.SourceRunID = &run.ID
		stored, err := pg.StoreLead(ctx, lead)
		require.NoError(t, err)
		require.NotNil(t, stored)
	}
	// a manually added lead has no run reference
	manual, err := pg.StoreLead(ctx, testLead(owner, "manual.example.com"))
	require.NoError(t, err)
	require.NotNil(t, manual)

	leads, err := pg.LeadsByRunID(ctx, owner, run.ID)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	require.Equal(t, "one.example.com", leads[0].Domain)
	require.Equal(t, "two.example.com", leads[1].Domain)
}

func TestPgSQL_UpdateLeadByID(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	stored, err := pg.StoreLead(ctx, testLead(owner, "update.example.com"))
	require.NoError(t, err)
	require.NotNil(t, stored)

	stage := domain.StageQualified
	name := "Joe Smith"
	notes := "left a voicemail"
	updated, err := pg.UpdateLeadByID(ctx, owner, stored.ID, storage.LeadUpdates{
		Stage:       &stage,
		ContactName: &name,
		Notes:       &notes,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, domain.StageQualified, updated.Stage)
	require.Equal(t, "Joe Smith", updated.ContactName)
	require.Equal(t, "left a voicemail", updated.Notes)
	require.False(t, updated.UpdatedAt.IsZero())
	// untouched fields survive
	require.Equal(t, stored.ContactEmail, updated.ContactEmail)

	// clearing via empty string
	empty := ""
	cleared, err := pg.UpdateLeadByID(ctx, owner, stored.ID, storage.LeadUpdates{ContactName: &empty})
	require.NoError(t, err)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.ContactName)

	// unknown lead
	missing, err := pg.UpdateLeadByID(ctx, owner, domain.LeadID(uuid.New()), storage.LeadUpdates{Stage: &stage})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPgSQL_DeleteLead_Idempotency(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	stored, err := pg.StoreLead(ctx, testLead(owner, "delete.example.com"))
	require.NoError(t, err)
	require.NotNil(t, stored)

	deleted, err := pg.DeleteLead(ctx, owner, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	// a second delete finds nothing
	again, err := pg.DeleteLead(ctx, owner, stored.ID)
	require.NoError(t, err)
	require.Nil(t, again)
}
