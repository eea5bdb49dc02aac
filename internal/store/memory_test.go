package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"notes-service/internal/model"
	"notes-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const freeLimit = 3

func newStoreWithTenants(t *testing.T) (*store.MemoryStore, *model.Tenant, *model.Tenant) {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()

	acme := &model.Tenant{Slug: "acme", Name: "Acme Corporation", SubscriptionPlan: model.PlanFree}
	require.NoError(t, s.CreateTenant(ctx, acme))
	globex := &model.Tenant{Slug: "globex", Name: "Globex Corporation", SubscriptionPlan: model.PlanFree}
	require.NoError(t, s.CreateTenant(ctx, globex))

	return s, acme, globex
}

func createNote(t *testing.T, s store.Store, tenantID uint, title string) *model.Note {
	t.Helper()
	note := &model.Note{Title: title, UserID: 1, TenantID: tenantID}
	require.NoError(t, s.CreateNote(context.Background(), note, freeLimit))
	return note
}

func TestTenantScopingHidesForeignNotes(t *testing.T) {
	s, acme, globex := newStoreWithTenants(t)
	ctx := context.Background()

	note := createNote(t, s, acme.ID, "Acme secret")

	// A note in tenant A must look nonexistent to tenant B on every operation
	_, err := s.GetNote(ctx, globex.ID, note.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpdateNote(ctx, globex.ID, note.ID, "stolen", "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteNote(ctx, globex.ID, note.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The owner still sees it untouched
	got, err := s.GetNote(ctx, acme.ID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme secret", got.Title)

	notes, err := s.ListNotes(ctx, globex.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestFreePlanQuota(t *testing.T) {
	s, acme, _ := newStoreWithTenants(t)
	ctx := context.Background()

	for i := 0; i < freeLimit; i++ {
		createNote(t, s, acme.ID, "note")
	}

	err := s.CreateNote(ctx, &model.Note{Title: "one too many", UserID: 1, TenantID: acme.ID}, freeLimit)
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)

	count, err := s.CountNotes(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(freeLimit), count)
}

func TestQuotaRecountsAfterDelete(t *testing.T) {
	s, acme, _ := newStoreWithTenants(t)
	ctx := context.Background()

	notes := make([]*model.Note, 0, freeLimit)
	for i := 0; i < freeLimit; i++ {
		notes = append(notes, createNote(t, s, acme.ID, "note"))
	}

	// At the cap: creation fails
	err := s.CreateNote(ctx, &model.Note{Title: "blocked", UserID: 1, TenantID: acme.ID}, freeLimit)
	require.ErrorIs(t, err, store.ErrQuotaExceeded)

	// The gate counts live notes, so deleting one frees a slot
	require.NoError(t, s.DeleteNote(ctx, acme.ID, notes[0].ID))
	err = s.CreateNote(ctx, &model.Note{Title: "fits again", UserID: 1, TenantID: acme.ID}, freeLimit)
	assert.NoError(t, err)
}

func TestProPlanSkipsQuota(t *testing.T) {
	s, acme, _ := newStoreWithTenants(t)
	ctx := context.Background()

	_, err := s.UpgradeTenantPlan(ctx, acme.Slug)
	require.NoError(t, err)

	for i := 0; i < freeLimit*3; i++ {
		createNote(t, s, acme.ID, "unlimited")
	}

	count, err := s.CountNotes(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(freeLimit*3), count)
}

func TestUpgradeTenantPlanIdempotent(t *testing.T) {
	s, acme, _ := newStoreWithTenants(t)
	ctx := context.Background()

	first, err := s.UpgradeTenantPlan(ctx, acme.Slug)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, first.SubscriptionPlan)

	second, err := s.UpgradeTenantPlan(ctx, acme.Slug)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, second.SubscriptionPlan)

	_, err = s.UpgradeTenantPlan(ctx, "no-such-tenant")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConcurrentCreationsRespectCap(t *testing.T) {
	s, acme, _ := newStoreWithTenants(t)
	ctx := context.Background()

	// Many goroutines race to create; exactly freeLimit may win
	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.CreateNote(ctx, &model.Note{Title: "race", UserID: 1, TenantID: acme.ID}, freeLimit)
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, store.ErrQuotaExceeded)
		rejected++
	}
	assert.Equal(t, freeLimit, ok)
	assert.Equal(t, 20-freeLimit, rejected)

	count, err := s.CountNotes(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(freeLimit), count)
}

func TestListNotesOrdering(t *testing.T) {
	s, acme, _ := newStoreWithTenants(t)
	ctx := context.Background()

	first := createNote(t, s, acme.ID, "first")
	second := createNote(t, s, acme.ID, "second")
	third := createNote(t, s, acme.ID, "third")

	// Touch the oldest note so it becomes the most recently updated
	time.Sleep(5 * time.Millisecond)
	_, err := s.UpdateNote(ctx, acme.ID, first.ID, "first (edited)", "")
	require.NoError(t, err)

	notes, err := s.ListNotes(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, first.ID, notes[0].ID)
	assert.Equal(t, third.ID, notes[1].ID)
	assert.Equal(t, second.ID, notes[2].ID)
}

func TestCreateNoteUnknownTenant(t *testing.T) {
	s := store.NewMemoryStore()
	err := s.CreateNote(context.Background(), &model.Note{Title: "orphan", UserID: 1, TenantID: 99}, freeLimit)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
