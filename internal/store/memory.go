package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"notes-service/internal/model"
)

// MemoryStore is an in-memory Store implementation. It backs the test suite
// and small single-process deployments. The mutex is held across the quota
// check and the insert, giving the same exact-cap guarantee as the Postgres
// adapter's row lock.
type MemoryStore struct {
	mu         sync.Mutex
	tenants    map[uint]*model.Tenant
	users      map[uint]*model.User
	notes      map[uint]*model.Note
	nextTenant uint
	nextUser   uint
	nextNote   uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants: make(map[uint]*model.Tenant),
		users:   make(map[uint]*model.User),
		notes:   make(map[uint]*model.Note),
	}
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	user.ID = s.nextUser
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStore) GetTenantByID(_ context.Context, id uint) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *MemoryStore) GetTenantBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantBySlugLocked(slug)
	if t == nil {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *MemoryStore) CreateTenant(_ context.Context, tenant *model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTenant++
	tenant.ID = s.nextTenant
	if tenant.SubscriptionPlan == "" {
		tenant.SubscriptionPlan = model.PlanFree
	}
	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	copied := *tenant
	s.tenants[tenant.ID] = &copied
	return nil
}

func (s *MemoryStore) UpgradeTenantPlan(_ context.Context, slug string) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantBySlugLocked(slug)
	if t == nil {
		return nil, ErrNotFound
	}
	if t.SubscriptionPlan != model.PlanPro {
		t.SubscriptionPlan = model.PlanPro
		t.UpdatedAt = time.Now()
	}
	copied := *t
	return &copied, nil
}

func (s *MemoryStore) CreateNote(_ context.Context, note *model.Note, freeLimit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[note.TenantID]
	if !ok {
		return ErrNotFound
	}

	if tenant.SubscriptionPlan == model.PlanFree {
		count := 0
		for _, n := range s.notes {
			if n.TenantID == note.TenantID {
				count++
			}
		}
		if count >= freeLimit {
			return ErrQuotaExceeded
		}
	}

	s.nextNote++
	note.ID = s.nextNote
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now
	copied := *note
	s.notes[note.ID] = &copied
	return nil
}

func (s *MemoryStore) ListNotes(_ context.Context, tenantID uint) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := make([]model.Note, 0)
	for _, n := range s.notes {
		if n.TenantID == tenantID {
			notes = append(notes, *n)
		}
	}
	// Most recently updated first, newest ID breaking ties
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

func (s *MemoryStore) GetNote(_ context.Context, tenantID, noteID uint) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return nil, ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *MemoryStore) UpdateNote(_ context.Context, tenantID, noteID uint, title, content string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return nil, ErrNotFound
	}
	n.Title = title
	n.Content = content
	n.UpdatedAt = time.Now()
	copied := *n
	return &copied, nil
}

func (s *MemoryStore) DeleteNote(_ context.Context, tenantID, noteID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return ErrNotFound
	}
	delete(s.notes, noteID)
	return nil
}

func (s *MemoryStore) CountNotes(_ context.Context, tenantID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notes {
		if n.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) tenantBySlugLocked(slug string) *model.Tenant {
	for _, t := range s.tenants {
		if t.Slug == slug {
			return t
		}
	}
	return nil
}
