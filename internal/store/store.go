// Package store defines the persistence port for the service and its
// adapters. Every note operation is scoped by tenant ID at the query boundary,
// so a note belonging to another tenant behaves exactly like a missing note.
package store

import (
	"context"
	"errors"

	"notes-service/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist or is not visible
	// to the caller's tenant. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("record not found")

	// ErrQuotaExceeded is returned by CreateNote when a free-plan tenant is at
	// its note limit.
	ErrQuotaExceeded = errors.New("note quota exceeded")
)

// Store is the port interface for database operations.
type Store interface {
	// Users
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error

	// Tenants
	GetTenantByID(ctx context.Context, id uint) (*model.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	CreateTenant(ctx context.Context, tenant *model.Tenant) error
	// UpgradeTenantPlan moves the tenant to the pro plan. It is idempotent;
	// there is no downgrade path.
	UpgradeTenantPlan(ctx context.Context, slug string) (*model.Tenant, error)

	// Notes. CreateNote enforces the free-plan quota atomically: the plan
	// check, the live note count, and the insert happen as one unit, so
	// concurrent creations cannot push a free tenant past freeLimit.
	CreateNote(ctx context.Context, note *model.Note, freeLimit int) error
	ListNotes(ctx context.Context, tenantID uint) ([]model.Note, error)
	GetNote(ctx context.Context, tenantID, noteID uint) (*model.Note, error)
	UpdateNote(ctx context.Context, tenantID, noteID uint, title, content string) (*model.Note, error)
	DeleteNote(ctx context.Context, tenantID, noteID uint) error
	CountNotes(ctx context.Context, tenantID uint) (int64, error)
}
