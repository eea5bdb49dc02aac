// Package seed provisions demo tenants and users for development
// environments. Seeding is idempotent: existing records are left untouched.
package seed

import (
	"context"
	"errors"
	"fmt"

	"notes-service/internal/model"
	"notes-service/internal/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Run creates the demo tenants and their admin/member accounts if they do not
// exist yet. All demo accounts use the password "password".
func Run(ctx context.Context, st store.Store, log *zap.Logger) error {
	acme, err := ensureTenant(ctx, st, "acme", "Acme Corporation")
	if err != nil {
		return err
	}
	globex, err := ensureTenant(ctx, st, "globex", "Globex Corporation")
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	accounts := []struct {
		email  string
		role   string
		tenant *model.Tenant
	}{
		{"admin@acme.test", model.RoleAdmin, acme},
		{"user@acme.test", model.RoleMember, acme},
		{"admin@globex.test", model.RoleAdmin, globex},
		{"user@globex.test", model.RoleMember, globex},
	}

	for _, a := range accounts {
		if err := ensureUser(ctx, st, a.email, string(hash), a.role, a.tenant.ID); err != nil {
			return err
		}
	}

	log.Info("Demo data seeded",
		zap.String("tenants", "acme, globex"),
		zap.Int("accounts", len(accounts)))
	return nil
}

func ensureTenant(ctx context.Context, st store.Store, slug, name string) (*model.Tenant, error) {
	tenant, err := st.GetTenantBySlug(ctx, slug)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("look up tenant %q: %w", slug, err)
	}

	tenant = &model.Tenant{
		Slug:             slug,
		Name:             name,
		SubscriptionPlan: model.PlanFree,
	}
	if err := st.CreateTenant(ctx, tenant); err != nil {
		return nil, fmt.Errorf("create tenant %q: %w", slug, err)
	}
	return tenant, nil
}

func ensureUser(ctx context.Context, st store.Store, email, passwordHash, role string, tenantID uint) error {
	_, err := st.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("look up user %q: %w", email, err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		TenantID:     tenantID,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user %q: %w", email, err)
	}
	return nil
}
