package store

import (
	"context"
	"errors"

	"notes-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore implements Store on top of GORM/PostgreSQL.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a Store backed by the given database handle.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *PostgresStore) GetTenantByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &tenant, nil
}

func (s *PostgresStore) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, translateErr(err)
	}
	return &tenant, nil
}

func (s *PostgresStore) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	return s.db.WithContext(ctx).Create(tenant).Error
}

func (s *PostgresStore) UpgradeTenantPlan(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slug = ?", slug).First(&tenant).Error; err != nil {
			return translateErr(err)
		}
		if tenant.SubscriptionPlan == model.PlanPro {
			// Already upgraded, nothing to do
			return nil
		}
		if err := tx.Model(&tenant).Update("subscription_plan", model.PlanPro).Error; err != nil {
			return err
		}
		tenant.SubscriptionPlan = model.PlanPro
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// CreateNote inserts a note, enforcing the free-plan quota inside a single
// transaction. The tenant row is locked FOR UPDATE before counting, which
// serializes concurrent creations for the same tenant and keeps the cap exact.
func (s *PostgresStore) CreateNote(ctx context.Context, note *model.Note, freeLimit int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant model.Tenant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&tenant, note.TenantID).Error; err != nil {
			return translateErr(err)
		}

		if tenant.SubscriptionPlan == model.PlanFree {
			var count int64
			if err := tx.Model(&model.Note{}).
				Where("tenant_id = ?", note.TenantID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(freeLimit) {
				return ErrQuotaExceeded
			}
		}

		return tx.Create(note).Error
	})
}

func (s *PostgresStore) ListNotes(ctx context.Context, tenantID uint) ([]model.Note, error) {
	var notes []model.Note
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("updated_at DESC, id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *PostgresStore) GetNote(ctx context.Context, tenantID, noteID uint) (*model.Note, error) {
	var note model.Note
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", noteID, tenantID).
		First(&note).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &note, nil
}

func (s *PostgresStore) UpdateNote(ctx context.Context, tenantID, noteID uint, title, content string) (*model.Note, error) {
	var note model.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND tenant_id = ?", noteID, tenantID).
			First(&note).Error; err != nil {
			return translateErr(err)
		}
		note.Title = title
		note.Content = content
		return tx.Save(&note).Error
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *PostgresStore) DeleteNote(ctx context.Context, tenantID, noteID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", noteID, tenantID).
		Delete(&model.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountNotes(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Note{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
