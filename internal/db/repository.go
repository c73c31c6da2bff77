package db

import (
	"context"
	"errors"
	"weight_tracker/internal/domain"     // Importing domain models
	"weight_tracker/internal/repository" // Storage port

	"gorm.io/gorm" // GORM ORM library
)

// Ensure Repository implements repository.Repository
var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository on top of GORM.
// Storage order is ascending primary key.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps an opened and migrated GORM handle
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Close releases the underlying connection
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound converts GORM's not-found error to the repository sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) UserByID(ctx context.Context, id uint) (domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return u, notFound(err)
}

func (r *Repository) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return u, notFound(err)
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return u, notFound(err)
}

func (r *Repository) CreateClient(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *Repository) ClientByID(ctx context.Context, id uint) (domain.Client, error) {
	var c domain.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	return c, notFound(err)
}

func (r *Repository) ClientByEmail(ctx context.Context, email string) (domain.Client, error) {
	var c domain.Client
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	return c, notFound(err)
}

func (r *Repository) ClientsByUser(ctx context.Context, userID uint) ([]domain.Client, error) {
	clients := make([]domain.Client, 0)
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&clients).Error
	return clients, err
}

// DeleteClient removes the client and its weight entries in one transaction
func (r *Repository) DeleteClient(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete the client first so a missing ID leaves entries untouched
		res := tx.Delete(&domain.Client{}, id)
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		// Cascade to the client's weight entries
		if err := tx.Where("client_id = ?", id).Delete(&domain.WeightEntry{}).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
}

func (r *Repository) CreateEntry(ctx context.Context, entry *domain.WeightEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Client{}).Where("id = ?", entry.ClientID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound // Entries must reference an existing client
		}
		return tx.Create(entry).Error
	})
}

func (r *Repository) EntryByID(ctx context.Context, id uint) (domain.WeightEntry, error) {
	var e domain.WeightEntry
	err := r.db.WithContext(ctx).First(&e, id).Error
	return e, notFound(err)
}

func (r *Repository) EntriesByClient(ctx context.Context, clientID uint) ([]domain.WeightEntry, error) {
	entries := make([]domain.WeightEntry, 0)
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("id").Find(&entries).Error
	return entries, err
}

// UpdateEntry overwrites weight and date. The owning client never changes.
func (r *Repository) UpdateEntry(ctx context.Context, entry domain.WeightEntry) error {
	res := r.db.WithContext(ctx).Model(&domain.WeightEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{"weight": entry.Weight, "date": entry.Date})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.WeightEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
