// Package repository defines the storage port behind the record store and an
// in-memory adapter for it.
package repository

import (
	"context"
	"errors"

	"weight_tracker/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository stores users, clients and weight entries.
// It knows nothing about sessions or ownership; the record store enforces those.
// Create methods assign the ID (and keep a caller-set CreatedAt).
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	UserByID(ctx context.Context, id uint) (domain.User, error)
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)

	CreateClient(ctx context.Context, client *domain.Client) error
	ClientByID(ctx context.Context, id uint) (domain.Client, error)
	ClientByEmail(ctx context.Context, email string) (domain.Client, error)
	// ClientsByUser returns the user's clients in storage order.
	ClientsByUser(ctx context.Context, userID uint) ([]domain.Client, error)
	// DeleteClient removes the client and every weight entry that references it.
	DeleteClient(ctx context.Context, id uint) error

	CreateEntry(ctx context.Context, entry *domain.WeightEntry) error
	EntryByID(ctx context.Context, id uint) (domain.WeightEntry, error)
	// EntriesByClient returns the client's entries in storage order.
	EntriesByClient(ctx context.Context, clientID uint) ([]domain.WeightEntry, error)
	UpdateEntry(ctx context.Context, entry domain.WeightEntry) error
	DeleteEntry(ctx context.Context, id uint) error
}
