// Package repositorytest holds the behaviour every repository.Repository
// adapter must share. Adapter packages call Run from their own tests.
package repositorytest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weight_tracker/internal/domain"
	"weight_tracker/internal/repository"
)

// Factory returns a fresh, empty repository for one subtest.
type Factory func(t *testing.T) repository.Repository

// Run executes the contract suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newRepo(t)) })
	t.Run("client order and ownership", func(t *testing.T) { testClients(t, newRepo(t)) })
	t.Run("delete client cascades", func(t *testing.T) { testCascade(t, newRepo(t)) })
	t.Run("entries", func(t *testing.T) { testEntries(t, newRepo(t)) })
	t.Run("ids are never reused", func(t *testing.T) { testMonotonicIDs(t, newRepo(t)) })
}

var created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, repo repository.Repository, name string) domain.User {
	t.Helper()
	u := domain.User{Username: name, Email: name + "@x.com", Password: "pw", CreatedAt: created}
	require.NoError(t, repo.CreateUser(context.Background(), &u))
	require.NotZero(t, u.ID)
	return u
}

func mustClient(t *testing.T, repo repository.Repository, owner uint, name, email string) domain.Client {
	t.Helper()
	c := domain.Client{Name: name, Email: email, UserID: owner, CreatedAt: created}
	require.NoError(t, repo.CreateClient(context.Background(), &c))
	require.NotZero(t, c.ID)
	return c
}

func mustEntry(t *testing.T, repo repository.Repository, clientID uint, weight float64, date string) domain.WeightEntry {
	t.Helper()
	e := domain.WeightEntry{ClientID: clientID, Weight: weight, Date: date}
	require.NoError(t, repo.CreateEntry(context.Background(), &e))
	require.NotZero(t, e.ID)
	return e
}

func testUsers(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")
	assert.Greater(t, bob.ID, alice.ID)

	got, err := repo.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "pw", got.Password)

	got, err = repo.UserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	got, err = repo.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = repo.UserByUsername(ctx, "carol")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.UserByEmail(ctx, "carol@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.UserByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testClients(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")

	c1 := mustClient(t, repo, alice.ID, "Zed", "z@x.com")
	mustClient(t, repo, bob.ID, "Other", "o@x.com")
	c3 := mustClient(t, repo, alice.ID, "Amy", "a@x.com")

	list, err := repo.ClientsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c1.ID, list[0].ID)
	assert.Equal(t, c3.ID, list[1].ID)
	assert.Equal(t, alice.ID, list[0].UserID)

	none, err := repo.ClientsByUser(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := repo.ClientByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, c3.ID, got.ID)
	assert.Equal(t, "Amy", got.Name)

	_, err = repo.ClientByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.ClientByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testCascade(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	u := mustUser(t, repo, "alice")
	doomed := mustClient(t, repo, u.ID, "Bob", "b@x.com")
	kept := mustClient(t, repo, u.ID, "Cat", "c@x.com")
	e1 := mustEntry(t, repo, doomed.ID, 80, "2024-01-01")
	mustEntry(t, repo, doomed.ID, 79, "2024-01-02")
	k := mustEntry(t, repo, kept.ID, 60, "2024-01-01")

	require.NoError(t, repo.DeleteClient(ctx, doomed.ID))

	_, err := repo.ClientByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.EntryByID(ctx, e1.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	left, err := repo.EntriesByClient(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	// the email is free again once the client is gone
	_, err = repo.ClientByEmail(ctx, "b@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.EntryByID(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, kept.ID, got.ClientID)

	assert.ErrorIs(t, repo.DeleteClient(ctx, doomed.ID), repository.ErrNotFound)
}

func testEntries(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	u := mustUser(t, repo, "alice")
	c := mustClient(t, repo, u.ID, "Bob", "b@x.com")

	late := mustEntry(t, repo, c.ID, 81.5, "2024-02-01")
	early := mustEntry(t, repo, c.ID, 82, "2024-01-01")

	list, err := repo.EntriesByClient(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, late.ID, list[0].ID, "entries come back in storage order, not by date")
	assert.Equal(t, early.ID, list[1].ID)

	updated := late
	updated.Weight = 80
	updated.Date = "2024-02-03"
	require.NoError(t, repo.UpdateEntry(ctx, updated))
	got, err := repo.EntryByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.Weight)
	assert.Equal(t, "2024-02-03", got.Date)
	assert.Equal(t, c.ID, got.ClientID)

	require.NoError(t, repo.DeleteEntry(ctx, early.ID))
	list, err = repo.EntriesByClient(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, late.ID, list[0].ID)

	assert.ErrorIs(t, repo.DeleteEntry(ctx, early.ID), repository.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateEntry(ctx, domain.WeightEntry{ID: 999, Weight: 1, Date: "2024-01-01"}), repository.ErrNotFound)
}

func testMonotonicIDs(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	u := mustUser(t, repo, "alice")
	c1 := mustClient(t, repo, u.ID, "A", "a@x.com")
	c2 := mustClient(t, repo, u.ID, "B", "b@x.com")
	e1 := mustEntry(t, repo, c2.ID, 70, "2024-01-01")

	require.NoError(t, repo.DeleteEntry(ctx, e1.ID))
	require.NoError(t, repo.DeleteClient(ctx, c2.ID))

	c3 := mustClient(t, repo, u.ID, "C", "c@x.com")
	e2 := mustEntry(t, repo, c1.ID, 71, "2024-01-02")
	assert.Greater(t, c3.ID, c2.ID)
	assert.Greater(t, e2.ID, e1.ID)
}
