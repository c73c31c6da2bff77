package service

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weight_tracker/internal/auth"
	"weight_tracker/internal/db"
	"weight_tracker/internal/domain"
	"weight_tracker/internal/repository"
)

var testNow = time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

type recordingObserver struct {
	ops  []string
	errs []error
}

func (o *recordingObserver) ObserveOperation(op string, err error) {
	o.ops = append(o.ops, op)
	o.errs = append(o.errs, err)
}

type fixture struct {
	store    *RecordStore
	clock    *clockwork.FakeClock
	sessions *auth.MemorySessions
	observer *recordingObserver
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFixture(t *testing.T, repo repository.Repository) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	sessions := auth.NewMemorySessions(clock)
	observer := &recordingObserver{}
	store := New(repo, sessions, Options{
		Clock:      clock,
		SessionTTL: time.Hour,
		Logger:     quietLogger(),
		Observer:   observer,
	})
	return &fixture{store: store, clock: clock, sessions: sessions, observer: observer}
}

// repositories lists every adapter the store is exercised against.
func repositories(t *testing.T) map[string]func(t *testing.T) repository.Repository {
	t.Helper()
	return map[string]func(t *testing.T) repository.Repository{
		"memory": func(t *testing.T) repository.Repository { return repository.NewMemory() },
		"sqlite": func(t *testing.T) repository.Repository {
			gdb, err := db.Open(db.MemoryDSN, quietLogger())
			require.NoError(t, err)
			repo := db.NewRepository(gdb)
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		},
	}
}

// forEachRepository runs fn once per repository adapter.
func forEachRepository(t *testing.T, fn func(t *testing.T, f *fixture)) {
	for name, build := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, newFixture(t, build(t)))
		})
	}
}

func (f *fixture) register(t *testing.T, name string) domain.Session {
	t.Helper()
	sess, _, err := f.store.Register(context.Background(), name, name+"@x.com", "pw-"+name)
	require.NoError(t, err)
	return sess
}

func (f *fixture) client(t *testing.T, sess domain.Session, name, email string) domain.Client {
	t.Helper()
	c, err := f.store.AddClient(context.Background(), sess, domain.NewClient{Name: name, Email: email})
	require.NoError(t, err)
	return c
}

func (f *fixture) entry(t *testing.T, sess domain.Session, clientID uint, weight float64, date string) domain.WeightEntry {
	t.Helper()
	e, err := f.store.AddWeightEntry(context.Background(), sess, domain.NewWeightEntry{ClientID: clientID, Weight: weight, Date: date})
	require.NoError(t, err)
	return e
}

func TestRegister(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		sess, id, err := f.store.Register(ctx, "alice", "a@x.com", "pw")
		require.NoError(t, err)

		assert.NotEmpty(t, sess.ID)
		assert.Equal(t, id.ID, sess.UserID)
		assert.Equal(t, testNow.Add(time.Hour), sess.ExpiresAt)
		assert.Equal(t, "alice", id.Username)
		assert.Equal(t, "a@x.com", id.Email)

		// registration logs the user in
		cur, err := f.store.CurrentSession(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, id.ID, cur.ID)

		_, other, err := f.store.Register(ctx, "bob", "b@x.com", "pw")
		require.NoError(t, err)
		assert.Greater(t, other.ID, id.ID)
	})
}

func TestRegisterConflicts(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		f.register(t, "alice")

		_, _, err := f.store.Register(ctx, "alice", "other@x.com", "pw")
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "conflict: Username already exists")

		_, _, err = f.store.Register(ctx, "alicia", "alice@x.com", "pw")
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "conflict: Email already exists")
	})
}

func TestRegisterRequiresFields(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()

	for _, in := range [][3]string{{"", "a@x.com", "pw"}, {"alice", "", "pw"}, {"alice", "a@x.com", ""}} {
		_, _, err := f.store.Register(ctx, in[0], in[1], in[2])
		assert.ErrorIs(t, err, domain.ErrInvalid, "%v", in)
	}
}

func TestRegisterKeepsCredentialsVerbatim(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		f.register(t, "alice")

		// Padded names are different usernames, not duplicates
		_, padded, err := f.store.Register(ctx, "alice ", "other@x.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "alice ", padded.Username)

		_, bob, err := f.store.Register(ctx, " bob", " bob@x.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, " bob", bob.Username)
		assert.Equal(t, " bob@x.com", bob.Email)

		_, id, err := f.store.Login(ctx, " bob", "pw")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, id.ID)

		_, _, err = f.store.Login(ctx, "bob", "pw")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, id, err = f.store.Login(ctx, "alice ", "pw")
		require.NoError(t, err)
		assert.Equal(t, padded.ID, id.ID)
	})
}

func TestLoginRequiresExactMatch(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		_, _, err := f.store.Register(ctx, "alice", "a@x.com", "Secret")
		require.NoError(t, err)

		cases := []struct {
			username, password string
			ok                 bool
		}{
			{"alice", "Secret", true},
			{"alice", "secret", false},
			{"Alice", "Secret", false},
			{"alice", "Secret ", false},
			{"bob", "Secret", false},
			{"", "", false},
		}
		for _, tc := range cases {
			sess, id, err := f.store.Login(ctx, tc.username, tc.password)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, "alice", id.Username)
				assert.NotEmpty(t, sess.ID)
				continue
			}
			assert.ErrorIs(t, err, domain.ErrUnauthorized, "%s/%s", tc.username, tc.password)
			assert.EqualError(t, err, "unauthorized: Invalid username or password")
		}
	})
}

func TestEachLoginIsASeparateSession(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	first := f.register(t, "alice")
	second, _, err := f.store.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, f.store.Logout(ctx, first))

	_, err = f.store.CurrentSession(ctx, first)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.store.CurrentSession(ctx, second)
	assert.NoError(t, err)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	sess := f.register(t, "alice")

	require.NoError(t, f.store.Logout(ctx, sess))
	require.NoError(t, f.store.Logout(ctx, sess))
	require.NoError(t, f.store.Logout(ctx, domain.Session{}))

	_, err := f.store.ListClients(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSessionExpires(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	sess := f.register(t, "alice")

	f.clock.Advance(59 * time.Minute)
	_, err := f.store.CurrentSession(ctx, sess)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	_, err = f.store.CurrentSession(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestForgedSessionIsRejected(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.client(t, bob, "Secret client", "s@x.com")

	// alice's live session ID paired with bob's user ID
	forged := domain.Session{ID: alice.ID, UserID: bob.UserID}
	_, err := f.store.ListClients(ctx, forged)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.store.ListClients(ctx, domain.Session{ID: "made-up", UserID: alice.UserID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOperationsFailClosedWithoutSession(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	none := domain.Session{}
	w := 70.0

	_, err := f.store.CurrentSession(ctx, none)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.store.ListClients(ctx, none)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.store.GetClient(ctx, none, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.store.AddClient(ctx, none, domain.NewClient{Name: "Bob", Email: "b@x.com"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, f.store.DeleteClient(ctx, none, 1), domain.ErrUnauthorized)
	_, err = f.store.ListWeightEntries(ctx, none, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.store.AddWeightEntry(ctx, none, domain.NewWeightEntry{ClientID: 1, Weight: 70})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.store.UpdateWeightEntry(ctx, none, 1, domain.WeightPatch{Weight: &w})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, f.store.DeleteWeightEntry(ctx, none, 1), domain.ErrUnauthorized)
}

func TestAddAndListClients(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		alice := f.register(t, "alice")
		f.client(t, alice, "Bob", "b@x.com")

		clients, err := f.store.ListClients(ctx, alice)
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.Equal(t, "Bob", clients[0].Name)
		assert.Equal(t, alice.UserID, clients[0].UserID)

		second := f.client(t, alice, "Amy", "amy@x.com")
		clients, err = f.store.ListClients(ctx, alice)
		require.NoError(t, err)
		require.Len(t, clients, 2)
		assert.Equal(t, second.ID, clients[1].ID, "storage order, not alphabetical")
	})
}

func TestAddClientValidation(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	alice := f.register(t, "alice")

	_, err := f.store.AddClient(context.Background(), alice, domain.NewClient{Name: "", Email: "b@x.com"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	_, err = f.store.AddClient(context.Background(), alice, domain.NewClient{Name: "Bob"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestAddClientKeepsFieldsVerbatim(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		alice := f.register(t, "alice")
		f.client(t, alice, "Bob", "b@x.com")

		padded := f.client(t, alice, " Bob ", " b@x.com")
		assert.Equal(t, " Bob ", padded.Name)
		assert.Equal(t, " b@x.com", padded.Email)

		_, err := f.store.AddClient(context.Background(), alice, domain.NewClient{Name: "Bob", Email: " b@x.com"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestClientEmailIsGloballyUnique(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		alice := f.register(t, "alice")
		bob := f.register(t, "bob")
		f.client(t, alice, "Carl", "carl@x.com")

		_, err := f.store.AddClient(ctx, bob, domain.NewClient{Name: "Carl Again", Email: "carl@x.com"})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "conflict: Email already registered")

		_, err = f.store.AddClient(ctx, alice, domain.NewClient{Name: "Carl Twin", Email: "carl@x.com"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestOwnershipIsolation(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		alice := f.register(t, "alice")
		bob := f.register(t, "bob")
		c := f.client(t, alice, "Dana", "dana@x.com")
		e := f.entry(t, alice, c.ID, 70, "2024-01-01")

		clients, err := f.store.ListClients(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, clients)

		_, err = f.store.GetClient(ctx, bob, c.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "not_found: Client not found")

		_, err = f.store.ListWeightEntries(ctx, bob, c.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.store.AddWeightEntry(ctx, bob, domain.NewWeightEntry{ClientID: c.ID, Weight: 80})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		w := 1.0
		_, err = f.store.UpdateWeightEntry(ctx, bob, e.ID, domain.WeightPatch{Weight: &w})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "not_found: Weight entry not found")

		assert.ErrorIs(t, f.store.DeleteWeightEntry(ctx, bob, e.ID), domain.ErrNotFound)
		assert.ErrorIs(t, f.store.DeleteClient(ctx, bob, c.ID), domain.ErrNotFound)

		// nothing bob tried touched alice's data
		got, err := f.store.GetClient(ctx, alice, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana", got.Name)
		entries, err := f.store.ListWeightEntries(ctx, alice, c.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 70.0, entries[0].Weight)
	})
}

func TestDeleteClientCascades(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		alice := f.register(t, "alice")
		c := f.client(t, alice, "Bob", "b@x.com")
		other := f.client(t, alice, "Cat", "c@x.com")
		e1 := f.entry(t, alice, c.ID, 80, "2024-01-01")
		f.entry(t, alice, c.ID, 79, "2024-01-08")
		kept := f.entry(t, alice, other.ID, 60, "2024-01-01")

		require.NoError(t, f.store.DeleteClient(ctx, alice, c.ID))

		_, err := f.store.ListWeightEntries(ctx, alice, c.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound, "client is gone, not merely empty")

		w := 1.0
		_, err = f.store.UpdateWeightEntry(ctx, alice, e1.ID, domain.WeightPatch{Weight: &w})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		entries, err := f.store.ListWeightEntries(ctx, alice, other.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, kept.ID, entries[0].ID)

		assert.ErrorIs(t, f.store.DeleteClient(ctx, alice, c.ID), domain.ErrNotFound)
	})
}

func TestAddWeightEntry(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		alice := f.register(t, "alice")
		c := f.client(t, alice, "Bob", "b@x.com")

		e := f.entry(t, alice, c.ID, 82.35, "2024-03-01")
		assert.NotZero(t, e.ID)
		assert.Equal(t, 82.35, e.Weight, "stored as given")
		assert.Equal(t, "2024-03-01", e.Date)
		assert.Equal(t, c.ID, e.ClientID)

		today := f.entry(t, alice, c.ID, 82, "")
		assert.Equal(t, "2024-05-10", today.Date)

		_, err := f.store.AddWeightEntry(ctx, alice, domain.NewWeightEntry{ClientID: 999, Weight: 80})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAddWeightEntryValidation(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	alice := f.register(t, "alice")
	c := f.client(t, alice, "Bob", "b@x.com")

	for _, w := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := f.store.AddWeightEntry(ctx, alice, domain.NewWeightEntry{ClientID: c.ID, Weight: w})
		assert.ErrorIs(t, err, domain.ErrInvalid, "weight %v", w)
	}

	_, err := f.store.AddWeightEntry(ctx, alice, domain.NewWeightEntry{ClientID: c.ID, Weight: 80, Date: "03/01/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.EqualError(t, err, "invalid: Invalid date format. Use YYYY-MM-DD")

	entries, err := f.store.ListWeightEntries(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed adds leave nothing behind")
}

func TestListWeightEntriesKeepsStorageOrder(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		alice := f.register(t, "alice")
		c := f.client(t, alice, "Bob", "b@x.com")
		f.entry(t, alice, c.ID, 80, "2024-03-01")
		f.entry(t, alice, c.ID, 81, "2024-01-01")
		f.entry(t, alice, c.ID, 82, "2024-02-01")

		entries, err := f.store.ListWeightEntries(context.Background(), alice, c.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{"2024-03-01", "2024-01-01", "2024-02-01"},
			[]string{entries[0].Date, entries[1].Date, entries[2].Date})
	})
}

func TestUpdateWeightEntryMergesPatch(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		alice := f.register(t, "alice")
		c := f.client(t, alice, "Bob", "b@x.com")
		e := f.entry(t, alice, c.ID, 80, "2024-03-01")

		w := 78.5
		got, err := f.store.UpdateWeightEntry(ctx, alice, e.ID, domain.WeightPatch{Weight: &w})
		require.NoError(t, err)
		assert.Equal(t, 78.5, got.Weight)
		assert.Equal(t, "2024-03-01", got.Date, "date untouched")

		d := "2024-03-02"
		got, err = f.store.UpdateWeightEntry(ctx, alice, e.ID, domain.WeightPatch{Date: &d})
		require.NoError(t, err)
		assert.Equal(t, 78.5, got.Weight, "weight untouched")
		assert.Equal(t, "2024-03-02", got.Date)

		entries, err := f.store.ListWeightEntries(ctx, alice, c.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, got, entries[0])

		_, err = f.store.UpdateWeightEntry(ctx, alice, 999, domain.WeightPatch{Weight: &w})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateWeightEntryValidation(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	alice := f.register(t, "alice")
	c := f.client(t, alice, "Bob", "b@x.com")
	e := f.entry(t, alice, c.ID, 80, "2024-03-01")

	neg := -3.0
	_, err := f.store.UpdateWeightEntry(ctx, alice, e.ID, domain.WeightPatch{Weight: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	bad := "tomorrow"
	_, err = f.store.UpdateWeightEntry(ctx, alice, e.ID, domain.WeightPatch{Date: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	entries, err := f.store.ListWeightEntries(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, e, entries[0], "rejected patch changed nothing")
}

func TestDeleteWeightEntry(t *testing.T) {
	forEachRepository(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		alice := f.register(t, "alice")
		c := f.client(t, alice, "Bob", "b@x.com")
		e1 := f.entry(t, alice, c.ID, 80, "2024-03-01")
		e2 := f.entry(t, alice, c.ID, 81, "2024-03-02")

		require.NoError(t, f.store.DeleteWeightEntry(ctx, alice, e1.ID))
		assert.ErrorIs(t, f.store.DeleteWeightEntry(ctx, alice, e1.ID), domain.ErrNotFound)

		entries, err := f.store.ListWeightEntries(ctx, alice, c.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, e2.ID, entries[0].ID)
	})
}

func TestObserverSeesEveryOperation(t *testing.T) {
	f := newFixture(t, repository.NewMemory())
	ctx := context.Background()
	sess := f.register(t, "alice")
	_, _ = f.store.GetClient(ctx, sess, 42)

	require.Equal(t, []string{"register", "get_client"}, f.observer.ops)
	assert.NoError(t, f.observer.errs[0])
	assert.ErrorIs(t, f.observer.errs[1], domain.ErrNotFound)
}

// failingSessions simulates a session backend outage.
type failingSessions struct{ auth.SessionRegistry }

func (failingSessions) Lookup(context.Context, string) (domain.Session, error) {
	return domain.Session{}, errors.New("connection refused")
}

func TestBackendFailureIsInternal(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	store := New(repository.NewMemory(), failingSessions{auth.NewMemorySessions(clock)}, Options{Clock: clock, Logger: quietLogger()})

	sess, _, err := store.Register(context.Background(), "alice", "a@x.com", "pw")
	require.NoError(t, err)

	_, err = store.ListClients(context.Background(), sess)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
