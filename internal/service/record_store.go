// Package service implements the session-scoped record store: users, their
// clients and the clients' weight history, with every read and write filtered
// by the acting session's ownership.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"weight_tracker/internal/auth"
	"weight_tracker/internal/domain"
	"weight_tracker/internal/repository"
)

// DefaultSessionTTL is used when Options.SessionTTL is zero.
const DefaultSessionTTL = 24 * time.Hour

// Observer is notified once per finished operation. err is nil on success.
type Observer interface {
	ObserveOperation(op string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error) {}

// Options configures a RecordStore. Zero values pick sensible defaults.
type Options struct {
	Clock      clockwork.Clock
	SessionTTL time.Duration
	Logger     logrus.FieldLogger
	Observer   Observer
}

// RecordStore is the single authority over users, clients and weight entries.
// Each operation runs under one lock, so session validation and the writes it
// guards are observed as a unit.
type RecordStore struct {
	mu       sync.Mutex
	repo     repository.Repository
	sessions auth.SessionRegistry
	clock    clockwork.Clock
	ttl      time.Duration
	log      logrus.FieldLogger
	observer Observer
}

// New creates a record store over repo, tracking logins in sessions
func New(repo repository.Repository, sessions auth.SessionRegistry, opts Options) *RecordStore {
	s := &RecordStore{
		repo:     repo,
		sessions: sessions,
		clock:    opts.Clock,
		ttl:      opts.SessionTTL,
		log:      opts.Logger,
		observer: opts.Observer,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s
}

// finish reports the outcome of op and passes err through.
func (s *RecordStore) finish(op string, err error) error {
	s.observer.ObserveOperation(op, err)
	if domain.KindOf(err) == domain.KindInternal {
		s.log.WithFields(logrus.Fields{"op": op, "error": err.Error()}).Error("Record store failure")
	}
	return err
}

// authorize validates the session against the registry and returns its user.
// Any failure is reported as Unauthorized, except backend errors.
func (s *RecordStore) authorize(ctx context.Context, sess domain.Session) (domain.User, error) {
	if sess.IsZero() {
		return domain.User{}, domain.ErrUnauthorized
	}
	live, err := s.sessions.Lookup(ctx, sess.ID)
	if errors.Is(err, auth.ErrSessionNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, domain.Internal("Failed to look up session", err)
	}
	if live.UserID != sess.UserID || live.Expired(s.clock.Now()) {
		return domain.User{}, domain.ErrUnauthorized
	}
	user, err := s.repo.UserByID(ctx, live.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, domain.Internal("Failed to load user", err)
	}
	return user, nil
}

// openSession registers a new login for user.
func (s *RecordStore) openSession(ctx context.Context, user domain.User) (domain.Session, error) {
	now := s.clock.Now()
	sess := domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domain.Session{}, domain.Internal("Failed to save session", err)
	}
	return sess, nil
}

// Register creates a user and logs it in.
func (s *RecordStore) Register(ctx context.Context, username, email, password string) (domain.Session, domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, id, err := s.register(ctx, username, email, password)
	return sess, id, s.finish("register", err)
}

func (s *RecordStore) register(ctx context.Context, username, email, password string) (domain.Session, domain.Identity, error) {
	// Credentials are stored exactly as given; only empty values are rejected
	if username == "" || email == "" || password == "" {
		return domain.Session{}, domain.Identity{}, domain.Invalid("Missing required fields")
	}
	if _, err := s.repo.UserByUsername(ctx, username); err == nil {
		return domain.Session{}, domain.Identity{}, domain.Conflict("Username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Session{}, domain.Identity{}, domain.Internal("Failed to check username", err)
	}
	if _, err := s.repo.UserByEmail(ctx, email); err == nil {
		return domain.Session{}, domain.Identity{}, domain.Conflict("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Session{}, domain.Identity{}, domain.Internal("Failed to check email", err)
	}

	user := domain.User{Username: username, Email: email, Password: password, CreatedAt: s.clock.Now()}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return domain.Session{}, domain.Identity{}, domain.Internal("Failed to create user", err)
	}
	sess, err := s.openSession(ctx, user)
	if err != nil {
		return domain.Session{}, domain.Identity{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return sess, user.Identity(), nil
}

// Login opens a session when username and password both match exactly.
func (s *RecordStore) Login(ctx context.Context, username, password string) (domain.Session, domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, id, err := s.login(ctx, username, password)
	return sess, id, s.finish("login", err)
}

func (s *RecordStore) login(ctx context.Context, username, password string) (domain.Session, domain.Identity, error) {
	invalid := domain.Unauthorized("Invalid username or password")
	user, err := s.repo.UserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Session{}, domain.Identity{}, invalid
	}
	if err != nil {
		return domain.Session{}, domain.Identity{}, domain.Internal("Failed to load user", err)
	}
	if user.Password != password {
		s.log.WithField("username", username).Warn("Login rejected")
		return domain.Session{}, domain.Identity{}, invalid
	}
	sess, err := s.openSession(ctx, user)
	if err != nil {
		return domain.Session{}, domain.Identity{}, err
	}
	s.log.WithField("user_id", user.ID).Info("User logged in")
	return sess, user.Identity(), nil
}

// Logout revokes the session. It is idempotent and accepts an empty session.
func (s *RecordStore) Logout(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if sess.ID != "" {
		if rerr := s.sessions.Revoke(ctx, sess.ID); rerr != nil {
			err = domain.Internal("Failed to revoke session", rerr)
		}
	}
	return s.finish("logout", err)
}

// CurrentSession returns the identity behind a live session.
func (s *RecordStore) CurrentSession(ctx context.Context, sess domain.Session) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return domain.Identity{}, s.finish("current_session", err)
	}
	return user.Identity(), s.finish("current_session", nil)
}
