package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"weight_tracker/internal/domain"
	"weight_tracker/internal/repository"
)

var errClientNotFound = domain.NotFound("Client not found")

// ownedClient loads a client and hides it unless user owns it.
func (s *RecordStore) ownedClient(ctx context.Context, user domain.User, id uint) (domain.Client, error) {
	c, err := s.repo.ClientByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Client{}, errClientNotFound
	}
	if err != nil {
		return domain.Client{}, domain.Internal("Failed to load client", err)
	}
	if c.UserID != user.ID {
		return domain.Client{}, errClientNotFound
	}
	return c, nil
}

// ListClients returns the session's clients in storage order.
func (s *RecordStore) ListClients(ctx context.Context, sess domain.Session) ([]domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return nil, s.finish("list_clients", err)
	}
	clients, err := s.repo.ClientsByUser(ctx, user.ID)
	if err != nil {
		return nil, s.finish("list_clients", domain.Internal("Failed to list clients", err))
	}
	return clients, s.finish("list_clients", nil)
}

// GetClient returns one of the session's clients.
func (s *RecordStore) GetClient(ctx context.Context, sess domain.Session, id uint) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return domain.Client{}, s.finish("get_client", err)
	}
	c, err := s.ownedClient(ctx, user, id)
	return c, s.finish("get_client", err)
}

// AddClient creates a client owned by the session. Client emails are unique across all users.
func (s *RecordStore) AddClient(ctx context.Context, sess domain.Session, in domain.NewClient) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.addClient(ctx, sess, in)
	return c, s.finish("add_client", err)
}

func (s *RecordStore) addClient(ctx context.Context, sess domain.Session, in domain.NewClient) (domain.Client, error) {
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return domain.Client{}, err
	}
	name, email := in.Name, in.Email
	if name == "" || email == "" {
		return domain.Client{}, domain.Invalid("Name and email are required")
	}
	if _, err := s.repo.ClientByEmail(ctx, email); err == nil {
		return domain.Client{}, domain.Conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Client{}, domain.Internal("Failed to check client email", err)
	}

	c := domain.Client{Name: name, Email: email, UserID: user.ID, CreatedAt: s.clock.Now()}
	if err := s.repo.CreateClient(ctx, &c); err != nil {
		return domain.Client{}, domain.Internal("Failed to create client", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "client_id": c.ID}).Info("Client added")
	return c, nil
}

// DeleteClient removes one of the session's clients together with its weight entries.
func (s *RecordStore) DeleteClient(ctx context.Context, sess domain.Session, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finish("delete_client", s.deleteClient(ctx, sess, id))
}

func (s *RecordStore) deleteClient(ctx context.Context, sess domain.Session, id uint) error {
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return err
	}
	if _, err := s.ownedClient(ctx, user, id); err != nil {
		return err
	}
	if err := s.repo.DeleteClient(ctx, id); errors.Is(err, repository.ErrNotFound) {
		return errClientNotFound
	} else if err != nil {
		return domain.Internal("Failed to delete client", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "client_id": id}).Info("Client deleted")
	return nil
}
