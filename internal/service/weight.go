package service

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"weight_tracker/internal/domain"
	"weight_tracker/internal/repository"
)

var errEntryNotFound = domain.NotFound("Weight entry not found")

func validWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

// ownedEntry looks the entry up by ID and hides it unless its client belongs to user.
func (s *RecordStore) ownedEntry(ctx context.Context, user domain.User, id uint) (domain.WeightEntry, error) {
	e, err := s.repo.EntryByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.WeightEntry{}, errEntryNotFound
	}
	if err != nil {
		return domain.WeightEntry{}, domain.Internal("Failed to load weight entry", err)
	}
	if _, err := s.ownedClient(ctx, user, e.ClientID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.WeightEntry{}, errEntryNotFound
		}
		return domain.WeightEntry{}, err
	}
	return e, nil
}

// ListWeightEntries returns a client's entries in storage order. Sorting by date is left to the caller.
func (s *RecordStore) ListWeightEntries(ctx context.Context, sess domain.Session, clientID uint) ([]domain.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.listWeightEntries(ctx, sess, clientID)
	return entries, s.finish("list_weight_entries", err)
}

func (s *RecordStore) listWeightEntries(ctx context.Context, sess domain.Session, clientID uint) ([]domain.WeightEntry, error) {
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedClient(ctx, user, clientID); err != nil {
		return nil, err
	}
	entries, err := s.repo.EntriesByClient(ctx, clientID)
	if err != nil {
		return nil, domain.Internal("Failed to list weight entries", err)
	}
	return entries, nil
}

// AddWeightEntry records a weight in kilograms for one of the session's clients.
// An empty date means today on the store's clock.
func (s *RecordStore) AddWeightEntry(ctx context.Context, sess domain.Session, in domain.NewWeightEntry) (domain.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.addWeightEntry(ctx, sess, in)
	return e, s.finish("add_weight_entry", err)
}

func (s *RecordStore) addWeightEntry(ctx context.Context, sess domain.Session, in domain.NewWeightEntry) (domain.WeightEntry, error) {
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return domain.WeightEntry{}, err
	}
	if _, err := s.ownedClient(ctx, user, in.ClientID); err != nil {
		return domain.WeightEntry{}, err
	}
	if !validWeight(in.Weight) {
		return domain.WeightEntry{}, domain.Invalid("Weight must be a positive number")
	}
	date := in.Date
	if date == "" {
		date = s.clock.Now().Format(domain.DateLayout)
	} else if !domain.ValidDate(date) {
		return domain.WeightEntry{}, domain.Invalid("Invalid date format. Use YYYY-MM-DD")
	}

	e := domain.WeightEntry{ClientID: in.ClientID, Weight: in.Weight, Date: date}
	if err := s.repo.CreateEntry(ctx, &e); err != nil {
		return domain.WeightEntry{}, domain.Internal("Failed to create weight entry", err)
	}
	s.log.WithFields(logrus.Fields{"client_id": e.ClientID, "entry_id": e.ID, "date": e.Date}).Info("Weight entry added")
	return e, nil
}

// UpdateWeightEntry merges patch into an entry of one of the session's clients.
func (s *RecordStore) UpdateWeightEntry(ctx context.Context, sess domain.Session, id uint, patch domain.WeightPatch) (domain.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.updateWeightEntry(ctx, sess, id, patch)
	return e, s.finish("update_weight_entry", err)
}

func (s *RecordStore) updateWeightEntry(ctx context.Context, sess domain.Session, id uint, patch domain.WeightPatch) (domain.WeightEntry, error) {
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return domain.WeightEntry{}, err
	}
	e, err := s.ownedEntry(ctx, user, id)
	if err != nil {
		return domain.WeightEntry{}, err
	}
	if patch.Weight != nil && !validWeight(*patch.Weight) {
		return domain.WeightEntry{}, domain.Invalid("Weight must be a positive number")
	}
	if patch.Date != nil && !domain.ValidDate(*patch.Date) {
		return domain.WeightEntry{}, domain.Invalid("Invalid date format. Use YYYY-MM-DD")
	}

	updated := patch.Apply(e)
	if err := s.repo.UpdateEntry(ctx, updated); errors.Is(err, repository.ErrNotFound) {
		return domain.WeightEntry{}, errEntryNotFound
	} else if err != nil {
		return domain.WeightEntry{}, domain.Internal("Failed to update weight entry", err)
	}
	s.log.WithFields(logrus.Fields{"client_id": updated.ClientID, "entry_id": updated.ID}).Info("Weight entry updated")
	return updated, nil
}

// DeleteWeightEntry removes an entry of one of the session's clients.
func (s *RecordStore) DeleteWeightEntry(ctx context.Context, sess domain.Session, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finish("delete_weight_entry", s.deleteWeightEntry(ctx, sess, id))
}

func (s *RecordStore) deleteWeightEntry(ctx context.Context, sess domain.Session, id uint) error {
	user, err := s.authorize(ctx, sess)
	if err != nil {
		return err
	}
	e, err := s.ownedEntry(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, id); errors.Is(err, repository.ErrNotFound) {
		return errEntryNotFound
	} else if err != nil {
		return domain.Internal("Failed to delete weight entry", err)
	}
	s.log.WithFields(logrus.Fields{"client_id": e.ClientID, "entry_id": id}).Info("Weight entry deleted")
	return nil
}
