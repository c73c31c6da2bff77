package repository

import (
	"context"
	"slices"
	"sync"

	"weight_tracker/internal/domain"
)

// Ensure Memory implements Repository
var _ Repository = (*Memory)(nil)

// Memory keeps every collection in id-keyed maps. Insertion order is kept in
// separate slices so listings come back in storage order.
type Memory struct {
	mu sync.RWMutex

	users           map[uint]domain.User
	userByUsername  map[string]uint
	userByEmail     map[string]uint
	clients         map[uint]domain.Client
	clientByEmail   map[string]uint
	clientOrder     []uint
	entries         map[uint]domain.WeightEntry
	entriesByClient map[uint][]uint // client ID -> entry IDs in insertion order

	lastUserID   uint
	lastClientID uint
	lastEntryID  uint
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		users:           make(map[uint]domain.User),
		userByUsername:  make(map[string]uint),
		userByEmail:     make(map[string]uint),
		clients:         make(map[uint]domain.Client),
		clientByEmail:   make(map[string]uint),
		entries:         make(map[uint]domain.WeightEntry),
		entriesByClient: make(map[uint][]uint),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUserID++
	user.ID = m.lastUserID
	m.users[user.ID] = *user
	m.userByUsername[user.Username] = user.ID
	m.userByEmail[user.Email] = user.ID
	return nil
}

func (m *Memory) UserByID(_ context.Context, id uint) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return domain.User{}, ErrNotFound
}

func (m *Memory) UserByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.userByUsername[username]; ok {
		return m.users[id], nil
	}
	return domain.User{}, ErrNotFound
}

func (m *Memory) UserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.userByEmail[email]; ok {
		return m.users[id], nil
	}
	return domain.User{}, ErrNotFound
}

func (m *Memory) CreateClient(_ context.Context, client *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastClientID++
	client.ID = m.lastClientID
	m.clients[client.ID] = *client
	m.clientByEmail[client.Email] = client.ID
	m.clientOrder = append(m.clientOrder, client.ID)
	return nil
}

func (m *Memory) ClientByID(_ context.Context, id uint) (domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return domain.Client{}, ErrNotFound
}

func (m *Memory) ClientByEmail(_ context.Context, email string) (domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.clientByEmail[email]; ok {
		return m.clients[id], nil
	}
	return domain.Client{}, ErrNotFound
}

func (m *Memory) ClientsByUser(_ context.Context, userID uint) ([]domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Client, 0)
	for _, id := range m.clientOrder {
		if c := m.clients[id]; c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) DeleteClient(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return ErrNotFound
	}
	for _, entryID := range m.entriesByClient[id] {
		delete(m.entries, entryID)
	}
	delete(m.entriesByClient, id)
	delete(m.clientByEmail, c.Email)
	delete(m.clients, id)
	m.clientOrder = slices.DeleteFunc(m.clientOrder, func(v uint) bool { return v == id })
	return nil
}

func (m *Memory) CreateEntry(_ context.Context, entry *domain.WeightEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[entry.ClientID]; !ok {
		return ErrNotFound
	}
	m.lastEntryID++
	entry.ID = m.lastEntryID
	m.entries[entry.ID] = *entry
	m.entriesByClient[entry.ClientID] = append(m.entriesByClient[entry.ClientID], entry.ID)
	return nil
}

func (m *Memory) EntryByID(_ context.Context, id uint) (domain.WeightEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return domain.WeightEntry{}, ErrNotFound
}

func (m *Memory) EntriesByClient(_ context.Context, clientID uint) ([]domain.WeightEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.entriesByClient[clientID]
	out := make([]domain.WeightEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.entries[id])
	}
	return out, nil
}

// UpdateEntry overwrites weight and date. The owning client never changes.
func (m *Memory) UpdateEntry(_ context.Context, entry domain.WeightEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.entries[entry.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Weight = entry.Weight
	cur.Date = entry.Date
	m.entries[entry.ID] = cur
	return nil
}

func (m *Memory) DeleteEntry(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	m.entriesByClient[e.ClientID] = slices.DeleteFunc(m.entriesByClient[e.ClientID], func(v uint) bool { return v == id })
	return nil
}
