package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
	"transaction_system/internal/domain"

	"github.com/google/uuid"
)

// MemoryTransactionStore is an in-memory TransactionStore. It backs tests
// and local development without a MySQL instance.
type MemoryTransactionStore struct {
	mu      sync.Mutex
	records map[string]domain.Transaction
	seq     map[string]int // insertion order, breaks created_at ties
	nextSeq int
}

// NewMemoryTransactionStore creates an empty in-memory transaction store
func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{
		records: make(map[string]domain.Transaction),
		seq:     make(map[string]int),
	}
}

// Insert stores a new transaction, assigning id and timestamps when unset
func (s *MemoryTransactionStore) Insert(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	s.records[t.ID] = *t
	s.seq[t.ID] = s.nextSeq
	s.nextSeq++
	return nil
}

// FindByID returns the transaction with the given id
func (s *MemoryTransactionStore) FindByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

// FindPage returns a page of transactions ordered by creation time, newest first
func (s *MemoryTransactionStore) FindPage(_ context.Context, filter TransactionFilter, offset, limit int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := s.sorted(filter)
	if offset >= len(matches) {
		return []domain.Transaction{}, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

// Count returns the number of transactions matching the filter
func (s *MemoryTransactionStore) Count(_ context.Context, filter TransactionFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sorted(filter))), nil
}

// FindAllByUser returns every transaction owned by userID
func (s *MemoryTransactionStore) FindAllByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(TransactionFilter{UserID: userID}), nil
}

// UpdateByID applies the given column values to a stored transaction
func (s *MemoryTransactionStore) UpdateByID(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	for column, value := range fields {
		switch column {
		case "name":
			t.Name = value.(string)
		case "type":
			t.Type = value.(domain.TransactionType)
		case "amount":
			t.Amount = value.(float64)
		case "status":
			t.Status = value.(domain.TransactionStatus)
		case "updated_at":
			t.UpdatedAt = value.(time.Time)
		}
	}
	s.records[id] = t
	return nil
}

// DeleteByID removes the transaction with the given id
func (s *MemoryTransactionStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	delete(s.seq, id)
	return nil
}

// sorted returns matching transactions ordered by created_at desc,
// insertion order desc on ties. Callers must hold the lock.
func (s *MemoryTransactionStore) sorted(filter TransactionFilter) []domain.Transaction {
	matches := make([]domain.Transaction, 0, len(s.records))
	for _, t := range s.records {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		matches = append(matches, t)
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return s.seq[matches[i].ID] > s.seq[matches[j].ID]
	})
	return matches
}

// MemoryUserStore is an in-memory UserStore
type MemoryUserStore struct {
	mu      sync.Mutex
	records map[string]domain.User
}

// NewMemoryUserStore creates an empty in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{records: make(map[string]domain.User)}
}

// Insert stores a new user, assigning an id when unset. Duplicate names
// are rejected like the unique column constraint would.
func (s *MemoryUserStore) Insert(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records {
		if existing.Name == u.Name {
			return errors.New("duplicate user name")
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.records[u.ID] = *u
	return nil
}

// FindByID returns the user with the given id
func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// FindByName returns the user with the given unique name
func (s *MemoryUserStore) FindByName(_ context.Context, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.records {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// UpdateBalance writes the cached balance for userID
func (s *MemoryUserStore) UpdateBalance(_ context.Context, userID string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.records[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Balance = balance
	s.records[userID] = u
	return nil
}
