package service

import (
	"context"
	"strings"
	"time"
	"transaction_system/internal/domain"
	"transaction_system/internal/store"

	"github.com/sirupsen/logrus" // Logging library
)

// Pagination defaults when the caller leaves page or limit unset
const (
	defaultPage  = 1
	defaultLimit = 10
)

// CreateTransactionInput carries the fields of a create request
type CreateTransactionInput struct {
	Name   string
	Type   domain.TransactionType
	Amount float64
	UserID string
}

// UpdateTransactionInput carries the optional fields of a partial update.
// Nil fields are left untouched.
type UpdateTransactionInput struct {
	Name   *string
	Type   *domain.TransactionType
	Amount *float64
	Status *domain.TransactionStatus
}

// Pagination describes the position of a page within the full result set
type Pagination struct {
	Page       int   `json:"page"`       // Current page
	Limit      int   `json:"limit"`      // Page size
	Total      int64 `json:"total"`      // Total matching records
	TotalPages int   `json:"totalPages"` // ceil(total/limit)
}

// TransactionPage is one page of transactions plus pagination metadata
type TransactionPage struct {
	Data       []domain.Transaction `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// TransactionService orchestrates transaction mutations: it gates writes
// through the PermissionGate and triggers a best-effort balance
// synchronization after every store mutation.
type TransactionService struct {
	transactions store.TransactionStore
	users        store.UserStore
	gate         PermissionGate
	balances     *BalanceSynchronizer
}

// NewTransactionService wires the service with its collaborators
func NewTransactionService(transactions store.TransactionStore, users store.UserStore, gate PermissionGate, balances *BalanceSynchronizer) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		users:        users,
		gate:         gate,
		balances:     balances,
	}
}

// Create validates the request, checks write permission for the owning
// user, persists the transaction with the default status and synchronizes
// the owner's balance.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (*domain.Transaction, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !in.Type.Valid() {
		return nil, &domain.ValidationError{Field: "type", Reason: "unrecognized transaction type"}
	}
	if in.Amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if in.UserID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if err := s.authorize(ctx, in.UserID); err != nil {
		return nil, err
	}
	t := &domain.Transaction{
		Name:   in.Name,
		Type:   in.Type,
		Amount: in.Amount,
		Status: domain.StatusPending,
		UserID: in.UserID,
	}
	if err := s.transactions.Insert(ctx, t); err != nil {
		return nil, err
	}
	s.syncBalance(ctx, in.UserID)
	return t, nil
}

// Get returns the transaction with the given id
func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.transactions.FindByID(ctx, id)
}

// List returns one page of transactions ordered by creation time, newest
// first. Page and limit fall back to 1 and 10 when unset.
func (s *TransactionService) List(ctx context.Context, filter store.TransactionFilter, page, limit int) (*TransactionPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	total, err := s.transactions.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions.FindPage(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &TransactionPage{
		Data: txs,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// Update merges the provided fields into an existing transaction. The
// permission check runs against the transaction's current owner. The
// owner's balance is synchronized after the write.
func (s *TransactionService) Update(ctx context.Context, id string, in UpdateTransactionInput) (*domain.Transaction, error) {
	existing, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, existing.UserID); err != nil {
		return nil, err
	}
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		fields["name"] = *in.Name
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, &domain.ValidationError{Field: "type", Reason: "unrecognized transaction type"}
		}
		fields["type"] = *in.Type
	}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return nil, &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
		}
		fields["amount"] = *in.Amount
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, &domain.ValidationError{Field: "status", Reason: "unrecognized transaction status"}
		}
		fields["status"] = *in.Status
	}
	if err := s.transactions.UpdateByID(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.syncBalance(ctx, existing.UserID)
	return updated, nil
}

// Delete removes an existing transaction and synchronizes the former
// owner's balance
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, existing.UserID); err != nil {
		return err
	}
	if err := s.transactions.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.syncBalance(ctx, existing.UserID)
	return nil
}

// GetUserBalance returns the user's cached balance. The value is not
// recomputed on demand and may be stale until the next synchronization.
func (s *TransactionService) GetUserBalance(ctx context.Context, userID string) (float64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// authorize runs the permission gate for userID and converts a refusal
// into ErrPermissionDenied. Gate lookup failures propagate as-is.
func (s *TransactionService) authorize(ctx context.Context, userID string) error {
	ok, err := s.gate.CanWrite(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPermissionDenied
	}
	return nil
}

// syncBalance triggers a balance synchronization. Failures are logged and
// never propagated: the primary mutation already committed.
func (s *TransactionService) syncBalance(ctx context.Context, userID string) {
	if err := s.balances.Sync(ctx, userID); err != nil {
		// Log the error with context
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Owner of the stale balance
			"error":   err.Error(), // Error message
		}).Error("Balance sync failed")
	}
}
