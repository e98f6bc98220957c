package service

import (
	"context"
	"transaction_system/internal/domain"
	"transaction_system/internal/store"
)

// EligibilityPredicate selects which transactions count toward a balance
type EligibilityPredicate func(domain.Transaction) bool

// AllTransactions counts every transaction regardless of status
func AllTransactions(domain.Transaction) bool { return true }

// CompletedOnly restricts the balance to completed transactions
func CompletedOnly(t domain.Transaction) bool { return t.Status == domain.StatusCompleted }

// BalanceSynchronizer recomputes a user's cached balance from the full set
// of their transactions after a mutation.
type BalanceSynchronizer struct {
	transactions store.TransactionStore
	users        store.UserStore
	eligible     EligibilityPredicate
}

// NewBalanceSynchronizer creates a synchronizer using the given eligibility
// predicate. A nil predicate counts all transactions.
func NewBalanceSynchronizer(transactions store.TransactionStore, users store.UserStore, eligible EligibilityPredicate) *BalanceSynchronizer {
	if eligible == nil {
		eligible = AllTransactions
	}
	return &BalanceSynchronizer{transactions: transactions, users: users, eligible: eligible}
}

// Sync recomputes and persists the balance for userID
func (s *BalanceSynchronizer) Sync(ctx context.Context, userID string) error {
	txs, err := s.transactions.FindAllByUser(ctx, userID)
	if err != nil {
		return err
	}
	var total float64
	for _, t := range txs {
		if s.eligible(t) {
			total += t.Amount
		}
	}
	return s.users.UpdateBalance(ctx, userID, total)
}
