package store

import (
	"context"
	"errors"
	"transaction_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// TransactionFilter restricts queries to a single owner when UserID is set
type TransactionFilter struct {
	UserID string
}

// TransactionStore is the persistence boundary for transaction records
type TransactionStore interface {
	Insert(ctx context.Context, t *domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindPage(ctx context.Context, filter TransactionFilter, offset, limit int) ([]domain.Transaction, error)
	Count(ctx context.Context, filter TransactionFilter) (int64, error)
	FindAllByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
	UpdateByID(ctx context.Context, id string, fields map[string]any) error
	DeleteByID(ctx context.Context, id string) error
}

// GormTransactionStore implements TransactionStore on top of GORM
type GormTransactionStore struct {
	db *gorm.DB
}

// NewGormTransactionStore creates a GORM-backed transaction store
func NewGormTransactionStore(db *gorm.DB) *GormTransactionStore {
	return &GormTransactionStore{db: db}
}

// Insert persists a new transaction record
func (s *GormTransactionStore) Insert(ctx context.Context, t *domain.Transaction) error {
	return s.db.WithContext(ctx).Create(t).Error
}

// FindByID returns the transaction with the given id
func (s *GormTransactionStore) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	// Query transaction by primary key
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindPage returns a page of transactions ordered by creation time, newest first
func (s *GormTransactionStore) FindPage(ctx context.Context, filter TransactionFilter, offset, limit int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	query := s.scoped(ctx, filter)
	// Fetch paginated transactions with the filter applied
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Count returns the number of transactions matching the filter
func (s *GormTransactionStore) Count(ctx context.Context, filter TransactionFilter) (int64, error) {
	var total int64
	if err := s.scoped(ctx, filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// FindAllByUser returns every transaction owned by userID
func (s *GormTransactionStore) FindAllByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// UpdateByID applies the given column values to the transaction with the given id
func (s *GormTransactionStore) UpdateByID(ctx context.Context, id string, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&domain.Transaction{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByID removes the transaction with the given id
func (s *GormTransactionStore) DeleteByID(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scoped starts a transaction query with the filter applied
func (s *GormTransactionStore) scoped(ctx context.Context, filter TransactionFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	return query
}
