package store

import (
	"context"
	"errors"
	"transaction_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// UserStore is the persistence boundary for user records
type UserStore interface {
	Insert(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	UpdateBalance(ctx context.Context, userID string, balance float64) error
}

// GormUserStore implements UserStore on top of GORM
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore creates a GORM-backed user store
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

// Insert persists a new user record
func (s *GormUserStore) Insert(ctx context.Context, u *domain.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// FindByID returns the user with the given id
func (s *GormUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByName returns the user with the given unique name
func (s *GormUserStore) FindByName(ctx context.Context, name string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateBalance writes the cached balance for userID.
// The user is loaded first: MySQL reports zero affected rows when the
// balance is unchanged, so RowsAffected cannot signal a missing user here.
func (s *GormUserStore) UpdateBalance(ctx context.Context, userID string, balance float64) error {
	u, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(u).Update("balance", balance).Error
}
