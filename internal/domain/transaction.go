package domain

import (
	"time"

	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// TransactionType classifies a transaction record
type TransactionType string

// Recognized transaction types
const (
	TypeTransfer TransactionType = "transfer"
	TypePayment  TransactionType = "payment"
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
)

// Valid reports whether t is a recognized transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TypeTransfer, TypePayment, TypeIncome, TypeExpense:
		return true
	}
	return false
}

// TransactionStatus tracks the processing state of a transaction
type TransactionStatus string

// Recognized transaction statuses
const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
)

// Valid reports whether s is a recognized transaction status
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Transaction Model
type Transaction struct {
	ID        string            `gorm:"primaryKey;type:char(36)" json:"id"`             // Primary key (UUID)
	Name      string            `gorm:"size:200;not null" json:"name"`                  // Transaction name
	Type      TransactionType   `gorm:"size:20;not null" json:"type"`                   // Transaction type
	Amount    float64           `gorm:"not null" json:"amount"`                         // Amount of the transaction
	Status    TransactionStatus `gorm:"size:20;not null;default:pending" json:"status"` // Processing status
	UserID    string            `gorm:"type:char(36);index;not null" json:"userId"`     // Foreign key to the owning User
	CreatedAt time.Time         `json:"createdAt"`                                      // Timestamp of creation
	UpdatedAt time.Time         `json:"updatedAt"`                                      // Timestamp of the last update
}

// BeforeCreate assigns a UUID primary key when none is set
func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
