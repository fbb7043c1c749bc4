package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the ledger state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Scan implements sql.Scanner interface
func (s *PaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		*s = PaymentStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// IsTerminal reports whether no further status transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// PaymentType represents the purchased product kind
type PaymentType string

const (
	PaymentTypeSingleReading PaymentType = "SINGLE_READING"
	PaymentTypeSubscription  PaymentType = "SUBSCRIPTION"
)

// Scan implements sql.Scanner interface
func (t *PaymentType) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*t = PaymentType(v)
	case []byte:
		*t = PaymentType(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (t PaymentType) Value() (driver.Value, error) {
	return string(t), nil
}

// Payment is the local ledger record for one gateway transaction.
// Amount and currency are immutable after creation; status only moves
// forward out of PENDING.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	AmountCents int             `gorm:"not null" json:"amount_cents"`
	Currency    string          `gorm:"size:3;not null;default:'BRL'" json:"currency"`
	Status      PaymentStatus   `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Type        PaymentType     `gorm:"size:20;not null" json:"type"`
	PixupID     *string         `gorm:"unique;size:100" json:"pixup_id,omitempty"`
	QRCode      string          `gorm:"type:text" json:"qr_code,omitempty"`
	QRString    string          `gorm:"type:text" json:"qr_string,omitempty"`
	ReadingID   *uuid.UUID      `gorm:"type:uuid;index" json:"reading_id,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
