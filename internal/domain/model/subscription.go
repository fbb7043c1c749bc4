package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// Plan represents the billing plan an account is on
type Plan string

const (
	PlanFree           Plan = "FREE"
	PlanSingleCredit   Plan = "SINGLE_CREDIT"
	PlanPremiumMonthly Plan = "PREMIUM_MONTHLY"
)

// Scan implements sql.Scanner interface
func (p *Plan) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*p = Plan(v)
	case []byte:
		*p = Plan(v)
	default:
		*p = PlanFree
	}
	return nil
}

// Value implements driver.Valuer interface
func (p Plan) Value() (driver.Value, error) {
	return string(p), nil
}

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Scan implements sql.Scanner interface
func (s *SubscriptionStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = SubscriptionStatus(v)
	case []byte:
		*s = SubscriptionStatus(v)
	default:
		*s = SubscriptionStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s SubscriptionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Subscription mirrors the gateway-side subscription onto the account:
// only plan, status, billing end date and the remaining single-use credits
// live here. Billing itself is owned by the gateway.
type Subscription struct {
	ID                  uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID          `gorm:"type:uuid;unique;not null" json:"user_id"`
	Plan                Plan               `gorm:"size:50;not null;default:'FREE'" json:"plan"`
	Status              SubscriptionStatus `gorm:"size:50;not null;default:'active'" json:"status"`
	StartDate           time.Time          `gorm:"not null" json:"start_date"`
	EndDate             *time.Time         `json:"end_date,omitempty"`
	ReadingsLeft        int                `gorm:"not null;default:0" json:"readings_left"`
	PixupCustomerID     *string            `gorm:"size:100" json:"pixup_customer_id,omitempty"`
	PixupSubscriptionID *string            `gorm:"unique;size:100" json:"pixup_subscription_id,omitempty"`
	AutoRenew           bool               `gorm:"not null;default:false" json:"auto_renew"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
