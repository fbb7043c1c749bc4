package model

import (
	"time"

	"github.com/google/uuid"
)

// TarotReading is a stored card draw. The free draw records the cards
// only; Interpretation is filled in when the premium unlock runs.
type TarotReading struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SpreadType     string     `gorm:"size:50;not null" json:"spread_type"`
	Cards          JSONB      `gorm:"type:jsonb;not null" json:"cards"`
	Interpretation *string    `gorm:"type:text" json:"interpretation,omitempty"`
	IsPremium      bool       `gorm:"not null;default:false" json:"is_premium"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	UnlockedAt     *time.Time `json:"unlocked_at,omitempty"`
}

// TableName specifies the table name for GORM
func (TarotReading) TableName() string {
	return "tarot_readings"
}
