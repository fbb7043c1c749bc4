package model

import (
	"fmt"
	"time"
)

// WebhookEvent is the processed-event ledger for gateway callbacks.
// The unique EventKey makes replayed deliveries visible as a duplicate
// key violation before any side effect is applied.
type WebhookEvent struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventKey   string    `gorm:"unique;not null;size:200" json:"event_key"`
	EventType  string    `gorm:"not null;size:100;index" json:"event_type"`
	GatewayID  string    `gorm:"not null;size:100;index" json:"gateway_id"`
	Payload    JSONB     `gorm:"type:jsonb" json:"payload,omitempty"`
	ReceivedAt time.Time `gorm:"autoCreateTime" json:"received_at"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// EventKey builds the idempotency key for a gateway delivery.
func EventKey(eventType, gatewayID string) string {
	return fmt.Sprintf("%s:%s", eventType, gatewayID)
}
