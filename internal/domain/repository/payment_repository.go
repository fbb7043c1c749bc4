package repository

import (
	"context"
	"time"

	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/google/uuid"
)

// PaymentRepository provides access to the local payment ledger.
//
// Status transitions are conditional updates guarded on the current
// status being PENDING; the boolean result reports whether the row
// actually moved. A false result on a Mark* call means the payment was
// already in a terminal state and no side effect should follow.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByPixupID(ctx context.Context, pixupID string) (*model.Payment, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]model.Payment, error)

	// MarkCompleted transitions PENDING -> COMPLETED and stamps paid_at.
	MarkCompleted(ctx context.Context, pixupID string, paidAt time.Time) (bool, error)

	// MarkFailed transitions PENDING -> FAILED.
	MarkFailed(ctx context.Context, pixupID string) (bool, error)

	// MarkCancelled transitions PENDING -> CANCELLED.
	MarkCancelled(ctx context.Context, pixupID string) (bool, error)

	// ExpireIfOverdue transitions PENDING -> FAILED when the expiry
	// timestamp is in the past. Used by check-on-read.
	ExpireIfOverdue(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	// GetCompletedForReading finds a COMPLETED single-reading payment
	// bound to the given reading, if any.
	GetCompletedForReading(ctx context.Context, userID, readingID uuid.UUID) (*model.Payment, error)
}
