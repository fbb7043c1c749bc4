package repository

import (
	"context"

	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/google/uuid"
)

// UserRepository provides access to account records
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *model.User) error
}
