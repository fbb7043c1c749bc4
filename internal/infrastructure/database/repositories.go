package database

import (
	"github.com/astrotarothub/backend/internal/adapter/repository"
	domainRepo "github.com/astrotarothub/backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         domainRepo.UserRepository
	Subscription domainRepo.SubscriptionRepository
	Payment      domainRepo.PaymentRepository
	WebhookEvent domainRepo.WebhookEventRepository
	Reading      domainRepo.ReadingRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db, logger),
		Subscription: repository.NewSubscriptionRepository(db, logger),
		Payment:      repository.NewPaymentRepository(db, logger),
		WebhookEvent: repository.NewWebhookEventRepository(db, logger),
		Reading:      repository.NewReadingRepository(db, logger),
	}
}
