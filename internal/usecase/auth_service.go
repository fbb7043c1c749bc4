package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/domain/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

// RegisterRequest is the validated registration payload.
type RegisterRequest struct {
	Email         string
	Password      string
	Name          string
	BirthDate     *time.Time
	BirthTime     string
	BirthLocation string
}

// AuthService handles registration, login and token issuance.
type AuthService struct {
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository
	jwtSecret        []byte
	logger           *zap.Logger
	now              func() time.Time
}

// NewAuthService creates a new auth service instance
func NewAuthService(
	userRepo repository.UserRepository,
	subscriptionRepo repository.SubscriptionRepository,
	jwtSecret string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		jwtSecret:        []byte(jwtSecret),
		logger:           logger,
		now:              time.Now,
	}
}

// Register creates the account plus its FREE subscription row and
// returns a signed token.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*model.User, string, error) {
	taken, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", domainErrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:         req.Email,
		PasswordHash:  string(hash),
		Name:          req.Name,
		BirthDate:     req.BirthDate,
		BirthTime:     req.BirthTime,
		BirthLocation: req.BirthLocation,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	sub := &model.Subscription{
		UserID:    user.ID,
		Plan:      model.PlanFree,
		Status:    model.SubscriptionStatusActive,
		StartDate: s.now(),
	}
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, "", err
	}
	user.Subscription = sub

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return user, token, nil
}

// Login verifies the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
