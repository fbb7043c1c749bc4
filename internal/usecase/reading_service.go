package usecase

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/astrotarothub/backend/internal/domain/errors"
	"github.com/astrotarothub/backend/internal/domain/interpreter"
	"github.com/astrotarothub/backend/internal/domain/model"
	"github.com/astrotarothub/backend/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadingService stores tarot draws and runs the premium unlock.
type ReadingService struct {
	readingRepo repository.ReadingRepository
	paymentRepo repository.PaymentRepository
	entitlement *EntitlementService
	interpreter interpreter.Interpreter
	logger      *zap.Logger
	now         func() time.Time
}

// NewReadingService creates a new reading service instance
func NewReadingService(
	readingRepo repository.ReadingRepository,
	paymentRepo repository.PaymentRepository,
	entitlement *EntitlementService,
	interp interpreter.Interpreter,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		readingRepo: readingRepo,
		paymentRepo: paymentRepo,
		entitlement: entitlement,
		interpreter: interp,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateReading stores a free draw. The cards are client-drawn; only the
// premium interpretation is server-gated.
func (s *ReadingService) CreateReading(ctx context.Context, userID uuid.UUID, spreadType string, cards model.JSONB) (*model.TarotReading, error) {
	reading := &model.TarotReading{
		UserID:     userID,
		SpreadType: spreadType,
		Cards:      cards,
	}
	if err := s.readingRepo.Create(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// ListReadings returns the account's readings, newest first.
func (s *ReadingService) ListReadings(ctx context.Context, userID uuid.UUID) ([]model.TarotReading, error) {
	return s.readingRepo.ListByUserID(ctx, userID, 20)
}

// UnlockReading generates and stores the premium interpretation.
//
// An already-unlocked reading returns its stored text without spending
// anything. A payment bound to this exact reading also passes without
// touching the credit balance; otherwise one entitlement credit is
// spent (or the unlimited plan waves it through).
func (s *ReadingService) UnlockReading(ctx context.Context, userID, readingID uuid.UUID) (string, error) {
	reading, err := s.readingRepo.GetByID(ctx, readingID)
	if err != nil {
		return "", err
	}
	if reading.UserID != userID {
		return "", domainErrors.ErrReadingNotFound
	}

	if reading.IsPremium && reading.Interpretation != nil {
		return *reading.Interpretation, nil
	}

	paidForReading := false
	if _, err := s.paymentRepo.GetCompletedForReading(ctx, userID, readingID); err == nil {
		paidForReading = true
	} else if !errors.Is(err, domainErrors.ErrPaymentNotFound) {
		return "", err
	}

	if !paidForReading {
		if err := s.entitlement.SpendForPremiumAction(ctx, userID); err != nil {
			return "", err
		}
	}

	cards := parseCards(reading.Cards)
	text, err := s.interpreter.InterpretReading(ctx, reading.SpreadType, cards)
	if err != nil {
		return "", err
	}

	if err := s.readingRepo.SaveInterpretation(ctx, reading.ID, text, s.now()); err != nil {
		return "", err
	}

	s.logger.Info("reading unlocked",
		zap.String("reading_id", reading.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("paid_for_reading", paidForReading))

	return text, nil
}

// parseCards converts the stored JSONB card list into interpreter cards.
func parseCards(raw model.JSONB) []interpreter.Card {
	items, ok := raw["cards"].([]interface{})
	if !ok {
		return nil
	}

	cards := make([]interpreter.Card, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		card := interpreter.Card{}
		if v, ok := entry["cardName"].(string); ok {
			card.Name = v
		}
		if v, ok := entry["positionName"].(string); ok {
			card.Position = v
		}
		if v, ok := entry["upright"].(bool); ok {
			card.Upright = v
		}
		if kws, ok := entry["keywords"].([]interface{}); ok {
			for _, kw := range kws {
				if s, ok := kw.(string); ok {
					card.Keywords = append(card.Keywords, s)
				}
			}
		}
		cards = append(cards, card)
	}
	return cards
}
