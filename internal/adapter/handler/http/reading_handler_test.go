package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adapterRepo "github.com/astrotarothub/backend/internal/adapter/repository"
	"github.com/astrotarothub/backend/internal/domain/model"
	interpreterInfra "github.com/astrotarothub/backend/internal/infrastructure/interpreter"
	"github.com/astrotarothub/backend/internal/testutil"
	"github.com/astrotarothub/backend/internal/usecase"
)

func setupReadingHandler(t *testing.T) (*ReadingHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	logger := zap.NewNop()
	subscriptionRepo := adapterRepo.NewSubscriptionRepository(db, logger)
	readings := usecase.NewReadingService(
		adapterRepo.NewReadingRepository(db, logger),
		adapterRepo.NewPaymentRepository(db, logger),
		usecase.NewEntitlementService(subscriptionRepo, logger),
		interpreterInfra.NewFixture(),
		logger,
	)
	return NewReadingHandler(readings, logger), db
}

func TestReadingHandler_CreateReading(t *testing.T) {
	handler, db := setupReadingHandler(t)

	user := testutil.TestUser(t, db)

	e := newTestEcho()
	body := `{"spreadType":"three_card","cards":[{"cardName":"A Estrela","positionName":"Futuro","upright":true}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setAuthUser(c, user.ID, user.Email)

	require.NoError(t, handler.CreateReading(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "A Estrela")
}

func TestReadingHandler_CreateReading_NoCards(t *testing.T) {
	handler, db := setupReadingHandler(t)

	user := testutil.TestUser(t, db)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readings", strings.NewReader(`{"spreadType":"three_card","cards":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setAuthUser(c, user.ID, user.Email)

	require.NoError(t, handler.CreateReading(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestReadingHandler_UnlockReading_NoCredits(t *testing.T) {
	handler, db := setupReadingHandler(t)

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID)
	reading := testutil.TestReading(t, db, user.ID)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/readings/:id/unlock")
	c.SetParamNames("id")
	c.SetParamValues(reading.ID.String())
	setAuthUser(c, user.ID, user.Email)

	require.NoError(t, handler.UnlockReading(c))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "PAYMENT_REQUIRED")
}

func TestReadingHandler_UnlockReading_WithCredit(t *testing.T) {
	handler, db := setupReadingHandler(t)

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID, func(s *model.Subscription) {
		s.ReadingsLeft = 1
	})
	reading := testutil.TestReading(t, db, user.ID)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/readings/:id/unlock")
	c.SetParamNames("id")
	c.SetParamValues(reading.ID.String())
	setAuthUser(c, user.ID, user.Email)

	require.NoError(t, handler.UnlockReading(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "interpretation")
}

func TestReadingHandler_UnlockReading_NotOwned(t *testing.T) {
	handler, db := setupReadingHandler(t)

	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, stranger.ID)
	reading := testutil.TestReading(t, db, owner.ID)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/readings/:id/unlock")
	c.SetParamNames("id")
	c.SetParamValues(reading.ID.String())
	setAuthUser(c, stranger.ID, stranger.Email)

	require.NoError(t, handler.UnlockReading(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "READING_NOT_FOUND")
}
