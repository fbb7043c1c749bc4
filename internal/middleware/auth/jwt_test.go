package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runMiddleware(t *testing.T, cfg JWTConfig, path, authHeader string) (*httptest.ResponseRecorder, *AuthUser) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *AuthUser
	handler := JWTMiddleware(cfg)(func(c echo.Context) error {
		captured, _ = UserFromContext(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, captured
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   userID.String(),
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	cfg := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}
	rec, user := runMiddleware(t, cfg, "/api/v1/payments", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.UserID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}
	rec, _ := runMiddleware(t, cfg, "/api/v1/payments", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_AUTH_HEADER")
}

func TestJWTMiddleware_NotBearer(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}
	rec, _ := runMiddleware(t, cfg, "/api/v1/payments", "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, "some-other-secret", jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cfg := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}
	rec, _ := runMiddleware(t, cfg, "/api/v1/payments", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	cfg := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}
	rec, _ := runMiddleware(t, cfg, "/api/v1/payments", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_InvalidSubject(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cfg := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}
	rec, _ := runMiddleware(t, cfg, "/api/v1/payments", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_SkipPaths(t *testing.T) {
	cfg := JWTConfig{
		Secret:    testSecret,
		Logger:    zap.NewNop(),
		SkipPaths: []string{"/health", "/webhook"},
	}

	rec, user := runMiddleware(t, cfg, "/webhook/pixup", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/entitlement", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_, err := RequireAuth(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")

	// With the middleware's user in context it passes straight through.
	c2 := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/entitlement", nil), httptest.NewRecorder())
	expected := &AuthUser{UserID: uuid.New(), Email: "u@example.com"}
	c2.Set(userContextKey, expected)

	user, err := RequireAuth(c2)
	require.NoError(t, err)
	assert.Equal(t, expected, user)
}
