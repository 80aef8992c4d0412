package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"techshop/internal/config"
	"techshop/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func testLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

func mustMakeJWT(t *testing.T, secret string, claims jwt.MapClaims, signingMethod jwt.SigningMethod) string {
	t.Helper()

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(sub interface{}, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  1,
		"exp":  9999999999,
	}
}

func newProtectedEcho(cfg config.Config, guards ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	mws := append([]echo.MiddlewareFunc{middleware.AuthJWT(cfg, testLogger())}, guards...)
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, mwOKResponse{
			UserID: c.Get(middleware.CtxUserIDKey).(string),
			Role:   c.Get(middleware.CtxUserRoleKey).(string),
		})
	}, mws...)
	return e
}

func runRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_Unauthorized(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	tests := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"no header", func(t *testing.T) string { return "" }},
		{"bad scheme", func(t *testing.T) string { return "Token abc.def.ghi" }},
		{"empty token", func(t *testing.T) string { return "Bearer   " }},
		{"bad signature", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, "wrong-secret", validClaims("u1", "USER"), jwt.SigningMethodHS256)
		}},
		{"wrong alg", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, cfg.JWTSecret, validClaims("u1", "USER"), jwt.SigningMethodHS512)
		}},
		{"expired", func(t *testing.T) string {
			c := validClaims("u1", "USER")
			c["exp"] = 2
			return "Bearer " + mustMakeJWT(t, cfg.JWTSecret, c, jwt.SigningMethodHS256)
		}},
		{"numeric sub", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, cfg.JWTSecret, validClaims(123, "USER"), jwt.SigningMethodHS256)
		}},
		{"missing role", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, cfg.JWTSecret, validClaims("u1", ""), jwt.SigningMethodHS256)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runRequest(newProtectedEcho(cfg), tt.header(t))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body mwErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "unauthorized", body.Error)
		})
	}
}

// 正常：ctxに値が入る
func TestAuthJWT_Success_SetsContext(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	raw := mustMakeJWT(t, cfg.JWTSecret, validClaims("7b0d6d1e-user", "USER"), jwt.SigningMethodHS256)

	rec := runRequest(newProtectedEcho(cfg), "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "7b0d6d1e-user", body.UserID)
	assert.Equal(t, "USER", body.Role)
}

func TestAdminRoleGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newProtectedEcho(cfg, middleware.AdminRoleGuard())

	user := mustMakeJWT(t, cfg.JWTSecret, validClaims("u1", middleware.RoleUser), jwt.SigningMethodHS256)
	rec := runRequest(e, "Bearer "+user)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := mustMakeJWT(t, cfg.JWTSecret, validClaims("a1", middleware.RoleAdmin), jwt.SigningMethodHS256)
	rec = runRequest(e, "Bearer "+admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}
