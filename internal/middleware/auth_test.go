package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"packtrail/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func fiberApp(t *testing.T) *fiber.App {
	t.Helper()
	return fiber.New()
}

func okHandler(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func validClaims(userID uint, exp time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"jti": uuid.NewString(),
		"exp": time.Now().Add(exp).Unix(),
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantID  uint
		wantErr bool
	}{
		{
			name:   "valid token",
			claims: validClaims(42, time.Hour),
			wantID: 42,
		},
		{
			name:    "expired token",
			claims:  validClaims(42, -time.Hour),
			wantErr: true,
		},
		{
			name: "wrong issuer",
			claims: jwt.MapClaims{
				"sub": "42", "iss": "someone-else", "aud": TokenAudience,
				"exp": time.Now().Add(time.Hour).Unix(),
			},
			wantErr: true,
		},
		{
			name: "wrong audience",
			claims: jwt.MapClaims{
				"sub": "42", "iss": TokenIssuer, "aud": "someone-else",
				"exp": time.Now().Add(time.Hour).Unix(),
			},
			wantErr: true,
		},
		{
			name: "non-numeric subject",
			claims: jwt.MapClaims{
				"sub": "not-a-number", "iss": TokenIssuer, "aud": TokenAudience,
				"exp": time.Now().Add(time.Hour).Unix(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tc, err := ParseToken(signToken(t, tt.claims), testSecret)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, tc.UserID)
			assert.NotEmpty(t, tc.JTI)
		})
	}

	t.Run("garbage token", func(t *testing.T) {
		_, err := ParseToken("not.a.token", testSecret)
		assert.Error(t, err)
	})
}

func TestAuthRequired(t *testing.T) {
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiberApp(t)
	app.Get("/protected", AuthRequired(nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid bearer token",
			authHeader: "Bearer " + signToken(t, validClaims(7, time.Hour)),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed token",
			authHeader: "Bearer malformed.token.here",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + signToken(t, validClaims(7, -time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiberApp(t)
	app.Post("/graphql", Authenticate(nil), func(c *fiber.Ctx) error {
		if uid := c.Locals("userID"); uid != nil {
			return c.JSON(fiber.Map{"userID": uid})
		}
		return c.JSON(fiber.Map{"userID": nil})
	})

	t.Run("anonymous request passes through", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/graphql", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(9, time.Hour)))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid token is rejected rather than treated as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
