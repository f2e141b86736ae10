// Package middleware provides authentication, logging, rate limiting and
// tracing middleware for the HTTP layer.
package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"packtrail/internal/config"
	"packtrail/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenIssuer is the "iss" claim stamped on every access token.
	TokenIssuer = "packtrail-api"
	// TokenAudience is the "aud" claim stamped on every access token.
	TokenAudience = "packtrail-client"
	// TokenTTL is how long an access token stays valid.
	TokenTTL = 72 * time.Hour

	blacklistPrefix = "blacklist:"
)

var cfg *config.Config

// InitMiddleware wires the loaded configuration into the middleware package.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// TokenClaims is the subset of JWT claims the rest of the application cares about.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// ParseToken validates the signature, issuer and audience of an access token
// and extracts the identity claims. Revocation is checked separately so callers
// without a Redis connection can still authenticate.
func ParseToken(tokenString, secret string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewNotAuthenticatedError()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewNotAuthenticatedError()
	}

	if iss, issOk := claims["iss"].(string); !issOk || iss != TokenIssuer {
		return nil, models.NewNotAuthenticatedError()
	}
	if aud, audOk := claims["aud"].(string); !audOk || aud != TokenAudience {
		return nil, models.NewNotAuthenticatedError()
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewNotAuthenticatedError()
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewNotAuthenticatedError()
	}

	tc := &TokenClaims{UserID: uint(userID)}
	if jti, jtiOk := claims["jti"].(string); jtiOk {
		tc.JTI = jti
	}
	if exp, expOk := claims["exp"].(float64); expOk {
		tc.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return tc, nil
}

// IsRevoked reports whether the token's jti is on the Redis blacklist.
// A nil client or a Redis error counts as not revoked so a cache outage
// does not lock every user out.
func IsRevoked(ctx context.Context, rdb *redis.Client, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, blacklistPrefix+jti).Result()
	return err == nil && n > 0
}

// Revoke blacklists a token's jti until its natural expiry.
func Revoke(ctx context.Context, rdb *redis.Client, jti string, expiresAt time.Time) error {
	if rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setIdentity(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	// Sync to UserContext so the context-aware logger and services see it.
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

// Authenticate extracts the caller's identity from a bearer token when one is
// present and valid, and otherwise lets the request through anonymously. The
// GraphQL endpoint uses this: field-level access rules decide later whether an
// anonymous caller is acceptable.
func Authenticate(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}
		tc, err := ParseToken(token, cfg.JWTSecret)
		if err != nil {
			// A malformed credential is worse than no credential.
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if IsRevoked(c.Context(), rdb, tc.JTI) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError())
		}
		setIdentity(c, tc.UserID)
		return c.Next()
	}
}

// AuthRequired rejects any request that does not carry a valid, unrevoked
// bearer token. Used on routes outside GraphQL, such as uploads and websocket
// ticket issuance.
func AuthRequired(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError())
		}
		tc, err := ParseToken(token, cfg.JWTSecret)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if IsRevoked(c.Context(), rdb, tc.JTI) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError())
		}
		setIdentity(c, tc.UserID)
		return c.Next()
	}
}
