package middleware

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"inventory/internal/logger"
	"inventory/internal/models"
)

// APIKeyHeader carries the shared secret for test-only endpoints.
const APIKeyHeader = "X-API-Key"

// APIKeyGuard protects routes with a static shared secret. Only a bcrypt hash of the
// secret is kept in memory.
type APIKeyGuard struct {
	hash []byte
}

// NewAPIKeyGuard hashes secret. An empty secret yields a guard that rejects every request.
func NewAPIKeyGuard(secret string) (*APIKeyGuard, error) {
	if secret == "" {
		return &APIKeyGuard{}, nil
	}
	hash, err := bcrypt.GenerateFromPassword(digest(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &APIKeyGuard{hash: hash}, nil
}

// bcrypt only reads 72 bytes, so long secrets are digested first.
func digest(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return []byte(hex.EncodeToString(sum[:]))
}

// Enabled reports whether a secret was configured.
func (g *APIKeyGuard) Enabled() bool {
	return len(g.hash) > 0
}

// Handler rejects the request with an UnauthorizedError unless X-API-Key matches the secret.
func (g *APIKeyGuard) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(APIKeyHeader)
		if !g.Enabled() || key == "" {
			return models.NewUnauthorizedError("Unauthorized")
		}
		if err := bcrypt.CompareHashAndPassword(g.hash, digest(key)); err != nil {
			logger.FromContext(c.UserContext()).Warn("Rejected API key", zap.String("path", c.Path()))
			return models.NewUnauthorizedError("Unauthorized")
		}
		return c.Next()
	}
}
