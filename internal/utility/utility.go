package utility

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Echo context keys set by the server middleware.
const (
	ContextKeyLogger    = "logger"
	ContextKeyRequestID = "request_id"
	ContextKeySessionID = "session_id"
)

type prefersDarkKey struct{}

// GetRealIP returns the client address as resolved by the router's
// IPExtractor, which only honours proxy headers from trusted hops.
func GetRealIP(c echo.Context) string {
	return c.RealIP()
}

// GetSessionIDFromContext safely retrieves the session id from Echo context
func GetSessionIDFromContext(c echo.Context) (string, error) {
	sessionID, ok := c.Get(ContextKeySessionID).(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("session ID not found in context")
	}
	return sessionID, nil
}

// GetLogger returns the request-scoped logger, or the global one outside a request.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(ContextKeyLogger).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

// WithPrefersDark records the client's color-scheme hint on ctx.
func WithPrefersDark(ctx context.Context, dark bool) context.Context {
	return context.WithValue(ctx, prefersDarkKey{}, dark)
}

// PrefersDark reads the hint stored by WithPrefersDark. It is false when absent.
func PrefersDark(ctx context.Context) bool {
	dark, _ := ctx.Value(prefersDarkKey{}).(bool)
	return dark
}

func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
