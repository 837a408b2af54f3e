package server

import (
	"net/http"
	"strings"
	"time"

	"PalavraCerta/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	sessionCookieName = "palavra_session"
	sessionHeader     = "X-Session-ID"
	colorSchemeHint   = "Sec-CH-Prefers-Color-Scheme"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	// Forwarding headers count only when the hop that set them is a trusted
	// (loopback, link-local or private) proxy.
	e.IPExtractor = echo.ExtractIPFromXFFHeader()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", sessionHeader, colorSchemeHint, "X-Request-ID"},
		ExposeHeaders:    []string{sessionHeader, "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/health", s.healthHandler)

	// Notification stream
	e.GET("/ws", s.notificationSocketHandler, s.SessionMiddleware)

	api := e.Group("/api", s.rateLimiter(), s.SessionMiddleware, AmbientMiddleware)

	// Catalog & navigation
	api.GET("/plans", s.plansHandler)
	api.GET("/pages", s.pagesHandler)
	api.GET("/suggestions", s.suggestionsHandler)

	// Session state
	api.GET("/state", s.stateHandler)
	api.PUT("/plan", s.changePlanHandler)
	api.PUT("/theme", s.changeThemeHandler)

	// Search
	api.POST("/search", s.searchHandler)
	api.DELETE("/history", s.clearHistoryHandler)

	// Saved verses
	api.GET("/verses", s.listVersesHandler)
	api.POST("/verses", s.saveVerseHandler)
	api.DELETE("/verses/:reference", s.deleteVerseHandler)

	// Devotional, prayer, speech & sharing
	api.GET("/devotional", s.devotionalHandler)
	api.POST("/prayer", s.prayerHandler)
	api.POST("/speech", s.speechHandler)
	api.POST("/share", s.shareHandler)

	return e
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(utility.ContextKeyRequestID, requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set(utility.ContextKeyLogger, &logger)

		return next(c)
	}
}

// SessionMiddleware resolves the caller's session id from the X-Session-ID
// header or the signed session cookie, minting a new one when neither is present.
func (s *Server) SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Request().Header.Get(sessionHeader))
		if id != "" {
			if _, err := uuid.Parse(id); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session id"})
			}
		} else if s.sessions != nil {
			sess, err := s.sessions.Get(c.Request(), sessionCookieName)
			if err != nil {
				utility.GetLogger(c).Warn().Err(err).Msg("Discarding unreadable session cookie")
			}
			if v, ok := sess.Values["id"].(string); ok && v != "" {
				id = v
			} else {
				id = uuid.New().String()
				sess.Values["id"] = id
				if err := sess.Save(c.Request(), c.Response()); err != nil {
					utility.GetLogger(c).Error().Err(err).Msg("Failed to save session cookie")
				}
			}
		}
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(utility.ContextKeySessionID, id)
		c.Response().Header().Set(sessionHeader, id)

		logger := utility.GetLogger(c).With().Str("session_id", id).Logger()
		c.Set(utility.ContextKeyLogger, &logger)

		return next(c)
	}
}

// AmbientMiddleware reads the client's preferred color scheme hint into the
// request context and asks the browser to keep sending it.
func AmbientMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Accept-CH", colorSchemeHint)
		c.Response().Header().Add("Vary", colorSchemeHint)

		hint := strings.Trim(strings.TrimSpace(c.Request().Header.Get(colorSchemeHint)), `"`)
		dark := strings.EqualFold(hint, "dark")

		req := c.Request()
		c.SetRequest(req.WithContext(utility.WithPrefersDark(req.Context(), dark)))
		return next(c)
	}
}

// rateLimiter limits each client IP on the API group.
func (s *Server) rateLimiter() echo.MiddlewareFunc {
	rps := s.rateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	burst := int(rps * 2)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return utility.GetRealIP(c), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests, please slow down"})
		},
	})
}
