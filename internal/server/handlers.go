package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"PalavraCerta/internal/notify"
	"PalavraCerta/internal/palavra"
	"PalavraCerta/internal/plan"
	"PalavraCerta/internal/utility"
	"github.com/labstack/echo/v4"
)

const speechContentType = "audio/L16;rate=24000"

type searchRequest struct {
	Feeling string `json:"feeling"`
}

type planRequest struct {
	Plan string `json:"plan"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type prayerRequest struct {
	Feeling string         `json:"feeling"`
	Verse   *palavra.Verse `json:"verse"`
}

type speechRequest struct {
	Text string `json:"text"`
}

type shareRequest struct {
	Verse      palavra.Verse `json:"verse"`
	Devotional bool          `json:"devotional"`
}

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error   string        `json:"error"`
	Toast   *notify.Toast `json:"toast,omitempty"`
	Upgrade bool          `json:"upgrade,omitempty"`
	Limit   *plan.Limit   `json:"limit,omitempty"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// respondError maps a controller error to a status code and body.
func respondError(c echo.Context, err error) error {
	t := palavra.ToastFor(err)
	body := errorResponse{Error: err.Error(), Toast: &t}

	var qe *palavra.QuotaError
	switch {
	case errors.As(err, &qe):
		body.Upgrade = true
		body.Limit = &qe.Limit
		return c.JSON(http.StatusTooManyRequests, body)
	case errors.Is(err, palavra.ErrEmptyFeeling),
		errors.Is(err, palavra.ErrEmptyText),
		errors.Is(err, palavra.ErrInvalidTheme),
		errors.Is(err, plan.ErrInvalidPlan):
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, palavra.ErrProviderUnavailable):
		return c.JSON(http.StatusServiceUnavailable, body)
	default:
		utility.GetLogger(c).Error().Err(err).Msg("Unhandled error")
		return c.JSON(http.StatusInternalServerError, body)
	}
}

func sessionID(c echo.Context) string {
	id, _ := utility.GetSessionIDFromContext(c)
	return id
}

func (s *Server) plansHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"plans": plan.Catalog()})
}

func (s *Server) pagesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"pages":   palavra.Pages(),
		"default": palavra.DefaultPage,
	})
}

func (s *Server) suggestionsHandler(c echo.Context) error {
	n := palavra.DefaultSuggestionCount
	if raw := c.QueryParam("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "count must be a number")
		}
		n = v
	}
	return c.JSON(http.StatusOK, map[string]any{"suggestions": palavra.Suggestions(n)})
}

func (s *Server) stateHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.ctrl.Snapshot(c.Request().Context(), sessionID(c)))
}

func (s *Server) changePlanHandler(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := plan.Parse(req.Plan)
	if err != nil {
		return respondError(c, err)
	}

	out, err := s.ctrl.ChangePlan(c.Request().Context(), sessionID(c), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) changeThemeHandler(c echo.Context) error {
	var req themeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := palavra.ParseTheme(req.Theme)
	if err != nil {
		return respondError(c, err)
	}

	out, err := s.ctrl.ChangeTheme(c.Request().Context(), sessionID(c), t)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) searchHandler(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := s.ctrl.RequestSearch(c.Request().Context(), sessionID(c), req.Feeling)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) clearHistoryHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.ctrl.ClearHistory(c.Request().Context(), sessionID(c)))
}

func (s *Server) listVersesHandler(c echo.Context) error {
	snap := s.ctrl.Snapshot(c.Request().Context(), sessionID(c))
	return c.JSON(http.StatusOK, map[string]any{
		"savedVerses": snap.SavedVerses,
		"maxSaved":    snap.Limits.MaxSaved,
	})
}

func (s *Server) saveVerseHandler(c echo.Context) error {
	var v palavra.Verse
	if err := c.Bind(&v); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(v.Reference) == "" || strings.TrimSpace(v.Text) == "" {
		return badRequest(c, "verse and text are required")
	}

	out, err := s.ctrl.SaveVerse(c.Request().Context(), sessionID(c), v)
	if errors.Is(err, palavra.ErrAlreadySaved) {
		t := palavra.ToastFor(err)
		out.Toast = &t
		return c.JSON(http.StatusOK, out)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) deleteVerseHandler(c echo.Context) error {
	ref := c.Param("reference")
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	return c.JSON(http.StatusOK, s.ctrl.DeleteVerse(c.Request().Context(), sessionID(c), ref))
}

func (s *Server) devotionalHandler(c echo.Context) error {
	v, err := s.ctrl.DailyDevotional(c.Request().Context(), sessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"devotional": v})
}

func (s *Server) prayerHandler(c echo.Context) error {
	var req prayerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Verse == nil || strings.TrimSpace(req.Verse.Reference) == "" {
		return badRequest(c, "verse is required")
	}

	prayer := s.ctrl.Prayer(c.Request().Context(), req.Feeling, *req.Verse)
	return c.JSON(http.StatusOK, map[string]string{"prayer": prayer})
}

func (s *Server) speechHandler(c echo.Context) error {
	var req speechRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	audio, ok, err := s.ctrl.Speech(c.Request().Context(), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Blob(http.StatusOK, speechContentType, audio)
}

func (s *Server) shareHandler(c echo.Context) error {
	var req shareRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Verse.Reference) == "" {
		return badRequest(c, "verse is required")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"title": palavra.ShareTitle(req.Verse, req.Devotional),
		"text":  palavra.ShareText(req.Verse, req.Devotional),
	})
}

func (s *Server) notificationSocketHandler(c echo.Context) error {
	id := sessionID(c)
	if err := s.hub.Serve(c.Response(), c.Request(), id); err != nil {
		utility.GetLogger(c).Warn().Err(err).Msg("WebSocket upgrade failed")
	}
	return nil
}
