package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PalavraCerta/internal/palavra"
	"PalavraCerta/internal/plan"
	"PalavraCerta/internal/store"
	"PalavraCerta/internal/utility"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) FetchVerseForFeeling(_ context.Context, feeling string, _ plan.Plan) palavra.Verse {
	return palavra.Verse{Reference: "Salmos 23:1", Text: "O Senhor é o meu pastor; nada me faltará.", Reflection: feeling}
}

func (stubProvider) FetchDailyDevotional(context.Context) palavra.Verse {
	return palavra.Verse{Reference: "Lamentações 3:22", Text: "As misericórdias do Senhor...", Reflection: "Hoje é novo."}
}

func (stubProvider) FetchPrayer(_ context.Context, feeling string, v palavra.Verse) string {
	return "Senhor, " + feeling + " (" + v.Reference + ")"
}

func (stubProvider) FetchSpeechAudio(_ context.Context, text string) ([]byte, bool) {
	if strings.Contains(text, "mudo") {
		return nil, false
	}
	return []byte{0, 1, 0, 1}, true
}

type testServer struct {
	handler http.Handler
	session string
}

func newTestServer(t *testing.T, rps float64) *testServer {
	t.Helper()
	st := store.New(store.NewMemory(), nil)
	ctrl := palavra.NewController(st, stubProvider{}, palavra.Options{
		Clock:   func() time.Time { return time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC) },
		Ambient: utility.PrefersDark,
	})
	srv := New(0, Deps{
		Controller:   ctrl,
		Store:        st,
		Sessions:     sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		RateLimitRPS: rps,
	})
	return &testServer{handler: srv.RegisterRoutes(), session: uuid.New().String()}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(sessionHeader, ts.session)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStateDefaults(t *testing.T) {
	ts := newTestServer(t, 1000)
	rec := ts.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decode[palavra.Snapshot](t, rec)
	assert.Equal(t, plan.Free, snap.Plan)
	assert.Equal(t, 5, *snap.RemainingSearches)
	assert.Equal(t, palavra.ThemeSystem, snap.Theme)
	assert.Equal(t, ts.session, rec.Header().Get(sessionHeader))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestInvalidSessionHeader(t *testing.T) {
	ts := newTestServer(t, 1000)
	ts.session = "not-a-uuid"
	rec := ts.do(t, http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCookieSessionIsMintedAndReused(t *testing.T) {
	ts := newTestServer(t, 1000)

	req := httptest.NewRequest(http.MethodPost, "/api/verses", strings.NewReader(`{"verse":"João 3:16","text":"Porque Deus amou o mundo","reflection":"r"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	minted := rec.Header().Get(sessionHeader)
	require.NotEmpty(t, minted)

	req = httptest.NewRequest(http.MethodGet, "/api/verses", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, minted, rec.Header().Get(sessionHeader))
	body := decode[struct {
		SavedVerses []palavra.SavedVerse `json:"savedVerses"`
	}](t, rec)
	assert.Len(t, body.SavedVerses, 1)
}

func TestSearchQuotaMapsTo429(t *testing.T) {
	ts := newTestServer(t, 1000)

	for i := 0; i < 5; i++ {
		rec := ts.do(t, http.MethodPost, "/api/search", `{"feeling":"Estou ansioso"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/api/search", `{"feeling":"Estou ansioso"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decode[errorResponse](t, rec)
	assert.True(t, body.Upgrade)
	require.NotNil(t, body.Limit)
	assert.Equal(t, plan.Limit(5), *body.Limit)
	require.NotNil(t, body.Toast)
	assert.Equal(t, "Você atingiu seu limite de 5 buscas diárias.", body.Toast.Message)
}

func TestReselectingFreeDoesNotRefillQuota(t *testing.T) {
	ts := newTestServer(t, 1000)
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/search", `{"feeling":"medo"}`).Code)
	}

	rec := ts.do(t, http.MethodPut, "/api/plan", `{"plan":"FREE"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[palavra.Outcome](t, rec).State.DailySearch.Count)

	rec = ts.do(t, http.MethodPost, "/api/search", `{"feeling":"medo"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSearchReturnsVerse(t *testing.T) {
	ts := newTestServer(t, 1000)
	rec := ts.do(t, http.MethodPost, "/api/search", `{"feeling":"Preciso de paz"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "response")
	assert.Contains(t, body, "state")

	var v palavra.Verse
	require.NoError(t, json.Unmarshal(body["response"], &v))
	assert.Equal(t, "Salmos 23:1", v.Reference)
}

func TestBlankSearchIsBadRequest(t *testing.T) {
	ts := newTestServer(t, 1000)
	rec := ts.do(t, http.MethodPost, "/api/search", `{"feeling":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveDuplicateAndDelete(t *testing.T) {
	ts := newTestServer(t, 1000)
	verse := `{"verse":"João 3:16","text":"Porque Deus amou o mundo","reflection":"r"}`

	rec := ts.do(t, http.MethodPost, "/api/verses", verse)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/verses", verse)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[palavra.Outcome](t, rec)
	require.NotNil(t, out.Toast)
	assert.Equal(t, "Este versículo já foi salvo.", out.Toast.Message)
	assert.Len(t, out.State.SavedVerses, 1)

	rec = ts.do(t, http.MethodDelete, "/api/verses/Jo%C3%A3o%203:16", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out = decode[palavra.Outcome](t, rec)
	assert.Empty(t, out.State.SavedVerses)
}

func TestSaveVerseRequiresFields(t *testing.T) {
	ts := newTestServer(t, 1000)
	rec := ts.do(t, http.MethodPost, "/api/verses", `{"verse":"","text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePlan(t *testing.T) {
	ts := newTestServer(t, 1000)

	rec := ts.do(t, http.MethodPut, "/api/plan", `{"plan":"gold"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/plan", `{"plan":"pro"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[palavra.Outcome](t, rec)
	assert.Equal(t, plan.Pro, out.State.Plan)
	assert.Nil(t, out.State.RemainingSearches)
	assert.True(t, out.State.Limits.MaxSaved.Unbounded())
	assert.Contains(t, rec.Body.String(), `"maxSaved":null`)
}

func TestThemeFollowsColorSchemeHint(t *testing.T) {
	ts := newTestServer(t, 1000)

	rec := ts.do(t, http.MethodGet, "/api/state", "", colorSchemeHint, `"dark"`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, palavra.PresentationDark, decode[palavra.Snapshot](t, rec).Presentation)
	assert.Equal(t, colorSchemeHint, rec.Header().Get("Accept-CH"))

	rec = ts.do(t, http.MethodPut, "/api/theme", `{"theme":"light"}`, colorSchemeHint, `"dark"`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, palavra.PresentationLight, decode[palavra.Outcome](t, rec).State.Presentation)

	rec = ts.do(t, http.MethodPut, "/api/theme", `{"theme":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryClear(t *testing.T) {
	ts := newTestServer(t, 1000)
	ts.do(t, http.MethodPost, "/api/search", `{"feeling":"Sinto-me sozinho(a)."}`)

	rec := ts.do(t, http.MethodDelete, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[palavra.Outcome](t, rec)
	assert.Empty(t, out.State.SearchHistory)
	assert.Equal(t, "Histórico de buscas limpo.", out.Toast.Message)
}

func TestDevotionalPrayerAndShare(t *testing.T) {
	ts := newTestServer(t, 1000)

	rec := ts.do(t, http.MethodGet, "/api/devotional", "")
	require.Equal(t, http.StatusOK, rec.Code)
	dev := decode[struct {
		Devotional palavra.Verse `json:"devotional"`
	}](t, rec)
	assert.Equal(t, "Lamentações 3:22", dev.Devotional.Reference)

	rec = ts.do(t, http.MethodPost, "/api/prayer", `{"verse":{"verse":"Lamentações 3:22","text":"t","reflection":"r"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Senhor, um coração grato (Lamentações 3:22)", decode[map[string]string](t, rec)["prayer"])

	rec = ts.do(t, http.MethodPost, "/api/prayer", `{"feeling":"medo"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/share", `{"verse":{"verse":"Lamentações 3:22","text":"t","reflection":"r"},"devotional":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	share := decode[map[string]string](t, rec)
	assert.Equal(t, "Palavra Certa: Devocional do Dia", share["title"])
	assert.True(t, strings.HasPrefix(share["text"], "Devocional do Dia ✨"))
	assert.True(t, strings.HasSuffix(share["text"], "Enviado por Palavra Certa"))
}

func TestSpeech(t *testing.T) {
	ts := newTestServer(t, 1000)

	rec := ts.do(t, http.MethodPost, "/api/speech", `{"text":"Deus é fiel"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, speechContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0, 1, 0, 1}, rec.Body.Bytes())

	rec = ts.do(t, http.MethodPost, "/api/speech", `{"text":"mudo"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/speech", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t, 1000)

	rec := ts.do(t, http.MethodGet, "/api/plans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	plans := decode[struct {
		Plans []plan.Offer `json:"plans"`
	}](t, rec)
	assert.Len(t, plans.Plans, 3)

	rec = ts.do(t, http.MethodGet, "/api/suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]string](t, rec)["suggestions"], palavra.DefaultSuggestionCount)

	rec = ts.do(t, http.MethodGet, "/api/suggestions?count=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/pages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"default":"home"`)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 1000)
	rec := ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "up", body["store"].(map[string]any)["status"])
	assert.NotContains(t, body, "database")
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	ts := newTestServer(t, 1)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := ts.do(t, http.MethodGet, "/api/pages", "", "X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		codes = append(codes, rec.Code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestRateLimiter(t *testing.T) {
	ts := newTestServer(t, 1)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		codes = append(codes, ts.do(t, http.MethodGet, "/api/pages", "").Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}
