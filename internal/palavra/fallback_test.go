package palavra_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PalavraCerta/internal/geminiservice"
	"PalavraCerta/internal/palavra"
	"PalavraCerta/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayFailureStillAnswersAndCounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	provider := geminiservice.NewClient(geminiservice.Config{
		APIKey:         "k",
		BaseURL:        srv.URL,
		InitialBackoff: time.Millisecond,
	}, nil)
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	ctrl := palavra.NewController(store.New(store.NewMemory(), nil), provider, palavra.Options{
		Clock: func() time.Time { return now },
	})

	res, err := ctrl.RequestSearch(context.Background(), "s1", "Estou triste")
	require.NoError(t, err)

	assert.Equal(t, "Salmos 46:1", res.Verse.Reference)
	assert.Equal(t, geminiservice.FallbackVerse, res.Verse)
	require.Len(t, res.State.SearchHistory, 1)
	assert.Equal(t, "Estou triste", res.State.SearchHistory[0].Feeling)
	assert.Equal(t, 1, res.State.DailySearch.Count)
}
