package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastConstructors(t *testing.T) {
	assert.Equal(t, Toast{Message: "ok", Type: TypeSuccess, DismissAfterMs: 5000}, Success("ok"))
	assert.Equal(t, TypeError, Error("x").Type)
	assert.Equal(t, TypeInfo, Info("x").Type)
}

func TestHubDeliversToastToSession(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("session"))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connected("s1") }, time.Second, 10*time.Millisecond)

	hub.Notify("other", Info("not for you"))
	hub.Notify("s1", Success("Versículo salvo com sucesso!"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Toast
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, Success("Versículo salvo com sucesso!"), got)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.Connected("s1") }, time.Second, 10*time.Millisecond)
}

func dialHub(t *testing.T, hub *Hub, session string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + session
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func TestStalledClientDoesNotBlockOtherSessions(t *testing.T) {
	hub := NewHub()
	conn, _, err := dialHub(t, hub, "slow", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Connected("slow") }, time.Second, 10*time.Millisecond)

	big := Info(strings.Repeat("x", 64*1024))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			hub.Notify("slow", big)
		}
		hub.Notify("someone-else", Info("hello"))
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Notify blocked behind a client that never reads")
	}
	assert.Eventually(t, func() bool { return !hub.Connected("slow") }, 2*time.Second, 10*time.Millisecond)
}

func TestHubChecksOrigin(t *testing.T) {
	hub := NewHub("https://*.palavracerta.app")

	_, resp, err := dialHub(t, hub, "s1", http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dialHub(t, hub, "s2", http.Header{"Origin": {"https://www.palavracerta.app"}})
	require.NoError(t, err)
	conn.Close()

	conn, _, err = dialHub(t, hub, "s3", nil)
	require.NoError(t, err)
	conn.Close()
}

func TestNotifyWithoutClientIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Notify("nobody", Error("x")) })
	assert.False(t, hub.Connected("nobody"))
}
