package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testRelay struct {
	relay *Relay
	srv   *httptest.Server
	down  *atomic.Bool
}

// newTestRelay serves a relay that answers 503 to every request while down
// is set.
func newTestRelay(t *testing.T) *testRelay {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	relay := NewRelay(zap.NewNop().Sugar(), testAPIKey)
	go relay.Run(ctx)

	down := &atomic.Bool{}
	router := relay.Router()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		router.ServeHTTP(w, r)
	}))

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testRelay{relay: relay, srv: srv, down: down}
}

func (r *testRelay) wsURL() string {
	return "ws" + strings.TrimPrefix(r.srv.URL, "http") + "/ws"
}

func (r *testRelay) dial(t *testing.T, serverType string, name string, apiKey string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	q := url.Values{}
	q.Set("api_key", apiKey)
	q.Set("type", serverType)
	q.Set("name", name)
	return websocket.DefaultDialer.Dial(r.wsURL()+"?"+q.Encode(), nil)
}

func (r *testRelay) mustDial(t *testing.T, serverType string, name string) *websocket.Conn {
	t.Helper()

	conn, _, err := r.dial(t, serverType, name, testAPIKey)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	in := readInbound(t, conn)
	require.IsType(t, Connected{}, in.Message)
	return conn
}

func readInbound(t *testing.T, conn *websocket.Conn) Inbound {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	in, err := Decode(frame)
	require.NoError(t, err)
	return in
}

func assertNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "expected no frame")
}

func TestRelay_Authentication(t *testing.T) {
	r := newTestRelay(t)

	tests := []struct {
		name       string
		serverType string
		serverName string
		apiKey     string
		wantStatus int
	}{
		{name: "wrong key", serverType: "proxy", serverName: "proxy-1", apiKey: "nope", wantStatus: http.StatusUnauthorized},
		{name: "missing key", serverType: "proxy", serverName: "proxy-1", wantStatus: http.StatusUnauthorized},
		{name: "missing type", serverName: "proxy-1", apiKey: testAPIKey, wantStatus: http.StatusBadRequest},
		{name: "missing name", serverType: "proxy", apiKey: testAPIKey, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := r.dial(t, tc.serverType, tc.serverName, tc.apiKey)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestRelay_FanOutExcludesSender(t *testing.T) {
	r := newTestRelay(t)

	proxy := r.mustDial(t, "proxy", "proxy-1")
	lobby := r.mustDial(t, "backend", "lobby-1")
	game := r.mustDial(t, "backend", "game-1")

	require.Eventually(t, func() bool { return len(r.relay.Clients()) == 3 }, 2*time.Second, 10*time.Millisecond)

	frame, err := Encode(GrantChange{PlayerId: testPlayerId}, "spoofed", "spoofed", time.Now())
	require.NoError(t, err)
	require.NoError(t, proxy.WriteMessage(websocket.TextMessage, frame))

	for _, conn := range []*websocket.Conn{lobby, game} {
		in := readInbound(t, conn)
		assert.Equal(t, GrantChange{PlayerId: testPlayerId}, in.Message)
		assert.Equal(t, "proxy", in.ServerType)
		assert.Equal(t, "proxy-1", in.ServerName)
	}

	assertNoFrame(t, proxy)
}

func TestRelay_MalformedFrame(t *testing.T) {
	r := newTestRelay(t)

	sender := r.mustDial(t, "backend", "lobby-1")
	other := r.mustDial(t, "backend", "game-1")
	require.Eventually(t, func() bool { return len(r.relay.Clients()) == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`{"type":"GRANT_CHANGE","data":{}}`)))

	in := readInbound(t, sender)
	assert.IsType(t, ErrorMessage{}, in.Message)
	assertNoFrame(t, other)
}

func TestRelay_Disconnect(t *testing.T) {
	r := newTestRelay(t)

	r.mustDial(t, "proxy", "proxy-1")
	r.mustDial(t, "backend", "lobby-1")
	require.Eventually(t, func() bool { return len(r.relay.Clients()) == 2 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []ClientInfo{{Type: "backend", Name: "lobby-1"}, {Type: "proxy", Name: "proxy-1"}}, r.relay.Clients())

	assert.Equal(t, 1, r.relay.Disconnect("lobby-1"))
	assert.Equal(t, 0, r.relay.Disconnect("missing"))

	require.Eventually(t, func() bool { return len(r.relay.Clients()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []ClientInfo{{Type: "proxy", Name: "proxy-1"}}, r.relay.Clients())
}

func TestRelay_Health(t *testing.T) {
	r := newTestRelay(t)

	resp, err := http.Get(r.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
