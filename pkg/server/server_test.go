package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/catsite/pkg/protocol"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.PingInterval = time.Hour
	cfg.PongTimeout = 2 * time.Hour
	cfg.WriteTimeout = time.Second
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func startServer(t *testing.T, cfg Config, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(cfg, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Sessions().Shutdown(ctx)
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, e protocol.Event) {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readUntil reads commands until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(protocol.Command) bool) []protocol.Command {
	t.Helper()
	var seen []protocol.Command
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "commands so far: %+v", seen)
		var cmd protocol.Command
		require.NoError(t, json.Unmarshal(data, &cmd))
		seen = append(seen, cmd)
		if match(cmd) {
			return seen
		}
	}
}

func hello(hooks map[string][]protocol.Hook) protocol.Event {
	return protocol.Event{Seq: 1, Type: protocol.EventHello, Manifest: &protocol.Manifest{Hooks: hooks}}
}

func TestHealthz(t *testing.T) {
	_, ts := startServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestServesEmbeddedPage(t *testing.T) {
	_, ts := startServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "/client.js")

	resp2, err := http.Get(ts.URL + "/client.js")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestSession_ClickShowsToast(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	sendEvent(t, conn, hello(map[string][]protocol.Hook{
		protocol.RoleActionButton: {{ID: "btn-demo", Text: "Free Demo"}},
	}))
	sendEvent(t, conn, protocol.Event{Seq: 2, Type: protocol.EventClick, Target: "btn-demo", Role: protocol.RoleActionButton, Label: "Free Demo"})

	cmds := readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpRender })
	render := cmds[len(cmds)-1]
	require.NotNil(t, render.Node)
	assert.Equal(t, "Free demo registration coming soon!", render.Node.Text)
	assert.Contains(t, render.Node.Classes, "info")

	// The toast slides in after the enter delay.
	cmds = readUntil(t, conn, func(c protocol.Command) bool {
		return c.Op == protocol.OpState && c.ID == render.Node.ID
	})
	show := cmds[len(cmds)-1]
	assert.True(t, show.State.Classes["show"])
	assert.Greater(t, show.Seq, render.Seq, "sequence numbers increase")
}

func TestSession_DismissRemovesToast(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	sendEvent(t, conn, hello(map[string][]protocol.Hook{
		protocol.RoleActionButton: {{ID: "btn", Text: "WhatsApp"}},
	}))
	sendEvent(t, conn, protocol.Event{Type: protocol.EventClick, Target: "btn", Role: protocol.RoleActionButton, Label: "WhatsApp"})
	cmds := readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpRender })
	id := cmds[len(cmds)-1].Node.ID

	sendEvent(t, conn, protocol.Event{Type: protocol.EventDismiss, Target: string(id)})
	readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpRemove && c.ID == id })
}

func TestSession_RejectsBadEvents(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	cmds := readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpError })
	assert.Contains(t, cmds[len(cmds)-1].Error, "invalid event")

	sendEvent(t, conn, protocol.Event{Type: protocol.EventClick, Target: "x"})
	cmds = readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpError })
	assert.Contains(t, cmds[len(cmds)-1].Error, "no hello")

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))
	readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpError })
}

func TestSession_ScrollActionScrollsSection(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	sendEvent(t, conn, hello(map[string][]protocol.Hook{
		protocol.RoleActionButton: {{ID: "book", Text: "Book Session"}},
		protocol.RoleSection:      {{ID: "form-anchor", Name: "consultation-form"}},
	}))
	sendEvent(t, conn, protocol.Event{Type: protocol.EventClick, Target: "book", Role: protocol.RoleActionButton, Label: "Book Session"})
	cmds := readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpScroll })
	assert.Equal(t, "form-anchor", string(cmds[len(cmds)-1].ID))
}

func TestMaxSessions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	srv, ts := startServer(t, cfg)

	dial(t, ts)
	require.Eventually(t, func() bool { return srv.Sessions().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, health.StatusCode)
}

func TestSessionRemovedOnDisconnect(t *testing.T) {
	srv, ts := startServer(t, testConfig())
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return srv.Sessions().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return srv.Sessions().Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	stats := srv.Sessions().Stats()
	assert.Equal(t, int64(1), stats.TotalCreated)
	assert.Equal(t, int64(1), stats.TotalClosed)
	assert.Equal(t, 1, stats.Peak)
}

func TestHeartbeatPings(t *testing.T) {
	cfg := testConfig()
	cfg.PingInterval = 20 * time.Millisecond
	_, ts := startServer(t, cfg)
	conn := dial(t, ts)

	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "no data messages are expected")
	assert.GreaterOrEqual(t, pings.Load(), int32(2))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv, ts := startServer(t, testConfig(), WithRegistry(reg))
	conn := dial(t, ts)

	sendEvent(t, conn, hello(map[string][]protocol.Hook{
		protocol.RoleActionButton: {{ID: "btn", Text: "Free Demo"}},
	}))
	sendEvent(t, conn, protocol.Event{Type: protocol.EventClick, Target: "btn", Role: protocol.RoleActionButton, Label: "Free Demo"})
	readUntil(t, conn, func(c protocol.Command) bool { return c.Op == protocol.OpRender })
	require.Eventually(t, func() bool { return srv.Sessions().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	var text string
	require.Eventually(t, func() bool {
		text = scrape(t, ts.URL+"/metrics")
		return strings.Contains(text, `catsite_events_total{status="success",type="click"} 1`)
	}, 2*time.Second, 20*time.Millisecond)

	assert.Contains(t, text, "catsite_active_sessions 1")
	assert.Contains(t, text, `catsite_toasts_total{severity="info"} 1`)
	assert.Contains(t, text, `catsite_commands_sent_total{op="render"}`)
}

func scrape(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestServe_GracefulShutdown(t *testing.T) {
	srv := New(testConfig())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + "/ws"
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.Sessions().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, 0, srv.Sessions().Count())
}

func TestSessionManager_RefusesAfterShutdown(t *testing.T) {
	sm := NewSessionManager(0, nil)
	require.NoError(t, sm.Shutdown(context.Background()))
	assert.True(t, sm.Full())
	assert.ErrorIs(t, sm.Add(&Session{ID: "x"}), ErrServerClosed)
}

func TestOriginChecks(t *testing.T) {
	req := func(host, origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://"+host+"/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, SameOriginCheck(req("site.test", "")))
	assert.True(t, SameOriginCheck(req("site.test", "https://site.test")))
	assert.False(t, SameOriginCheck(req("site.test", "https://evil.test")))

	allow := AllowOrigins([]string{"https://cdn.site.test/"})
	assert.True(t, allow(req("site.test", "https://cdn.site.test")))
	assert.False(t, allow(req("site.test", "https://evil.test")))
	assert.True(t, AllowOrigins([]string{"*"})(req("site.test", "https://evil.test")))
}

func TestSessionError(t *testing.T) {
	err := &SessionError{SessionID: "01H", Op: "write", Err: ErrSessionClosed}
	assert.Equal(t, "server: session 01H: write: server: session closed", err.Error())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, "server: write: server: session closed", (&SessionError{Op: "write", Err: ErrSessionClosed}).Error())
}
