package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/downhill/internal/core/events/bus"
	"github.com/zeusync/downhill/internal/core/models"
	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/system"
)

type fakeSource struct {
	mu        sync.Mutex
	snap      system.Snapshot
	commands  []system.Command
	submitErr error
}

func (f *fakeSource) Latest() system.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSource) Submit(cmd system.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.commands = append(f.commands, cmd)
	return nil
}

func (f *fakeSource) Commands() []system.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]system.Command(nil), f.commands...)
}

func testSnapshot(tick, version uint64) system.Snapshot {
	return system.Snapshot{
		Tick:           tick,
		Rider:          models.RiderState{Name: "rider", X: 1, Y: 2},
		Grounded:       true,
		TerrainVersion: version,
		Vertices:       []float32{0, 0, 0, 5, 0, 0},
		Points:         2,
	}
}

func newTestServer(t *testing.T, cfg Config) (*Server, *fakeSource, bus.EventBus, *httptest.Server) {
	t.Helper()
	source := &fakeSource{snap: testSnapshot(1, 42)}
	b := bus.New()
	srv, err := NewServer(cfg, source, b, log.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, source, b, ts
}

func TestHealth(t *testing.T) {
	_, _, _, ts := newTestServer(t, DefaultServerConfig())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestTerrainETag(t *testing.T) {
	_, _, _, ts := newTestServer(t, DefaultServerConfig())

	resp, err := http.Get(ts.URL + "/terrain")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var terrain TerrainResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&terrain))
	assert.Equal(t, uint64(42), terrain.Version)
	assert.Equal(t, []float32{0, 0, 0, 5, 0, 0}, terrain.Vertices)

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/terrain", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	cached, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer cached.Body.Close()
	assert.Equal(t, http.StatusNotModified, cached.StatusCode)
}

func TestRider(t *testing.T) {
	_, _, _, ts := newTestServer(t, DefaultServerConfig())

	resp, err := http.Get(ts.URL + "/rider")
	require.NoError(t, err)
	defer resp.Body.Close()

	var rider RiderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rider))
	assert.Equal(t, uint64(1), rider.Tick)
	assert.True(t, rider.Grounded)
	assert.Equal(t, 2.0, rider.Rider.Y)
}

func postCommand(t *testing.T, url, body, token string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/command", bytes.NewBufferString(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestCommandEndpoint(t *testing.T) {
	_, source, _, ts := newTestServer(t, DefaultServerConfig())

	assert.Equal(t, http.StatusAccepted, postCommand(t, ts.URL, `{"type":"set_velocity","x":2}`, ""))
	assert.Equal(t, []system.Command{{Type: system.CommandSetVelocity, X: 2}}, source.Commands())

	assert.Equal(t, http.StatusBadRequest, postCommand(t, ts.URL, `{"type":`, ""))
	assert.Equal(t, http.StatusBadRequest, postCommand(t, ts.URL, `{"type":"fly"}`, ""))

	source.mu.Lock()
	source.submitErr = system.ErrCommandQueueFull
	source.mu.Unlock()
	assert.Equal(t, http.StatusServiceUnavailable, postCommand(t, ts.URL, `{"type":"end_drag"}`, ""))
}

func TestCommandEndpointRequiresToken(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Token = "secret"
	_, source, _, ts := newTestServer(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, postCommand(t, ts.URL, `{"type":"start_drag"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, postCommand(t, ts.URL, `{"type":"start_drag"}`, "wrong"))
	assert.Equal(t, http.StatusAccepted, postCommand(t, ts.URL, `{"type":"start_drag"}`, "secret"))
	assert.Len(t, source.Commands(), 1)
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocketFeed(t *testing.T) {
	srv, _, b, ts := newTestServer(t, DefaultServerConfig())
	conn := dial(t, ts, "")

	hello := readFrame(t, conn)
	assert.Equal(t, FrameHello, hello.Type)
	assert.NotEmpty(t, hello.ClientID)

	first := readFrame(t, conn)
	require.Equal(t, FrameSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.NotEmpty(t, first.Snapshot.Vertices)

	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Same terrain version: geometry is omitted.
	require.NoError(t, b.Publish(bus.NewEvent(system.EventTickCompleted, "test", testSnapshot(2, 42), nil)))
	same := readFrame(t, conn)
	require.NotNil(t, same.Snapshot)
	assert.Equal(t, uint64(2), same.Snapshot.Tick)
	assert.Empty(t, same.Snapshot.Vertices)

	require.NoError(t, b.Publish(bus.NewEvent(system.EventTickCompleted, "test", testSnapshot(3, 43), nil)))
	changed := readFrame(t, conn)
	require.NotNil(t, changed.Snapshot)
	assert.Equal(t, uint64(43), changed.Snapshot.TerrainVersion)
	assert.NotEmpty(t, changed.Snapshot.Vertices)
}

func TestWebSocketInput(t *testing.T) {
	_, source, _, ts := newTestServer(t, DefaultServerConfig())
	conn := dial(t, ts, "")
	readFrame(t, conn)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(system.Command{Type: system.CommandStartDrag}))
	require.Eventually(t, func() bool { return len(source.Commands()) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(system.Command{Type: "teleport"}))
	f := readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, f.Error, "unknown command")
}

func TestWebSocketInputNeedsToken(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Token = "secret"
	_, source, _, ts := newTestServer(t, cfg)

	spectator := dial(t, ts, "")
	readFrame(t, spectator)
	readFrame(t, spectator)
	require.NoError(t, spectator.WriteJSON(system.Command{Type: system.CommandStartDrag}))
	f := readFrame(t, spectator)
	assert.Equal(t, FrameError, f.Type)
	assert.Empty(t, source.Commands())

	player := dial(t, ts, "?token=secret")
	readFrame(t, player)
	readFrame(t, player)
	require.NoError(t, player.WriteJSON(system.Command{Type: system.CommandStartDrag}))
	require.Eventually(t, func() bool { return len(source.Commands()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketMaxClients(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.MaxClients = 1
	srv, _, _, ts := newTestServer(t, cfg)

	dial(t, ts, "")
	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	srv, err := NewServer(cfg, &fakeSource{}, bus.New(), log.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.ErrorIs(t, srv.Run(context.Background()), ErrServerClosed)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultServerConfig().Validate())

	cfg := DefaultServerConfig()
	cfg.MaxClients = 0
	_, err := NewServer(cfg, &fakeSource{}, bus.New(), log.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
