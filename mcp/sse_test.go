package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// readEvent reads one SSE frame and returns its event name and data payload.
func readEvent(t *testing.T, r *bufio.Reader) (string, SSEEvent) {
	t.Helper()
	var (
		name string
		ev   SSEEvent
	)
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return name, ev
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		}
	}
}

func TestEventServerBroadcast(t *testing.T) {
	events := NewEventServer(zap.NewNop(), nil)
	defer events.Close()

	srv := httptest.NewServer(http.HandlerFunc(events.HandleSSE))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, connected := readEvent(t, reader)
	require.Equal(t, "connected", name)
	assert.NotEmpty(t, connected.ID)

	require.Eventually(t, func() bool {
		return events.Stats()["connectedClients"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	events.Publish("document_created", map[string]string{"path": "/new/page"})

	name, created := readEvent(t, reader)
	assert.Equal(t, "document_created", name)
	assert.Equal(t, "document_created", created.Event)
	assert.Equal(t, map[string]any{"path": "/new/page"}, created.Data)
}

func TestEventServerClientRemovedOnDisconnect(t *testing.T) {
	events := NewEventServer(zap.NewNop(), nil)
	defer events.Close()

	srv := httptest.NewServer(http.HandlerFunc(events.HandleSSE))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	name, _ := readEvent(t, bufio.NewReader(resp.Body))
	require.Equal(t, "connected", name)
	require.Len(t, events.ConnectedClients(), 1)

	cancel()
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		return len(events.ConnectedClients()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventServerPublishAfterClose(t *testing.T) {
	events := NewEventServer(zap.NewNop(), &SSEServerConfig{KeepaliveInterval: time.Second, BufferSize: 1, ClientBufferSize: 1})
	events.Close()
	events.Close()

	assert.NotPanics(t, func() {
		events.Publish("document_created", nil)
		events.Publish("document_created", nil)
	})
}

func TestEventServerStatsHandler(t *testing.T) {
	events := NewEventServer(zap.NewNop(), nil)
	defer events.Close()

	rec := httptest.NewRecorder()
	events.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/events/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(0), stats["connectedClients"])
	assert.Equal(t, Version, stats["serverVersion"])
}
