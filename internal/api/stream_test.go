package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loadaudit/internal/pipeline"
	"github.com/wonny/loadaudit/pkg/logger"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	// Registration happens after the handshake completes
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	return conn
}

func TestHub_BroadcastEvent(t *testing.T) {
	hub := NewHub(logger.NewNop())
	conn := dialHub(t, hub)

	hub.BroadcastEvent(pipeline.Event{RunID: "run-1", Stage: "order", At: time.Now()})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev pipeline.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, "order", ev.Stage)
}

func TestHub_BroadcastEvent_concurrentRuns(t *testing.T) {
	hub := NewHub(logger.NewNop())
	conn := dialHub(t, hub)

	// Two audit runs reporting progress at the same time must not interleave
	// writes on the shared connection.
	const perRun = 25
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(runID string) {
			defer wg.Done()
			for j := 0; j < perRun; j++ {
				hub.BroadcastEvent(pipeline.Event{RunID: runID, Stage: "evaluate", At: time.Now()})
			}
		}(fmt.Sprintf("run-%d", i))
	}

	received := make(map[string]int)
	for n := 0; n < 2*perRun; n++ {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev pipeline.Event
		require.NoError(t, conn.ReadJSON(&ev))
		received[ev.RunID]++
	}
	wg.Wait()

	assert.Equal(t, perRun, received["run-0"])
	assert.Equal(t, perRun, received["run-1"])
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_BroadcastEvent_dropsClosedSubscriber(t *testing.T) {
	hub := NewHub(logger.NewNop())
	conn := dialHub(t, hub)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	// Broadcasting into an empty hub is a no-op
	hub.BroadcastEvent(pipeline.Event{RunID: "run-1", Stage: "done", At: time.Now()})
	assert.Equal(t, 0, hub.ClientCount())
}
