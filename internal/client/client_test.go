package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDroppingServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		conn.Close()
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestRunReleasesContextWatcher(t *testing.T) {
	srv := newDroppingServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := runtime.NumGoroutine()

	// The server drops every connection, so each Run exits on a read error
	// while ctx stays live. None of the cycles may leave a goroutine behind.
	for i := 0; i < 5; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)

		c := &Client{
			conn:       conn,
			reconciler: NewReconciler(&fakePlayer{}, false),
			probe:      NewProbe(time.Second),
			logger:     slog.Default(),
		}

		require.Error(t, c.Run(ctx))
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 10*time.Millisecond)
}
