package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/room"
)

const defaultProbeTimeout = 5 * time.Second

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client connects a local player to the room server and runs the
// reconciliation loop over the websocket.
type Client struct {
	conn       *websocket.Conn
	reconciler *Reconciler
	probe      *Probe
	logger     *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	connId  string
	isAdmin bool
}

type DialParams struct {
	ServerURL string
	Token     string
	Player    LocalPlayer
	IsAdmin   bool
	Logger    *slog.Logger
}

// Dial opens a websocket to the server using a one-time connect token.
func Dial(ctx context.Context, params *DialParams) (*Client, error) {
	u, err := url.Parse(params.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}

	u.Path = "/ws"
	q := u.Query()
	q.Set("token", params.Token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial server: %w", err)
	}

	return &Client{
		conn:       conn,
		reconciler: NewReconciler(params.Player, params.IsAdmin),
		probe:      NewProbe(defaultProbeTimeout),
		logger:     params.Logger,
	}, nil
}

// Run reads server messages and applies them until the connection drops or
// ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	for {
		var msg envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if err := c.dispatch(&msg); err != nil {
			c.logger.Warn("failed to handle message", "type", msg.Type, "error", err)
		}
	}
}

func (c *Client) dispatch(msg *envelope) error {
	switch msg.Type {
	case room.MsgInitState:
		var payload room.InitStatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.mu.Lock()
		c.connId = payload.ConnectionId
		c.isAdmin = payload.IsAdmin
		c.mu.Unlock()

		c.reconciler.ApplySnapshot(&payload.Player, true)

	case room.MsgSyncState:
		var payload room.SyncStatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.reconciler.ApplySnapshot(&payload.Player, payload.Force)

	case room.MsgVideoPlay:
		var payload room.PlayPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.reconciler.ApplyPlay(&payload)

	case room.MsgVideoPause:
		var payload room.PausePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.reconciler.ApplyPause(&payload)

	case room.MsgVideoSeek:
		var payload room.SeekPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.reconciler.ApplySeek(&payload)

	case room.MsgTemporarySeek:
		var payload room.TemporarySeekPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.reconciler.ApplyTemporarySeek(&payload)

	case room.MsgVideoChanged:
		var payload room.VideoChangedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.reconciler.ApplyVideoChanged(&payload)

	case room.MsgPong:
		var payload room.PongPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		c.probe.Pong(payload.Time)
	}

	return nil
}

func (c *Client) send(messageType string, payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteJSON(&envelope{Type: messageType, Payload: mustMarshal(payload)}); err != nil {
		return fmt.Errorf("failed to send %s: %w", messageType, err)
	}

	return nil
}

func mustMarshal(v any) json.RawMessage {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return data
}

// ConnectionId returns the id the server assigned at admission, empty until
// the init state arrives.
func (c *Client) ConnectionId() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connId
}

// IsAdmin reports the role the server admitted this connection with.
func (c *Client) IsAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isAdmin
}

// Play reports a locally initiated play. It is dropped when the reconciler
// attributes it to an inbound command or the member may not start playback.
func (c *Client) Play(position float64) error {
	if !c.reconciler.OnLocalPlay() {
		return nil
	}

	return c.send("VIDEO_PLAY", map[string]float64{"time": position})
}

func (c *Client) Pause(position float64) error {
	if !c.reconciler.OnLocalPause() {
		return nil
	}

	return c.send("VIDEO_PAUSE", map[string]float64{"time": position})
}

func (c *Client) Seek(position float64) error {
	if !c.reconciler.OnLocalSeek() {
		return nil
	}

	return c.send("VIDEO_SEEK", map[string]float64{"time": position})
}

func (c *Client) ChangeVideo(videoId string) error {
	return c.send("CHANGE_VIDEO", map[string]string{"video_id": videoId})
}

func (c *Client) PlayNext() error {
	return c.send("PLAY_NEXT", nil)
}

func (c *Client) RequestSync() error {
	return c.send("REQUEST_SYNC", nil)
}

func (c *Client) AddToQueue(videoId, title string) error {
	return c.send("ADD_TO_QUEUE", map[string]string{"video_id": videoId, "title": title})
}

func (c *Client) RemoveFromQueue(index int) error {
	return c.send("REMOVE_FROM_QUEUE", map[string]int{"index": index})
}

func (c *Client) ReorderQueue(from, to int) error {
	return c.send("REORDER_QUEUE", map[string]int{"from": from, "to": to})
}

func (c *Client) Chat(text string) error {
	return c.send("CHAT_MESSAGE", map[string]string{"text": text})
}

func (c *Client) SetUsername(username string) error {
	return c.send("SET_USERNAME", map[string]string{"username": username})
}

// Ping sends a latency probe. Pair with Quality to read the result.
func (c *Client) Ping() error {
	return c.send("PING", map[string]int64{"time": c.probe.Ping()})
}

func (c *Client) Quality() Quality {
	return c.probe.Quality()
}

func (c *Client) Close() error {
	return c.conn.Close()
}
