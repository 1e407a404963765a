package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

type WSRouter struct {
	routes      map[string]HandlerFunc
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

// Handle registers a handler with a typed payload. The payload is decoded
// from the message envelope before the handler runs.
func Handle[T any](r *WSRouter, messageType string, handler func(ctx context.Context, conn *websocket.Conn, input T) error) {
	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		return handler(ctx, conn, input)
	}
}

// ServeConn reads messages from the connection until the read fails, routing
// each message to the registered handler. Unknown message types are ignored.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			continue
		}

		for i := len(r.middlewares) - 1; i >= 0; i-- {
			handler = r.middlewares[i](handler)
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			return err
		}
	}
}
