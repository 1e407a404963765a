package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/pkg/wsrouter"
)

func (c controller) wsLoggingMw(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		c.logger.DebugContext(ctx, "ws message",
			"type", wsrouter.GetMessageTypeFromCtx(ctx),
			"conn_id", c.getConnIdFromCtx(ctx),
		)

		return next(ctx, conn, payload)
	}
}
