package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/rest"
)

// connect authenticates the one-time token, upgrades the request and pumps
// the connection's events into the room service until it drops.
func (c controller) connect(w http.ResponseWriter, r *http.Request) {
	claims, err := c.authService.VerifyToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to verify token", "error", err)
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "invalid token"})
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	connId := uuid.NewString()

	if err := c.roomService.Connect(&room.ConnectParams{
		Conn:     conn,
		ConnId:   connId,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
	}); err != nil {
		c.logger.DebugContext(r.Context(), "connection rejected", "error", err)
		conn.WriteJSON(&room.Message{
			Type:    room.MsgConnectionRejected,
			Payload: room.ConnectionRejectedPayload{Reason: err.Error()},
		})
		return
	}
	defer c.disconnect(r.Context(), connId)

	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(r.Context(), "failed to serve conn", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, connId string) {
	if err := c.roomService.Disconnect(connId); err != nil {
		c.logger.DebugContext(ctx, "failed to disconnect", "conn_id", connId, "error", err)
	}
}

type emptyInput struct{}

func (*emptyInput) UnmarshalJSON([]byte) error {
	return nil
}

type setUsernameInput struct {
	Username string `json:"username" validate:"required"`
}

func (c controller) handleSetUsername(ctx context.Context, conn *websocket.Conn, input setUsernameInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return nil
	}

	return c.roomService.SetUsername(c.getConnIdFromCtx(ctx), input.Username)
}

type playerEventInput struct {
	Time float64 `json:"time"`
}

func (c controller) handlePlay(ctx context.Context, conn *websocket.Conn, input playerEventInput) error {
	return c.roomService.Play(c.getConnIdFromCtx(ctx), input.Time)
}

func (c controller) handlePause(ctx context.Context, conn *websocket.Conn, input playerEventInput) error {
	return c.roomService.Pause(c.getConnIdFromCtx(ctx), input.Time)
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, input playerEventInput) error {
	return c.roomService.Seek(c.getConnIdFromCtx(ctx), input.Time)
}

type changeVideoInput struct {
	VideoId string `json:"video_id" validate:"required"`
}

func (c controller) handleChangeVideo(ctx context.Context, conn *websocket.Conn, input changeVideoInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return nil
	}

	return c.roomService.ChangeVideo(c.getConnIdFromCtx(ctx), input.VideoId)
}

func (c controller) handlePlayNext(ctx context.Context, conn *websocket.Conn, input emptyInput) error {
	return c.roomService.PlayNext(c.getConnIdFromCtx(ctx))
}

type addToQueueInput struct {
	VideoId   string `json:"video_id" validate:"required"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

func (c controller) handleAddToQueue(ctx context.Context, conn *websocket.Conn, input addToQueueInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return nil
	}

	if err := c.roomService.AddToQueue(&room.AddToQueueParams{
		ConnId:    c.getConnIdFromCtx(ctx),
		VideoId:   input.VideoId,
		Title:     input.Title,
		Thumbnail: input.Thumbnail,
	}); err != nil {
		// A full queue is the sender's problem, not a reason to drop the
		// connection.
		if errors.Is(err, room.ErrQueueLimitReached) {
			c.logger.DebugContext(ctx, "failed to add to queue", "error", err)
			return nil
		}

		return err
	}

	return nil
}

type removeFromQueueInput struct {
	Index int `json:"index"`
}

func (c controller) handleRemoveFromQueue(ctx context.Context, conn *websocket.Conn, input removeFromQueueInput) error {
	return c.roomService.RemoveFromQueue(c.getConnIdFromCtx(ctx), input.Index)
}

type reorderQueueInput struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (c controller) handleReorderQueue(ctx context.Context, conn *websocket.Conn, input reorderQueueInput) error {
	return c.roomService.ReorderQueue(c.getConnIdFromCtx(ctx), input.From, input.To)
}

type chatInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (c controller) handleChat(ctx context.Context, conn *websocket.Conn, input chatInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return nil
	}

	return c.roomService.Chat(c.getConnIdFromCtx(ctx), input.Text)
}

func (c controller) handleRequestSync(ctx context.Context, conn *websocket.Conn, input emptyInput) error {
	return c.roomService.RequestSync(c.getConnIdFromCtx(ctx))
}

type pingInput struct {
	Time int64 `json:"time"`
}

func (c controller) handlePing(ctx context.Context, conn *websocket.Conn, input pingInput) error {
	return c.roomService.Ping(c.getConnIdFromCtx(ctx), input.Time)
}
