package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/auth"
	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/validator"
	"github.com/syncroom/server/pkg/wsrouter"
)

type iRoomService interface {
	Connect(params *room.ConnectParams) error
	Disconnect(connId string) error
	SetUsername(connId, username string) error
	Play(connId string, position float64) error
	Pause(connId string, position float64) error
	Seek(connId string, position float64) error
	ChangeVideo(connId, videoId string) error
	PlayNext(connId string) error
	AddToQueue(params *room.AddToQueueParams) error
	RemoveFromQueue(connId string, index int) error
	ReorderQueue(connId string, from, to int) error
	Chat(connId, text string) error
	RequestSync(connId string) error
	Ping(connId string, clientTime int64) error
	BroadcastServerMessage(text string)
}

type iAuthService interface {
	Register(ctx context.Context, params *auth.RegisterParams) error
	Login(ctx context.Context, params *auth.LoginParams) (auth.LoginResponse, error)
	VerifyToken(ctx context.Context, tokenString string) (auth.Claims, error)
}

type Config struct {
	BroadcastSecret string
}

type controller struct {
	roomService iRoomService
	authService iAuthService
	logger      *slog.Logger
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	cfg         Config
}

func NewController(roomService iRoomService, authService iAuthService, logger *slog.Logger, cfg *Config) *controller {
	c := &controller{
		roomService: roomService,
		authService: authService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.New(),
		cfg:      *cfg,
	}
	c.wsmux = c.getWSRouter()

	return c
}
