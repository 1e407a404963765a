package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/syncroom/server/internal/controller"
	connectioninmemory "github.com/syncroom/server/internal/repository/connection/inmemory"
	credentialsqlite "github.com/syncroom/server/internal/repository/credential/sqlite"
	sessioninmemory "github.com/syncroom/server/internal/repository/session/inmemory"
	tokenredis "github.com/syncroom/server/internal/repository/token/redis"
	"github.com/syncroom/server/internal/service/auth"
	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/ctxlogger"
	"github.com/syncroom/server/pkg/redisclient"
)

type AppConfig struct {
	Secret           string `json:"-"`
	BroadcastSecret  string `json:"-"`
	Host             string `json:"host"`
	Port             int    `json:"port"`
	LogLevel         string `json:"log_level"`
	MembersLimit     int    `json:"members_limit"`
	ConnectionsLimit int    `json:"connections_limit"`
	AdminsLimit      int    `json:"admins_limit"`
	QueueLimit       int    `json:"queue_limit"`
	InitialVideoId   string `json:"initial_video_id"`
	SyncDebounceMs   int    `json:"sync_debounce_ms"`
	TeardownGraceSec int    `json:"teardown_grace_sec"`
	HeartbeatSec     int    `json:"heartbeat_sec"`
	TokenTTLSec      int    `json:"token_ttl_sec"`
	SqlitePath       string `json:"sqlite_path"`
	RedisHost        string `json:"redis_host"`
	RedisPort        int    `json:"redis_port"`
	RedisPassword    string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.MembersLimit < 1 {
		return fmt.Errorf("members limit must be greater than 0")
	}
	if cfg.ConnectionsLimit < 2 {
		return fmt.Errorf("connections limit must be greater than 1")
	}
	if cfg.QueueLimit < 1 {
		return fmt.Errorf("queue limit must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	credentialRepo, err := credentialsqlite.NewRepo(cfg.SqlitePath)
	if err != nil {
		return fmt.Errorf("failed to create credential repo: %w", err)
	}
	defer credentialRepo.Close()

	tokenTTL := time.Duration(cfg.TokenTTLSec) * time.Second
	tokenRepo := tokenredis.NewRepo(rc, tokenTTL)
	authService := auth.NewService(credentialRepo, tokenRepo, &auth.Config{
		Secret:      cfg.Secret,
		TokenTTL:    tokenTTL,
		AdminsLimit: cfg.AdminsLimit,
	})

	sessionRepo := sessioninmemory.NewRepo(cfg.InitialVideoId)
	connectionRepo := connectioninmemory.NewRepo()
	roomService := room.NewService(sessionRepo, connectionRepo, logger, &room.Config{
		MembersLimit:     cfg.MembersLimit,
		ConnectionsLimit: cfg.ConnectionsLimit,
		QueueLimit:       cfg.QueueLimit,
		SyncDebounce:     time.Duration(cfg.SyncDebounceMs) * time.Millisecond,
		AdminSyncDelay:   2 * time.Second,
		SeekCorrectDelay: 2 * time.Second,
		TeardownGrace:    time.Duration(cfg.TeardownGraceSec) * time.Second,
	})

	controller := controller.NewController(roomService, authService, logger, &controller.Config{
		BroadcastSecret: cfg.BroadcastSecret,
	})
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.Mux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	roomService.StartHeartbeat(serverCtx, time.Duration(cfg.HeartbeatSec)*time.Second)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
