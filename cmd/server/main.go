package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncroom/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
	}
	broadcastSecret = configVar[string]{
		envKey:       "SERVER_BROADCAST_SECRET",
		flagKey:      "broadcast-secret",
		defaultValue: "",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	membersLimit = configVar[int]{
		envKey:       "SERVER_MEMBERS_LIMIT",
		flagKey:      "members-limit",
		defaultValue: 2,
	}
	connectionsLimit = configVar[int]{
		envKey:       "SERVER_CONNECTIONS_LIMIT",
		flagKey:      "connections-limit",
		defaultValue: 3,
	}
	adminsLimit = configVar[int]{
		envKey:       "SERVER_ADMINS_LIMIT",
		flagKey:      "admins-limit",
		defaultValue: 1,
	}
	queueLimit = configVar[int]{
		envKey:       "SERVER_QUEUE_LIMIT",
		flagKey:      "queue-limit",
		defaultValue: 50,
	}
	initialVideoId = configVar[string]{
		envKey:       "SERVER_INITIAL_VIDEO_ID",
		flagKey:      "initial-video-id",
		defaultValue: "dQw4w9WgXcQ",
	}
	syncDebounceMs = configVar[int]{
		envKey:       "SERVER_SYNC_DEBOUNCE_MS",
		flagKey:      "sync-debounce-ms",
		defaultValue: 100,
	}
	teardownGraceSec = configVar[int]{
		envKey:       "SERVER_TEARDOWN_GRACE_SEC",
		flagKey:      "teardown-grace-sec",
		defaultValue: 5,
	}
	heartbeatSec = configVar[int]{
		envKey:       "SERVER_HEARTBEAT_SEC",
		flagKey:      "heartbeat-sec",
		defaultValue: 10,
	}
	tokenTTLSec = configVar[int]{
		envKey:       "SERVER_TOKEN_TTL_SEC",
		flagKey:      "token-ttl-sec",
		defaultValue: 300,
	}
	sqlitePath = configVar[string]{
		envKey:       "SERVER_SQLITE_PATH",
		flagKey:      "sqlite-path",
		defaultValue: "syncroom.db",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, "Token signing secret")
	pflag.String(broadcastSecret.flagKey, broadcastSecret.defaultValue, "Secret for the operator broadcast endpoint")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(membersLimit.flagKey, membersLimit.defaultValue, "Maximum number of regular members in the room")
	pflag.Int(connectionsLimit.flagKey, connectionsLimit.defaultValue, "Maximum number of connections in the room")
	pflag.Int(adminsLimit.flagKey, adminsLimit.defaultValue, "Maximum number of admin accounts")
	pflag.Int(queueLimit.flagKey, queueLimit.defaultValue, "Maximum number of videos in the queue")
	pflag.String(initialVideoId.flagKey, initialVideoId.defaultValue, "Video the room starts with")
	pflag.Int(syncDebounceMs.flagKey, syncDebounceMs.defaultValue, "Minimum interval between relayed play events in milliseconds")
	pflag.Int(teardownGraceSec.flagKey, teardownGraceSec.defaultValue, "Seconds the room stays open after the admin leaves")
	pflag.Int(heartbeatSec.flagKey, heartbeatSec.defaultValue, "Heartbeat interval in seconds")
	pflag.Int(tokenTTLSec.flagKey, tokenTTLSec.defaultValue, "Connect token lifetime in seconds")
	pflag.String(sqlitePath.flagKey, sqlitePath.defaultValue, "Path to the sqlite credentials database")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(secret.flagKey, secret.envKey)
	viper.BindEnv(broadcastSecret.flagKey, broadcastSecret.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(membersLimit.flagKey, membersLimit.envKey)
	viper.BindEnv(connectionsLimit.flagKey, connectionsLimit.envKey)
	viper.BindEnv(adminsLimit.flagKey, adminsLimit.envKey)
	viper.BindEnv(queueLimit.flagKey, queueLimit.envKey)
	viper.BindEnv(initialVideoId.flagKey, initialVideoId.envKey)
	viper.BindEnv(syncDebounceMs.flagKey, syncDebounceMs.envKey)
	viper.BindEnv(teardownGraceSec.flagKey, teardownGraceSec.envKey)
	viper.BindEnv(heartbeatSec.flagKey, heartbeatSec.envKey)
	viper.BindEnv(tokenTTLSec.flagKey, tokenTTLSec.envKey)
	viper.BindEnv(sqlitePath.flagKey, sqlitePath.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	return &app.AppConfig{
		Secret:           viper.GetString(secret.flagKey),
		BroadcastSecret:  viper.GetString(broadcastSecret.flagKey),
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		MembersLimit:     viper.GetInt(membersLimit.flagKey),
		ConnectionsLimit: viper.GetInt(connectionsLimit.flagKey),
		AdminsLimit:      viper.GetInt(adminsLimit.flagKey),
		QueueLimit:       viper.GetInt(queueLimit.flagKey),
		InitialVideoId:   viper.GetString(initialVideoId.flagKey),
		SyncDebounceMs:   viper.GetInt(syncDebounceMs.flagKey),
		TeardownGraceSec: viper.GetInt(teardownGraceSec.flagKey),
		HeartbeatSec:     viper.GetInt(heartbeatSec.flagKey),
		TokenTTLSec:      viper.GetInt(tokenTTLSec.flagKey),
		SqlitePath:       viper.GetString(sqlitePath.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
