package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gigaba/overlay-server/internal/app"
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
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	dataDir = configVar[string]{
		envKey:       "SERVER_DATA_DIR",
		flagKey:      "data-dir",
		defaultValue: "/var/lib/overlay-server",
	}
	overlayBaseURL = configVar[string]{
		envKey:       "SERVER_OVERLAY_BASE_URL",
		flagKey:      "overlay-base-url",
		defaultValue: "http://localhost/overlay",
	}
	defaultTimer = configVar[int]{
		envKey:       "SERVER_DEFAULT_TIMER_SECONDS",
		flagKey:      "default-timer-seconds",
		defaultValue: 300,
	}
	hardRoomTTL = configVar[int]{
		envKey:       "SERVER_HARD_ROOM_TTL_HOURS",
		flagKey:      "hard-room-ttl-hours",
		defaultValue: 24,
	}
	softRoomTTL = configVar[int]{
		envKey:       "SERVER_SOFT_ROOM_TTL_HOURS",
		flagKey:      "soft-room-ttl-hours",
		defaultValue: 6,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, "Server secret")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(dataDir.flagKey, dataDir.defaultValue, "Preference store directory")
	pflag.String(overlayBaseURL.flagKey, overlayBaseURL.defaultValue, "Public overlay page url share links point at")
	pflag.Int(defaultTimer.flagKey, defaultTimer.defaultValue, "Initial countdown duration in seconds")
	pflag.Int(hardRoomTTL.flagKey, hardRoomTTL.defaultValue, "Hours of inactivity before a room is deleted unconditionally")
	pflag.Int(softRoomTTL.flagKey, softRoomTTL.defaultValue, "Hours of inactivity before an empty idle room is deleted")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(secret.flagKey, secret.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(dataDir.flagKey, dataDir.envKey)
	viper.BindEnv(overlayBaseURL.flagKey, overlayBaseURL.envKey)
	viper.BindEnv(defaultTimer.flagKey, defaultTimer.envKey)
	viper.BindEnv(hardRoomTTL.flagKey, hardRoomTTL.envKey)
	viper.BindEnv(softRoomTTL.flagKey, softRoomTTL.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(secret.flagKey, secret.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(dataDir.flagKey, dataDir.defaultValue)
	viper.SetDefault(overlayBaseURL.flagKey, overlayBaseURL.defaultValue)
	viper.SetDefault(defaultTimer.flagKey, defaultTimer.defaultValue)
	viper.SetDefault(hardRoomTTL.flagKey, hardRoomTTL.defaultValue)
	viper.SetDefault(softRoomTTL.flagKey, softRoomTTL.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Secret:         viper.GetString(secret.flagKey),
		Host:           viper.GetString(host.flagKey),
		Port:           viper.GetInt(port.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		DataDir:        viper.GetString(dataDir.flagKey),
		OverlayBaseURL: viper.GetString(overlayBaseURL.flagKey),
		DefaultTimer:   viper.GetInt(defaultTimer.flagKey),
		HardRoomTTL:    viper.GetInt(hardRoomTTL.flagKey),
		SoftRoomTTL:    viper.GetInt(softRoomTTL.flagKey),
		RedisPort:      viper.GetInt(redisPort.flagKey),
		RedisHost:      viper.GetString(redisHost.flagKey),
		RedisPassword:  viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
