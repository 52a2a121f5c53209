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

	"github.com/jonboulle/clockwork"

	"github.com/gigaba/overlay-server/internal/controller"
	conninmemory "github.com/gigaba/overlay-server/internal/repository/connection/inmemory"
	prefsfile "github.com/gigaba/overlay-server/internal/repository/prefs/file"
	roomredis "github.com/gigaba/overlay-server/internal/repository/room/redis"
	prefsservice "github.com/gigaba/overlay-server/internal/service/prefs"
	roomservice "github.com/gigaba/overlay-server/internal/service/room"
	"github.com/gigaba/overlay-server/pkg/ctxlogger"
	"github.com/gigaba/overlay-server/pkg/redisclient"
)

type AppConfig struct {
	Secret         string `json:"-"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	LogLevel       string `json:"log_level"`
	DataDir        string `json:"data_dir"`
	OverlayBaseURL string `json:"overlay_base_url"`
	DefaultTimer   int    `json:"default_timer_seconds"`
	HardRoomTTL    int    `json:"hard_room_ttl_hours"`
	SoftRoomTTL    int    `json:"soft_room_ttl_hours"`
	RedisHost      string `json:"redis_host"`
	RedisPort      int    `json:"redis_port"`
	RedisPassword  string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must not be empty")
	}
	if cfg.DefaultTimer < 1 {
		return fmt.Errorf("default timer must be greater than 0")
	}
	if cfg.SoftRoomTTL >= cfg.HardRoomTTL {
		return fmt.Errorf("soft room ttl must be shorter than hard room ttl")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
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

	prefsRepo, err := prefsfile.NewRepo(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create prefs store: %w", err)
	}

	roomRepo := roomredis.NewRepo(rc, logger)
	connRepo := conninmemory.NewRepo(logger)

	roomService := roomservice.NewService(roomRepo, connRepo, clockwork.NewRealClock(), logger, &roomservice.Config{
		Secret:          cfg.Secret,
		DefaultDuration: cfg.DefaultTimer,
		HardRoomTTL:     time.Duration(cfg.HardRoomTTL) * time.Hour,
		SoftRoomTTL:     time.Duration(cfg.SoftRoomTTL) * time.Hour,
	})
	prefsService := prefsservice.NewService(prefsRepo, logger)

	ctrl := controller.NewController(roomService, prefsService, logger, &controller.Config{
		OverlayBaseURL: cfg.OverlayBaseURL,
	})

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

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
