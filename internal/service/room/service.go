// Package room implements the shared room state: a countdown timer, a
// player roster with scores, and per-room flags, written by the room's host
// and fanned out to every connected overlay.
package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/gigaba/overlay-server/internal/repository/connection"
	"github.com/gigaba/overlay-server/internal/repository/room"
	"github.com/gigaba/overlay-server/pkg/roomid"
)

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrRoomNotFound        = errors.New("room not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInvalidSession      = errors.New("invalid session")
	ErrInvalidRoomID       = errors.New("invalid room id")
	ErrRoomCreationFailed  = errors.New("failed to create room")
	ErrAccessTokenNotFound = errors.New("access token not found")
)

type iRoomRepo interface {
	// room
	SetRoom(context.Context, *room.SetRoomParams) error
	RoomExists(ctx context.Context, roomID string) (bool, error)
	GetRoom(ctx context.Context, roomID string) (room.Room, error)
	UpdateLastActiveAt(ctx context.Context, roomID string, lastActiveAt int64) error
	UpdateHostScoreVisible(ctx context.Context, roomID string, visible bool) error
	RemoveRoom(ctx context.Context, roomID string) error
	GetRoomIDsInactiveSince(ctx context.Context, cutoff int64, limit int) ([]string, error)
	// timer
	SetTimer(context.Context, *room.SetTimerParams) error
	GetTimer(ctx context.Context, roomID string) (room.Timer, error)
	// player
	UpsertPlayer(context.Context, *room.UpsertPlayerParams) (bool, error)
	GetPlayer(context.Context, *room.GetPlayerParams) (room.Player, error)
	GetPlayerIDs(ctx context.Context, roomID string) ([]string, error)
	GetPlayerCount(ctx context.Context, roomID string) (int, error)
	RemovePlayer(context.Context, *room.RemovePlayerParams) error
	AddScore(context.Context, *room.AddScoreParams) (int, error)
	SwapPlayerOrder(context.Context, *room.SwapPlayerOrderParams) error
	// access token
	SetAccessToken(context.Context, *room.SetAccessTokenParams) error
	ConsumeAccessToken(ctx context.Context, token string) (string, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, client connection.Client) error
	Remove(conn *websocket.Conn) (connection.Client, error)
	GetClient(conn *websocket.Conn) (connection.Client, error)
	GetConnsByRoomID(roomID string) []*websocket.Conn
}

type iRoomIDGenerator interface {
	Generate() string
}

type Config struct {
	Secret string
	// RoomIDAttempts is the number of collision-checked creation attempts
	// before the final unchecked one.
	RoomIDAttempts int
	RoomIDLength   int
	// Generator overrides the room id source; nil means a numeric
	// RoomIDLength-digit generator.
	Generator       iRoomIDGenerator
	DefaultDuration int
	HardRoomTTL     time.Duration
	SoftRoomTTL     time.Duration
	GCBatchSize     int
}

type service struct {
	roomRepo  iRoomRepo
	connRepo  iConnRepo
	generator iRoomIDGenerator
	clock     clockwork.Clock
	logger    *slog.Logger

	secret          string
	roomIDAttempts  int
	defaultDuration int
	hardRoomTTL     time.Duration
	softRoomTTL     time.Duration
	gcBatchSize     int
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, clock clockwork.Clock, logger *slog.Logger, cfg *Config) *service {
	s := service{
		roomRepo:        roomRepo,
		connRepo:        connRepo,
		clock:           clock,
		logger:          logger,
		secret:          cfg.Secret,
		roomIDAttempts:  cfg.RoomIDAttempts,
		defaultDuration: cfg.DefaultDuration,
		hardRoomTTL:     cfg.HardRoomTTL,
		softRoomTTL:     cfg.SoftRoomTTL,
		gcBatchSize:     cfg.GCBatchSize,
	}

	if s.roomIDAttempts < 1 {
		s.roomIDAttempts = 6
	}
	s.generator = cfg.Generator
	if s.generator == nil {
		length := cfg.RoomIDLength
		if length < 1 {
			length = 6
		}
		s.generator = roomid.New(length)
	}
	if s.defaultDuration <= 0 {
		s.defaultDuration = 300
	}
	if s.gcBatchSize < 1 {
		s.gcBatchSize = 50
	}

	return &s
}

func (s service) nowMs() int64 {
	return s.clock.Now().UnixMilli()
}
