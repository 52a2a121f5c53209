package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gigaba/overlay-server/internal/service/prefs"
	"github.com/gigaba/overlay-server/internal/service/room"
	"github.com/gigaba/overlay-server/pkg/validator"
)

type iRoomService interface {
	IssueSession() (room.IssueSessionResponse, error)
	ParseSession(token string) (string, error)
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	ConnectHost(context.Context, *room.ConnectHostParams) (room.ConnectHostResponse, error)
	ConnectOverlay(context.Context, *room.ConnectOverlayParams) (room.ConnectOverlayResponse, error)
	Disconnect(context.Context, *websocket.Conn) (room.DisconnectResponse, error)
	StartTimer(context.Context, *room.StartTimerParams) (room.TimerResponse, error)
	StopTimer(context.Context, *room.StopTimerParams) (room.TimerResponse, error)
	ResetTimer(context.Context, *room.ResetTimerParams) (room.TimerResponse, error)
	AddScore(context.Context, *room.AddScoreParams) (room.AddScoreResponse, error)
	MovePlayer(context.Context, *room.MovePlayerParams) (room.MovePlayerResponse, error)
	UpdateProfile(context.Context, *room.UpdateProfileParams) (room.UpdateProfileResponse, error)
	SetHostScoreVisible(context.Context, *room.SetHostScoreVisibleParams) (room.FlagsResponse, error)
	IssueAccessToken(ctx context.Context, mode string) (string, error)
	SweepInactiveRooms(ctx context.Context) int
}

type iPrefsService interface {
	GetLayout(userID string) (prefs.Layout, error)
	SaveLayout(userID string, layout prefs.Layout) (prefs.Layout, error)
	UpdateLayoutSide(userID, part, side string) (prefs.Layout, bool, error)
	GetProfile(userID string) (prefs.Profile, error)
	SaveProfile(userID string, profile prefs.Profile) (prefs.Profile, error)
	Reset(userID string) error
	GetTestPlayerCount(userID string) (int, error)
	SetTestPlayerCount(userID string, count int) error
}

type Config struct {
	// OverlayBaseURL is the public page the share links point at.
	OverlayBaseURL string
}

type controller struct {
	roomService  iRoomService
	prefsService iPrefsService
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	logger       *slog.Logger
	overlayBase  string
}

func NewController(roomService iRoomService, prefsService iPrefsService, logger *slog.Logger, cfg *Config) *controller {
	return &controller{
		roomService:  roomService,
		prefsService: prefsService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:    validator.NewValidator(),
		logger:      logger,
		overlayBase: cfg.OverlayBaseURL,
	}
}
