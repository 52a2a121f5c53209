package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/gigaba/overlay-server/internal/repository/connection"
	roomRepo "github.com/gigaba/overlay-server/internal/repository/room"
	"github.com/gigaba/overlay-server/internal/service/prefs"
)

const maxRoomIDLength = 12

func validRoomID(roomID string) bool {
	if roomID == "" || len(roomID) > maxRoomIDLength {
		return false
	}
	for _, c := range roomID {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

type CreateRoomParams struct {
	HostID string
}

type CreateRoomResponse struct {
	RoomID string
}

// CreateRoom picks a short numeric id, retrying on collision a fixed number
// of times. The final attempt is deliberately unchecked: overwriting an
// existing room at that point is accepted over failing outright.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	s.logger.DebugContext(ctx, "creating room", "host_id", params.HostID)

	var roomID string
	for i := 0; i < s.roomIDAttempts; i++ {
		candidate := s.generator.Generate()
		exists, err := s.roomRepo.RoomExists(ctx, candidate)
		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to check room id: %w", err)
		}
		if exists {
			continue
		}

		roomID = candidate
		break
	}
	if roomID == "" {
		roomID = s.generator.Generate()
	}

	now := s.nowMs()
	if err := s.roomRepo.SetRoom(ctx, &roomRepo.SetRoomParams{
		RoomID:    roomID,
		HostID:    params.HostID,
		CreatedAt: now,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	if err := s.roomRepo.SetTimer(ctx, &roomRepo.SetTimerParams{
		RoomID:          roomID,
		DurationSeconds: s.defaultDuration,
		StartedAt:       0,
		Running:         false,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set initial timer: %w", err)
	}

	return CreateRoomResponse{RoomID: roomID}, nil
}

type ConnectHostParams struct {
	RoomID string
	UserID string
	Conn   *websocket.Conn
}

type ConnectHostResponse struct {
	Snapshot Snapshot
}

// ConnectHost attaches a control-page connection. Anyone may watch the
// control page; host-only rights are checked per mutation, the page itself
// just learns whether it is the host.
func (s service) ConnectHost(ctx context.Context, params *ConnectHostParams) (ConnectHostResponse, error) {
	if !validRoomID(params.RoomID) {
		return ConnectHostResponse{}, ErrInvalidRoomID
	}

	snapshot, err := s.getSnapshot(ctx, params.RoomID, params.UserID)
	if err != nil {
		return ConnectHostResponse{}, err
	}

	if err := s.connRepo.Add(params.Conn, connection.Client{
		UserID: params.UserID,
		RoomID: params.RoomID,
	}); err != nil {
		return ConnectHostResponse{}, err
	}

	return ConnectHostResponse{Snapshot: snapshot}, nil
}

type ConnectOverlayParams struct {
	RoomID      string
	UserID      string
	Conn        *websocket.Conn
	Name        string
	Color       string
	Icon        string
	AccessToken string
}

type ConnectOverlayResponse struct {
	Snapshot Snapshot
	// Mode is the consumed access token's mode, empty when the token was
	// absent, already consumed or expired.
	Mode         string
	ShowControls bool
	JoinedPlayer Player
	Created      bool
	Conns        []*websocket.Conn
}

// ConnectOverlay attaches an overlay-page connection and upserts the
// viewer's player record: created with a zero score on first join, identity
// fields merged on every later one, the score never touched.
func (s service) ConnectOverlay(ctx context.Context, params *ConnectOverlayParams) (ConnectOverlayResponse, error) {
	if !validRoomID(params.RoomID) {
		return ConnectOverlayResponse{}, ErrInvalidRoomID
	}

	exists, err := s.roomRepo.RoomExists(ctx, params.RoomID)
	if err != nil {
		return ConnectOverlayResponse{}, err
	}
	if !exists {
		return ConnectOverlayResponse{}, ErrRoomNotFound
	}

	mode := ""
	if params.AccessToken != "" {
		consumed, err := s.roomRepo.ConsumeAccessToken(ctx, params.AccessToken)
		if err != nil && !errors.Is(err, roomRepo.ErrAccessTokenNotFound) {
			return ConnectOverlayResponse{}, err
		}
		mode = consumed
	}

	bounded := prefs.BoundProfile(prefs.Profile{
		Name:  params.Name,
		Color: params.Color,
		Icon:  params.Icon,
	})

	created, err := s.roomRepo.UpsertPlayer(ctx, &roomRepo.UpsertPlayerParams{
		RoomID:   params.RoomID,
		PlayerID: params.UserID,
		AuthID:   params.UserID,
		Name:     bounded.Name,
		Color:    bounded.Color,
		Icon:     bounded.Icon,
		JoinedAt: s.nowMs(),
	})
	if err != nil {
		return ConnectOverlayResponse{}, fmt.Errorf("failed to upsert player: %w", err)
	}

	if err := s.connRepo.Add(params.Conn, connection.Client{
		UserID:   params.UserID,
		RoomID:   params.RoomID,
		PlayerID: params.UserID,
	}); err != nil {
		return ConnectOverlayResponse{}, err
	}

	snapshot, err := s.getSnapshot(ctx, params.RoomID, params.UserID)
	if err != nil {
		return ConnectOverlayResponse{}, err
	}

	player, err := s.roomRepo.GetPlayer(ctx, &roomRepo.GetPlayerParams{
		RoomID:   params.RoomID,
		PlayerID: params.UserID,
	})
	if err != nil {
		return ConnectOverlayResponse{}, err
	}

	return ConnectOverlayResponse{
		Snapshot:     snapshot,
		Mode:         mode,
		ShowControls: mode != "",
		JoinedPlayer: Player{
			ID:       params.UserID,
			Name:     player.Name,
			Color:    player.Color,
			Icon:     player.Icon,
			Score:    player.Score,
			JoinedAt: player.JoinedAt,
		},
		Created: created,
		Conns:   s.connRepo.GetConnsByRoomID(params.RoomID),
	}, nil
}

type DisconnectResponse struct {
	RoomID   string
	PlayerID string
	Conns    []*websocket.Conn
}

// Disconnect runs the presence cleanup scheduled at join time: when an
// overlay connection drops, its player record is removed best-effort. A
// killed process skips this, which the design accepts.
func (s service) Disconnect(ctx context.Context, conn *websocket.Conn) (DisconnectResponse, error) {
	client, err := s.connRepo.Remove(conn)
	if err != nil {
		return DisconnectResponse{}, err
	}

	if client.PlayerID != "" {
		if err := s.roomRepo.RemovePlayer(ctx, &roomRepo.RemovePlayerParams{
			RoomID:   client.RoomID,
			PlayerID: client.PlayerID,
		}); err != nil {
			s.logger.DebugContext(ctx, "failed to remove player on disconnect", "player_id", client.PlayerID, "error", err)
		}
	}

	return DisconnectResponse{
		RoomID:   client.RoomID,
		PlayerID: client.PlayerID,
		Conns:    s.connRepo.GetConnsByRoomID(client.RoomID),
	}, nil
}

func (s service) getSnapshot(ctx context.Context, roomID, userID string) (Snapshot, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return Snapshot{}, ErrRoomNotFound
		}
		return Snapshot{}, err
	}

	timer, err := s.roomRepo.GetTimer(ctx, roomID)
	if err != nil {
		return Snapshot{}, err
	}

	players, err := s.getPlayers(ctx, roomID)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		RoomID: roomID,
		IsHost: rm.HostID == userID,
		Timer: Timer{
			DurationSeconds: timer.DurationSeconds,
			StartedAt:       timer.StartedAt,
			Running:         timer.Running,
		},
		Flags:   Flags{HostScoreVisible: rm.HostScoreVisible},
		Players: players,
	}, nil
}
