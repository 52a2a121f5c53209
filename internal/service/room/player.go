package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	roomRepo "github.com/gigaba/overlay-server/internal/repository/room"
	"github.com/gigaba/overlay-server/internal/service/prefs"
)

type AddScoreParams struct {
	RoomID   string
	SenderID string
	PlayerID string
	Delta    int
}

type AddScoreResponse struct {
	PlayerID string
	Score    int
	Conns    []*websocket.Conn
}

// AddScore applies a commutative delta to the stored score. The store does
// the read-modify-write atomically, so deltas from racing host tabs compose
// in any order.
func (s service) AddScore(ctx context.Context, params *AddScoreParams) (AddScoreResponse, error) {
	if err := s.checkIfHost(ctx, params.RoomID, params.SenderID); err != nil {
		return AddScoreResponse{}, err
	}

	score, err := s.roomRepo.AddScore(ctx, &roomRepo.AddScoreParams{
		RoomID:   params.RoomID,
		PlayerID: params.PlayerID,
		Delta:    params.Delta,
	})
	if err != nil {
		if errors.Is(err, roomRepo.ErrPlayerNotFound) {
			return AddScoreResponse{}, ErrPlayerNotFound
		}
		return AddScoreResponse{}, fmt.Errorf("failed to add score: %w", err)
	}

	s.touchRoom(ctx, params.RoomID)

	return AddScoreResponse{
		PlayerID: params.PlayerID,
		Score:    score,
		Conns:    s.connRepo.GetConnsByRoomID(params.RoomID),
	}, nil
}

const (
	MoveUp   = "up"
	MoveDown = "down"
)

type MovePlayerParams struct {
	RoomID    string
	SenderID  string
	PlayerID  string
	Direction string
}

type MovePlayerResponse struct {
	Players []Player
	Conns   []*websocket.Conn
}

// MovePlayer reorders the roster by swapping the moved record's sort order
// with its neighbor's.
func (s service) MovePlayer(ctx context.Context, params *MovePlayerParams) (MovePlayerResponse, error) {
	if err := s.checkIfHost(ctx, params.RoomID, params.SenderID); err != nil {
		return MovePlayerResponse{}, err
	}

	playerIDs, err := s.roomRepo.GetPlayerIDs(ctx, params.RoomID)
	if err != nil {
		return MovePlayerResponse{}, fmt.Errorf("failed to get player list: %w", err)
	}

	index := -1
	for i, id := range playerIDs {
		if id == params.PlayerID {
			index = i
			break
		}
	}
	if index == -1 {
		return MovePlayerResponse{}, ErrPlayerNotFound
	}

	var neighbor int
	switch params.Direction {
	case MoveUp:
		neighbor = index - 1
	case MoveDown:
		neighbor = index + 1
	default:
		return MovePlayerResponse{}, fmt.Errorf("unknown direction %q", params.Direction)
	}

	// moving past either end is a no-op, not an error
	if neighbor >= 0 && neighbor < len(playerIDs) {
		if err := s.roomRepo.SwapPlayerOrder(ctx, &roomRepo.SwapPlayerOrderParams{
			RoomID:        params.RoomID,
			PlayerID:      params.PlayerID,
			OtherPlayerID: playerIDs[neighbor],
		}); err != nil {
			return MovePlayerResponse{}, fmt.Errorf("failed to swap player order: %w", err)
		}

		s.touchRoom(ctx, params.RoomID)
	}

	players, err := s.getPlayers(ctx, params.RoomID)
	if err != nil {
		return MovePlayerResponse{}, err
	}

	return MovePlayerResponse{
		Players: players,
		Conns:   s.connRepo.GetConnsByRoomID(params.RoomID),
	}, nil
}

type UpdateProfileParams struct {
	RoomID   string
	SenderID string
	Name     string
	Color    string
	Icon     string
}

type UpdateProfileResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

// UpdateProfile propagates a viewer's identity edit into their own player
// record. Field-level merge only; the score is never part of it. The shape
// limits hold for every writer, so the input is bounded here, not only at
// the prefs edge.
func (s service) UpdateProfile(ctx context.Context, params *UpdateProfileParams) (UpdateProfileResponse, error) {
	bounded := prefs.BoundProfile(prefs.Profile{
		Name:  params.Name,
		Color: params.Color,
		Icon:  params.Icon,
	})

	if _, err := s.roomRepo.UpsertPlayer(ctx, &roomRepo.UpsertPlayerParams{
		RoomID:   params.RoomID,
		PlayerID: params.SenderID,
		AuthID:   params.SenderID,
		Name:     bounded.Name,
		Color:    bounded.Color,
		Icon:     bounded.Icon,
		JoinedAt: s.nowMs(),
	}); err != nil {
		return UpdateProfileResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}

	player, err := s.roomRepo.GetPlayer(ctx, &roomRepo.GetPlayerParams{
		RoomID:   params.RoomID,
		PlayerID: params.SenderID,
	})
	if err != nil {
		return UpdateProfileResponse{}, err
	}

	return UpdateProfileResponse{
		Player: Player{
			ID:       params.SenderID,
			Name:     player.Name,
			Color:    player.Color,
			Icon:     player.Icon,
			Score:    player.Score,
			JoinedAt: player.JoinedAt,
		},
		Conns: s.connRepo.GetConnsByRoomID(params.RoomID),
	}, nil
}
