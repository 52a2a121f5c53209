package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	roomRepo "github.com/gigaba/overlay-server/internal/repository/room"
)

type SetHostScoreVisibleParams struct {
	RoomID   string
	SenderID string
	Visible  bool
}

type FlagsResponse struct {
	Flags Flags
	Conns []*websocket.Conn
}

func (s service) SetHostScoreVisible(ctx context.Context, params *SetHostScoreVisibleParams) (FlagsResponse, error) {
	if err := s.checkIfHost(ctx, params.RoomID, params.SenderID); err != nil {
		return FlagsResponse{}, err
	}

	if err := s.roomRepo.UpdateHostScoreVisible(ctx, params.RoomID, params.Visible); err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return FlagsResponse{}, ErrRoomNotFound
		}
		return FlagsResponse{}, fmt.Errorf("failed to update flags: %w", err)
	}

	s.touchRoom(ctx, params.RoomID)

	return FlagsResponse{
		Flags: Flags{HostScoreVisible: params.Visible},
		Conns: s.connRepo.GetConnsByRoomID(params.RoomID),
	}, nil
}
