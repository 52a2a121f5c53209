package room

import (
	"context"
	"errors"

	roomRepo "github.com/gigaba/overlay-server/internal/repository/room"
)

// checkIfHost resolves controller rights by exact value equality against the
// stored host identity. This is the only enforcement there is: a client
// speaking to the store directly could bypass it, which is a known gap, not
// something this layer papers over.
func (s service) checkIfHost(ctx context.Context, roomID, senderID string) error {
	rm, err := s.roomRepo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}

	if rm.HostID != senderID {
		return ErrPermissionDenied
	}

	return nil
}

// touchRoom bumps the activity timestamp used by the GC sweeps. Best-effort:
// a failed bump never fails the mutation that caused it.
func (s service) touchRoom(ctx context.Context, roomID string) {
	if err := s.roomRepo.UpdateLastActiveAt(ctx, roomID, s.nowMs()); err != nil {
		s.logger.DebugContext(ctx, "failed to bump room activity", "room_id", roomID, "error", err)
	}
}

func (s service) getPlayers(ctx context.Context, roomID string) ([]Player, error) {
	playerIDs, err := s.roomRepo.GetPlayerIDs(ctx, roomID)
	if err != nil {
		return nil, err
	}

	players := make([]Player, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		player, err := s.roomRepo.GetPlayer(ctx, &roomRepo.GetPlayerParams{
			RoomID:   roomID,
			PlayerID: playerID,
		})
		if err != nil {
			// roster entry without a record: skip, the list is display-only
			s.logger.DebugContext(ctx, "failed to get player", "player_id", playerID, "error", err)
			continue
		}

		players = append(players, Player{
			ID:       playerID,
			Name:     player.Name,
			Color:    player.Color,
			Icon:     player.Icon,
			Score:    player.Score,
			JoinedAt: player.JoinedAt,
		})
	}

	return players, nil
}
