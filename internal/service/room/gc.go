package room

import "context"

// SweepInactiveRooms runs the two stale-room passes. It is invoked
// opportunistically when a session is issued, never on a schedule, and is an
// optimization only: every failure is swallowed, and rooms that never match
// a predicate simply persist.
//
// Hard pass: any room inactive beyond the hard TTL is deleted regardless of
// contents. Soft pass: a room inactive beyond the soft TTL is deleted only
// when it has zero players and its countdown is not running. Both passes
// fetch a bounded batch of candidates.
func (s service) SweepInactiveRooms(ctx context.Context) int {
	removed := 0
	now := s.clock.Now()

	hardCutoff := now.Add(-s.hardRoomTTL).UnixMilli()
	roomIDs, err := s.roomRepo.GetRoomIDsInactiveSince(ctx, hardCutoff, s.gcBatchSize)
	if err != nil {
		s.logger.DebugContext(ctx, "hard sweep candidate fetch failed", "error", err)
	}
	for _, roomID := range roomIDs {
		if err := s.roomRepo.RemoveRoom(ctx, roomID); err != nil {
			s.logger.DebugContext(ctx, "hard sweep delete failed", "room_id", roomID, "error", err)
			continue
		}
		removed++
	}

	softCutoff := now.Add(-s.softRoomTTL).UnixMilli()
	roomIDs, err = s.roomRepo.GetRoomIDsInactiveSince(ctx, softCutoff, s.gcBatchSize)
	if err != nil {
		s.logger.DebugContext(ctx, "soft sweep candidate fetch failed", "error", err)
		return removed
	}
	for _, roomID := range roomIDs {
		count, err := s.roomRepo.GetPlayerCount(ctx, roomID)
		if err != nil || count > 0 {
			continue
		}

		timer, err := s.roomRepo.GetTimer(ctx, roomID)
		if err != nil || timer.Running {
			continue
		}

		if err := s.roomRepo.RemoveRoom(ctx, roomID); err != nil {
			s.logger.DebugContext(ctx, "soft sweep delete failed", "room_id", roomID, "error", err)
			continue
		}
		removed++
	}

	return removed
}
