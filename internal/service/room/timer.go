package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	roomRepo "github.com/gigaba/overlay-server/internal/repository/room"
	"github.com/gigaba/overlay-server/pkg/countdown"
)

type StartTimerParams struct {
	RoomID          string
	SenderID        string
	DurationSeconds *int
}

type TimerResponse struct {
	Timer Timer
	Conns []*websocket.Conn
}

func (s service) StartTimer(ctx context.Context, params *StartTimerParams) (TimerResponse, error) {
	if err := s.checkIfHost(ctx, params.RoomID, params.SenderID); err != nil {
		return TimerResponse{}, err
	}

	current, err := s.roomRepo.GetTimer(ctx, params.RoomID)
	if err != nil {
		return TimerResponse{}, fmt.Errorf("failed to get timer: %w", err)
	}

	next := countdown.Start(toCountdownState(current), params.DurationSeconds, s.nowMs())

	return s.writeTimer(ctx, params.RoomID, next)
}

type StopTimerParams struct {
	RoomID   string
	SenderID string
}

func (s service) StopTimer(ctx context.Context, params *StopTimerParams) (TimerResponse, error) {
	if err := s.checkIfHost(ctx, params.RoomID, params.SenderID); err != nil {
		return TimerResponse{}, err
	}

	current, err := s.roomRepo.GetTimer(ctx, params.RoomID)
	if err != nil {
		return TimerResponse{}, fmt.Errorf("failed to get timer: %w", err)
	}

	next := countdown.Stop(toCountdownState(current), s.nowMs())

	return s.writeTimer(ctx, params.RoomID, next)
}

type ResetTimerParams struct {
	RoomID          string
	SenderID        string
	DurationSeconds *int
}

func (s service) ResetTimer(ctx context.Context, params *ResetTimerParams) (TimerResponse, error) {
	if err := s.checkIfHost(ctx, params.RoomID, params.SenderID); err != nil {
		return TimerResponse{}, err
	}

	duration := params.DurationSeconds
	if duration == nil {
		duration = &s.defaultDuration
	}
	next := countdown.Reset(countdown.State{}, duration)

	return s.writeTimer(ctx, params.RoomID, next)
}

func (s service) writeTimer(ctx context.Context, roomID string, state countdown.State) (TimerResponse, error) {
	if err := s.roomRepo.SetTimer(ctx, &roomRepo.SetTimerParams{
		RoomID:          roomID,
		DurationSeconds: state.DurationSeconds,
		StartedAt:       state.StartedAt,
		Running:         state.Running,
	}); err != nil {
		return TimerResponse{}, fmt.Errorf("failed to set timer: %w", err)
	}

	s.touchRoom(ctx, roomID)

	return TimerResponse{
		Timer: Timer{
			DurationSeconds: state.DurationSeconds,
			StartedAt:       state.StartedAt,
			Running:         state.Running,
		},
		Conns: s.connRepo.GetConnsByRoomID(roomID),
	}, nil
}

func toCountdownState(t roomRepo.Timer) countdown.State {
	return countdown.State{
		DurationSeconds: t.DurationSeconds,
		StartedAt:       t.StartedAt,
		Running:         t.Running,
	}
}
