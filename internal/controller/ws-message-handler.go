package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/gigaba/overlay-server/internal/service/room"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type timerStartInput struct {
	DurationSeconds *int `json:"duration"`
}

func (c controller) handleTimerStart(ctx context.Context, _ *websocket.Conn, input timerStartInput) error {
	resp, err := c.roomService.StartTimer(ctx, &room.StartTimerParams{
		RoomID:          c.getRoomIDFromCtx(ctx),
		SenderID:        c.getUserIDFromCtx(ctx),
		DurationSeconds: input.DurationSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to start timer: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "TIMER_UPDATED", Payload: resp.Timer})
}

func (c controller) handleTimerStop(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	resp, err := c.roomService.StopTimer(ctx, &room.StopTimerParams{
		RoomID:   c.getRoomIDFromCtx(ctx),
		SenderID: c.getUserIDFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to stop timer: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "TIMER_UPDATED", Payload: resp.Timer})
}

type timerResetInput struct {
	DurationSeconds *int `json:"duration"`
}

func (c controller) handleTimerReset(ctx context.Context, _ *websocket.Conn, input timerResetInput) error {
	resp, err := c.roomService.ResetTimer(ctx, &room.ResetTimerParams{
		RoomID:          c.getRoomIDFromCtx(ctx),
		SenderID:        c.getUserIDFromCtx(ctx),
		DurationSeconds: input.DurationSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to reset timer: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "TIMER_UPDATED", Payload: resp.Timer})
}

type scoreAddInput struct {
	PlayerID string `json:"player_id"`
	Delta    int    `json:"delta"`
}

func (c controller) handleScoreAdd(ctx context.Context, _ *websocket.Conn, input scoreAddInput) error {
	resp, err := c.roomService.AddScore(ctx, &room.AddScoreParams{
		RoomID:   c.getRoomIDFromCtx(ctx),
		SenderID: c.getUserIDFromCtx(ctx),
		PlayerID: input.PlayerID,
		Delta:    input.Delta,
	})
	if err != nil {
		return fmt.Errorf("failed to add score: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "SCORE_UPDATED", Payload: map[string]any{
		"player_id": resp.PlayerID,
		"score":     resp.Score,
	}})
}

type playerMoveInput struct {
	PlayerID  string `json:"player_id"`
	Direction string `json:"direction"`
}

func (c controller) handlePlayerMove(ctx context.Context, _ *websocket.Conn, input playerMoveInput) error {
	resp, err := c.roomService.MovePlayer(ctx, &room.MovePlayerParams{
		RoomID:    c.getRoomIDFromCtx(ctx),
		SenderID:  c.getUserIDFromCtx(ctx),
		PlayerID:  input.PlayerID,
		Direction: input.Direction,
	})
	if err != nil {
		return fmt.Errorf("failed to move player: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "PLAYER_LIST_UPDATED", Payload: map[string]any{
		"players": resp.Players,
	}})
}

type flagsUpdateInput struct {
	HostScoreVisible bool `json:"host_score_visible"`
}

func (c controller) handleFlagsUpdate(ctx context.Context, _ *websocket.Conn, input flagsUpdateInput) error {
	resp, err := c.roomService.SetHostScoreVisible(ctx, &room.SetHostScoreVisibleParams{
		RoomID:   c.getRoomIDFromCtx(ctx),
		SenderID: c.getUserIDFromCtx(ctx),
		Visible:  input.HostScoreVisible,
	})
	if err != nil {
		return fmt.Errorf("failed to update flags: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "FLAGS_UPDATED", Payload: resp.Flags})
}

type profileUpdateInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (c controller) handleProfileUpdate(ctx context.Context, _ *websocket.Conn, input profileUpdateInput) error {
	resp, err := c.roomService.UpdateProfile(ctx, &room.UpdateProfileParams{
		RoomID:   c.getRoomIDFromCtx(ctx),
		SenderID: c.getUserIDFromCtx(ctx),
		Name:     input.Name,
		Color:    input.Color,
		Icon:     input.Icon,
	})
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "PLAYER_UPDATED", Payload: resp.Player})
}
