package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/gigaba/overlay-server/internal/service/room"
	"github.com/gigaba/overlay-server/pkg/ctxlogger"
	"github.com/gigaba/overlay-server/pkg/rest"
)

// HostWS attaches a control-page connection. The page works for any session;
// whether its controls do anything is decided per mutation by the host
// check.
func (c controller) HostWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	userID := c.getUserIDFromCtx(r.Context())

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	resp, err := c.roomService.ConnectHost(r.Context(), &room.ConnectHostParams{
		RoomID: roomID,
		UserID: userID,
		Conn:   conn,
	})
	if err != nil {
		c.writeCloseError(conn, err)
		return
	}

	conn.WriteJSON(&Output{Type: "ROOM_STATE", Payload: resp.Snapshot})

	c.serveConn(r.Context(), conn, roomID, userID)
}

// OverlayWS attaches an overlay-page connection. The viewer's profile comes
// from their local preferences and is pushed into the room's player record;
// the one-time access token in the query string decides whether interactive
// chrome is shown.
func (c controller) OverlayWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	userID := c.getUserIDFromCtx(r.Context())
	accessToken := r.URL.Query().Get("token")

	profile, err := c.prefsService.GetProfile(userID)
	if err != nil {
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to load profile"})
		return
	}
	layout, err := c.prefsService.GetLayout(userID)
	if err != nil {
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to load layout"})
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	resp, err := c.roomService.ConnectOverlay(r.Context(), &room.ConnectOverlayParams{
		RoomID:      roomID,
		UserID:      userID,
		Conn:        conn,
		Name:        profile.Name,
		Color:       profile.Color,
		Icon:        profile.Icon,
		AccessToken: accessToken,
	})
	if err != nil {
		c.writeCloseError(conn, err)
		return
	}

	conn.WriteJSON(&Output{Type: "ROOM_STATE", Payload: map[string]any{
		"snapshot":      resp.Snapshot,
		"layout":        layout,
		"show_controls": resp.ShowControls,
		"mode":          resp.Mode,
	}})

	if resp.Created {
		c.broadcast(r.Context(), resp.Conns, &Output{Type: "PLAYER_JOINED", Payload: resp.JoinedPlayer})
	}

	c.serveConn(r.Context(), conn, roomID, userID)
}

func (c controller) serveConn(ctx context.Context, conn *websocket.Conn, roomID, userID string) {
	ctx = context.WithValue(ctx, roomIDCtxKey, roomID)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", roomID))

	if err := c.getWSRouter().ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
	conn.Close()

	resp, err := c.roomService.Disconnect(ctx, conn)
	if err != nil {
		return
	}

	if resp.PlayerID != "" {
		c.broadcast(ctx, resp.Conns, &Output{Type: "PLAYER_LEFT", Payload: map[string]string{
			"player_id": resp.PlayerID,
		}})
	}
}

func (c controller) writeCloseError(conn *websocket.Conn, err error) {
	code := 4000
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrInvalidRoomID):
		code = 4004
	case errors.Is(err, room.ErrInvalidSession):
		code = 4001
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()))
	conn.Close()
}
