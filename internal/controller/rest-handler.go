package controller

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/gigaba/overlay-server/internal/service/prefs"
	"github.com/gigaba/overlay-server/internal/service/room"
	"github.com/gigaba/overlay-server/pkg/rest"
)

type issueSessionResponse struct {
	UserID  string `json:"user_id"`
	Session string `json:"session"`
}

// IssueSession mints an anonymous identity. Arriving at the entry point
// with a session available is also the moment the stale-room sweeps run,
// detached from the request.
func (c controller) IssueSession(w http.ResponseWriter, r *http.Request) {
	resp, err := c.roomService.IssueSession()
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to issue session", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to issue session"})
		return
	}

	go c.roomService.SweepInactiveRooms(context.WithoutCancel(r.Context()))

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": issueSessionResponse{
		UserID:  resp.UserID,
		Session: resp.Token,
	}})
}

type createRoomResponse struct {
	RoomID string `json:"room_id"`
}

func (c controller) CreateRoom(w http.ResponseWriter, r *http.Request) {
	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		HostID: c.getUserIDFromCtx(r.Context()),
	})
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to create room"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": createRoomResponse{RoomID: resp.RoomID}})
}

type layoutPartPayload struct {
	Visible bool    `json:"visible"`
	Side    string  `json:"side" validate:"required,oneof=top bottom left right"`
	Scale   float64 `json:"scale" validate:"gte=0.5,lte=2"`
}

type putLayoutPayload struct {
	Timer layoutPartPayload `json:"timer" validate:"required"`
	Point layoutPartPayload `json:"point" validate:"required"`
}

type layoutResponse struct {
	Layout        prefs.Layout      `json:"layout"`
	DisabledSides map[string]string `json:"disabled_sides"`
	SideConflict  bool              `json:"side_conflict,omitempty"`
}

func (c controller) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := c.prefsService.GetLayout(c.getUserIDFromCtx(r.Context()))
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to load layout", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to load layout"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": layoutResponse{
		Layout:        layout,
		DisabledSides: layout.DisabledSides(),
	}})
}

func (c controller) PutLayout(w http.ResponseWriter, r *http.Request) {
	var req putLayoutPayload
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	layout, err := c.prefsService.SaveLayout(c.getUserIDFromCtx(r.Context()), prefs.Layout{
		Timer: prefs.LayoutPart{Visible: req.Timer.Visible, Side: req.Timer.Side, Scale: req.Timer.Scale},
		Point: prefs.LayoutPart{Visible: req.Point.Visible, Side: req.Point.Side, Scale: req.Point.Scale},
	})
	if err != nil {
		if errors.Is(err, prefs.ErrSideConflict) {
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
			return
		}
		c.logger.ErrorContext(r.Context(), "failed to save layout", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to save layout"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": layoutResponse{
		Layout:        layout,
		DisabledSides: layout.DisabledSides(),
	}})
}

type putLayoutSidePayload struct {
	Part string `json:"part" validate:"required,oneof=timer point"`
	Side string `json:"side" validate:"required,oneof=top bottom left right"`
}

// PutLayoutSide is the interactive single-side edit: on conflict the
// response carries the reverted layout and a warning flag instead of an
// error status, mirroring the inline-warning UX.
func (c controller) PutLayoutSide(w http.ResponseWriter, r *http.Request) {
	var req putLayoutSidePayload
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	layout, conflict, err := c.prefsService.UpdateLayoutSide(c.getUserIDFromCtx(r.Context()), req.Part, req.Side)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to update layout side", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to update layout"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": layoutResponse{
		Layout:        layout,
		DisabledSides: layout.DisabledSides(),
		SideConflict:  conflict,
	}})
}

type putProfilePayload struct {
	Name  string `json:"name" validate:"required,max=24"`
	Color string `json:"color" validate:"required,max=32"`
	Icon  string `json:"icon" validate:"omitempty,max=131072"`
}

func (c controller) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := c.prefsService.GetProfile(c.getUserIDFromCtx(r.Context()))
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to load profile", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to load profile"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": profile})
}

func (c controller) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req putProfilePayload
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	profile, err := c.prefsService.SaveProfile(c.getUserIDFromCtx(r.Context()), prefs.Profile{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to save profile", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to save profile"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": profile})
}

func (c controller) ResetPrefs(w http.ResponseWriter, r *http.Request) {
	if err := c.prefsService.Reset(c.getUserIDFromCtx(r.Context())); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to reset prefs", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to reset prefs"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type testPlayersPayload struct {
	Count int `json:"count" validate:"gte=1,lte=16"`
}

func (c controller) GetTestPlayers(w http.ResponseWriter, r *http.Request) {
	count, err := c.prefsService.GetTestPlayerCount(c.getUserIDFromCtx(r.Context()))
	if err != nil {
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to load test player count"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": testPlayersPayload{Count: count}})
}

func (c controller) PutTestPlayers(w http.ResponseWriter, r *http.Request) {
	var req testPlayersPayload
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.prefsService.SetTestPlayerCount(c.getUserIDFromCtx(r.Context()), req.Count); err != nil {
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to store test player count"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": req})
}

type issueAccessTokenPayload struct {
	Mode string `json:"mode" validate:"required,oneof=open join"`
}

type issueAccessTokenResponse struct {
	Token string `json:"token"`
}

func (c controller) IssueAccessToken(w http.ResponseWriter, r *http.Request) {
	var req issueAccessTokenPayload
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	token, err := c.roomService.IssueAccessToken(r.Context(), req.Mode)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to issue access token", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to issue access token"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": issueAccessTokenResponse{Token: token}})
}

type overlayURLResponse struct {
	URL string `json:"url"`
}

// OverlayURL composes the shareable overlay link: room id plus, when a mode
// is requested, a freshly minted one-time access token in the query string.
func (c controller) OverlayURL(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")

	base, err := url.Parse(c.overlayBase)
	if err != nil {
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "overlay base url misconfigured"})
		return
	}

	query := base.Query()
	query.Set("room", roomID)

	if mode := r.URL.Query().Get("mode"); mode != "" {
		token, err := c.roomService.IssueAccessToken(r.Context(), mode)
		if err != nil {
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
			return
		}
		query.Set("token", token)
	}

	base.RawQuery = query.Encode()

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": overlayURLResponse{URL: base.String()}})
}
