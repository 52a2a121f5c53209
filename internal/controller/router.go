package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIDMw)
	r.Use(c.requestLoggingMw)

	r.Post("/api/session", c.IssueSession)

	r.Group(func(r chi.Router) {
		r.Use(c.sessionMw)

		r.Post("/api/rooms", c.CreateRoom)
		r.Get("/api/rooms/{room-id}/overlay-url", c.OverlayURL)
		r.Post("/api/access-tokens", c.IssueAccessToken)

		r.Get("/api/prefs/layout", c.GetLayout)
		r.Put("/api/prefs/layout", c.PutLayout)
		r.Put("/api/prefs/layout/side", c.PutLayoutSide)
		r.Get("/api/prefs/profile", c.GetProfile)
		r.Put("/api/prefs/profile", c.PutProfile)
		r.Delete("/api/prefs", c.ResetPrefs)
		r.Get("/api/prefs/test-players", c.GetTestPlayers)
		r.Put("/api/prefs/test-players", c.PutTestPlayers)

		r.HandleFunc("/ws/host/{room-id}", c.HostWS)
		r.HandleFunc("/ws/overlay/{room-id}", c.OverlayWS)
	})

	return r
}
