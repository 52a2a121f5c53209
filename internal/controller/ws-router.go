package controller

import (
	"github.com/gigaba/overlay-server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle("ALIVE", wsrouter.Typed(c.handleAlive))

	// timer (host only, checked in the service)
	mux.Handle("TIMER_START", wsrouter.Typed(c.handleTimerStart))
	mux.Handle("TIMER_STOP", wsrouter.Typed(c.handleTimerStop))
	mux.Handle("TIMER_RESET", wsrouter.Typed(c.handleTimerReset))

	// roster
	mux.Handle("SCORE_ADD", wsrouter.Typed(c.handleScoreAdd))
	mux.Handle("PLAYER_MOVE", wsrouter.Typed(c.handlePlayerMove))
	mux.Handle("PROFILE_UPDATE", wsrouter.Typed(c.handleProfileUpdate))

	// flags
	mux.Handle("FLAGS_UPDATE", wsrouter.Typed(c.handleFlagsUpdate))

	return mux
}
