package controller

import (
	"context"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// broadcast fans a message out to every connection in the room, including
// the sender's own: each client re-renders idempotently from whatever
// per-key update arrives, in any order.
func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, out *Output) error {
	for _, conn := range conns {
		if err := conn.WriteJSON(out); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
		}
	}

	return nil
}
