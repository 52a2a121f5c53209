// Package wsrouter routes typed JSON messages read from a websocket
// connection to registered handlers.
package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type WSRouter struct {
	routes map[string]HandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// Typed adapts a handler with a concrete payload type into a HandlerFunc.
func Typed[T any](handler func(ctx context.Context, conn *websocket.Conn, input T) error) HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("failed to parse payload: %w", err)
			}
		}

		return handler(ctx, conn, input)
	}
}

// ServeConn reads messages until the connection fails and dispatches each to
// its handler. Handler errors are reported to the sender only, an unknown
// message type likewise.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			conn.WriteJSON(map[string]string{"type": "ERROR", "error": "unknown message type"})
			continue
		}

		if err := handler(ctx, conn, msg.Payload); err != nil {
			conn.WriteJSON(map[string]string{"type": "ERROR", "error": err.Error()})
		}
	}
}
