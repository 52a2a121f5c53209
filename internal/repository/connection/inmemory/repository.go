package inmemory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gigaba/overlay-server/internal/repository/connection"
)

type repo struct {
	clients map[*websocket.Conn]connection.Client
	byRoom  map[string]map[*websocket.Conn]struct{}
	mu      sync.RWMutex
	logger  *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		clients: make(map[*websocket.Conn]connection.Client),
		byRoom:  make(map[string]map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

func (r *repo) Add(conn *websocket.Conn, client connection.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[conn]; ok {
		r.logger.Debug("connection already registered", "room_id", client.RoomID, "user_id", client.UserID)
		return connection.ErrAlreadyExists
	}

	r.clients[conn] = client
	conns, ok := r.byRoom[client.RoomID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		r.byRoom[client.RoomID] = conns
	}
	conns[conn] = struct{}{}

	return nil
}

// Remove unregisters the connection and returns what it was, so the caller
// can run the player's disconnect cleanup.
func (r *repo) Remove(conn *websocket.Conn) (connection.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[conn]
	if !ok {
		return connection.Client{}, connection.ErrNotFound
	}

	delete(r.clients, conn)
	if conns, ok := r.byRoom[client.RoomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.byRoom, client.RoomID)
		}
	}

	return client, nil
}

func (r *repo) GetClient(conn *websocket.Conn) (connection.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[conn]
	if !ok {
		return connection.Client{}, connection.ErrNotFound
	}

	return client, nil
}

func (r *repo) GetConnsByRoomID(roomID string) []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*websocket.Conn, 0, len(r.byRoom[roomID]))
	for conn := range r.byRoom[roomID] {
		conns = append(conns, conn)
	}

	return conns
}
