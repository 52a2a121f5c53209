package connection

// Client describes one websocket connection's place in a room. PlayerID is
// empty for host-page connections, which observe but own no player record.
type Client struct {
	UserID   string
	RoomID   string
	PlayerID string
}
