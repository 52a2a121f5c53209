package room

type SetRoomParams struct {
	RoomID    string
	HostID    string
	CreatedAt int64
}

type SetTimerParams struct {
	RoomID          string
	DurationSeconds int
	StartedAt       int64
	Running         bool
}

type UpsertPlayerParams struct {
	RoomID   string
	PlayerID string
	AuthID   string
	Name     string
	Color    string
	Icon     string
	JoinedAt int64
}

type RemovePlayerParams struct {
	RoomID   string
	PlayerID string
}

type GetPlayerParams struct {
	RoomID   string
	PlayerID string
}

type AddScoreParams struct {
	RoomID   string
	PlayerID string
	Delta    int
}

type SwapPlayerOrderParams struct {
	RoomID        string
	PlayerID      string
	OtherPlayerID string
}

type SetAccessTokenParams struct {
	Token string
	Mode  string
}
