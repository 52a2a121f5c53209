package room

type Timer struct {
	DurationSeconds int   `json:"duration"`
	StartedAt       int64 `json:"started_at"`
	Running         bool  `json:"running"`
}

type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Score    int    `json:"score"`
	JoinedAt int64  `json:"joined_at"`
}

type Flags struct {
	HostScoreVisible bool `json:"host_score_visible"`
}

type Snapshot struct {
	RoomID  string   `json:"room_id"`
	IsHost  bool     `json:"is_host"`
	Timer   Timer    `json:"timer"`
	Flags   Flags    `json:"flags"`
	Players []Player `json:"players"`
}
