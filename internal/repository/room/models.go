package room

type Room struct {
	HostID           string `redis:"host_id"`
	CreatedAt        int64  `redis:"created_at"`
	LastActiveAt     int64  `redis:"last_active_at"`
	HostScoreVisible bool   `redis:"host_score_visible"`
}

type Timer struct {
	DurationSeconds int   `redis:"duration"`
	StartedAt       int64 `redis:"started_at"`
	Running         bool  `redis:"running"`
}

type Player struct {
	AuthID   string `redis:"auth_id"`
	Name     string `redis:"name"`
	Color    string `redis:"color"`
	Icon     string `redis:"icon"`
	Score    int    `redis:"score"`
	JoinedAt int64  `redis:"joined_at"`
}
