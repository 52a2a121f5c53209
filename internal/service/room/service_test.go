package room

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigaba/overlay-server/internal/repository/connection/inmemory"
	roomRedis "github.com/gigaba/overlay-server/internal/repository/room/redis"
)

func newTestService(t *testing.T) (*service, *miniredis.Miniredis, *clockwork.FakeClock) {
	t.Helper()

	s := miniredis.RunT(t)
	r := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	roomRepo := roomRedis.NewRepo(r, slog.Default())
	connRepo := inmemory.NewRepo(slog.Default())

	service := NewService(roomRepo, connRepo, clock, slog.Default(), &Config{
		Secret:      "test-secret",
		HardRoomTTL: 24 * time.Hour,
		SoftRoomTTL: 6 * time.Hour,
	})

	return service, s, clock
}

func TestRoomFlow(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	hostSession, err := service.IssueSession()
	require.NoError(t, err)
	viewerSession, err := service.IssueSession()
	require.NoError(t, err)

	// create room
	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		HostID: hostSession.UserID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, createRoomResp.RoomID, "room id is empty")
	roomID := createRoomResp.RoomID

	hostConn := &websocket.Conn{}
	connectHostResp, err := service.ConnectHost(ctx, &ConnectHostParams{
		RoomID: roomID,
		UserID: hostSession.UserID,
		Conn:   hostConn,
	})
	require.NoError(t, err)
	assert.True(t, connectHostResp.Snapshot.IsHost, "creator must be host")
	assert.Equal(t, 300, connectHostResp.Snapshot.Timer.DurationSeconds)
	assert.False(t, connectHostResp.Snapshot.Timer.Running)
	assert.Empty(t, connectHostResp.Snapshot.Players)
	t.Log("host connected")

	// viewer joins through a share link
	token, err := service.IssueAccessToken(ctx, AccessModeJoin)
	require.NoError(t, err)

	viewerConn := &websocket.Conn{}
	connectOverlayResp, err := service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID:      roomID,
		UserID:      viewerSession.UserID,
		Conn:        viewerConn,
		Name:        "player one",
		Color:       "#ff0000",
		Icon:        "🎮",
		AccessToken: token,
	})
	require.NoError(t, err)
	assert.True(t, connectOverlayResp.Created, "first join must create the player record")
	assert.Equal(t, AccessModeJoin, connectOverlayResp.Mode)
	assert.True(t, connectOverlayResp.ShowControls)
	assert.False(t, connectOverlayResp.Snapshot.IsHost)
	assert.Equal(t, 0, connectOverlayResp.JoinedPlayer.Score, "new player must start at zero")
	assert.Equal(t, 2, len(connectOverlayResp.Conns), "conns must contain host and viewer")
	t.Log("viewer joined")

	// bare overlay without a token
	bareConn := &websocket.Conn{}
	bareResp, err := service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID: roomID,
		UserID: "spectator",
		Conn:   bareConn,
		Name:   "spectator",
	})
	require.NoError(t, err)
	assert.Empty(t, bareResp.Mode)
	assert.False(t, bareResp.ShowControls, "tokenless overlay must not show controls")

	// only the host scores
	_, err = service.AddScore(ctx, &AddScoreParams{
		RoomID:   roomID,
		SenderID: viewerSession.UserID,
		PlayerID: viewerSession.UserID,
		Delta:    1,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	addScoreResp, err := service.AddScore(ctx, &AddScoreParams{
		RoomID:   roomID,
		SenderID: hostSession.UserID,
		PlayerID: viewerSession.UserID,
		Delta:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, addScoreResp.Score)

	// roster reorder
	movePlayerResp, err := service.MovePlayer(ctx, &MovePlayerParams{
		RoomID:    roomID,
		SenderID:  hostSession.UserID,
		PlayerID:  "spectator",
		Direction: MoveUp,
	})
	require.NoError(t, err)
	require.Equal(t, 2, len(movePlayerResp.Players))
	assert.Equal(t, "spectator", movePlayerResp.Players[0].ID, "moved player must be first")
	assert.Equal(t, viewerSession.UserID, movePlayerResp.Players[1].ID)

	// moving past the edge is a no-op
	movePlayerResp, err = service.MovePlayer(ctx, &MovePlayerParams{
		RoomID:    roomID,
		SenderID:  hostSession.UserID,
		PlayerID:  "spectator",
		Direction: MoveUp,
	})
	require.NoError(t, err)
	assert.Equal(t, "spectator", movePlayerResp.Players[0].ID)

	// flags
	flagsResp, err := service.SetHostScoreVisible(ctx, &SetHostScoreVisibleParams{
		RoomID:   roomID,
		SenderID: hostSession.UserID,
		Visible:  true,
	})
	require.NoError(t, err)
	assert.True(t, flagsResp.Flags.HostScoreVisible)

	// viewer drops, record goes with the connection
	disconnectResp, err := service.Disconnect(ctx, viewerConn)
	require.NoError(t, err)
	assert.Equal(t, roomID, disconnectResp.RoomID)
	assert.Equal(t, viewerSession.UserID, disconnectResp.PlayerID)

	connectHostResp, err = service.ConnectHost(ctx, &ConnectHostParams{
		RoomID: roomID,
		UserID: hostSession.UserID,
		Conn:   &websocket.Conn{},
	})
	require.NoError(t, err)
	require.Equal(t, 1, len(connectHostResp.Snapshot.Players), "disconnected player must be gone")
	assert.Equal(t, "spectator", connectHostResp.Snapshot.Players[0].ID)
	t.Log("viewer disconnected")
}

func TestConnectOverlayRoomNotFound(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID: "000000",
		UserID: "user",
		Conn:   &websocket.Conn{},
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID: "not-a-room-id",
		UserID: "user",
		Conn:   &websocket.Conn{},
	})
	assert.ErrorIs(t, err, ErrInvalidRoomID)
}

func TestScoreDeltasCompose(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host"})
	require.NoError(t, err)
	roomID := createRoomResp.RoomID

	_, err = service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID: roomID,
		UserID: "p1",
		Conn:   &websocket.Conn{},
		Name:   "p1",
	})
	require.NoError(t, err)
	_, err = service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID: roomID,
		UserID: "p2",
		Conn:   &websocket.Conn{},
		Name:   "p2",
	})
	require.NoError(t, err)

	// interleaved deltas from two host tabs compose regardless of order
	for _, delta := range []struct {
		playerID string
		delta    int
	}{
		{"p1", 1}, {"p2", 1}, {"p1", 1}, {"p1", -1}, {"p2", 5}, {"p1", 1},
	} {
		_, err := service.AddScore(ctx, &AddScoreParams{
			RoomID:   roomID,
			SenderID: "host",
			PlayerID: delta.playerID,
			Delta:    delta.delta,
		})
		require.NoError(t, err)
	}

	resp, err := service.AddScore(ctx, &AddScoreParams{
		RoomID:   roomID,
		SenderID: "host",
		PlayerID: "p1",
		Delta:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Score)

	resp, err = service.AddScore(ctx, &AddScoreParams{
		RoomID:   roomID,
		SenderID: "host",
		PlayerID: "p2",
		Delta:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Score)

	// unknown player is rejected, not created
	_, err = service.AddScore(ctx, &AddScoreParams{
		RoomID:   roomID,
		SenderID: "host",
		PlayerID: "ghost",
		Delta:    1,
	})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestTimerLifecycle(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host"})
	require.NoError(t, err)
	roomID := createRoomResp.RoomID

	duration := 90
	startResp, err := service.StartTimer(ctx, &StartTimerParams{
		RoomID:          roomID,
		SenderID:        "host",
		DurationSeconds: &duration,
	})
	require.NoError(t, err)
	assert.True(t, startResp.Timer.Running)
	assert.Equal(t, 90, startResp.Timer.DurationSeconds)
	assert.Equal(t, clock.Now().UnixMilli(), startResp.Timer.StartedAt)

	// stopping folds the elapsed time back into the stored duration
	clock.Advance(30 * time.Second)
	stopResp, err := service.StopTimer(ctx, &StopTimerParams{
		RoomID:   roomID,
		SenderID: "host",
	})
	require.NoError(t, err)
	assert.False(t, stopResp.Timer.Running)
	assert.Equal(t, 60, stopResp.Timer.DurationSeconds)

	resetResp, err := service.ResetTimer(ctx, &ResetTimerParams{
		RoomID:   roomID,
		SenderID: "host",
	})
	require.NoError(t, err)
	assert.False(t, resetResp.Timer.Running)
	assert.Equal(t, 300, resetResp.Timer.DurationSeconds)

	_, err = service.StartTimer(ctx, &StartTimerParams{
		RoomID:   roomID,
		SenderID: "not-the-host",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSessionRoundTrip(t *testing.T) {
	service, _, _ := newTestService(t)

	issued, err := service.IssueSession()
	require.NoError(t, err)
	assert.NotEmpty(t, issued.UserID)
	assert.NotEmpty(t, issued.Token)

	userID, err := service.ParseSession(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.UserID, userID)

	_, err = service.ParseSession("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	other, _, _ := newTestService(t)
	otherIssued, err := other.IssueSession()
	require.NoError(t, err)
	// same secret, so tokens are interchangeable between instances
	_, err = service.ParseSession(otherIssued.Token)
	assert.NoError(t, err)
}

func TestAccessTokenOneTimeUse(t *testing.T) {
	service, s, _ := newTestService(t)
	ctx := context.Background()

	token, err := service.IssueAccessToken(ctx, AccessModeOpen)
	require.NoError(t, err)

	mode, err := service.ConsumeAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, AccessModeOpen, mode)

	// second consume must miss
	_, err = service.ConsumeAccessToken(ctx, token)
	assert.ErrorIs(t, err, ErrAccessTokenNotFound)

	// expiry
	token, err = service.IssueAccessToken(ctx, AccessModeJoin)
	require.NoError(t, err)
	s.FastForward(2*time.Minute + time.Second)
	_, err = service.ConsumeAccessToken(ctx, token)
	assert.ErrorIs(t, err, ErrAccessTokenNotFound)

	_, err = service.IssueAccessToken(ctx, "admin")
	assert.Error(t, err, "unknown mode must be rejected")
}

func TestSweepInactiveRooms(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	// occupied room
	occupied, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host-a"})
	require.NoError(t, err)
	_, err = service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID: occupied.RoomID,
		UserID: "viewer",
		Conn:   &websocket.Conn{},
		Name:   "viewer",
	})
	require.NoError(t, err)

	// empty room with a running countdown
	running, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host-b"})
	require.NoError(t, err)
	_, err = service.StartTimer(ctx, &StartTimerParams{
		RoomID:   running.RoomID,
		SenderID: "host-b",
	})
	require.NoError(t, err)

	// empty idle room
	idle, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host-c"})
	require.NoError(t, err)

	// inside the soft window nothing is touched
	clock.Advance(1 * time.Hour)
	assert.Equal(t, 0, service.SweepInactiveRooms(ctx))

	// past the soft window only the empty idle room goes
	clock.Advance(6 * time.Hour)
	assert.Equal(t, 1, service.SweepInactiveRooms(ctx))

	exists := func(roomID string) bool {
		_, err := service.ConnectHost(ctx, &ConnectHostParams{
			RoomID: roomID,
			UserID: "probe",
			Conn:   &websocket.Conn{},
		})
		return err == nil
	}
	assert.True(t, exists(occupied.RoomID), "occupied room must survive the soft pass")
	assert.True(t, exists(running.RoomID), "running room must survive the soft pass")
	assert.False(t, exists(idle.RoomID), "idle empty room must be swept")

	// past the hard window everything goes
	clock.Advance(24 * time.Hour)
	assert.Equal(t, 2, service.SweepInactiveRooms(ctx))
	assert.False(t, exists(occupied.RoomID))
	assert.False(t, exists(running.RoomID))
}

// sequenceGenerator replays a fixed id sequence, sticking on the last one.
type sequenceGenerator struct {
	ids   []string
	calls int
}

func (g *sequenceGenerator) Generate() string {
	id := g.ids[len(g.ids)-1]
	if g.calls < len(g.ids) {
		id = g.ids[g.calls]
	}
	g.calls++

	return id
}

func newTestServiceWithGenerator(t *testing.T, gen *sequenceGenerator) *service {
	t.Helper()

	s := miniredis.RunT(t)
	r := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	return NewService(
		roomRedis.NewRepo(r, slog.Default()),
		inmemory.NewRepo(slog.Default()),
		clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		slog.Default(),
		&Config{
			Secret:      "test-secret",
			Generator:   gen,
			HardRoomTTL: 24 * time.Hour,
			SoftRoomTTL: 6 * time.Hour,
		},
	)
}

func TestCreateRoomRetriesOnCollision(t *testing.T) {
	gen := &sequenceGenerator{ids: []string{"111111", "111111", "222222"}}
	service := newTestServiceWithGenerator(t, gen)
	ctx := context.Background()

	first, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host-a"})
	require.NoError(t, err)
	assert.Equal(t, "111111", first.RoomID)
	assert.Equal(t, 1, gen.calls)

	// first candidate collides, second is free
	second, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host-b"})
	require.NoError(t, err)
	assert.Equal(t, "222222", second.RoomID)
	assert.Equal(t, 3, gen.calls)
}

func TestCreateRoomFinalAttemptUnchecked(t *testing.T) {
	gen := &sequenceGenerator{ids: []string{"111111"}}
	service := newTestServiceWithGenerator(t, gen)
	ctx := context.Background()

	first, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host-a"})
	require.NoError(t, err)
	require.Equal(t, "111111", first.RoomID)

	// every checked attempt collides; the final attempt takes the id anyway
	second, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host-b"})
	require.NoError(t, err)
	assert.Equal(t, "111111", second.RoomID)
	assert.Equal(t, 8, gen.calls, "six checked attempts plus one unchecked after the first create")

	resp, err := service.ConnectHost(ctx, &ConnectHostParams{
		RoomID: "111111",
		UserID: "host-b",
		Conn:   &websocket.Conn{},
	})
	require.NoError(t, err)
	assert.True(t, resp.Snapshot.IsHost, "the overwriting creator owns the room")
}

func TestProfileWritesAreBounded(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateRoom(ctx, &CreateRoomParams{HostID: "host"})
	require.NoError(t, err)
	roomID := created.RoomID

	// join-time write
	joinResp, err := service.ConnectOverlay(ctx, &ConnectOverlayParams{
		RoomID: roomID,
		UserID: "viewer",
		Conn:   &websocket.Conn{},
		Name:   strings.Repeat("x", 500),
	})
	require.NoError(t, err)
	assert.Equal(t, 24, len([]rune(joinResp.JoinedPlayer.Name)), "join must truncate the name")

	// in-room edit
	resp, err := service.UpdateProfile(ctx, &UpdateProfileParams{
		RoomID:   roomID,
		SenderID: "viewer",
		Name:     strings.Repeat("y", 500),
		Color:    "",
		Icon:     "🎉🎉🎉🎉🎉🎉🎉🎉",
	})
	require.NoError(t, err)
	assert.Equal(t, 24, len([]rune(resp.Player.Name)), "edit must truncate the name")
	assert.Equal(t, "#7c5cff", resp.Player.Color, "empty color must fall back")
	assert.Equal(t, 6, len([]rune(resp.Player.Icon)), "icon must truncate to six runes")

	// the stored record is bounded too, not just the response
	stored, err := service.ConnectHost(ctx, &ConnectHostParams{
		RoomID: roomID,
		UserID: "host",
		Conn:   &websocket.Conn{},
	})
	require.NoError(t, err)
	require.Equal(t, 1, len(stored.Snapshot.Players))
	assert.Equal(t, 24, len([]rune(stored.Snapshot.Players[0].Name)))

	// blank edit falls back to the default identity instead of clobbering
	resp, err = service.UpdateProfile(ctx, &UpdateProfileParams{
		RoomID:   roomID,
		SenderID: "viewer",
		Name:     "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, "サンプル名", resp.Player.Name)
}
