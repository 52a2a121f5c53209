package prefs

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prefsrepo "github.com/gigaba/overlay-server/internal/repository/prefs"
)

type memStore struct {
	records map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string][]byte)}
}

func (m *memStore) Get(key string) ([]byte, error) {
	raw, ok := m.records[key]
	if !ok {
		return nil, prefsrepo.ErrNotFound
	}
	return raw, nil
}

func (m *memStore) Set(key string, value []byte) error {
	m.records[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	if _, ok := m.records[key]; !ok {
		return prefsrepo.ErrNotFound
	}
	delete(m.records, key)
	return nil
}

func TestLoadLayoutDefaults(t *testing.T) {
	layout := LoadLayout(nil)
	assert.Equal(t, DefaultLayout(), layout)

	layout = LoadLayout([]byte("not json at all"))
	assert.Equal(t, DefaultLayout(), layout)
}

func TestLoadLayoutMalformedFields(t *testing.T) {
	layout := LoadLayout([]byte(`{
		"timer": {"visible": 1, "side": "diagonal", "scale": 99},
		"point": {"visible": "", "side": "left", "scale": 0.1}
	}`))

	assert.True(t, layout.Timer.Visible)
	assert.Equal(t, SideTop, layout.Timer.Side, "unknown side falls back to default")
	assert.Equal(t, 2.0, layout.Timer.Scale, "scale clamped to upper bound")

	assert.False(t, layout.Point.Visible, "empty string coerces to false")
	assert.Equal(t, SideLeft, layout.Point.Side)
	assert.Equal(t, 0.5, layout.Point.Scale, "scale clamped to lower bound")
}

func TestLoadLayoutRepairsSideConflict(t *testing.T) {
	layout := LoadLayout([]byte(`{"timer": {"side": "top"}, "point": {"side": "top"}}`))

	assert.Equal(t, SideTop, layout.Timer.Side, "primary part keeps its side")
	assert.NotEqual(t, layout.Timer.Side, layout.Point.Side)
	assert.Contains(t, []string{SideBottom, SideLeft, SideRight}, layout.Point.Side)
}

func TestUpdateLayoutSideRevertsOnConflict(t *testing.T) {
	store := newMemStore()
	service := NewService(store, slog.Default())

	_, err := service.SaveLayout("u1", Layout{
		Timer: LayoutPart{Visible: true, Side: SideTop, Scale: 1},
		Point: LayoutPart{Visible: true, Side: SideRight, Scale: 1},
	})
	require.NoError(t, err)

	layout, conflict, err := service.UpdateLayoutSide("u1", PartTimer, SideRight)
	require.NoError(t, err)
	assert.True(t, conflict)
	assert.Equal(t, SideTop, layout.Timer.Side, "changed field reverts to last valid value")
	assert.Equal(t, SideRight, layout.Point.Side, "other field untouched")

	// a non-conflicting edit goes through and persists
	layout, conflict, err = service.UpdateLayoutSide("u1", PartTimer, SideLeft)
	require.NoError(t, err)
	assert.False(t, conflict)
	assert.Equal(t, SideLeft, layout.Timer.Side)

	stored, err := service.GetLayout("u1")
	require.NoError(t, err)
	assert.Equal(t, SideLeft, stored.Timer.Side)
}

func TestSaveLayoutRejectsConflict(t *testing.T) {
	service := NewService(newMemStore(), slog.Default())

	_, err := service.SaveLayout("u1", Layout{
		Timer: LayoutPart{Side: SideBottom, Scale: 1},
		Point: LayoutPart{Side: SideBottom, Scale: 1},
	})
	assert.ErrorIs(t, err, ErrSideConflict)
}

func TestDisabledSides(t *testing.T) {
	layout := Layout{
		Timer: LayoutPart{Side: SideTop},
		Point: LayoutPart{Side: SideRight},
	}

	disabled := layout.DisabledSides()
	assert.Equal(t, SideRight, disabled[PartTimer])
	assert.Equal(t, SideTop, disabled[PartPoint])
}

func TestLoadProfileBoundsMalformedInput(t *testing.T) {
	profile := LoadProfile([]byte(`{"name": "` + strings.Repeat("x", 500) + `", "color": 42, "icon": "🎉🎉🎉🎉🎉🎉🎉🎉"}`))

	assert.Len(t, []rune(profile.Name), 24, "oversized name truncates")
	assert.Equal(t, DefaultProfile().Color, profile.Color, "non-string color falls back")
	assert.Len(t, []rune(profile.Icon), 6, "icon truncates by rune")
}

func TestLoadProfileEmptyFallsBack(t *testing.T) {
	profile := LoadProfile([]byte(`{"name": "   ", "color": "", "icon": ""}`))
	assert.Equal(t, DefaultProfile(), profile)
}

func TestLoadProfileDataURIIcon(t *testing.T) {
	icon := "data:image/png;base64," + strings.Repeat("A", 64)
	profile := LoadProfile([]byte(`{"name": "n", "color": "#fff", "icon": "` + icon + `"}`))
	assert.Equal(t, icon, profile.Icon, "data-URI icons keep their full value")

	huge := "data:image/png;base64," + strings.Repeat("A", 256*1024)
	profile = LoadProfile([]byte(`{"name": "n", "color": "#fff", "icon": "` + huge + `"}`))
	assert.Equal(t, DefaultProfile().Icon, profile.Icon, "oversized data URI falls back")
}

func TestTestPlayerCount(t *testing.T) {
	service := NewService(newMemStore(), slog.Default())

	count, err := service.GetTestPlayerCount("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "unset count defaults to 1")

	require.NoError(t, service.SetTestPlayerCount("u1", 4))
	count, err = service.GetTestPlayerCount("u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	require.NoError(t, service.SetTestPlayerCount("u1", -2))
	count, err = service.GetTestPlayerCount("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "counts below 1 clamp")
}

func TestResetDropsStoredPrefs(t *testing.T) {
	store := newMemStore()
	service := NewService(store, slog.Default())

	_, err := service.SaveProfile("u1", Profile{Name: "streamer", Color: "#123", Icon: "🔥"})
	require.NoError(t, err)

	require.NoError(t, service.Reset("u1"))

	profile, err := service.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), profile)

	// resetting again is a no-op, not an error
	require.NoError(t, service.Reset("u1"))
}
