// Package prefs owns per-user display preferences: the overlay layout of
// the timer and point parts, the local profile, and the synthetic test-mode
// player count. Preferences stay on this server and are never replicated
// into room state.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gigaba/overlay-server/internal/repository/prefs"
)

var (
	ErrSideConflict = errors.New("timer and point parts must not share a side")
	ErrUnknownPart  = errors.New("unknown layout part")
	ErrUnknownSide  = errors.New("unknown side")
)

type iPrefsStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

type service struct {
	store  iPrefsStore
	logger *slog.Logger
}

func NewService(store iPrefsStore, logger *slog.Logger) *service {
	return &service{
		store:  store,
		logger: logger,
	}
}

func layoutKey(userID string) string {
	return "layout_" + userID
}

func profileKey(userID string) string {
	return "profile_" + userID
}

func testPlayersKey(userID string) string {
	return "testplayers_" + userID
}

func (s *service) GetLayout(userID string) (Layout, error) {
	raw, err := s.store.Get(layoutKey(userID))
	if err != nil && !errors.Is(err, prefs.ErrNotFound) {
		return Layout{}, fmt.Errorf("failed to load layout: %w", err)
	}

	return LoadLayout(raw), nil
}

// SaveLayout persists a full layout after normalizing it. A side conflict in
// a full save is rejected, not repaired: the caller edited both parts and
// must resolve it.
func (s *service) SaveLayout(userID string, layout Layout) (Layout, error) {
	if !isSide(layout.Timer.Side) || !isSide(layout.Point.Side) {
		return Layout{}, ErrUnknownSide
	}
	if layout.Timer.Side == layout.Point.Side {
		return Layout{}, ErrSideConflict
	}

	layout.Timer.Scale = clampScale(layout.Timer.Scale)
	layout.Point.Scale = clampScale(layout.Point.Scale)

	if err := s.saveJSON(layoutKey(userID), layout); err != nil {
		return Layout{}, err
	}

	return layout, nil
}

// UpdateLayoutSide applies an interactive single-side edit. When the edit
// would collide with the other part, the changed field reverts to its last
// known-valid value (the stored one) and the conflict is reported; the
// other part is left untouched.
func (s *service) UpdateLayoutSide(userID, part, side string) (Layout, bool, error) {
	if !isSide(side) {
		return Layout{}, false, ErrUnknownSide
	}

	layout, err := s.GetLayout(userID)
	if err != nil {
		return Layout{}, false, err
	}

	switch part {
	case PartTimer:
		if side == layout.Point.Side {
			return layout, true, nil
		}
		layout.Timer.Side = side
	case PartPoint:
		if side == layout.Timer.Side {
			return layout, true, nil
		}
		layout.Point.Side = side
	default:
		return Layout{}, false, ErrUnknownPart
	}

	if err := s.saveJSON(layoutKey(userID), layout); err != nil {
		return Layout{}, false, err
	}

	return layout, false, nil
}

func (s *service) GetProfile(userID string) (Profile, error) {
	raw, err := s.store.Get(profileKey(userID))
	if err != nil && !errors.Is(err, prefs.ErrNotFound) {
		return Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	return LoadProfile(raw), nil
}

func (s *service) SaveProfile(userID string, profile Profile) (Profile, error) {
	profile = BoundProfile(profile)

	if err := s.saveJSON(profileKey(userID), profile); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

// Reset drops the stored layout and profile so the next load yields
// defaults.
func (s *service) Reset(userID string) error {
	for _, key := range []string{layoutKey(userID), profileKey(userID)} {
		if err := s.store.Delete(key); err != nil && !errors.Is(err, prefs.ErrNotFound) {
			return err
		}
	}

	return nil
}

func (s *service) GetTestPlayerCount(userID string) (int, error) {
	raw, err := s.store.Get(testPlayersKey(userID))
	if err != nil {
		if errors.Is(err, prefs.ErrNotFound) {
			return 1, nil
		}
		return 0, err
	}

	count, err := strconv.Atoi(string(raw))
	if err != nil || count < 1 {
		return 1, nil
	}

	return count, nil
}

func (s *service) SetTestPlayerCount(userID string, count int) error {
	if count < 1 {
		count = 1
	}

	return s.store.Set(testPlayersKey(userID), []byte(strconv.Itoa(count)))
}

func (s *service) saveJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode prefs record: %w", err)
	}

	if err := s.store.Set(key, raw); err != nil {
		return fmt.Errorf("failed to store prefs record: %w", err)
	}

	return nil
}
