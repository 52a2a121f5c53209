// Package countdown implements a pausable countdown as a (duration,
// start-instant, running) triple. Remaining time is derived from the wall
// clock instead of a ticking counter, so observers with different render
// cadences agree on the value and a reload recomputes it from stored state.
package countdown

import (
	"fmt"
	"math"
)

const DefaultDurationSeconds = 300

type State struct {
	// DurationSeconds is the remaining budget as of StartedAt, not the
	// original total.
	DurationSeconds int `json:"duration" redis:"duration"`
	// StartedAt is epoch milliseconds, 0 when the countdown is not running.
	StartedAt int64 `json:"started_at" redis:"started_at"`
	Running   bool  `json:"running" redis:"running"`
}

// Remaining returns the seconds left at nowMs, clamped to [0, duration].
// A stopped or never-started countdown reports its duration unchanged.
func Remaining(s State, nowMs int64) float64 {
	duration := float64(s.DurationSeconds)
	if !s.Running || s.StartedAt == 0 {
		return duration
	}

	elapsed := float64(nowMs-s.StartedAt) / 1000
	remaining := duration - elapsed
	if remaining < 0 {
		return 0
	}
	if remaining > duration {
		return duration
	}

	return remaining
}

// Start begins (or restarts) the countdown at nowMs. A nil durationSeconds
// keeps the current duration, which after Stop is the snapshotted remainder.
func Start(s State, durationSeconds *int, nowMs int64) State {
	duration := s.DurationSeconds
	if durationSeconds != nil {
		duration = *durationSeconds
	}
	if duration < 0 {
		duration = 0
	}

	return State{
		DurationSeconds: duration,
		StartedAt:       nowMs,
		Running:         true,
	}
}

// Stop snapshots the computed remainder back into the duration and clears
// the start instant, so a later Start(nil) resumes from the same value.
func Stop(s State, nowMs int64) State {
	remaining := int(math.Ceil(Remaining(s, nowMs)))
	if remaining < 0 {
		remaining = 0
	}

	return State{
		DurationSeconds: remaining,
		StartedAt:       0,
		Running:         false,
	}
}

// Reset stops the countdown and rewinds it to durationSeconds, or to
// DefaultDurationSeconds when nil.
func Reset(s State, durationSeconds *int) State {
	duration := DefaultDurationSeconds
	if durationSeconds != nil {
		duration = *durationSeconds
	}
	if duration < 0 {
		duration = 0
	}

	return State{
		DurationSeconds: duration,
		StartedAt:       0,
		Running:         false,
	}
}

// Format renders seconds as H:MM:SS when at least an hour remains, MM:SS
// otherwise. Values are floor-truncated and never negative.
func Format(seconds float64) string {
	s := int(math.Floor(seconds))
	if s < 0 {
		s = 0
	}

	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}

	return fmt.Sprintf("%02d:%02d", m, sec)
}
