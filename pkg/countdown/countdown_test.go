package countdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func TestRemainingStopped(t *testing.T) {
	state := State{DurationSeconds: 300, StartedAt: 0, Running: false}

	assert.Equal(t, float64(300), Remaining(state, 0))
	assert.Equal(t, float64(300), Remaining(state, 1_000_000_000))

	// running flag without a start instant still reports the duration
	state.Running = true
	assert.Equal(t, float64(300), Remaining(state, 1_000_000_000))
}

func TestRemainingRunning(t *testing.T) {
	startedAt := int64(1_700_000_000_000)
	state := State{DurationSeconds: 300, StartedAt: startedAt, Running: true}

	assert.Equal(t, float64(300), Remaining(state, startedAt))
	assert.Equal(t, float64(175), Remaining(state, startedAt+125_000))
	assert.Equal(t, float64(0), Remaining(state, startedAt+400_000))

	// clock skew before the start instant clamps to the duration
	assert.Equal(t, float64(300), Remaining(state, startedAt-5_000))
}

func TestRemainingMonotonic(t *testing.T) {
	startedAt := int64(1_700_000_000_000)
	state := State{DurationSeconds: 120, StartedAt: startedAt, Running: true}

	prev := Remaining(state, startedAt)
	for offset := int64(0); offset <= 200_000; offset += 7_000 {
		cur := Remaining(state, startedAt+offset)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, float64(0))
		prev = cur
	}
}

func TestStopStartRoundTrip(t *testing.T) {
	t0 := int64(1_700_000_000_000)

	state := Start(State{}, intPtr(300), t0)
	state = Stop(state, t0+10_000)
	assert.Equal(t, 290, state.DurationSeconds)
	assert.Equal(t, int64(0), state.StartedAt)
	assert.False(t, state.Running)

	state = Start(state, nil, t0+10_000)
	assert.True(t, state.Running)
	assert.Equal(t, float64(290), Remaining(state, t0+10_000))
}

func TestStopCeilsFractionalRemainder(t *testing.T) {
	t0 := int64(1_700_000_000_000)

	state := Start(State{}, intPtr(60), t0)
	state = Stop(state, t0+1_500)
	assert.Equal(t, 59, state.DurationSeconds)
}

func TestStartNegativeDurationClamped(t *testing.T) {
	state := Start(State{}, intPtr(-10), 1000)
	assert.Equal(t, 0, state.DurationSeconds)
}

func TestReset(t *testing.T) {
	t0 := int64(1_700_000_000_000)
	state := Start(State{}, intPtr(120), t0)

	state = Reset(state, intPtr(45))
	assert.Equal(t, State{DurationSeconds: 45}, state)

	state = Reset(state, nil)
	assert.Equal(t, State{DurationSeconds: DefaultDurationSeconds}, state)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00:00", Format(0))
	assert.Equal(t, "00:00", Format(-5))
	assert.Equal(t, "00:59", Format(59.9))
	assert.Equal(t, "05:00", Format(300))
	assert.Equal(t, "59:59", Format(3599))
	assert.Equal(t, "1:00:00", Format(3600))
	assert.Equal(t, "2:05:07", Format(2*3600+5*60+7))
}
