package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallCountProgression(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, CallCount(75, start, 0, start))
	assert.Equal(t, 1, CallCount(75, start, 0, start.Add(4*time.Second)))
	assert.Equal(t, 2, CallCount(75, start, 0, start.Add(5*time.Second)))
	assert.Equal(t, 7, CallCount(75, start, 0, start.Add(30*time.Second)))
}

func TestCallCountClamped(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 75, CallCount(75, start, 0, start.Add(time.Hour)))
	assert.Equal(t, 0, CallCount(0, start, 0, start.Add(time.Minute)))
}

func TestCallCountBeforeStart(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, CallCount(75, start, 0, start.Add(-time.Second)))
	// A pause larger than wall-clock elapsed freezes the count at zero.
	assert.Equal(t, 0, CallCount(75, start, time.Minute, start.Add(30*time.Second)))
}

func TestCallCountPauseFreeze(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	beforePause := CallCount(75, start, 0, start.Add(42*time.Second))
	// 10 seconds pass on the wall clock while 10s of pause accumulates.
	afterResume := CallCount(75, start, 10*time.Second, start.Add(52*time.Second))
	assert.Equal(t, beforePause, afterResume, "calls must not advance during a pause")

	// Once running again the count resumes from where it froze.
	later := CallCount(75, start, 10*time.Second, start.Add(57*time.Second))
	assert.Equal(t, beforePause+1, later)
}

func TestCalledNumbers(t *testing.T) {
	seq := []int{5, 10, 15, 20}
	assert.Equal(t, []int{5, 10}, CalledNumbers(seq, 2))
	assert.Equal(t, seq, CalledNumbers(seq, 9))
	assert.Empty(t, CalledNumbers(seq, -1))
	assert.Equal(t, map[int]bool{5: true, 10: true, 15: true}, CalledSet(seq, 3))
}
