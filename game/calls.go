package game

import "time"

// CallInterval is the cadence at which sequence numbers are revealed.
const CallInterval = 5 * time.Second

// CallCount returns how many numbers of a seqLen-long sequence have been
// revealed at now. Effective elapsed time is wall-clock time since start
// minus accumulated pause time; the count is monotonic in effective time
// and frozen while a pause window is open. Returns 0 before the first
// call and never more than seqLen.
//
// The ticker, the claim path and the state read all derive "called so
// far" through this one function so they always agree.
func CallCount(seqLen int, startedAt time.Time, paused time.Duration, now time.Time) int {
	if seqLen == 0 {
		return 0
	}
	elapsed := now.Sub(startedAt) - paused
	if elapsed < 0 {
		return 0
	}
	n := int(elapsed/CallInterval) + 1
	if n > seqLen {
		n = seqLen
	}
	return n
}

// CalledNumbers returns the first count numbers of the sequence.
func CalledNumbers(seq []int, count int) []int {
	if count < 0 {
		count = 0
	}
	if count > len(seq) {
		count = len(seq)
	}
	return seq[:count]
}

// CalledSet returns the first count numbers as a membership set.
func CalledSet(seq []int, count int) map[int]bool {
	called := CalledNumbers(seq, count)
	set := make(map[int]bool, len(called))
	for _, n := range called {
		set[n] = true
	}
	return set
}
