package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPermutation(t *testing.T, seq []int) {
	t.Helper()
	require.Len(t, seq, SequenceLength)
	seen := make(map[int]bool, SequenceLength)
	for _, n := range seq {
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 75)
		require.False(t, seen[n], "duplicate %d in sequence", n)
		seen[n] = true
	}
}

func TestNewSequencePermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		assertPermutation(t, NewSequence(rng))
	}
}

func TestWinningLines(t *testing.T) {
	card := Generate(8)
	lines := WinningLines(card)
	require.Len(t, lines, 13)
	// Row 2, column 2 and both diagonals cross the free cell.
	assert.Len(t, lines[2], 4)
	assert.Len(t, lines[7], 4)
	assert.Len(t, lines[10], 4)
	assert.Len(t, lines[11], 4)
	assert.Len(t, lines[12], 4)
	assert.Len(t, lines[0], 5)
}

func TestBuildSequenceUnbiased(t *testing.T) {
	assertPermutation(t, BuildSequence(nil, rand.New(rand.NewSource(2))))
}

func TestBuildSequenceBiased(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	favored := Generate(17)
	others := []Card{Generate(18), Generate(19)}

	seq := BuildSequence(&FavoredPick{Card: favored, Others: others}, rng)
	assertPermutation(t, seq)

	// The favored card must complete a pattern within its first line's
	// worth of calls, before any opponent line can be complete.
	var lineLen int
	for _, line := range WinningLines(favored) {
		match := true
		prefix := make(map[int]bool)
		for i := 0; i < len(line) && i < len(seq); i++ {
			prefix[seq[i]] = true
		}
		for _, n := range line {
			if !prefix[n] {
				match = false
				break
			}
		}
		if match {
			lineLen = len(line)
			break
		}
	}
	require.NotZero(t, lineLen, "sequence does not open with a favored winning line")

	res := CheckPatterns(favored, CalledSet(seq, lineLen))
	assert.NotNil(t, res, "favored card should win after %d calls", lineLen)
}
