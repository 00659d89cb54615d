package game

import "math/rand"

// SequenceLength is the full call sequence size, a permutation of 1..75.
const SequenceLength = 75

// FavoredPick describes the selection a biased sequence should favor,
// along with every other card in the round.
type FavoredPick struct {
	Card   Card
	Others []Card
}

// NewSequence returns a uniform random permutation of 1..75.
func NewSequence(rng *rand.Rand) []int {
	seq := make([]int, SequenceLength)
	for i := range seq {
		seq[i] = i + 1
	}
	rng.Shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })
	return seq
}

// WinningLines returns every line of the card that completes a pattern,
// as slices of the non-free numbers required: five rows, five columns,
// both diagonals and the four corners.
func WinningLines(card Card) [][]int {
	lines := make([][]int, 0, 13)

	for r := 0; r < 5; r++ {
		line := make([]int, 0, 5)
		for c := 0; c < 5; c++ {
			if card[r][c] != FreeCell {
				line = append(line, card[r][c])
			}
		}
		lines = append(lines, line)
	}
	for c := 0; c < 5; c++ {
		line := make([]int, 0, 5)
		for r := 0; r < 5; r++ {
			if card[r][c] != FreeCell {
				line = append(line, card[r][c])
			}
		}
		lines = append(lines, line)
	}
	diag := make([]int, 0, 5)
	anti := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		if card[i][i] != FreeCell {
			diag = append(diag, card[i][i])
		}
		if card[i][4-i] != FreeCell {
			anti = append(anti, card[i][4-i])
		}
	}
	lines = append(lines, diag, anti)
	lines = append(lines, []int{card[0][0], card[0][4], card[4][0], card[4][4]})
	return lines
}

// BuildSequence is the single seam for sequence generation. With no
// favored pick it returns a uniform permutation. With one, it front-loads
// the favored card's cheapest winning line (fewest numbers shared with
// opponents' cards) so that line completes first, then shuffles the rest.
func BuildSequence(pick *FavoredPick, rng *rand.Rand) []int {
	if pick == nil {
		return NewSequence(rng)
	}

	otherNumbers := make(map[int]bool)
	for _, other := range pick.Others {
		for _, n := range other.Numbers() {
			otherNumbers[n] = true
		}
	}

	var best []int
	bestShared := -1
	for _, line := range WinningLines(pick.Card) {
		shared := 0
		for _, n := range line {
			if otherNumbers[n] {
				shared++
			}
		}
		if bestShared < 0 || shared < bestShared {
			bestShared = shared
			best = line
		}
	}
	if best == nil {
		return NewSequence(rng)
	}

	inLine := make(map[int]bool, len(best))
	for _, n := range best {
		inLine[n] = true
	}
	rest := make([]int, 0, SequenceLength-len(best))
	for n := 1; n <= SequenceLength; n++ {
		if !inLine[n] {
			rest = append(rest, n)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	seq := make([]int, 0, SequenceLength)
	seq = append(seq, best...)
	return append(seq, rest...)
}
