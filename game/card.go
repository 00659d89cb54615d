package game

import "encoding/json"

// FreeCell marks the center free space in a generated card.
const FreeCell = 0

// MaxSeed bounds the selectable card index space; seeds run 1..MaxSeed.
const MaxSeed = 200

// Column ranges: B 1-15, I 16-30, N 31-45, G 46-60, O 61-75.
var columnRanges = [5][2]int{{1, 15}, {16, 30}, {31, 45}, {46, 60}, {61, 75}}

// Card is a 5x5 bingo grid indexed [row][col]. The center cell is FreeCell.
type Card [5][5]int

// mulberry32 is the PRNG shared with the mini-app client. The exact bit
// pattern is part of the card contract: both sides derive the same card
// from the seed alone, so this must never change.
type mulberry32 struct{ state uint32 }

func (m *mulberry32) next() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// seededShuffle returns a Fisher-Yates shuffle of nums driven by mulberry32.
func seededShuffle(nums []int, seed uint32) []int {
	prng := &mulberry32{state: seed}
	out := make([]int, len(nums))
	copy(out, nums)
	for i := len(out) - 1; i > 0; i-- {
		j := int(prng.next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Generate derives the card for a seed. Each column shuffles its own
// 15-number range with an offset seed so columns are independent; the
// first five shuffled values fill the column top to bottom.
func Generate(seed int) Card {
	var card Card
	for col, rng := range columnRanges {
		nums := make([]int, 0, rng[1]-rng[0]+1)
		for n := rng[0]; n <= rng[1]; n++ {
			nums = append(nums, n)
		}
		shuffled := seededShuffle(nums, uint32(seed+col*1000))
		for row := 0; row < 5; row++ {
			card[row][col] = shuffled[row]
		}
	}
	card[2][2] = FreeCell
	return card
}

// Numbers returns the 24 non-free cell values.
func (c Card) Numbers() []int {
	out := make([]int, 0, 24)
	for r := 0; r < 5; r++ {
		for col := 0; col < 5; col++ {
			if c[r][col] != FreeCell {
				out = append(out, c[r][col])
			}
		}
	}
	return out
}

// MarshalJSON emits the grid shape the mini-app renders: numbers with the
// literal "FREE" marker in the center.
func (c Card) MarshalJSON() ([]byte, error) {
	rows := make([][]any, 5)
	for r := 0; r < 5; r++ {
		row := make([]any, 5)
		for col := 0; col < 5; col++ {
			if c[r][col] == FreeCell {
				row[col] = "FREE"
			} else {
				row[col] = c[r][col]
			}
		}
		rows[r] = row
	}
	return json.Marshal(rows)
}

// Letter returns the column letter a called number belongs to.
func Letter(n int) string {
	switch {
	case n >= 1 && n <= 15:
		return "B"
	case n <= 30:
		return "I"
	case n <= 45:
		return "N"
	case n <= 60:
		return "G"
	default:
		return "O"
	}
}
