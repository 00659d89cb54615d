package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setOf(nums ...int) map[int]bool {
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}

func lineSet(card Card, cells [][2]int) map[int]bool {
	set := make(map[int]bool)
	for _, cell := range cells {
		v := card[cell[0]][cell[1]]
		if v != FreeCell {
			set[v] = true
		}
	}
	return set
}

func TestCheckPatternsRows(t *testing.T) {
	card := Generate(3)
	for r := 0; r < 5; r++ {
		cells := [][2]int{}
		for c := 0; c < 5; c++ {
			cells = append(cells, [2]int{r, c})
		}
		res := CheckPatterns(card, lineSet(card, cells))
		require.NotNil(t, res, "row %d", r)
		assert.Equal(t, PatternRow, res.Pattern)
		assert.Equal(t, r, res.Row)
		assert.Equal(t, -1, res.Col)
	}
}

func TestCheckPatternsColumns(t *testing.T) {
	card := Generate(9)
	// Column 2 contains the free cell, so its set has only four numbers.
	for c := 0; c < 5; c++ {
		cells := [][2]int{}
		for r := 0; r < 5; r++ {
			cells = append(cells, [2]int{r, c})
		}
		res := CheckPatterns(card, lineSet(card, cells))
		require.NotNil(t, res, "col %d", c)
		assert.Equal(t, PatternColumn, res.Pattern)
		assert.Equal(t, c, res.Col)
	}
}

func TestCheckPatternsDiagonals(t *testing.T) {
	card := Generate(21)

	diag := [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	res := CheckPatterns(card, lineSet(card, diag))
	require.NotNil(t, res)
	assert.Equal(t, PatternDiagonal, res.Pattern)

	anti := [][2]int{{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0}}
	res = CheckPatterns(card, lineSet(card, anti))
	require.NotNil(t, res)
	assert.Equal(t, PatternAntiDiagonal, res.Pattern)
}

func TestCheckPatternsCorners(t *testing.T) {
	card := Generate(30)
	corners := [][2]int{{0, 0}, {0, 4}, {4, 0}, {4, 4}}
	res := CheckPatterns(card, lineSet(card, corners))
	require.NotNil(t, res)
	assert.Equal(t, PatternCorners, res.Pattern)
}

func TestCheckPatternsNoWin(t *testing.T) {
	card := Generate(14)
	assert.Nil(t, CheckPatterns(card, setOf()))

	// Every number called except one from each line leaves no pattern.
	all := setOf(card.Numbers()...)
	for _, line := range WinningLines(card) {
		delete(all, line[0])
	}
	assert.Nil(t, CheckPatterns(card, all))
}

func TestCheckPatternsFullCard(t *testing.T) {
	card := Generate(77)
	res := CheckPatterns(card, setOf(card.Numbers()...))
	require.NotNil(t, res)
	// Rows are checked first, so a fully-called card wins on row 0.
	assert.Equal(t, PatternRow, res.Pattern)
	assert.Equal(t, 0, res.Row)
}

func TestCheckPatternsPriorityOrder(t *testing.T) {
	card := Generate(55)
	rowCells := [][2]int{{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}}
	colCells := [][2]int{{0, 3}, {1, 3}, {2, 3}, {3, 3}, {4, 3}}
	called := lineSet(card, rowCells)
	for n := range lineSet(card, colCells) {
		called[n] = true
	}
	res := CheckPatterns(card, called)
	require.NotNil(t, res)
	assert.Equal(t, PatternRow, res.Pattern, "rows outrank columns")
	assert.Equal(t, 1, res.Row)
}
