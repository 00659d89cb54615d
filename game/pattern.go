package game

// Pattern identifies which line won.
type Pattern string

const (
	PatternRow          Pattern = "row"
	PatternColumn       Pattern = "col"
	PatternDiagonal     Pattern = "diag_main"
	PatternAntiDiagonal Pattern = "diag_anti"
	PatternCorners      Pattern = "four_corners"
)

// WinResult describes the first satisfied pattern. Row and Col are -1
// unless the pattern is a row or column respectively.
type WinResult struct {
	Pattern Pattern `json:"pattern"`
	Row     int     `json:"row"`
	Col     int     `json:"col"`
}

// CheckPatterns evaluates the card against the called set in fixed
// priority order: rows, columns, main diagonal, anti-diagonal, corners.
// Returns nil when no pattern is satisfied.
func CheckPatterns(card Card, called map[int]bool) *WinResult {
	ok := func(v int) bool {
		return v == FreeCell || called[v]
	}

	for r := 0; r < 5; r++ {
		hit := true
		for c := 0; c < 5; c++ {
			if !ok(card[r][c]) {
				hit = false
				break
			}
		}
		if hit {
			return &WinResult{Pattern: PatternRow, Row: r, Col: -1}
		}
	}

	for c := 0; c < 5; c++ {
		hit := true
		for r := 0; r < 5; r++ {
			if !ok(card[r][c]) {
				hit = false
				break
			}
		}
		if hit {
			return &WinResult{Pattern: PatternColumn, Row: -1, Col: c}
		}
	}

	hit := true
	for i := 0; i < 5; i++ {
		if !ok(card[i][i]) {
			hit = false
			break
		}
	}
	if hit {
		return &WinResult{Pattern: PatternDiagonal, Row: -1, Col: -1}
	}

	hit = true
	for i := 0; i < 5; i++ {
		if !ok(card[i][4-i]) {
			hit = false
			break
		}
	}
	if hit {
		return &WinResult{Pattern: PatternAntiDiagonal, Row: -1, Col: -1}
	}

	if ok(card[0][0]) && ok(card[0][4]) && ok(card[4][0]) && ok(card[4][4]) {
		return &WinResult{Pattern: PatternCorners, Row: -1, Col: -1}
	}

	return nil
}
