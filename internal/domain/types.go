package domain

import "encoding/json"

// Board holds current values and which cells are fixed givens.
// Values and Fixed are N×N.
type Board struct {
	N      int       `json:"n"`
	Values [][]uint8 `json:"board"`
	Fixed  [][]bool  `json:"fixed,omitempty"`
}

// NewBoard returns an empty n×n board.
func NewBoard(n int) *Board {
	b := &Board{N: n, Values: make([][]uint8, n), Fixed: make([][]bool, n)}
	for r := 0; r < n; r++ {
		b.Values[r] = make([]uint8, n)
		b.Fixed[r] = make([]bool, n)
	}
	return b
}

// Clone returns a deep copy of b.
func (b *Board) Clone() *Board {
	out := NewBoard(b.N)
	for r := 0; r < b.N; r++ {
		copy(out.Values[r], b.Values[r])
		if r < len(b.Fixed) {
			copy(out.Fixed[r], b.Fixed[r])
		}
	}
	return out
}

// InBounds reports whether (r,c) is a cell of the board.
func (b *Board) InBounds(r, c int) bool {
	return r >= 0 && c >= 0 && r < b.N && c < b.N
}

// Filled counts non-empty cells.
func (b *Board) Filled() int {
	n := 0
	for r := range b.Values {
		for _, v := range b.Values[r] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Variant returns the variant matching the board dimension.
func (b *Board) Variant() Variant {
	v, _ := VariantForSize(b.N)
	return v
}

// BoxOrigin returns the top-left cell of the block containing (r,c).
func (b *Board) BoxOrigin(r, c int) (int, int) {
	br, bc := b.Variant().Box()
	return (r / br) * br, (c / bc) * bc
}

// MarshalJSON writes rows as number arrays; encoding/json would otherwise
// turn each []uint8 row into a base64 string.
func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]int, len(b.Values))
	for r, row := range b.Values {
		rows[r] = make([]int, len(row))
		for c, v := range row {
			rows[r][c] = int(v)
		}
	}
	return json.Marshal(struct {
		N      int      `json:"n"`
		Values [][]int  `json:"board"`
		Fixed  [][]bool `json:"fixed,omitempty"`
	}{b.N, rows, b.Fixed})
}

// CellCoord identifies a cell on the board.
type CellCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Hint describes a strategy suggestion for the UI.
type Hint struct {
	Message  string       `json:"message,omitempty"`
	Cells    []CellCoord  `json:"cells,omitempty"`
	Value    uint8        `json:"value,omitempty"`
	Strategy StrategyTier `json:"strategy,omitempty"`
}

// Puzzle is a persisted Sudoku with metadata.
type Puzzle struct {
	ID         string     `json:"id,omitempty"`
	Seed       int64      `json:"seed,omitempty"`
	Variant    Variant    `json:"variant"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Board      Board      `json:"board"`
	Solution   *Board     `json:"solution,omitempty"`
	CreatedAt  int64      `json:"createdAt,omitempty"`
	// Optional user metadata
	Name  string `json:"name,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// PuzzleMeta is a lightweight listing entry.
type PuzzleMeta struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Variant    Variant    `json:"variant"`
	Difficulty Difficulty `json:"difficulty"`
	CreatedAt  int64      `json:"createdAt"`
}
