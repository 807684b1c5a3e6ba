package solver

import "svw.info/sudokucoach/internal/domain"

// BacktrackingSolver is a straightforward recursive solver.
type BacktrackingSolver struct{}

func NewBacktrackingSolver() *BacktrackingSolver { return &BacktrackingSolver{} }

// grid is a working copy of a board's values with its block geometry.
type grid struct {
	n, br, bc int
	v         [][]uint8
}

func newGrid(b *domain.Board) *grid {
	br, bc := b.Variant().Box()
	g := &grid{n: b.N, br: br, bc: bc, v: make([][]uint8, b.N)}
	for r := 0; r < b.N; r++ {
		g.v[r] = make([]uint8, b.N)
		copy(g.v[r], b.Values[r])
	}
	return g
}

// --- helpers used by Solve/Unique (in other files) ---
func (g *grid) isValid(r, c int, v uint8) bool {
	for i := 0; i < g.n; i++ {
		if g.v[r][i] == v || g.v[i][c] == v {
			return false
		}
	}
	r0, c0 := (r/g.br)*g.br, (c/g.bc)*g.bc
	for dr := 0; dr < g.br; dr++ {
		for dc := 0; dc < g.bc; dc++ {
			if g.v[r0+dr][c0+dc] == v {
				return false
			}
		}
	}
	return true
}

func (g *grid) findEmpty() (int, int, bool) {
	for r := 0; r < g.n; r++ {
		for c := 0; c < g.n; c++ {
			if g.v[r][c] == 0 {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// The implementations for Solve and Unique are in backtrack_solve.go and backtrack_unique.go,
// and use the helpers above.
