package solver

import (
	"context"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/ports"
)

// Unique counts solutions up to 2 and reports whether exactly one exists.
func (s *BacktrackingSolver) Unique(ctx context.Context, b *domain.Board) (bool, ports.Stats, error) {
	start := time.Now()
	g := newGrid(b)
	nodes := 0
	count := 0

	var dfs func() bool
	dfs = func() bool {
		if ctx.Err() != nil || count >= 2 {
			return true // stop early
		}
		r, c, ok := g.findEmpty()
		if !ok {
			count++
			return count >= 2
		}
		for v := uint8(1); int(v) <= g.n; v++ {
			nodes++
			if g.isValid(r, c, v) {
				g.v[r][c] = v
				if dfs() {
					return true
				}
				g.v[r][c] = 0
			}
		}
		return false
	}
	_ = dfs()
	return count == 1, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, ctx.Err()
}
