package solver

import (
	"context"
	"errors"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/ports"
)

func (s *BacktrackingSolver) Solve(ctx context.Context, b *domain.Board) (*domain.Board, ports.Stats, error) {
	start := time.Now()
	g := newGrid(b)
	nodes := 0
	var dfs func() bool
	dfs = func() bool {
		if ctx.Err() != nil {
			return false
		}
		r, c, ok := g.findEmpty()
		if !ok {
			return true
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
	if !dfs() {
		return nil, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, errors.New("unsolvable or canceled")
	}
	out := b.Clone()
	out.Values = g.v
	return out, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, nil
}
