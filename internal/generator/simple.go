package generator

import (
	"context"
	"math/rand"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/ports"
)

// givenRatio is the share of cells left as clues per difficulty.
func givenRatio(d domain.Difficulty) float64 {
	switch d {
	case domain.Easy:
		return 0.49
	case domain.Medium:
		return 0.42
	case domain.Hard:
		return 0.35
	default:
		return 0.30 // Expert
	}
}

func targetGivens(v domain.Variant, d domain.Difficulty) int {
	n := v.Size()
	return int(float64(n*n) * givenRatio(d))
}

// Generate creates a puzzle with a unique solution using seed, variant and target difficulty.
func (g *UniqueGenerator) Generate(ctx context.Context, seed int64, v domain.Variant, diff domain.Difficulty) (*domain.Puzzle, ports.Stats, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(seed))
	n := v.Size()
	// 1) full random solution
	full := domain.NewBoard(n)
	if n > 9 {
		fillPattern(rng, full)
	} else if !fillRandom(ctx, rng, full) {
		return nil, ports.Stats{}, context.Canceled
	}
	solution := full.Clone()
	// 2) carve out clues while preserving uniqueness
	puz := full // working puzzle grid
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			puz.Fixed[r][c] = true
		}
	}
	positions := make([]int, n*n)
	for i := range positions {
		positions[i] = i
	}
	rng.Shuffle(len(positions), func(i, j int) { positions[i], positions[j] = positions[j], positions[i] })

	target := targetGivens(v, diff)
	deadline := start.Add(900 * time.Millisecond)
	nodes := 0
	givens := n * n

	for _, pos := range positions {
		if time.Now().After(deadline) || ctx.Err() != nil {
			break
		}
		// stop if target reached
		if givens <= target {
			break
		}
		r, c := pos/n, pos%n
		old := puz.Values[r][c]
		puz.Values[r][c] = 0
		puz.Fixed[r][c] = false
		unique, st, err := g.Solver.Unique(ctx, puz)
		nodes += st.Nodes
		if err != nil || !unique {
			// revert
			puz.Values[r][c] = old
			puz.Fixed[r][c] = true
			continue
		}
		givens--
	}

	p := &domain.Puzzle{
		ID:         "",
		Seed:       seed,
		Variant:    v,
		Difficulty: diff,
		Board:      *puz,
		Solution:   solution,
		CreatedAt:  time.Now().UnixNano(),
	}
	return p, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, nil
}

// fillRandom solves an empty grid into a full valid solution by random ordering.
func fillRandom(ctx context.Context, rng *rand.Rand, b *domain.Board) bool {
	n := b.N
	nums := make([]uint8, n)
	for i := range nums {
		nums[i] = uint8(i + 1)
	}
	var dfs func(int, int) bool
	dfs = func(r, c int) bool {
		if ctx.Err() != nil {
			return false
		}
		if r == n {
			return true
		}
		nr, nc := r, c+1
		if nc == n {
			nr, nc = r+1, 0
		}
		// each depth needs its own order; a shared slice would be reshuffled under us
		order := make([]uint8, n)
		copy(order, nums)
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, v := range order {
			if allowed(b, r, c, v) {
				b.Values[r][c] = v
				if dfs(nr, nc) {
					return true
				}
				b.Values[r][c] = 0
			}
		}
		return false
	}
	return dfs(0, 0)
}

// fillPattern builds a valid solution from the canonical shifted pattern and
// shuffles digits, rows within bands, and columns within stacks.
func fillPattern(rng *rand.Rand, b *domain.Board) {
	n := b.N
	br, bc := b.Variant().Box()
	digits := rng.Perm(n)
	rows := bandPerm(rng, n, br)
	cols := bandPerm(rng, n, bc)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			rr, cc := rows[r], cols[c]
			base := (bc*(rr%br) + rr/br + cc) % n
			b.Values[r][c] = uint8(digits[base] + 1)
		}
	}
}

// bandPerm permutes indices 0..n-1 keeping each index inside its band of width w,
// and permutes the bands themselves.
func bandPerm(rng *rand.Rand, n, w int) []int {
	bands := rng.Perm(n / w)
	out := make([]int, 0, n)
	for _, band := range bands {
		for _, off := range rng.Perm(w) {
			out = append(out, band*w+off)
		}
	}
	return out
}

// allowed mirrors row/col/box checks locally for the generator.
func allowed(b *domain.Board, r, c int, v uint8) bool {
	for i := 0; i < b.N; i++ {
		if b.Values[r][i] == v || b.Values[i][c] == v {
			return false
		}
	}
	br, bc := b.Variant().Box()
	r0, c0 := b.BoxOrigin(r, c)
	for dr := 0; dr < br; dr++ {
		for dc := 0; dc < bc; dc++ {
			if b.Values[r0+dr][c0+dc] == v {
				return false
			}
		}
	}
	return true
}
