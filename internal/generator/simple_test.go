package generator

import (
	"context"
	"testing"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/solver"
	"svw.info/sudokucoach/internal/validator"
)

func TestGenerateAllDifficultiesUnder1s(t *testing.T) {
	s := solver.NewBacktrackingSolver()
	g := NewUniqueGenerator(s)

	cases := []struct {
		name string
		diff domain.Difficulty
	}{
		{"easy", domain.Easy},
		{"medium", domain.Medium},
		{"hard", domain.Hard},
		{"expert", domain.Expert},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			seed := int64(12345)
			p, st, err := g.Generate(ctx, seed, domain.Classic9, tc.diff)
			if err != nil {
				t.Fatalf("Generate(%s) failed: %v", tc.name, err)
			}
			if st.Duration > time.Second {
				t.Fatalf("generation too slow for %s: %v (>1s)", tc.name, st.Duration)
			}
			// basic sanity: count givens (should be at least a valid baseline)
			givens := p.Board.Filled()
			if givens < 17 || givens > 81 {
				t.Fatalf("invalid givens count for %s: %d", tc.name, givens)
			}
			// verify uniqueness
			ok, _, _ := s.Unique(ctx, &p.Board)
			if !ok {
				t.Fatalf("puzzle for %s is not unique", tc.name)
			}
		})
	}
}

func TestGenerateOtherVariants(t *testing.T) {
	s := solver.NewDLXSolver()
	g := NewUniqueGenerator(s)
	for _, v := range []domain.Variant{domain.Mini4, domain.Mega16} {
		t.Run(v.Key(), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			p, _, err := g.Generate(ctx, 7, v, domain.Medium)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if p.Board.N != v.Size() || p.Solution == nil || p.Solution.Filled() != v.Size()*v.Size() {
				t.Fatalf("bad puzzle shape: N=%d solution=%v", p.Board.N, p.Solution)
			}
			ok, conf, _ := validator.New().Validate(ctx, p.Solution)
			if !ok {
				t.Fatalf("solution invalid: %v", conf)
			}
			for r := 0; r < p.Board.N; r++ {
				for c := 0; c < p.Board.N; c++ {
					if got := p.Board.Values[r][c]; got != 0 && got != p.Solution.Values[r][c] {
						t.Fatalf("given (%d,%d)=%d disagrees with solution", r, c, got)
					}
					if p.Board.Fixed[r][c] != (p.Board.Values[r][c] != 0) {
						t.Fatalf("fixed mask out of sync at (%d,%d)", r, c)
					}
				}
			}
		})
	}
}
