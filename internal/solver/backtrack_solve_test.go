package solver

import (
	"context"
	"testing"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/ports"
	"svw.info/sudokucoach/internal/validator"
)

// A classic, solvable Sudoku (0 = empty).
var sample = [][]uint8{
	{5, 3, 0, 0, 7, 0, 0, 0, 0},
	{6, 0, 0, 1, 9, 5, 0, 0, 0},
	{0, 9, 8, 0, 0, 0, 0, 6, 0},
	{8, 0, 0, 0, 6, 0, 0, 0, 3},
	{4, 0, 0, 8, 0, 3, 0, 0, 1},
	{7, 0, 0, 0, 2, 0, 0, 0, 6},
	{0, 6, 0, 0, 0, 0, 2, 8, 0},
	{0, 0, 0, 4, 1, 9, 0, 0, 5},
	{0, 0, 0, 0, 8, 0, 0, 7, 9},
}

var mini = [][]uint8{
	{1, 2, 3, 0},
	{3, 0, 0, 2},
	{2, 0, 0, 3},
	{0, 3, 2, 1},
}

func boardOf(rows [][]uint8) *domain.Board {
	b := domain.NewBoard(len(rows))
	for r := range rows {
		copy(b.Values[r], rows[r])
	}
	return b
}

func TestBacktrackingSolveUnder1s(t *testing.T) {
	in := boardOf(sample)
	s := NewBacktrackingSolver()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, st, err := s.Solve(ctx, in)
	if err != nil {
		t.Fatalf("Solve failed: %v (nodes=%d dur=%v)", err, st.Nodes, st.Duration)
	}
	assertSolved(t, ctx, out)
	if st.Duration > time.Second {
		t.Fatalf("took too long: %v (>1s)", st.Duration)
	}
	t.Logf("Solved in %v, nodes=%d", st.Duration, st.Nodes)
}

func TestSolversAgreeAcrossVariants(t *testing.T) {
	solvers := []struct {
		name string
		s    ports.Solver
	}{
		{"backtrack", NewBacktrackingSolver()},
		{"dlx", NewDLXSolver()},
	}
	boards := []struct {
		name string
		rows [][]uint8
	}{
		{"classic9", sample},
		{"mini4", mini},
	}
	for _, sv := range solvers {
		for _, bd := range boards {
			t.Run(sv.name+"/"+bd.name, func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				in := boardOf(bd.rows)
				out, _, err := sv.s.Solve(ctx, in)
				if err != nil {
					t.Fatalf("Solve: %v", err)
				}
				assertSolved(t, ctx, out)
				for r := range bd.rows {
					for c, v := range bd.rows[r] {
						if v != 0 && out.Values[r][c] != v {
							t.Fatalf("given (%d,%d) changed %d -> %d", r, c, v, out.Values[r][c])
						}
					}
				}
				ok, _, err := sv.s.Unique(ctx, in)
				if err != nil || !ok {
					t.Fatalf("expected unique solution: ok=%v err=%v", ok, err)
				}
			})
		}
	}
}

func TestDLXRejectsConflictingGivens(t *testing.T) {
	b := domain.NewBoard(4)
	b.Values[0][0] = 1
	b.Values[0][1] = 1
	if _, _, err := NewDLXSolver().Solve(context.Background(), b); err == nil {
		t.Fatalf("expected error for duplicate givens in a row")
	}
}

func assertSolved(t *testing.T, ctx context.Context, out *domain.Board) {
	t.Helper()
	for r := 0; r < out.N; r++ {
		for c := 0; c < out.N; c++ {
			if out.Values[r][c] == 0 {
				t.Fatalf("unsolved cell at r=%d c=%d", r, c)
			}
		}
	}
	ok, conf, err := validator.New().Validate(ctx, out)
	if err != nil || !ok {
		t.Fatalf("invalid solution: err=%v conflicts=%v", err, conf)
	}
}
