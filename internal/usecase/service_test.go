package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/generator"
	"svw.info/sudokucoach/internal/hint"
	"svw.info/sudokucoach/internal/solver"
	"svw.info/sudokucoach/internal/validator"
)

func TestUnconfiguredService(t *testing.T) {
	u := &Service{}
	ctx := context.Background()
	if _, _, err := u.Solve(ctx, domain.NewBoard(4)); !errors.Is(err, errNotConfigured) {
		t.Fatalf("Solve err = %v", err)
	}
	if _, err := u.NewPuzzle(ctx, domain.Mini4, domain.Easy); !errors.Is(err, errNotConfigured) {
		t.Fatalf("NewPuzzle err = %v", err)
	}
	if _, err := u.List(ctx); !errors.Is(err, errNotConfigured) {
		t.Fatalf("List err = %v", err)
	}
}

func TestNewPuzzleCarriesSolution(t *testing.T) {
	s := solver.NewDLXSolver()
	u := NewService(s, generator.NewUniqueGenerator(s), validator.New(), hint.NewSingles(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := u.NewPuzzle(ctx, domain.Mini4, domain.Easy)
	if err != nil {
		t.Fatalf("NewPuzzle: %v", err)
	}
	if p.Variant != domain.Mini4 || p.Solution == nil {
		t.Fatalf("unexpected puzzle %+v", p)
	}
	ok, _, err := u.Validate(ctx, p.Solution)
	if err != nil || !ok {
		t.Fatalf("solution invalid: ok=%v err=%v", ok, err)
	}
}
