package hint

import (
	"context"
	"testing"

	"svw.info/sudokucoach/internal/domain"
)

func TestSinglesFindsLastDigit(t *testing.T) {
	b := domain.NewBoard(4)
	rows := [][]uint8{
		{1, 2, 3, 0},
		{3, 4, 1, 2},
		{2, 1, 4, 3},
		{4, 3, 2, 1},
	}
	for r := range rows {
		copy(b.Values[r], rows[r])
	}
	h, ok, err := NewSingles().Hint(context.Background(), b, domain.StrategySingles)
	if err != nil || !ok {
		t.Fatalf("expected hint: ok=%v err=%v", ok, err)
	}
	if h.Value != 4 || h.Cells[0] != (domain.CellCoord{Row: 0, Col: 3}) {
		t.Fatalf("unexpected hint %+v", h)
	}
}

func TestSinglesNoneOnEmptyBoard(t *testing.T) {
	_, ok, err := NewSingles().Hint(context.Background(), domain.NewBoard(9), domain.StrategyXWing)
	if err != nil || ok {
		t.Fatalf("empty board should have no single: ok=%v err=%v", ok, err)
	}
}
