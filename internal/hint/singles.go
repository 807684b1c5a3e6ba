package hint

import (
	"context"
	"fmt"

	"svw.info/sudokucoach/internal/domain"
)

// Singles implements a minimal Hinter that suggests naked singles.
type Singles struct{}

func NewSingles() *Singles { return &Singles{} }

// Hint returns the first found naked single if max tier allows it.
func (h *Singles) Hint(ctx context.Context, b *domain.Board, max domain.StrategyTier) (domain.Hint, bool, error) {
	if max < domain.StrategySingles {
		return domain.Hint{}, false, nil
	}
	for r := 0; r < b.N; r++ {
		for c := 0; c < b.N; c++ {
			if b.Values[r][c] != 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return domain.Hint{}, false, err
			}
			v, ok := soleCandidate(b, r, c)
			if ok {
				msg := fmt.Sprintf("Single: only %d fits here", v)
				return domain.Hint{
					Message:  msg,
					Cells:    []domain.CellCoord{{Row: r, Col: c}},
					Value:    v,
					Strategy: domain.StrategySingles,
				}, true, nil
			}
		}
	}
	return domain.Hint{}, false, nil
}

func soleCandidate(b *domain.Board, r, c int) (uint8, bool) {
	var last uint8
	count := 0
	for v := uint8(1); int(v) <= b.N; v++ {
		if allowed(b, r, c, v) {
			count++
			last = v
			if count > 1 {
				return 0, false
			}
		}
	}
	return last, count == 1
}

func allowed(b *domain.Board, r, c int, v uint8) bool {
	// row & col
	for i := 0; i < b.N; i++ {
		if b.Values[r][i] == v || b.Values[i][c] == v {
			return false
		}
	}
	// box
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
