package validator

import (
	"context"

	"svw.info/sudokucoach/internal/domain"
)

type FastValidator struct{}

func New() *FastValidator { return &FastValidator{} }

func (v *FastValidator) Validate(ctx context.Context, b *domain.Board) (bool, []domain.CellCoord, error) {
	conf := make([]domain.CellCoord, 0, 8)
	n := b.N
	// rows
	for r := 0; r < n; r++ {
		m := 0
		for c := 0; c < n; c++ {
			val := b.Values[r][c]
			if val == 0 {
				continue
			}
			bit := 1 << val
			if m&bit != 0 {
				conf = append(conf, domain.CellCoord{Row: r, Col: c})
			}
			m |= bit
		}
	}
	// cols
	for c := 0; c < n; c++ {
		m := 0
		for r := 0; r < n; r++ {
			val := b.Values[r][c]
			if val == 0 {
				continue
			}
			bit := 1 << val
			if m&bit != 0 {
				conf = append(conf, domain.CellCoord{Row: r, Col: c})
			}
			m |= bit
		}
	}
	// boxes
	br, bc := b.Variant().Box()
	for r0 := 0; r0 < n; r0 += br {
		for c0 := 0; c0 < n; c0 += bc {
			m := 0
			for dr := 0; dr < br; dr++ {
				for dc := 0; dc < bc; dc++ {
					r := r0 + dr
					c := c0 + dc
					val := b.Values[r][c]
					if val == 0 {
						continue
					}
					bit := 1 << val
					if m&bit != 0 {
						conf = append(conf, domain.CellCoord{Row: r, Col: c})
					}
					m |= bit
				}
			}
		}
	}
	return len(conf) == 0, conf, nil
}
