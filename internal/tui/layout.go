package tui

import (
	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/stage"
)

// Screen geometry. The board sits at a fixed place so mouse coordinates map
// straight back to cells.
const (
	toolbarRow = 0
	bannerRow  = 1
	boardTop   = 2
	boardLeft  = 2
	cellWidth  = 3
)

func boxOf(n int) (br, bc int) {
	v, ok := domain.VariantForSize(n)
	if !ok {
		return n, n
	}
	return v.Box()
}

// cellOrigin is the screen position of the left edge of cell (r,c).
func cellOrigin(n, r, c int) (x, y int) {
	br, bc := boxOf(n)
	return boardLeft + c*cellWidth + c/bc, boardTop + r + r/br
}

func boardHeight(n int) int {
	br, _ := boxOf(n)
	if n == 0 {
		return 0
	}
	return n + n/br - 1
}

func keypadRow(n int) int { return boardTop + boardHeight(n) + 1 }

// cellAt maps a screen position to a board cell.
func cellAt(n, x, y int) (r, c int, ok bool) {
	for r = 0; r < n; r++ {
		for c = 0; c < n; c++ {
			cx, cy := cellOrigin(n, r, c)
			if y == cy && x >= cx && x < cx+cellWidth {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// digitAt maps a keypad column to a digit.
func digitAt(n, x int) (uint8, bool) {
	if x < boardLeft {
		return 0, false
	}
	d := (x-boardLeft)/cellWidth + 1
	if d > n {
		return 0, false
	}
	return uint8(d), true
}

// button is one toolbar entry as drawn.
type button struct {
	ctl    stage.Control
	label  string
	x0, x1 int
}

func toolbar(controls []stage.ControlInfo, variant domain.Variant) []button {
	out := make([]button, 0, len(controls))
	x := 0
	for _, c := range controls {
		label := c.Label
		if c.Name == stage.ControlVariant {
			label += ": " + variant.Key()
		}
		w := len(label) + 2
		out = append(out, button{ctl: c.Name, label: label, x0: x, x1: x + w})
		x += w + 1
	}
	return out
}

func buttonAt(buttons []button, x int) (stage.Control, bool) {
	for _, b := range buttons {
		if x >= b.x0 && x < b.x1 {
			return b.ctl, true
		}
	}
	return "", false
}

// nextVariant cycles through the selector order.
func nextVariant(v domain.Variant) domain.Variant {
	for i, x := range domain.Variants {
		if x == v {
			return domain.Variants[(i+1)%len(domain.Variants)]
		}
	}
	return domain.Classic9
}

// symbol renders a digit: 1-9, then A-G.
func symbol(d uint8) string {
	switch {
	case d == 0:
		return "."
	case d <= 9:
		return string(rune('0' + d))
	default:
		return string(rune('A' + d - 10))
	}
}
