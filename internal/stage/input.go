package stage

import (
	"strings"

	"svw.info/sudokucoach/internal/domain"
)

// Key names understood by KeyDown.
const (
	ArrowUp    = "up"
	ArrowDown  = "down"
	ArrowLeft  = "left"
	ArrowRight = "right"
	Backspace  = "backspace"
	Delete     = "delete"
	Escape     = "esc"
)

// DigitForKey maps a key to a digit for an n×n board: "1".."9", then
// "a".."g" for 10..16.
func DigitForKey(key string, n int) (uint8, bool) {
	if len(key) != 1 {
		return 0, false
	}
	ch := strings.ToLower(key)[0]
	var d int
	switch {
	case ch >= '1' && ch <= '9':
		d = int(ch - '0')
	case ch >= 'a' && ch <= 'g':
		d = int(ch-'a') + 10
	default:
		return 0, false
	}
	if d > n {
		return 0, false
	}
	return uint8(d), true
}

// SetLocks replaces the three input gates.
func (s *Stage) SetLocks(l Locks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.locks == l {
		return
	}
	s.locks = l
	s.changedLocked()
}

// Locks returns the current input gates.
func (s *Stage) Locks() Locks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks
}

// SetInputInterceptor installs fn to run before any keyboard handling.
// When fn returns true the Stage skips its default handling of that key;
// key events are still published. nil removes the interceptor.
func (s *Stage) SetInputInterceptor(fn func(key string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.intercept = fn
}

// AllowContextOnce lets the next context-menu input toggle a sticky
// candidate while a tutorial step is active.
func (s *Stage) AllowContextOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.contextArm = true
}

// ClickCell is a primary click on (r,c).
func (s *Stage) ClickCell(r, c int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.inBounds(r, c) {
		return
	}
	cell := domain.CellCoord{Row: r, Col: c}
	if s.locks.Board {
		s.emitLocked(Event{Kind: EventBlocked, Cell: cell})
		return
	}
	if s.target != nil && !sameCell(s.target, r, c) {
		s.nudgeLocked(cell)
		return
	}
	s.emitLocked(Event{Kind: EventCellClick, Cell: cell})
	s.selectLocked(&cell, false)
}

// ContextMenuCell is a secondary click on (r,c). It toggles the sticky
// candidate overlay of an empty cell when no tutorial step is active or
// AllowContextOnce armed it.
func (s *Stage) ContextMenuCell(r, c int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.inBounds(r, c) {
		return
	}
	cell := domain.CellCoord{Row: r, Col: c}
	if s.locks.Board || (s.step > 0 && !s.contextArm) {
		s.emitLocked(Event{Kind: EventBlocked, Cell: cell})
		return
	}
	s.contextArm = false
	s.emitLocked(Event{Kind: EventContextMenu, Cell: cell})
	if s.board.Values[r][c] != 0 {
		return
	}
	if _, ok := s.sticky[cell]; ok {
		delete(s.sticky, cell)
	} else {
		s.sticky[cell] = s.candidatesLocked(r, c)
	}
	s.emitLocked(Event{Kind: EventSticky, Cell: cell})
}

func (s *Stage) candidatesLocked(r, c int) []uint8 {
	n := s.board.N
	used := make([]bool, n+1)
	for i := 0; i < n; i++ {
		used[s.board.Values[r][i]] = true
		used[s.board.Values[i][c]] = true
	}
	br, bc := s.variant.Box()
	r0, c0 := s.board.BoxOrigin(r, c)
	for dr := 0; dr < br; dr++ {
		for dc := 0; dc < bc; dc++ {
			used[s.board.Values[r0+dr][c0+dc]] = true
		}
	}
	var out []uint8
	for d := 1; d <= n; d++ {
		if !used[d] {
			out = append(out, uint8(d))
		}
	}
	return out
}

// KeyDown handles a key press: arrows move the selection, digit keys fill
// it, Backspace/Delete clear it, Escape deselects.
func (s *Stage) KeyDown(key string) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	fn := s.intercept
	s.emitLocked(Event{Kind: EventKeyDown, Key: key})
	s.mu.Unlock()
	if fn != nil && fn(key) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	switch key {
	case ArrowUp, ArrowDown, ArrowLeft, ArrowRight:
		s.arrowLocked(key)
		return
	case Escape:
		if !s.locks.Board {
			s.selectLocked(nil, false)
		}
		return
	case Backspace, Delete:
		if s.locks.Board || s.selection == nil {
			return
		}
		s.eraseLocked(s.selection.Row, s.selection.Col)
		return
	}
	if d, ok := DigitForKey(key, s.board.N); ok {
		if s.locks.Board {
			s.emitLocked(Event{Kind: EventBlocked, Key: key})
			return
		}
		s.chosen = d
		if s.selection != nil {
			s.placeLocked(s.selection.Row, s.selection.Col, d, false)
		}
	}
}

// KeyUp publishes a key release; it has no default handling.
func (s *Stage) KeyUp(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.emitLocked(Event{Kind: EventKeyUp, Key: key})
}

func (s *Stage) arrowLocked(key string) {
	if s.locks.Board {
		s.emitLocked(Event{Kind: EventBlocked, Key: key})
		return
	}
	cur := domain.CellCoord{}
	if s.selection != nil {
		cur = *s.selection
	}
	next := cur
	if s.selection != nil {
		switch key {
		case ArrowUp:
			next.Row--
		case ArrowDown:
			next.Row++
		case ArrowLeft:
			next.Col--
		case ArrowRight:
			next.Col++
		}
	}
	if !s.inBounds(next.Row, next.Col) {
		return
	}
	if s.target != nil && !sameCell(s.target, next.Row, next.Col) {
		s.nudgeLocked(next)
		return
	}
	s.selectLocked(&next, false)
}

// PressDigit is the learner choosing a digit on the keypad ("hotel"). It
// fills the selection like a digit key and is refused while the hotel is
// locked.
func (s *Stage) PressDigit(d uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || d == 0 || int(d) > s.board.N {
		return
	}
	if s.locks.Hotel {
		s.emitLocked(Event{Kind: EventBlocked, Digit: d})
		return
	}
	s.chosen = d
	s.changedLocked()
	if s.selection != nil && !s.locks.Board {
		s.placeLocked(s.selection.Row, s.selection.Col, d, false)
	}
}
