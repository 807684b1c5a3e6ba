package stage

import "svw.info/sudokucoach/internal/domain"

// State is an alias for Snapshot kept for hosts that read "state".
func (s *Stage) State() Snapshot { return s.Snapshot() }

// Select sets the selection, or clears it when cell is nil. The avatar
// follows the selected cell.
func (s *Stage) Select(cell *domain.CellCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.selectLocked(cell, true)
}

func (s *Stage) selectLocked(cell *domain.CellCoord, synthetic bool) {
	if cell == nil {
		if s.selection == nil {
			return
		}
		s.selection = nil
		s.emitLocked(Event{Kind: EventSelect, Cell: domain.CellCoord{Row: -1, Col: -1}, Synthetic: synthetic})
		return
	}
	if !s.inBounds(cell.Row, cell.Col) {
		return
	}
	s.selection = copyCoord(cell)
	s.moveNearLocked(cell.Row, cell.Col)
	s.emitLocked(Event{Kind: EventSelect, Cell: *cell, Synthetic: synthetic})
}

// Place attempts to write digit into (r,c). It silently does nothing when
// the cell is out of range, given, or already filled, or when a tutorial
// target is active and either the cell or the digit is not the expected
// one. A wrong digit on the target shows the wrong overlay; any other cell
// nudges the guide instead.
func (s *Stage) Place(r, c int, digit uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.placeLocked(r, c, digit, true)
}

func (s *Stage) placeLocked(r, c int, digit uint8, synthetic bool) bool {
	if !s.inBounds(r, c) || digit == 0 || int(digit) > s.board.N {
		return false
	}
	// Any entry off the target nudges, givens and filled cells included.
	if s.target != nil && !sameCell(s.target, r, c) {
		s.nudgeLocked(domain.CellCoord{Row: r, Col: c})
		return false
	}
	if s.board.Fixed[r][c] || s.board.Values[r][c] != 0 {
		return false
	}
	if s.target != nil && digit != s.answer {
		s.wrongLocked(r, c, digit)
		return false
	}
	s.writeLocked(r, c, digit)
	s.undo = append(s.undo, move{cell: domain.CellCoord{Row: r, Col: c}, to: digit})
	s.redo = nil
	s.emitLocked(Event{Kind: EventPlace, Cell: domain.CellCoord{Row: r, Col: c}, Digit: digit, Synthetic: synthetic})
	if sameCell(s.target, r, c) {
		s.target = nil
		s.answer = 0
		s.hideGuideLocked()
		s.advanceLocked()
	}
	return true
}

// writeLocked sets a cell value with its cosmetic side effects.
func (s *Stage) writeLocked(r, c int, digit uint8) {
	cell := domain.CellCoord{Row: r, Col: c}
	s.board.Values[r][c] = digit
	if digit != 0 {
		delete(s.sticky, cell)
		s.celebrateLocked(cell)
	}
	if sameCell(s.vis.WrongCell, r, c) {
		s.clearWrongLocked()
	}
}

// eraseLocked clears a user-filled cell.
func (s *Stage) eraseLocked(r, c int) bool {
	if !s.inBounds(r, c) {
		return false
	}
	if s.target != nil && !sameCell(s.target, r, c) {
		s.nudgeLocked(domain.CellCoord{Row: r, Col: c})
		return false
	}
	if s.board.Fixed[r][c] || s.board.Values[r][c] == 0 {
		return false
	}
	old := s.board.Values[r][c]
	s.board.Values[r][c] = 0
	s.undo = append(s.undo, move{cell: domain.CellCoord{Row: r, Col: c}, from: old})
	s.redo = nil
	s.emitLocked(Event{Kind: EventErase, Cell: domain.CellCoord{Row: r, Col: c}})
	return true
}

// Undo reverts the last board edit. It reports whether anything changed.
func (s *Stage) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return false
	}
	return s.undoLocked()
}

// Redo reapplies the last undone edit.
func (s *Stage) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return false
	}
	return s.redoLocked()
}

func (s *Stage) undoLocked() bool {
	if len(s.undo) == 0 {
		return false
	}
	m := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	if m.from != 0 {
		s.writeLocked(m.cell.Row, m.cell.Col, m.from)
	} else {
		s.board.Values[m.cell.Row][m.cell.Col] = 0
	}
	s.redo = append(s.redo, m)
	s.rippleLocked(m.cell)
	s.emitLocked(s.editEvent(m.cell, m.from))
	return true
}

func (s *Stage) redoLocked() bool {
	if len(s.redo) == 0 {
		return false
	}
	m := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.writeLocked(m.cell.Row, m.cell.Col, m.to)
	s.undo = append(s.undo, m)
	s.emitLocked(s.editEvent(m.cell, m.to))
	return true
}

func (s *Stage) editEvent(cell domain.CellCoord, v uint8) Event {
	if v == 0 {
		return Event{Kind: EventErase, Cell: cell, Synthetic: true}
	}
	return Event{Kind: EventPlace, Cell: cell, Digit: v, Synthetic: true}
}

// SetVariant switches the board dimension. The board, givens, solution,
// target, sticky annotations and history reset immediately; the morph
// animation that follows is cosmetic and a newer call interrupts it.
// Unknown keys are ignored.
func (s *Stage) SetVariant(key string) {
	v, ok := domain.ParseVariant(key)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	from := s.board.N
	s.resetBoardLocked(v)
	s.startMorphLocked(from, v.Size())
	s.emitLocked(Event{Kind: EventVariant, Option: v.Key()})
}

func (s *Stage) resetBoardLocked(v domain.Variant) {
	s.variant = v
	s.board = domain.NewBoard(v.Size())
	s.solution = nil
	s.selection = nil
	s.target = nil
	s.answer = 0
	s.sticky = map[domain.CellCoord][]uint8{}
	s.undo, s.redo = nil, nil
	s.puzzleGen++
	s.hideGuideLocked()
	s.clearWrongLocked()
	s.vis.Celebrate, s.vis.Ripple = nil, nil
	s.vis.Peek = false
	s.clampAvatarLocked()
}

func (s *Stage) startMorphLocked(from, to int) {
	s.cancelLocked(&s.tMorph)
	s.vis.Morph = MorphCollapse
	s.vis.MorphFrom, s.vis.MorphTo = from, to
	s.tMorph = s.afterLocked(s.t.Morph/2, func() {
		s.vis.Morph = MorphResolve
		s.changedLocked()
		s.tMorph = s.afterLocked(s.t.Morph-s.t.Morph/2, func() {
			s.vis.Morph = MorphNone
			s.tMorph = 0
			s.emitLocked(Event{Kind: EventMorphSettled, Option: s.variant.Key()})
		})
	})
}

// Load replaces the board with b (givens taken from b.Fixed) and stores the
// optional solution. The variant follows b's dimension without a morph.
func (s *Stage) Load(b *domain.Board, solution *domain.Board) {
	if !wellFormed(b) {
		return
	}
	v, ok := domain.VariantForSize(b.N)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.loadLocked(v, b, solution)
}

func (s *Stage) loadLocked(v domain.Variant, b, solution *domain.Board) {
	s.resetBoardLocked(v)
	s.board = b.Clone()
	if wellFormed(solution) && solution.N == b.N {
		s.solution = solution.Clone()
	}
	s.emitLocked(Event{Kind: EventPuzzle, Option: v.Key()})
}

// SetSolution stores the solved grid used by hints. A grid of the wrong
// size is ignored.
func (s *Stage) SetSolution(sol *domain.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !wellFormed(sol) || sol.N != s.board.N {
		return
	}
	s.solution = sol.Clone()
	s.changedLocked()
}

// SetTarget makes (cell, answer) the only acceptable next input and shows
// the guide highlight there. It also activates the tutorial when inactive.
func (s *Stage) SetTarget(cell domain.CellCoord, answer uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.inBounds(cell.Row, cell.Col) || answer == 0 || int(answer) > s.board.N {
		return
	}
	s.target = &cell
	s.answer = answer
	if s.step == 0 {
		s.step = 1
	}
	s.showGuideLocked(cell)
}

// ClearTarget drops the expected input without advancing the step.
func (s *Stage) ClearTarget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.target = nil
	s.answer = 0
	s.hideGuideLocked()
}

// TutorialStep returns the active teaching beat; 0 is inactive.
func (s *Stage) TutorialStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// NextTutorialStep advances the teaching beat by one.
func (s *Stage) NextTutorialStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.advanceLocked()
}

func (s *Stage) advanceLocked() {
	s.step++
	s.emitLocked(Event{Kind: EventStep})
}

// EndTutorial returns to step 0 and releases every lock, target and
// interceptor so the learner can play freely.
func (s *Stage) EndTutorial() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.step = 0
	s.target = nil
	s.answer = 0
	s.locks = Locks{}
	s.intercept = nil
	s.contextArm = false
	s.hideGuideLocked()
	s.stopCountdownLocked()
	s.emitLocked(Event{Kind: EventStep})
}

func wellFormed(b *domain.Board) bool {
	if b == nil || len(b.Values) != b.N {
		return false
	}
	for r := range b.Values {
		if len(b.Values[r]) != b.N {
			return false
		}
		if r < len(b.Fixed) && len(b.Fixed[r]) > b.N {
			return false
		}
		for c, v := range b.Values[r] {
			if int(v) > b.N {
				return false
			}
			if v == 0 && r < len(b.Fixed) && c < len(b.Fixed[r]) && b.Fixed[r][c] {
				return false
			}
		}
	}
	return true
}
