package stage

import "svw.info/sudokucoach/internal/domain"

// Control is the logical name of a toolbar control.
type Control string

const (
	ControlNew      Control = "new"
	ControlHint     Control = "hint"
	ControlUndo     Control = "undo"
	ControlRedo     Control = "redo"
	ControlMusic    Control = "music"
	ControlSettings Control = "settings"
	ControlVariant  Control = "variant"
)

// ControlInfo describes one toolbar control of the registry.
type ControlInfo struct {
	Name    Control
	Label   string
	Options []string // selector values; only the variant control has them
}

var controls = []ControlInfo{
	{Name: ControlNew, Label: "New puzzle"},
	{Name: ControlHint, Label: "Hint"},
	{Name: ControlUndo, Label: "Undo"},
	{Name: ControlRedo, Label: "Redo"},
	{Name: ControlMusic, Label: "Music"},
	{Name: ControlSettings, Label: "Settings"},
	{Name: ControlVariant, Label: "Size", Options: variantKeys()},
}

var controlIndex = func() map[Control]int {
	m := make(map[Control]int, len(controls))
	for i, c := range controls {
		m[c.Name] = i
	}
	return m
}()

func variantKeys() []string {
	keys := make([]string, 0, len(domain.Variants))
	for _, v := range domain.Variants {
		keys = append(keys, v.Key())
	}
	return keys
}

// Controls returns the control registry in toolbar order.
func (s *Stage) Controls() []ControlInfo {
	out := make([]ControlInfo, len(controls))
	for i, c := range controls {
		c.Options = append([]string(nil), c.Options...)
		out[i] = c
	}
	return out
}

// PressControl is the learner pressing a toolbar control. It is refused
// while the toolbar is locked.
func (s *Stage) PressControl(name Control, option string) bool {
	return s.press(name, option, false)
}

// Trigger runs a control on behalf of a trusted caller, ignoring locks.
func (s *Stage) Trigger(name Control, option string) bool {
	return s.press(name, option, true)
}

func (s *Stage) press(name Control, option string, synthetic bool) bool {
	if _, ok := controlIndex[name]; !ok {
		return false
	}
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return false
	}
	if !synthetic && s.locks.Toolbar {
		s.emitLocked(Event{Kind: EventBlocked, Control: name})
		s.mu.Unlock()
		return false
	}
	s.emitLocked(Event{Kind: EventControl, Control: name, Option: option, Synthetic: synthetic})
	switch name {
	case ControlNew:
		s.requestPuzzleLocked()
	case ControlUndo:
		s.undoLocked()
	case ControlRedo:
		s.redoLocked()
	case ControlMusic:
		s.music = !s.music
		s.changedLocked()
	case ControlSettings:
		s.settings = !s.settings
		s.changedLocked()
	case ControlVariant:
		s.mu.Unlock()
		s.SetVariant(option)
		return true
	case ControlHint:
		s.mu.Unlock()
		s.hint()
		return true
	}
	s.mu.Unlock()
	return true
}

// requestPuzzleLocked asks the PuzzleSource for a puzzle of the current
// variant. The result is dropped when the board changed meanwhile.
func (s *Stage) requestPuzzleLocked() {
	s.puzzleGen++
	gen := s.puzzleGen
	v, d, src, ctx := s.variant, s.difficulty, s.src, s.life
	go func() {
		p, err := src.NewPuzzle(ctx, v, d)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.destroyed || s.puzzleGen != gen {
			return
		}
		if err != nil || p == nil || p.Board.N != v.Size() || !wellFormed(&p.Board) {
			s.log.Warn("new puzzle failed", "variant", v.Key(), "err", err)
			s.emitLocked(Event{Kind: EventBlocked, Control: ControlNew})
			return
		}
		s.loadLocked(v, &p.Board, p.Solution)
		s.log.Debug("puzzle loaded", "variant", v.Key(), "givens", s.board.Filled())
	}()
}

// hint fills one cell from the solution: the active target when there is
// one, else the Hinter's single when it agrees with the solution, else the
// first empty cell.
func (s *Stage) hint() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if s.target != nil {
		s.placeLocked(s.target.Row, s.target.Col, s.answer, true)
		s.mu.Unlock()
		return
	}
	if s.solution == nil {
		s.emitLocked(Event{Kind: EventBlocked, Control: ControlHint})
		s.mu.Unlock()
		return
	}
	board, gen, src, ctx := s.board.Clone(), s.puzzleGen, s.src, s.life
	s.mu.Unlock()

	h, found, err := src.Hint(ctx, board, domain.StrategySingles)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || gen != s.puzzleGen || s.solution == nil {
		return
	}
	if err == nil && found && len(h.Cells) > 0 {
		c := h.Cells[0]
		if s.inBounds(c.Row, c.Col) && s.solution.Values[c.Row][c.Col] == h.Value &&
			s.placeLocked(c.Row, c.Col, h.Value, true) {
			s.rippleLocked(c)
			return
		}
	}
	for r := 0; r < s.board.N; r++ {
		for c := 0; c < s.board.N; c++ {
			if s.board.Values[r][c] == 0 && s.placeLocked(r, c, s.solution.Values[r][c], true) {
				s.rippleLocked(domain.CellCoord{Row: r, Col: c})
				return
			}
		}
	}
}

// PressCTA reports a click on a speech-bubble button or a host-level
// action such as "skip".
func (s *Stage) PressCTA(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || id == "" {
		return
	}
	s.emitLocked(Event{Kind: EventCTA, CTA: id})
}
