package stage

import (
	"sort"

	"svw.info/sudokucoach/internal/domain"
)

// Locks are three independent input gates. They are advisory: direct calls
// such as Place bypass them, input handlers honour them.
type Locks struct {
	Toolbar bool `json:"toolbar"`
	Hotel   bool `json:"hotel"` // digit keypad
	Board   bool `json:"board"`
}

// Mood is the coach avatar's expression.
type Mood int

const (
	MoodIdle Mood = iota
	MoodHappy
	MoodThinking
	MoodWorried
	MoodSad
	MoodCheer
)

func (m Mood) String() string {
	switch m {
	case MoodHappy:
		return "happy"
	case MoodThinking:
		return "thinking"
	case MoodWorried:
		return "worried"
	case MoodSad:
		return "sad"
	case MoodCheer:
		return "cheer"
	default:
		return "idle"
	}
}

// Urgency escalates as a countdown runs low.
type Urgency int

const (
	UrgencyCalm  Urgency = iota
	UrgencyWarn          // three seconds or less
	UrgencyPanic         // two seconds or less; flashing and shake
)

func urgencyFor(remaining int) Urgency {
	switch {
	case remaining <= 2:
		return UrgencyPanic
	case remaining <= 3:
		return UrgencyWarn
	default:
		return UrgencyCalm
	}
}

// MorphPhase tracks the cosmetic variant transition.
type MorphPhase int

const (
	MorphNone     MorphPhase = iota
	MorphCollapse            // old cells merge into one shape
	MorphResolve             // shape splits into the new grid
)

// Point is a position on the surface in cell units.
type Point struct{ X, Y float64 }

// Countdown is the visible state of a running countdown.
type Countdown struct {
	Active    bool
	Remaining int
	Urgency   Urgency
	Shake     bool
}

// Unit is one progressively revealed piece of speech.
type Unit struct {
	Text   string
	Bold   bool
	Italic bool
}

// CTA is an action button attached to a speech bubble.
type CTA struct {
	ID    string
	Label string
}

// Speech is the coach's current message.
type Speech struct {
	Units    []Unit
	Revealed int
	CTAs     []CTA
}

// Done reports whether every unit is visible.
func (sp Speech) Done() bool { return sp.Revealed >= len(sp.Units) }

// Text joins the revealed units.
func (sp Speech) Text() string {
	out := make([]byte, 0, sp.Revealed)
	for i := 0; i < sp.Revealed && i < len(sp.Units); i++ {
		out = append(out, sp.Units[i].Text...)
	}
	return string(out)
}

// Visuals are the cosmetic overlays; they never influence board rules.
type Visuals struct {
	Guide        *domain.CellCoord
	Nudge        bool
	Countdown    Countdown
	Wrong        []domain.CellCoord // row, column and block of the offending cell
	WrongCell    *domain.CellCoord
	Celebrate    *domain.CellCoord
	Ripple       *domain.CellCoord
	Mood         Mood
	Crying       bool
	Speech       Speech
	Avatar       Point
	AvatarMoving bool
	Roaming      bool
	Morph        MorphPhase
	MorphFrom    int
	MorphTo      int
	Ping         Control
	HotelWave    bool
	Peek         bool // solution shown over empty cells
}

// Snapshot is a read-only deep copy of the Stage state.
type Snapshot struct {
	Open      bool
	Destroyed bool
	Variant   domain.Variant
	N         int
	Grid      [][]uint8
	Given     [][]bool
	Selection *domain.CellCoord
	Chosen    uint8
	Solution  [][]uint8
	Target    *domain.CellCoord
	Answer    uint8
	Step      int
	Locks     Locks
	Sticky    map[domain.CellCoord][]uint8
	Music     bool
	Settings  bool
	CanUndo   bool
	CanRedo   bool
	Visuals   Visuals
}

// Filled counts non-empty cells.
func (sn Snapshot) Filled() int {
	n := 0
	for _, row := range sn.Grid {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// StickyCells lists pinned cells in row-major order.
func (sn Snapshot) StickyCells() []domain.CellCoord {
	out := make([]domain.CellCoord, 0, len(sn.Sticky))
	for c := range sn.Sticky {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Snapshot returns a copy of the current state.
func (s *Stage) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Stage) snapshotLocked() Snapshot {
	b := s.board.Clone()
	sn := Snapshot{
		Open:      s.open,
		Destroyed: s.destroyed,
		Variant:   s.variant,
		N:         b.N,
		Grid:      b.Values,
		Given:     b.Fixed,
		Selection: copyCoord(s.selection),
		Chosen:    s.chosen,
		Target:    copyCoord(s.target),
		Answer:    s.answer,
		Step:      s.step,
		Locks:     s.locks,
		Sticky:    make(map[domain.CellCoord][]uint8, len(s.sticky)),
		Music:     s.music,
		Settings:  s.settings,
		CanUndo:   len(s.undo) > 0,
		CanRedo:   len(s.redo) > 0,
		Visuals:   s.vis,
	}
	if s.solution != nil {
		sn.Solution = s.solution.Clone().Values
	}
	for c, cands := range s.sticky {
		sn.Sticky[c] = append([]uint8(nil), cands...)
	}
	v := &sn.Visuals
	v.Guide = copyCoord(s.vis.Guide)
	v.WrongCell = copyCoord(s.vis.WrongCell)
	v.Celebrate = copyCoord(s.vis.Celebrate)
	v.Ripple = copyCoord(s.vis.Ripple)
	v.Wrong = append([]domain.CellCoord(nil), s.vis.Wrong...)
	v.Speech.Units = append([]Unit(nil), s.vis.Speech.Units...)
	v.Speech.CTAs = append([]CTA(nil), s.vis.Speech.CTAs...)
	return sn
}

func copyCoord(c *domain.CellCoord) *domain.CellCoord {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func sameCell(a *domain.CellCoord, r, c int) bool {
	return a != nil && a.Row == r && a.Col == c
}
