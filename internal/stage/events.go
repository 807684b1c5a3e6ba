package stage

import "svw.info/sudokucoach/internal/domain"

// EventKind names a discrete change notification.
type EventKind int

const (
	EventChanged EventKind = iota // cosmetic change only
	EventOpen
	EventClose
	EventCellClick
	EventContextMenu
	EventKeyDown
	EventKeyUp
	EventSelect
	EventPlace
	EventErase
	EventWrong
	EventNudge
	EventBlocked
	EventControl
	EventCTA
	EventPuzzle
	EventVariant
	EventMorphSettled
	EventTick
	EventCountdownDone
	EventStep
	EventSticky
	EventDestroyed
)

var eventNames = map[EventKind]string{
	EventChanged:       "changed",
	EventOpen:          "open",
	EventClose:         "close",
	EventCellClick:     "cell-click",
	EventContextMenu:   "contextmenu",
	EventKeyDown:       "keydown",
	EventKeyUp:         "keyup",
	EventSelect:        "select",
	EventPlace:         "place",
	EventErase:         "erase",
	EventWrong:         "wrong",
	EventNudge:         "nudge",
	EventBlocked:       "blocked",
	EventControl:       "control",
	EventCTA:           "cta",
	EventPuzzle:        "puzzle",
	EventVariant:       "variant",
	EventMorphSettled:  "morph-settled",
	EventTick:          "tick",
	EventCountdownDone: "countdown-done",
	EventStep:          "step",
	EventSticky:        "sticky",
	EventDestroyed:     "destroyed",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event is one change notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	Cell      domain.CellCoord
	Digit     uint8
	Key       string
	Control   Control
	Option    string
	CTA       string
	Remaining int
	Step      int
	Filled    int
	Synthetic bool // raised by a trusted caller rather than user input
}

type subscriber struct {
	ch    chan Event
	kinds map[EventKind]bool
}

// Subscribe registers for events of the given kinds, or all kinds when none
// are named. Delivery never blocks the Stage: when the buffer is full the
// event is dropped for that subscriber. The channel closes on cancel or
// Destroy.
func (s *Stage) Subscribe(buf int, kinds ...EventKind) (<-chan Event, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Event, buf)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		close(ch)
		return ch, func() {}
	}
	sub := &subscriber{ch: ch}
	if len(kinds) > 0 {
		sub.kinds = make(map[EventKind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}
	s.subSeq++
	id := s.subSeq
	s.subs[id] = sub
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			close(sub.ch)
			delete(s.subs, id)
		}
	}
}

func (s *Stage) emitLocked(ev Event) {
	ev.Filled = s.board.Filled()
	ev.Step = s.step
	for _, sub := range s.subs {
		if sub.kinds != nil && !sub.kinds[ev.Kind] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func (s *Stage) changedLocked() { s.emitLocked(Event{Kind: EventChanged}) }
