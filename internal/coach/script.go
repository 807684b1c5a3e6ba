package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/ports"
	"svw.info/sudokucoach/internal/stage"
)

// SkipFlag is the FlagStore key that records "do not show the lesson again".
const SkipFlag = "coach.skip"

// SkipCTA is the CTA id that abandons the lesson.
const SkipCTA = "skip"

const apology = "<b>Oops.</b> The lesson tripped over itself. The board is all yours."

// Result describes how a lesson ended.
type Result struct {
	Completed bool
	Skipped   bool
	Aborted   bool   // the Stage went away or the context ended
	Beats     int    // beats finished
	Err       error  // a failure that was turned into the apology
	Session   string // lesson id for log correlation
}

type beat struct {
	name string
	run  func(ctx context.Context) error
}

// Script is one run of the lesson. It is not reusable.
type Script struct {
	st      Stage
	cfg     Settings
	flags   ports.FlagStore
	log     *slog.Logger
	skipped atomic.Bool
}

// NewScript prepares a lesson for st. flags may be nil.
func NewScript(st Stage, cfg Settings, flags ports.FlagStore, log *slog.Logger) *Script {
	if log == nil {
		log = slog.Default()
	}
	return &Script{st: st, cfg: cfg.withDefaults(), flags: flags, log: log}
}

func (s *Script) beats() []beat {
	return []beat{
		{"intro", s.intro},
		{"gated-first-digit", s.gatedFirstDigit},
		{"arrow-challenge", s.arrowChallenge},
		{"right-click-demo", s.rightClickDemo},
		{"variant-morph-showcase", s.variantMorphShowcase},
		{"real-new-puzzle", s.realNewPuzzle},
		{"timed-peek-challenge", s.timedPeekChallenge},
		{"music-toggle-demo", s.musicToggleDemo},
		{"hint-flow", s.hintFlow},
		{"place-undo-redo", s.placeUndoRedo},
		{"new-again-demo", s.newAgainDemo},
		{"settings-pointer", s.settingsPointer},
		{"done", s.done},
	}
}

// Run plays every beat in order. It never panics and never returns an
// error: failures end the lesson with an apology and are reported in
// Result.Err.
func (s *Script) Run(ctx context.Context) (res Result) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopSkip := s.watchSkip(cancel)
	defer stopSkip()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("coach panic", "panic", r)
			res.Err = fmt.Errorf("coach: panic: %v", r)
			s.apologize()
		}
		res.Skipped = s.skipped.Load()
		if res.Skipped {
			res.Aborted = false
		}
	}()

	for _, b := range s.beats() {
		if !s.st.Alive() {
			res.Aborted = true
			return res
		}
		s.log.Debug("beat", "name", b.name)
		err := b.run(ctx)
		if err == nil {
			err = pause(ctx, s.st, s.cfg.Pause)
		}
		if err != nil {
			if errors.Is(err, ErrStageGone) || ctx.Err() != nil {
				s.log.Info("lesson abandoned", "beat", b.name)
				res.Aborted = true
				return res
			}
			s.log.Error("lesson failed", "beat", b.name, "err", err)
			res.Err = fmt.Errorf("beat %s: %w", b.name, err)
			s.apologize()
			return res
		}
		res.Beats++
	}
	res.Completed = true
	s.log.Info("lesson completed")
	return res
}

// watchSkip ends the lesson for good when the learner presses the skip CTA.
func (s *Script) watchSkip(cancel context.CancelFunc) func() {
	ch, unsubscribe := s.st.Subscribe(8, stage.EventCTA)
	go func() {
		for ev := range ch {
			if ev.CTA != SkipCTA {
				continue
			}
			if s.flags != nil {
				if err := s.flags.Set(SkipFlag, true); err != nil {
					s.log.Warn("persist skip flag", "err", err)
				}
			}
			s.skipped.Store(true)
			s.log.Info("lesson skipped")
			s.st.Destroy()
			cancel()
			return
		}
	}()
	return unsubscribe
}

func (s *Script) apologize() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("apology failed", "panic", r)
		}
	}()
	if !s.st.Alive() {
		return
	}
	s.st.EndTutorial()
	s.st.SetMood(stage.MoodSad)
	s.st.Say(apology)
}

func (s *Script) say(markup string, ctas ...stage.CTA) {
	s.log.Debug("say", "markup", markup)
	s.st.Say(markup, ctas...)
}

var firstTarget = domain.CellCoord{Row: 0, Col: 3}

func (s *Script) intro(ctx context.Context) error {
	s.st.Open()
	s.st.SetLocks(stage.Locks{Toolbar: true, Hotel: true})
	b, sol := lessonBoard(firstTarget)
	s.st.Load(b, sol)
	s.st.SetMood(stage.MoodHappy)
	s.st.WaveHotelOnce()
	ok, err := waitCellClick(ctx, s.st, s.cfg.StepTimeout, func() {
		s.say("<b>Welcome!</b> I'm your Sudoku coach.<br>Click any cell to begin.",
			stage.CTA{ID: SkipCTA, Label: "Skip tutorial"})
	})
	if err != nil {
		return err
	}
	if !ok {
		s.say("No click? That's fine, let's keep going.")
	}
	return nil
}

func (s *Script) gatedFirstDigit(ctx context.Context) error {
	s.st.SetLocks(stage.Locks{Toolbar: true})
	answer := lessonSolution[firstTarget.Row][firstTarget.Col]
	s.st.MoveCoachNear(firstTarget.Row, firstTarget.Col)
	ok, err := waitTargetFill(ctx, s.st, s.cfg.StepTimeout, func() {
		s.st.SetTarget(firstTarget, answer)
		s.say(fmt.Sprintf("Every row needs each digit once. Only <b>%d</b> fits in the glowing cell.<br>Click it and type <b>%d</b>.", answer, answer))
	}, firstTarget, answer)
	if err != nil {
		return err
	}
	if !ok {
		s.say("Let me show you.")
		s.st.Place(firstTarget.Row, firstTarget.Col, answer)
	}
	s.st.SetMood(stage.MoodCheer)
	s.st.RippleAtCell(firstTarget.Row, firstTarget.Col)
	s.say("<b>Perfect.</b> That is the whole game: fill every cell without repeats.")
	return nil
}

func (s *Script) arrowChallenge(ctx context.Context) error {
	s.st.SetLocks(stage.Locks{Toolbar: true, Hotel: true})
	s.st.ClearTarget()
	origin := domain.CellCoord{}
	goal := domain.CellCoord{Row: len(lessonSolution) - 1, Col: len(lessonSolution) - 1}
	s.st.Select(&origin)
	s.st.ShowGuideTarget(goal.Row, goal.Col)

	won, err := s.challenge(ctx, s.cfg.ArrowSeconds, func(ctx context.Context, timeout time.Duration, start func()) (bool, error) {
		w := watchFor(s.st, func() {
			s.say("Use the <b>arrow keys</b> to reach the glowing corner before time runs out!")
			start()
		}, stage.EventSelect)
		defer w.close()
		return w.untilState(ctx, timeout, func(sn stage.Snapshot) bool {
			return sn.Selection != nil && *sn.Selection == goal
		})
	})
	s.st.HideGuideTarget()
	if err != nil {
		return err
	}
	if won {
		s.st.SetMood(stage.MoodCheer)
		s.say("<i>Quick fingers!</i>")
	} else {
		s.st.CoachCry()
		s.say("Out of time. The arrows get easier with practice.")
	}
	s.st.NextTutorialStep()
	return nil
}

func (s *Script) rightClickDemo(ctx context.Context) error {
	blanks := []domain.CellCoord{{Row: 1, Col: 1}, {Row: 2, Col: 2}, {Row: 3, Col: 0}}
	b, sol := lessonBoard(blanks...)
	s.st.Load(b, sol)
	s.st.SetLocks(stage.Locks{Toolbar: true, Hotel: true})
	for i := 0; i < s.cfg.ContextClicks; i++ {
		cell := blanks[i%len(blanks)]
		msg := "<b>Right-click</b> an empty cell to pin the digits that could go there."
		if i > 0 {
			msg = "Once more, on another empty cell."
		}
		ok, err := waitEvents(ctx, s.st, s.cfg.ShortTimeout, func() {
			s.st.AllowContextOnce()
			s.st.MoveCoachNear(cell.Row, cell.Col)
			s.say(msg)
		}, stage.EventContextMenu, 1)
		if err != nil {
			return err
		}
		if !ok {
			s.say("Pinned candidates help on hard puzzles. We'll move on.")
			break
		}
	}
	s.st.NextTutorialStep()
	return nil
}

func (s *Script) variantMorphShowcase(ctx context.Context) error {
	s.say("Boards come in three sizes: <b>4×4</b>, <b>9×9</b> and <b>16×16</b>.")
	for _, v := range []domain.Variant{domain.Classic9, domain.Mega16, domain.Classic9} {
		key := v.Key()
		if _, err := waitMorphSettled(ctx, s.st, s.cfg.MorphTimeout, func() {
			s.st.PingBall(stage.ControlVariant)
			s.st.SetVariant(key)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Script) realNewPuzzle(ctx context.Context) error {
	s.st.SetLocks(stage.Locks{Hotel: true})
	defer s.st.SetLocks(stage.Locks{Toolbar: true, Hotel: true})
	if _, err := s.guidedClick(ctx, stage.ControlNew, "Time for a real one. Press <b>New puzzle</b>."); err != nil {
		return err
	}
	hasGivens := func(filled int) bool { return filled > 0 }
	ok, err := waitFilled(ctx, s.st, s.cfg.PuzzleTimeout, nil, hasGivens)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("new puzzle retry")
		ok, err = waitFilled(ctx, s.st, s.cfg.PuzzleTimeout, func() { s.st.Trigger(stage.ControlNew, "") }, hasGivens)
		if err != nil {
			return err
		}
	}
	if !ok {
		s.say("The puzzle maker is busy. We'll carry on with an empty board.")
		return nil
	}
	s.st.SetMood(stage.MoodHappy)
	s.say("A fresh 9×9 puzzle. Grey digits are givens and can't change.")
	return nil
}

func (s *Script) timedPeekChallenge(ctx context.Context) error {
	if s.st.Snapshot().Solution == nil {
		return nil
	}
	key := s.cfg.PeekKey
	s.st.SetLocks(stage.Locks{Toolbar: true, Hotel: true})
	s.st.SetInputInterceptor(func(k string) bool { return k == key })
	defer s.st.SetInputInterceptor(nil)

	won, err := s.challenge(ctx, s.cfg.PeekSeconds, func(ctx context.Context, timeout time.Duration, start func()) (bool, error) {
		return waitKeyHeld(ctx, s.st, timeout, func() {
			s.say(fmt.Sprintf("Stuck? <b>Hold %s</b> to peek at the answers.", strings.ToUpper(key)))
			start()
		}, key, s.cfg.PeekHold, s.st.Peek)
	})
	s.st.Peek(false)
	if err != nil {
		return err
	}
	if won {
		s.st.SetMood(stage.MoodHappy)
		s.say("That's the peek. Use it sparingly!")
	} else {
		s.st.CoachCry()
		s.say("No peek this time. You can try it whenever you like.")
	}
	return nil
}

func (s *Script) musicToggleDemo(ctx context.Context) error {
	s.st.SetLocks(stage.Locks{Hotel: true})
	ok, err := s.offerClick(ctx, stage.ControlMusic, "Like a soundtrack? Toggle <b>Music</b> up here.")
	if err != nil {
		return err
	}
	if ok {
		s.say("<i>Lovely.</i>")
	}
	return nil
}

func (s *Script) hintFlow(ctx context.Context) error {
	s.st.SetLocks(stage.Locks{Hotel: true})
	before := s.st.Snapshot().Filled()
	if _, err := s.guidedClick(ctx, stage.ControlHint, "When you're stuck, <b>Hint</b> fills in one cell."); err != nil {
		return err
	}
	ok, err := waitFilled(ctx, s.st, s.cfg.ShortTimeout, nil, func(f int) bool { return f > before })
	if err != nil {
		return err
	}
	if ok {
		s.say("See the ripple? That cell was a safe bet.")
	} else {
		s.say("Hints need a puzzle with a known answer.")
	}
	return nil
}

func (s *Script) placeUndoRedo(ctx context.Context) error {
	s.st.SetLocks(stage.Locks{Toolbar: true})
	before := s.st.Snapshot().Filled()
	grew := func(f int) bool { return f > before }
	ok, err := waitFilled(ctx, s.st, s.cfg.StepTimeout, func() {
		s.st.WaveHotelOnce()
		s.say("Your turn: select an empty cell and type any digit.")
	}, grew)
	if err != nil {
		return err
	}
	if !ok {
		ok, err = waitFilled(ctx, s.st, s.cfg.ShortTimeout, func() { s.st.Trigger(stage.ControlHint, "") }, grew)
		if err != nil {
			return err
		}
	}
	if !ok {
		s.say("Nothing to undo yet. Let's move on.")
		return nil
	}

	s.st.SetLocks(stage.Locks{})
	after := s.st.Snapshot().Filled()
	if _, err := s.guidedClick(ctx, stage.ControlUndo, "Changed your mind? <b>Undo</b> takes it back."); err != nil {
		return err
	}
	if _, err := waitFilled(ctx, s.st, s.cfg.ShortTimeout, nil, func(f int) bool { return f < after }); err != nil {
		return err
	}
	if _, err := s.guidedClick(ctx, stage.ControlRedo, "And <b>Redo</b> puts it back."); err != nil {
		return err
	}
	if _, err := waitFilled(ctx, s.st, s.cfg.ShortTimeout, nil, func(f int) bool { return f >= after }); err != nil {
		return err
	}
	return nil
}

func (s *Script) newAgainDemo(ctx context.Context) error {
	s.st.SetLocks(stage.Locks{Hotel: true})
	_, err := s.offerClick(ctx, stage.ControlNew, "Press <b>New puzzle</b> whenever you want a fresh board.")
	return err
}

func (s *Script) settingsPointer(ctx context.Context) error {
	s.st.PingBall(stage.ControlSettings)
	s.say("Difficulty and board size live under <b>Settings</b>.")
	return pause(ctx, s.st, s.cfg.Pause)
}

func (s *Script) done(context.Context) error {
	s.st.EndTutorial()
	s.st.SetMood(stage.MoodCheer)
	s.st.StartRoam()
	s.say("<b>You're ready!</b> Have fun.")
	return nil
}
