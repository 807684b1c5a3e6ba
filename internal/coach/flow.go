package coach

import (
	"context"
	"errors"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/stage"
)

// Settings tune the lesson pacing. Zero fields take defaults.
type Settings struct {
	StepTimeout   time.Duration // wait for a required learner action
	ShortTimeout  time.Duration // wait for an optional one
	MorphTimeout  time.Duration
	PuzzleTimeout time.Duration // wait for a generated puzzle to appear
	Pause         time.Duration // between beats
	ArrowSeconds  int
	PeekSeconds   int
	PeekKey       string
	PeekHold      time.Duration
	ContextClicks int
}

func (s Settings) withDefaults() Settings {
	dur := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	dur(&s.StepTimeout, 25*time.Second)
	dur(&s.ShortTimeout, 10*time.Second)
	dur(&s.MorphTimeout, 5*time.Second)
	dur(&s.PuzzleTimeout, 10*time.Second)
	dur(&s.Pause, 700*time.Millisecond)
	dur(&s.PeekHold, time.Second)
	if s.ArrowSeconds <= 0 {
		s.ArrowSeconds = 10
	}
	if s.PeekSeconds <= 0 {
		s.PeekSeconds = 8
	}
	if s.PeekKey == "" {
		s.PeekKey = "p"
	}
	if s.ContextClicks <= 0 {
		s.ContextClicks = 2
	}
	return s
}

// guidedClick points at ctl and waits for the learner to press it. When
// they do not, the control is pressed for them once.
func (s *Script) guidedClick(ctx context.Context, ctl stage.Control, markup string) (bool, error) {
	ok, err := waitControlClick(ctx, s.st, s.cfg.StepTimeout, func() {
		s.st.PingBall(ctl)
		s.say(markup)
	}, ctl)
	if err != nil || ok {
		return ok, err
	}
	s.log.Debug("guided click forced", "control", string(ctl))
	return waitControlClick(ctx, s.st, s.cfg.ShortTimeout, func() {
		s.say("Like this.")
		s.st.Trigger(ctl, "")
	}, ctl)
}

// offerClick is guidedClick without the forced retry.
func (s *Script) offerClick(ctx context.Context, ctl stage.Control, markup string) (bool, error) {
	return waitControlClick(ctx, s.st, s.cfg.ShortTimeout, func() {
		s.st.PingBall(ctl)
		s.say(markup)
	}, ctl)
}

// challenge races the learner against a countdown of seconds. run gets a
// context that ends when the countdown reaches zero and a start func that
// launches it; run must call start after subscribing. Running out of time
// reports (false, nil).
func (s *Script) challenge(ctx context.Context, seconds int, run func(ctx context.Context, timeout time.Duration, start func()) (bool, error)) (bool, error) {
	cctx, expire := context.WithCancel(ctx)
	defer expire()
	start := func() {
		s.st.StartCountdown(seconds, func(remaining int) {
			if remaining <= 0 {
				expire()
			}
		})
	}
	safety := time.Duration(seconds)*time.Second + s.cfg.ShortTimeout
	won, err := run(cctx, safety, start)
	s.st.StopCountdown()
	if err != nil && ctx.Err() == nil && errors.Is(err, context.Canceled) {
		return false, nil
	}
	return won, err
}

// lessonSolution is the 4×4 grid the first beats teach on.
var lessonSolution = [][]uint8{
	{1, 2, 3, 4},
	{3, 4, 1, 2},
	{2, 1, 4, 3},
	{4, 3, 2, 1},
}

// lessonBoard returns the lesson grid with every cell given except blanks,
// and its solution.
func lessonBoard(blanks ...domain.CellCoord) (*domain.Board, *domain.Board) {
	n := len(lessonSolution)
	b, sol := domain.NewBoard(n), domain.NewBoard(n)
	for r, row := range lessonSolution {
		for c, v := range row {
			b.Values[r][c], b.Fixed[r][c] = v, true
			sol.Values[r][c], sol.Fixed[r][c] = v, true
		}
	}
	for _, cell := range blanks {
		b.Values[cell.Row][cell.Col], b.Fixed[cell.Row][cell.Col] = 0, false
	}
	return b, sol
}
