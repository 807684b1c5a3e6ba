package coach

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/infrastructure/storage"
	"svw.info/sudokucoach/internal/stage"
)

func fastTimings() stage.Timings {
	return stage.Timings{
		Tick:      20 * time.Millisecond,
		Wrong:     20 * time.Millisecond,
		Celebrate: 5 * time.Millisecond,
		Ripple:    5 * time.Millisecond,
		Nudge:     5 * time.Millisecond,
		Cry:       5 * time.Millisecond,
		Ping:      30 * time.Millisecond,
		Wave:      5 * time.Millisecond,
		Morph:     20 * time.Millisecond,
		Type:      time.Millisecond,
		Frame:     time.Millisecond,
		Roam:      5 * time.Millisecond,
	}
}

func fastSettings() Settings {
	return Settings{
		StepTimeout:   300 * time.Millisecond,
		ShortTimeout:  200 * time.Millisecond,
		MorphTimeout:  500 * time.Millisecond,
		PuzzleTimeout: 500 * time.Millisecond,
		Pause:         5 * time.Millisecond,
		ArrowSeconds:  2,
		PeekSeconds:   2,
		PeekHold:      30 * time.Millisecond,
	}
}

// fakeSource hands out one fixed classic puzzle.
type fakeSource struct{}

func classicSolution() *domain.Board {
	b := domain.NewBoard(9)
	for r := 0; r < 9; r++ {
		for c := 0; c < 9; c++ {
			b.Values[r][c] = uint8((r*3+r/3+c)%9 + 1)
		}
	}
	return b
}

func (fakeSource) NewPuzzle(ctx context.Context, v domain.Variant, d domain.Difficulty) (*domain.Puzzle, error) {
	if v != domain.Classic9 {
		return nil, fmt.Errorf("no %s puzzles", v.Key())
	}
	sol := classicSolution()
	b := sol.Clone()
	for r := 0; r < 9; r++ {
		for c := 0; c < 9; c++ {
			if (r+c)%3 == 0 {
				b.Values[r][c] = 0
			} else {
				b.Fixed[r][c] = true
			}
		}
	}
	return &domain.Puzzle{Variant: v, Board: *b, Solution: sol}, nil
}

func (fakeSource) Hint(ctx context.Context, b *domain.Board, max domain.StrategyTier) (domain.Hint, bool, error) {
	return domain.Hint{}, false, nil
}

func options(wrap func(*stage.Stage) Minimal) LaunchOptions {
	return LaunchOptions{
		Stage:    stage.Options{Timings: fastTimings(), Puzzles: fakeSource{}, Seed: 1},
		Settings: fastSettings(),
		Wrap:     wrap,
	}
}

func awaitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(20 * time.Second):
		t.Fatalf("lesson did not finish")
	}
	return Result{}
}

// capture hands the Stage built by Launch to the test.
func capture(got chan<- *stage.Stage) func(*stage.Stage) Minimal {
	return func(st *stage.Stage) Minimal {
		got <- st
		return st
	}
}

func TestLessonCompletesWithoutLearner(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	res := awaitResult(t, Launch(ctx, options(nil)))
	if !res.Completed || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Beats != 13 {
		t.Fatalf("beats: got %d want 13", res.Beats)
	}
	if res.Session == "" {
		t.Fatalf("missing session id")
	}
}

// press is one toolbar press made by the learner with the filled count
// on either side of it.
type press struct {
	ctl           stage.Control
	before, after int
}

type pressLog struct {
	mu      sync.Mutex
	presses []press
}

func (l *pressLog) add(p press) {
	l.mu.Lock()
	l.presses = append(l.presses, p)
	l.mu.Unlock()
}

// first returns the first accepted press of ctl.
func (l *pressLog) first(ctl stage.Control) (press, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.presses {
		if p.ctl == ctl {
			return p, true
		}
	}
	return press{}, false
}

// learner reacts to what the Stage shows: it fills targets, follows the
// guide with arrow keys and presses pinged controls, logging each press
// to log when it is set.
func learner(st *stage.Stage, log *pressLog) {
	ch, cancel := st.Subscribe(256)
	defer cancel()
	var lastPing stage.Control
	for range ch {
		sn := st.Snapshot()
		if sn.Destroyed {
			return
		}
		switch {
		case sn.Target != nil && (sn.Selection == nil || *sn.Selection != *sn.Target):
			st.ClickCell(sn.Target.Row, sn.Target.Col)
		case sn.Target != nil:
			st.KeyDown(fmt.Sprint(sn.Answer))
		case sn.Visuals.Guide != nil && sn.Selection != nil && *sn.Selection != *sn.Visuals.Guide:
			g, cur := *sn.Visuals.Guide, *sn.Selection
			switch {
			case cur.Row < g.Row:
				st.KeyDown(stage.ArrowDown)
			case cur.Row > g.Row:
				st.KeyDown(stage.ArrowUp)
			case cur.Col < g.Col:
				st.KeyDown(stage.ArrowRight)
			default:
				st.KeyDown(stage.ArrowLeft)
			}
		}
		ping := sn.Visuals.Ping
		if ping == "" {
			lastPing = ""
		} else if ping != lastPing && ping != stage.ControlVariant {
			lastPing = ping
			before := st.Snapshot().Filled()
			if st.PressControl(ping, "") && log != nil {
				log.add(press{ctl: ping, before: before, after: st.Snapshot().Filled()})
			}
		}
	}
}

func TestLessonWithActiveLearner(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	got := make(chan *stage.Stage, 1)
	opts := options(capture(got))
	log := &pressLog{}
	opts.Mount = mountFunc(func(st *stage.Stage) func() {
		go learner(st, log)
		return st.Destroy
	})
	res := awaitResult(t, Launch(ctx, opts))
	st := <-got
	defer st.Destroy()
	if !res.Completed {
		t.Fatalf("unexpected result %+v", res)
	}
	sn := st.Snapshot()
	if !sn.Music || !sn.Settings {
		t.Fatalf("learner toggles missing: music=%v settings=%v", sn.Music, sn.Settings)
	}
	if sn.Step != 0 || sn.Locks != (stage.Locks{}) || sn.Target != nil {
		t.Fatalf("lesson left restrictions: %+v %+v", sn.Step, sn.Locks)
	}
	if !sn.Visuals.Roaming {
		t.Fatalf("coach should roam after the lesson")
	}
	if sn.Variant != domain.Classic9 || sn.Filled() == 0 {
		t.Fatalf("expected a classic puzzle on the board")
	}
	for _, want := range []struct {
		ctl   stage.Control
		delta int
	}{
		{stage.ControlHint, 1},
		{stage.ControlUndo, -1},
		{stage.ControlRedo, 1},
	} {
		p, ok := log.first(want.ctl)
		if !ok {
			t.Fatalf("learner never pressed %s", want.ctl)
		}
		if p.after-p.before != want.delta {
			t.Fatalf("%s moved filled %d -> %d, want delta %d", want.ctl, p.before, p.after, want.delta)
		}
	}
}

type mountFunc func(*stage.Stage) func()

func (f mountFunc) Attach(st *stage.Stage) func() { return f(st) }

func TestSkipPersistsFlag(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	flags := storage.NewFlags(filepath.Join(t.TempDir(), "flags.yaml"))
	if !ShouldAutoLaunch(flags) {
		t.Fatalf("fresh store should auto launch")
	}
	opts := options(nil)
	opts.Flags = flags
	opts.Mount = mountFunc(func(st *stage.Stage) func() {
		go func() {
			ch, stop := st.Subscribe(16, stage.EventChanged)
			defer stop()
			for range ch {
				for _, cta := range st.Snapshot().Visuals.Speech.CTAs {
					if cta.ID == SkipCTA {
						st.PressCTA(SkipCTA)
						return
					}
				}
			}
		}()
		return func() {}
	})
	res := awaitResult(t, Launch(ctx, opts))
	if !res.Skipped || res.Completed || res.Aborted {
		t.Fatalf("unexpected result %+v", res)
	}
	if ShouldAutoLaunch(flags) {
		t.Fatalf("skip flag not persisted")
	}
}

// A Stage destroyed while the arrow challenge counts down must end the
// lesson quietly and stay untouched afterwards.
func TestDestroyMidArrowChallenge(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var (
		mu     sync.Mutex
		before stage.Snapshot
	)
	opts := options(nil)
	opts.Mount = mountFunc(func(st *stage.Stage) func() {
		go func() {
			ch, stop := st.Subscribe(64, stage.EventTick)
			defer stop()
			for range ch {
				mu.Lock()
				before = st.Snapshot()
				st.Destroy()
				mu.Unlock()
				return
			}
		}()
		return func() {}
	})
	got := make(chan *stage.Stage, 1)
	opts.Wrap = capture(got)
	res := awaitResult(t, Launch(ctx, opts))
	st := <-got
	if !res.Aborted || res.Completed || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Beats != 2 {
		t.Fatalf("destroyed during beat %d, want the arrow challenge", res.Beats)
	}
	time.Sleep(50 * time.Millisecond)
	after := st.Snapshot()
	mu.Lock()
	defer mu.Unlock()
	if !after.Destroyed {
		t.Fatalf("stage should be destroyed")
	}
	if !reflect.DeepEqual(before.Grid, after.Grid) || !reflect.DeepEqual(before.Selection, after.Selection) {
		t.Fatalf("stage mutated after destroy")
	}
}

// panicky fails whenever the script loads a board.
type panicky struct {
	*stage.Stage
}

func (p panicky) Load(b, sol *domain.Board) { panic("load failed") }

func TestPanicBecomesApology(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got := make(chan *stage.Stage, 1)
	opts := options(func(st *stage.Stage) Minimal {
		got <- st
		return panicky{st}
	})
	opts.Mount = mountFunc(func(*stage.Stage) func() { return func() {} })
	res := awaitResult(t, Launch(ctx, opts))
	st := <-got
	defer st.Destroy()
	if res.Err == nil || res.Completed {
		t.Fatalf("unexpected result %+v", res)
	}
	st.RevealAll()
	sn := st.Snapshot()
	if got := sn.Visuals.Speech.Text(); got != "Oops. The lesson tripped over itself. The board is all yours." {
		t.Fatalf("apology: got %q", got)
	}
	if sn.Visuals.Mood != stage.MoodSad {
		t.Fatalf("mood: got %v", sn.Visuals.Mood)
	}
	if sn.Step != 0 || sn.Locks != (stage.Locks{}) || sn.Target != nil {
		t.Fatalf("apology should free the board: step=%d locks=%+v", sn.Step, sn.Locks)
	}
}

func TestCancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := awaitResult(t, Launch(ctx, options(nil)))
	if !res.Aborted || res.Completed || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}
