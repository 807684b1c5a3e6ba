// Package stage owns the interactive surface of one guided Sudoku session:
// board state, the coach avatar, overlay effects, and input locking.
//
// Every exported method is safe for concurrent use, never panics on bad
// coordinates, and becomes a no-op once the Stage is destroyed.
package stage

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/generator"
	"svw.info/sudokucoach/internal/hint"
	"svw.info/sudokucoach/internal/solver"
	"svw.info/sudokucoach/internal/usecase"
	"svw.info/sudokucoach/internal/validator"
)

// PuzzleSource produces puzzles for the "new" control and hints for "hint".
// *usecase.Service satisfies it.
type PuzzleSource interface {
	NewPuzzle(ctx context.Context, v domain.Variant, d domain.Difficulty) (*domain.Puzzle, error)
	Hint(ctx context.Context, b *domain.Board, max domain.StrategyTier) (domain.Hint, bool, error)
}

// Timings groups every duration the Stage schedules. Zero fields take defaults.
type Timings struct {
	Tick      time.Duration // countdown tick
	Wrong     time.Duration // wrong-digit overlay
	Celebrate time.Duration
	Ripple    time.Duration
	Nudge     time.Duration
	Cry       time.Duration
	Ping      time.Duration
	Wave      time.Duration
	Morph     time.Duration // full collapse + resolve
	Type      time.Duration // one typewriter frame
	Frame     time.Duration // one avatar animation frame
	Roam      time.Duration // pause between roaming moves
}

func (t Timings) withDefaults() Timings {
	def := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&t.Tick, time.Second)
	def(&t.Wrong, 900*time.Millisecond)
	def(&t.Celebrate, 600*time.Millisecond)
	def(&t.Ripple, 450*time.Millisecond)
	def(&t.Nudge, 500*time.Millisecond)
	def(&t.Cry, 1500*time.Millisecond)
	def(&t.Ping, 1200*time.Millisecond)
	def(&t.Wave, 800*time.Millisecond)
	def(&t.Morph, 700*time.Millisecond)
	def(&t.Type, 18*time.Millisecond)
	def(&t.Frame, 40*time.Millisecond)
	def(&t.Roam, 2500*time.Millisecond)
	return t
}

// Options configure a Stage.
type Options struct {
	Variant    domain.Variant
	Difficulty domain.Difficulty
	Timings    Timings
	TypeRate   int     // units revealed per typewriter frame
	AvatarStep float64 // cell units per animation frame
	Puzzles    PuzzleSource
	Logger     *slog.Logger
	Seed       int64 // roaming randomness; 0 uses the clock
}

// Stage is the interactive rendering/control surface for one guided session.
type Stage struct {
	mu  sync.Mutex
	log *slog.Logger
	t   Timings
	src PuzzleSource

	life      context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	destroyed bool
	open      bool

	variant    domain.Variant
	difficulty domain.Difficulty
	board      *domain.Board
	solution   *domain.Board
	selection  *domain.CellCoord
	chosen     uint8
	target     *domain.CellCoord
	answer     uint8
	step       int
	locks      Locks
	sticky     map[domain.CellCoord][]uint8
	contextArm bool
	intercept  func(key string) bool
	music      bool
	settings   bool
	undo, redo []move
	puzzleGen  int

	vis        Visuals
	typeRate   int
	avatarStep float64
	avatarTo   Point
	rng        *rand.Rand

	subs   map[int]*subscriber
	subSeq int

	timers   map[int]*time.Timer
	timerSeq int
	pending  []func()

	// named timers that a newer call replaces
	tCountdown, tWrong, tCelebrate, tRipple, tNudge, tCry, tPing, tWave int
	tMorph, tType, tFrame, tRoam                                       int
}

// move is one undoable board edit.
type move struct {
	cell     domain.CellCoord
	from, to uint8
}

// New constructs a closed Stage at opts.Variant with an empty board.
func New(opts Options) *Stage {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	src := opts.Puzzles
	if src == nil {
		s := solver.NewDLXSolver()
		src = usecase.NewService(s, generator.NewUniqueGenerator(s), validator.New(), hint.NewSingles(), nil)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	life, cancel := context.WithCancel(context.Background())
	s := &Stage{
		log:        log.With("component", "stage"),
		t:          opts.Timings.withDefaults(),
		src:        src,
		life:       life,
		cancel:     cancel,
		done:       make(chan struct{}),
		variant:    opts.Variant,
		difficulty: opts.Difficulty,
		board:      domain.NewBoard(opts.Variant.Size()),
		sticky:     map[domain.CellCoord][]uint8{},
		typeRate:   opts.TypeRate,
		avatarStep: opts.AvatarStep,
		rng:        rand.New(rand.NewSource(seed)),
		subs:       map[int]*subscriber{},
		timers:     map[int]*time.Timer{},
	}
	if s.typeRate <= 0 {
		s.typeRate = 2
	}
	if s.avatarStep <= 0 {
		s.avatarStep = 0.5
	}
	s.vis.Mood = MoodIdle
	s.vis.Avatar = Point{X: float64(s.board.N), Y: 0}
	s.avatarTo = s.vis.Avatar
	return s
}

// Open makes the Stage visible.
func (s *Stage) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.open {
		return
	}
	s.open = true
	s.emitLocked(Event{Kind: EventOpen})
}

// Close hides the Stage; state is kept.
func (s *Stage) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.open {
		return
	}
	s.open = false
	s.emitLocked(Event{Kind: EventClose})
}

// Destroy tears the Stage down: timers stop, subscriptions close, and every
// later call is a no-op. It is idempotent.
func (s *Stage) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.pending = nil
	s.intercept = nil
	s.emitLocked(Event{Kind: EventDestroyed})
	s.destroyed = true
	s.open = false
	for id, sub := range s.subs {
		close(sub.ch)
		delete(s.subs, id)
	}
	s.cancel()
	close(s.done)
	s.log.Debug("destroyed")
}

// Done is closed when the Stage is destroyed.
func (s *Stage) Done() <-chan struct{} { return s.done }

// Alive reports whether the Stage has not been destroyed.
func (s *Stage) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.destroyed
}

// afterLocked schedules fn to run with s.mu held once d elapses, unless the
// timer is cancelled or the Stage destroyed first. Callbacks queued in
// s.pending by fn run after the lock is released.
func (s *Stage) afterLocked(d time.Duration, fn func()) int {
	s.timerSeq++
	id := s.timerSeq
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.destroyed {
			s.mu.Unlock()
			return
		}
		if _, ok := s.timers[id]; !ok {
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		fn()
		post := s.pending
		s.pending = nil
		s.mu.Unlock()
		for _, f := range post {
			f()
		}
	})
	return id
}

// cancelLocked stops a timer scheduled by afterLocked; id 0 is ignored.
func (s *Stage) cancelLocked(id *int) {
	if *id == 0 {
		return
	}
	if t, ok := s.timers[*id]; ok {
		t.Stop()
		delete(s.timers, *id)
	}
	*id = 0
}

func (s *Stage) inBounds(r, c int) bool { return s.board.InBounds(r, c) }
