package coach

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"svw.info/sudokucoach/internal/ports"
	"svw.info/sudokucoach/internal/stage"
)

// Mount is a host that shows a Stage, such as the terminal UI. Attach
// starts presenting st and returns a func that stops it.
type Mount interface {
	Attach(st *stage.Stage) (detach func())
}

// LaunchOptions configure one lesson.
type LaunchOptions struct {
	Mount    Mount // nil runs headless
	Stage    stage.Options
	Settings Settings
	Flags    ports.FlagStore
	Logger   *slog.Logger
	// Wrap, when set, narrows the Stage before the script sees it; hosts
	// with partial surfaces use it, tests too.
	Wrap func(*stage.Stage) Minimal
}

// Launch builds a Stage, attaches it to the Mount and runs the lesson in
// the background. The channel yields one Result and closes. The Stage stays
// alive after a completed lesson for free play; the Mount owns it then.
func Launch(ctx context.Context, opts LaunchOptions) <-chan Result {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	session := uuid.NewString()
	log = log.With("session", session)
	if opts.Stage.Logger == nil {
		opts.Stage.Logger = log
	}

	st := stage.New(opts.Stage)
	detach := func() {}
	if opts.Mount != nil {
		detach = opts.Mount.Attach(st)
	}
	var m Minimal = st
	if opts.Wrap != nil {
		m = opts.Wrap(st)
	}
	script := NewScript(Adapt(m, log), opts.Settings, opts.Flags, log)

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		log.Info("lesson started")
		res := script.Run(ctx)
		res.Session = session
		if opts.Mount == nil {
			st.Destroy()
		}
		if !st.Alive() {
			detach()
		}
		out <- res
	}()
	return out
}

// ShouldAutoLaunch reports whether the lesson should start on its own. A
// flag store error counts as "not skipped".
func ShouldAutoLaunch(flags ports.FlagStore) bool {
	if flags == nil {
		return true
	}
	skip, err := flags.Get(SkipFlag)
	if err != nil {
		slog.Default().Warn("read skip flag", "err", err)
		return true
	}
	return !skip
}
