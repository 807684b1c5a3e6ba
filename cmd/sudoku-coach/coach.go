package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"svw.info/sudokucoach/internal/coach"
	"svw.info/sudokucoach/internal/config"
	"svw.info/sudokucoach/internal/infrastructure/storage"
	"svw.info/sudokucoach/internal/logging"
	"svw.info/sudokucoach/internal/stage"
	"svw.info/sudokucoach/internal/tui"
)

var (
	coachForce    bool
	coachHeadless bool
	coachVariant  string
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Play, starting with the guided lesson on first run",
	Long: "coach opens the board in the terminal. The lesson runs unless it was skipped before; " +
		"--force replays it. Without a terminal the lesson runs headless and prints what the coach says.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, level, err := loadConfig()
		if err != nil {
			return err
		}
		if coachVariant != "" {
			cfg.Variant = coachVariant
		}
		interactive := !coachHeadless && term.IsTerminal(int(os.Stdin.Fd()))

		log := logging.New(os.Stderr, level)
		if interactive {
			fileLog, closer, err := logging.OpenFile(cfg.LogPath(), level)
			if err != nil {
				return err
			}
			defer closer.Close()
			log = fileLog
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		flags := storage.NewFlags(cfg.FlagsPath())
		opts := cfg.StageOptions()
		opts.Puzzles = newService(cfg)

		if !coachForce && !coach.ShouldAutoLaunch(flags) {
			if !interactive {
				fmt.Fprintln(cmd.OutOrStdout(), "The lesson was skipped earlier; pass --force to replay it.")
				return nil
			}
			return freePlay(ctx, opts)
		}
		return runLesson(ctx, cmd.OutOrStdout(), cfg, opts, flags, interactive)
	},
}

func init() {
	coachCmd.Flags().BoolVar(&coachForce, "force", false, "Run the lesson even if it was skipped")
	coachCmd.Flags().BoolVar(&coachHeadless, "headless", false, "Run without the terminal UI")
	coachCmd.Flags().StringVar(&coachVariant, "variant", "", "Board size: mini4|classic9|mega16")
}

func runLesson(ctx context.Context, out io.Writer, cfg *config.Config, opts stage.Options, flags *storage.Flags, interactive bool) error {
	log := logging.FromContext(ctx)
	lo := coach.LaunchOptions{
		Stage:    opts,
		Settings: cfg.LessonSettings(),
		Flags:    flags,
		Logger:   log,
	}
	var host *tui.Host
	var tr *transcript
	if interactive {
		host = tui.New(log, 0)
		lo.Mount = host
	} else {
		tr = &transcript{w: out}
		lo.Mount = tr
	}

	res := <-coach.Launch(ctx, lo)
	log.Info("lesson finished",
		"session", res.Session,
		"completed", res.Completed,
		"skipped", res.Skipped,
		"aborted", res.Aborted,
		"beats", res.Beats,
	)
	if res.Err != nil {
		log.Warn("lesson recovered from a failure", "err", res.Err)
	}
	if host != nil {
		// the board stays up for free play until the player quits
		<-host.Done()
		return nil
	}
	tr.Close()
	fmt.Fprintf(out, "lesson %s: completed=%v skipped=%v aborted=%v beats=%d\n",
		res.Session, res.Completed, res.Skipped, res.Aborted, res.Beats)
	return nil
}

// freePlay shows the board without the lesson.
func freePlay(ctx context.Context, opts stage.Options) error {
	opts.Logger = logging.FromContext(ctx)
	st := stage.New(opts)
	host := tui.New(opts.Logger, 0)
	host.Attach(st)
	st.Trigger(stage.ControlNew, "")
	select {
	case <-host.Done():
	case <-ctx.Done():
		st.Destroy()
		<-host.Done()
	}
	return nil
}

// transcript is the headless Mount: it prints each finished coach line.
type transcript struct {
	w io.Writer

	mu   sync.Mutex
	st   *stage.Stage
	last string
	stop func()
	done chan struct{}
}

func (t *transcript) Attach(st *stage.Stage) func() {
	ch, cancel := st.Subscribe(256)
	t.st, t.stop, t.done = st, cancel, make(chan struct{})
	go func() {
		defer close(t.done)
		for range ch {
			t.print(st.Snapshot().Visuals.Speech)
		}
	}()
	return t.Close
}

func (t *transcript) print(sp stage.Speech) {
	if !sp.Done() {
		return
	}
	text := sp.Text()
	t.mu.Lock()
	defer t.mu.Unlock()
	if text == "" || text == t.last {
		return
	}
	t.last = text
	fmt.Fprintln(t.w, "coach:", text)
}

// Close destroys the Stage and waits for the printer to drain.
func (t *transcript) Close() {
	if t.st == nil {
		return
	}
	t.st.Destroy()
	t.stop()
	<-t.done
}

var _ coach.Mount = (*transcript)(nil)
