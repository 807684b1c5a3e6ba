// Package tui renders a Stage in the terminal with bubbletea.
package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"svw.info/sudokucoach/internal/stage"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// Host mounts a Stage in a full-screen terminal program. It satisfies
// coach.Mount. Quitting the program destroys the Stage.
type Host struct {
	log       *slog.Logger
	opts      []tea.ProgramOption
	repeatGap time.Duration

	program teaProgram
	done    chan struct{}
}

// New returns a Host. repeatGap is how long a key must stay silent before
// it counts as released; zero picks a default above common key-repeat
// delays.
func New(log *slog.Logger, repeatGap time.Duration, opts ...tea.ProgramOption) *Host {
	if log == nil {
		log = slog.Default()
	}
	return &Host{log: log.With("component", "tui"), opts: opts, repeatGap: repeatGap, done: make(chan struct{})}
}

// Attach starts the terminal program for st and returns a func that stops
// it and waits for the terminal to be restored.
func (h *Host) Attach(st *stage.Stage) func() {
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, h.opts...)
	p := tea.NewProgram(newModel(st, h.repeatGap), opts...)
	h.program = p
	go h.forward(st)
	go func() {
		if _, err := p.Run(); err != nil {
			h.log.Error("terminal program", "err", err)
		}
		st.Destroy()
		close(h.done)
	}()
	return func() {
		p.Quit()
		<-h.done
	}
}

// Done is closed once the terminal program has exited.
func (h *Host) Done() <-chan struct{} { return h.done }

// forward relays every Stage event to the program until the Stage is gone.
func (h *Host) forward(st *stage.Stage) {
	ch, cancel := st.Subscribe(256)
	defer cancel()
	for ev := range ch {
		h.program.Send(stageMsg{ev: ev})
	}
	h.program.Send(stageMsg{ev: stage.Event{Kind: stage.EventDestroyed}})
}
