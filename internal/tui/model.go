package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"svw.info/sudokucoach/internal/stage"
)

// stageMsg carries one Stage event into the update loop.
type stageMsg struct{ ev stage.Event }

// keyUpMsg releases a key that saw no repeat within the repeat gap.
// Terminals report presses only, so releases are synthesised.
type keyUpMsg struct {
	key string
	seq int
}

type model struct {
	st        *stage.Stage
	sn        stage.Snapshot
	keys      keyMap
	help      help.Model
	width     int
	height    int
	repeatGap time.Duration
	held      map[string]int
	seq       int
}

func newModel(st *stage.Stage, repeatGap time.Duration) model {
	if repeatGap <= 0 {
		repeatGap = 600 * time.Millisecond
	}
	return model{
		st:        st,
		sn:        st.Snapshot(),
		keys:      defaultKeys(),
		help:      help.New(),
		width:     80,
		repeatGap: repeatGap,
		held:      map[string]int{},
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case stageMsg:
		m.sn = m.st.Snapshot()
		if msg.ev.Kind == stage.EventDestroyed || m.sn.Destroyed {
			return m, tea.Quit
		}
	case keyUpMsg:
		if m.held[msg.key] == msg.seq {
			delete(m.held, msg.key)
			m.st.KeyUp(msg.key)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Reveal):
		m.st.RevealAll()
		return m, nil
	case key.Matches(msg, m.keys.CTA):
		if ctas := m.sn.Visuals.Speech.CTAs; len(ctas) > 0 {
			m.st.PressCTA(ctas[0].ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.st.PressControl(stage.ControlNew, "")
		return m, nil
	case key.Matches(msg, m.keys.Hint):
		m.st.PressControl(stage.ControlHint, "")
		return m, nil
	case key.Matches(msg, m.keys.Undo):
		m.st.PressControl(stage.ControlUndo, "")
		return m, nil
	case key.Matches(msg, m.keys.Redo):
		m.st.PressControl(stage.ControlRedo, "")
		return m, nil
	case key.Matches(msg, m.keys.Music):
		m.st.PressControl(stage.ControlMusic, "")
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.st.PressControl(stage.ControlSettings, "")
		return m, nil
	case key.Matches(msg, m.keys.Size):
		m.st.PressControl(stage.ControlVariant, nextVariant(m.sn.Variant).Key())
		return m, nil
	}
	cmd := m.press(msg.String())
	return m, cmd
}

// press forwards a key to the Stage and arms its synthetic release.
func (m *model) press(k string) tea.Cmd {
	m.st.KeyDown(k)
	m.seq++
	seq := m.seq
	m.held[k] = seq
	return tea.Tick(m.repeatGap, func(time.Time) tea.Msg { return keyUpMsg{key: k, seq: seq} })
}

func (m model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	n := m.sn.N
	switch {
	case msg.Y == toolbarRow && msg.Button == tea.MouseButtonLeft:
		ctl, ok := buttonAt(toolbar(m.st.Controls(), m.sn.Variant), msg.X)
		if !ok {
			return
		}
		opt := ""
		if ctl == stage.ControlVariant {
			opt = nextVariant(m.sn.Variant).Key()
		}
		m.st.PressControl(ctl, opt)
	case msg.Y == keypadRow(n) && msg.Button == tea.MouseButtonLeft:
		if d, ok := digitAt(n, msg.X); ok {
			m.st.PressDigit(d)
		}
	default:
		r, c, ok := cellAt(n, msg.X, msg.Y)
		if !ok {
			return
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.st.ClickCell(r, c)
		case tea.MouseButtonRight:
			m.st.ContextMenuCell(r, c)
		}
	}
}
