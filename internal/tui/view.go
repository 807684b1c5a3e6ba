package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/stage"
)

var (
	styleGiven     = lipgloss.NewStyle().Bold(true)
	styleUser      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleFaint     = lipgloss.NewStyle().Faint(true)
	styleSelected  = lipgloss.NewStyle().Reverse(true)
	styleGuide     = lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0"))
	styleNudge     = lipgloss.NewStyle().Background(lipgloss.Color("5"))
	styleWrong     = lipgloss.NewStyle().Background(lipgloss.Color("52"))
	styleWrongCell = lipgloss.NewStyle().Background(lipgloss.Color("1")).Bold(true)
	styleCelebrate = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0"))
	styleRipple    = lipgloss.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("0"))
	stylePing      = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	styleGrid      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBubble    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	styleCTA       = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)

	urgencyColor = map[stage.Urgency]lipgloss.Color{
		stage.UrgencyCalm:  lipgloss.Color("10"),
		stage.UrgencyWarn:  lipgloss.Color("11"),
		stage.UrgencyPanic: lipgloss.Color("9"),
	}

	faces = map[stage.Mood]string{
		stage.MoodIdle:     "(•_•)",
		stage.MoodHappy:    "(^_^)",
		stage.MoodThinking: "(•_•)?",
		stage.MoodWorried:  "(°o°)",
		stage.MoodSad:      "(._.)",
		stage.MoodCheer:    "\\(^o^)/",
	}
)

func (m model) View() string {
	sn := m.sn
	lines := []string{
		m.renderToolbar(),
		m.renderBanner(),
	}
	lines = append(lines, m.renderBoard()...)
	lines = append(lines, "", m.renderKeypad())
	if sn.Open {
		lines = append(lines, m.renderCoach())
		if bubble := m.renderSpeech(); bubble != "" {
			lines = append(lines, bubble)
		}
	}
	if sn.Settings {
		lines = append(lines, styleFaint.Render(fmt.Sprintf("Settings  size=%s  press v to change", sn.Variant.Key())))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m model) renderToolbar() string {
	sn := m.sn
	var b strings.Builder
	for i, btn := range toolbar(m.st.Controls(), sn.Variant) {
		if i > 0 {
			b.WriteString(" ")
		}
		label := "[" + btn.label + "]"
		switch {
		case sn.Visuals.Ping == btn.ctl:
			label = stylePing.Render(label)
		case sn.Locks.Toolbar:
			label = styleFaint.Render(label)
		case btn.ctl == stage.ControlMusic && sn.Music:
			label = styleUser.Render(label)
		}
		b.WriteString(label)
	}
	return b.String()
}

func (m model) renderBanner() string {
	cd := m.sn.Visuals.Countdown
	if !cd.Active {
		return ""
	}
	text := fmt.Sprintf(" %d ", cd.Remaining)
	style := lipgloss.NewStyle().Bold(true).Foreground(urgencyColor[cd.Urgency])
	if cd.Urgency == stage.UrgencyPanic {
		style = style.Reverse(cd.Remaining%2 == 0)
	}
	pad := ""
	if cd.Shake && cd.Remaining%2 == 1 {
		pad = " "
	}
	return strings.Repeat(" ", boardLeft) + pad + style.Render("⏱"+text)
}

func (m model) renderBoard() []string {
	sn := m.sn
	n := sn.N
	if n == 0 {
		return nil
	}
	br, bc := boxOf(n)
	wrong := map[domain.CellCoord]bool{}
	for _, c := range sn.Visuals.Wrong {
		wrong[c] = true
	}
	collapsing := sn.Visuals.Morph == stage.MorphCollapse

	var lines []string
	for r := 0; r < n; r++ {
		if r > 0 && r%br == 0 {
			lines = append(lines, strings.Repeat(" ", boardLeft)+styleGrid.Render(separator(n, bc)))
		}
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", boardLeft))
		for c := 0; c < n; c++ {
			if c > 0 && c%bc == 0 {
				b.WriteString(styleGrid.Render("│"))
			}
			b.WriteString(m.renderCell(r, c, wrong, collapsing))
		}
		lines = append(lines, b.String())
	}
	return lines
}

func separator(n, bc int) string {
	var b strings.Builder
	for c := 0; c < n; c++ {
		if c > 0 && c%bc == 0 {
			b.WriteString("┼")
		}
		b.WriteString(strings.Repeat("─", cellWidth))
	}
	return b.String()
}

func (m model) renderCell(r, c int, wrong map[domain.CellCoord]bool, collapsing bool) string {
	sn := m.sn
	v := sn.Visuals
	cell := domain.CellCoord{Row: r, Col: c}
	val := sn.Grid[r][c]

	text := symbol(val)
	style := styleUser
	switch {
	case sn.Given[r][c]:
		style = styleGiven
	case val == 0 && v.Peek && sn.Solution != nil:
		text = symbol(sn.Solution[r][c])
		style = styleFaint
	case val == 0 && len(sn.Sticky[cell]) > 0:
		text = "+"
		style = styleFaint
	case val == 0:
		style = styleFaint
	}
	switch {
	case is(v.WrongCell, cell):
		style = styleWrongCell
	case is(v.Celebrate, cell):
		style = styleCelebrate
	case is(v.Ripple, cell):
		style = styleRipple
	case is(v.Guide, cell) && v.Nudge:
		style = styleNudge
	case is(v.Guide, cell):
		style = styleGuide
	case wrong[cell]:
		style = style.Background(styleWrong.GetBackground())
	}
	if is(sn.Selection, cell) {
		style = style.Inherit(styleSelected)
	}
	if collapsing {
		style = style.Faint(true)
	}
	return style.Render(" " + text + " ")
}

func is(p *domain.CellCoord, c domain.CellCoord) bool { return p != nil && *p == c }

func (m model) renderKeypad() string {
	sn := m.sn
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", boardLeft))
	style := lipgloss.NewStyle()
	switch {
	case sn.Visuals.HotelWave:
		style = stylePing
	case sn.Locks.Hotel:
		style = styleFaint
	}
	for d := 1; d <= sn.N; d++ {
		txt := " " + symbol(uint8(d)) + " "
		if uint8(d) == sn.Chosen {
			b.WriteString(style.Inherit(styleSelected).Render(txt))
			continue
		}
		b.WriteString(style.Render(txt))
	}
	return b.String()
}

func (m model) renderCoach() string {
	v := m.sn.Visuals
	face := faces[v.Mood]
	if v.Crying {
		face = "(T_T)"
	}
	x, _ := cellOrigin(m.sn.N, 0, 0)
	x += int(v.Avatar.X * float64(cellWidth))
	return strings.Repeat(" ", x) + face
}

func (m model) renderSpeech() string {
	sp := m.sn.Visuals.Speech
	if len(sp.Units) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < sp.Revealed && i < len(sp.Units); i++ {
		u := sp.Units[i]
		if u.Text == "\n" || !u.Bold && !u.Italic {
			b.WriteString(u.Text)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Bold(u.Bold).Italic(u.Italic).Render(u.Text))
	}
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	out := styleBubble.Render(wordwrap.String(b.String(), width))
	if sp.Done() && len(sp.CTAs) > 0 {
		var row []string
		for _, cta := range sp.CTAs {
			row = append(row, styleCTA.Render(cta.Label))
		}
		out += "\n" + strings.Join(row, " ") + styleFaint.Render("  enter")
	}
	return out
}
