package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/stage"
)

type fakeProgram struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (f *fakeProgram) Send(msg tea.Msg) {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
}

func (f *fakeProgram) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func newStage(t *testing.T) *stage.Stage {
	t.Helper()
	st := stage.New(stage.Options{Variant: domain.Mini4, Timings: stage.Timings{Type: time.Millisecond}})
	t.Cleanup(st.Destroy)
	b := domain.NewBoard(4)
	b.Values[0][0], b.Fixed[0][0] = 1, true
	st.Load(b, nil)
	return st
}

func TestLayoutRoundTrip(t *testing.T) {
	for _, v := range domain.Variants {
		n := v.Size()
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				x, y := cellOrigin(n, r, c)
				for dx := 0; dx < cellWidth; dx++ {
					gr, gc, ok := cellAt(n, x+dx, y)
					if !ok || gr != r || gc != c {
						t.Fatalf("%s: (%d,%d)+%d mapped to (%d,%d,%v)", v, r, c, dx, gr, gc, ok)
					}
				}
			}
		}
		br, _ := v.Box()
		if _, _, ok := cellAt(n, boardLeft, boardTop+br); ok {
			t.Fatalf("%s: separator row should not map to a cell", v)
		}
	}
}

func TestToolbarHitTest(t *testing.T) {
	st := newStage(t)
	buttons := toolbar(st.Controls(), domain.Mini4)
	for _, b := range buttons {
		if ctl, ok := buttonAt(buttons, b.x0); !ok || ctl != b.ctl {
			t.Fatalf("button %s not found at %d", b.ctl, b.x0)
		}
		if _, ok := buttonAt(buttons, b.x1); ok {
			t.Fatalf("gap after %s should miss", b.ctl)
		}
	}
	if last := buttons[len(buttons)-1]; !strings.HasSuffix(last.label, "mini4") {
		t.Fatalf("size button label %q", last.label)
	}
}

func TestKeyReleaseIsSynthesised(t *testing.T) {
	st := newStage(t)
	ch, stop := st.Subscribe(16, stage.EventKeyDown, stage.EventKeyUp)
	defer stop()
	m := newModel(st, 50*time.Millisecond)

	p := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}
	mi, cmd := m.Update(p)
	if cmd == nil {
		t.Fatalf("press should schedule a release")
	}
	m = mi.(model)
	mi, _ = m.Update(p)
	m = mi.(model)

	mi, _ = m.Update(keyUpMsg{key: "p", seq: 1})
	m = mi.(model)
	mi, _ = m.Update(keyUpMsg{key: "p", seq: 2})
	m = mi.(model)

	want := []stage.EventKind{stage.EventKeyDown, stage.EventKeyDown, stage.EventKeyUp}
	for i, k := range want {
		select {
		case ev := <-ch:
			if ev.Kind != k || ev.Key != "p" {
				t.Fatalf("event %d: got %v %q want %v", i, ev.Kind, ev.Key, k)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing event %d", i)
		}
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected extra event %v", ev.Kind)
	default:
	}
}

func TestMouseMapsToStage(t *testing.T) {
	st := newStage(t)
	m := newModel(st, 0)

	x, y := cellOrigin(4, 1, 2)
	mi, _ := m.Update(tea.MouseMsg{X: x + 1, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m = mi.(model)
	if sel := st.Snapshot().Selection; sel == nil || *sel != (domain.CellCoord{Row: 1, Col: 2}) {
		t.Fatalf("left click should select (1,2), got %v", sel)
	}

	mi, _ = m.Update(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonRight, Action: tea.MouseActionPress})
	m = mi.(model)
	if len(st.Snapshot().Sticky) != 1 {
		t.Fatalf("right click should pin candidates")
	}

	for _, b := range toolbar(st.Controls(), domain.Mini4) {
		if b.ctl == stage.ControlMusic {
			mi, _ = m.Update(tea.MouseMsg{X: b.x0 + 1, Y: toolbarRow, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
			m = mi.(model)
		}
	}
	if !st.Snapshot().Music {
		t.Fatalf("toolbar click should toggle music")
	}

	mi, _ = m.Update(tea.MouseMsg{X: boardLeft + cellWidth*2, Y: keypadRow(4), Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m = mi.(model)
	if got := st.Snapshot().Grid[1][2]; got != 3 {
		t.Fatalf("keypad 3 should fill the selection, got %d", got)
	}
}

func TestViewShowsStage(t *testing.T) {
	st := newStage(t)
	st.Open()
	st.Say("Hello <b>there</b>", stage.CTA{ID: "skip", Label: "Skip tutorial"})
	st.RevealAll()
	m := newModel(st, 0)
	mi, _ := m.Update(stageMsg{ev: stage.Event{Kind: stage.EventChanged}})
	m = mi.(model)
	out := m.View()
	for _, want := range []string{"[New puzzle]", "Hello", "Skip tutorial", "Size: mini4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestDestroyQuitsProgram(t *testing.T) {
	st := newStage(t)
	m := newModel(st, 0)
	st.Destroy()
	_, cmd := m.Update(stageMsg{ev: stage.Event{Kind: stage.EventDestroyed}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestForwardRelaysEvents(t *testing.T) {
	st := newStage(t)
	p := &fakeProgram{}
	h := &Host{program: p}
	done := make(chan struct{})
	go func() {
		h.forward(st)
		close(done)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for p.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no events relayed")
		}
		st.SetMood(stage.MoodHappy)
		st.SetMood(stage.MoodIdle)
		time.Sleep(time.Millisecond)
	}
	st.Destroy()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("forward did not stop after destroy")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.msgs[len(p.msgs)-1].(stageMsg)
	if !ok || last.ev.Kind != stage.EventDestroyed {
		t.Fatalf("last message should report destruction, got %#v", p.msgs[len(p.msgs)-1])
	}
}
