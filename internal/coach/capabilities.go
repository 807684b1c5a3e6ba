// Package coach runs the scripted onboarding lesson against a Stage.
//
// The script only talks to the Stage through the interfaces in this file.
// A host that offers fewer capabilities than *stage.Stage can still be
// coached: Adapt fills the gaps once, at construction, with logged shims.
package coach

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/stage"
)

// Minimal is the smallest surface a host must offer to be coached.
type Minimal interface {
	Snapshot() stage.Snapshot
	Subscribe(buf int, kinds ...stage.EventKind) (<-chan stage.Event, func())
	Done() <-chan struct{}
	Destroy()

	Say(markup string, ctas ...stage.CTA)
	SetVariant(key string)
	Select(cell *domain.CellCoord)
	Place(r, c int, digit uint8)
	Load(b, solution *domain.Board)
	SetTarget(cell domain.CellCoord, answer uint8)
	ClearTarget()
	TutorialStep() int
	NextTutorialStep()
}

// Lifecycle controls visibility and the end of the lesson.
type Lifecycle interface {
	Open()
	Close()
	EndTutorial()
}

// Effects are the cosmetic helpers the script uses to direct attention.
type Effects interface {
	RippleAtCell(r, c int)
	ShowGuideTarget(r, c int)
	HideGuideTarget()
	StartCountdown(seconds int, onTick func(remaining int))
	StopCountdown()
	SetMood(m stage.Mood)
	CoachCry()
	ShowWrongOverlay(r, c int)
	PingBall(ctl stage.Control)
	WaveHotelOnce()
	MoveCoachNear(r, c int)
	StartRoam()
	StopRoam()
	Peek(on bool)
}

// Locker restricts learner input.
type Locker interface {
	SetLocks(l stage.Locks)
	Locks() stage.Locks
	SetInputInterceptor(fn func(key string) bool)
	AllowContextOnce()
}

// ControlRegistry exposes the toolbar by logical control name.
type ControlRegistry interface {
	Controls() []stage.ControlInfo
	Trigger(name stage.Control, option string) bool
}

// Stage is every capability the script can use. *stage.Stage satisfies it.
type Stage interface {
	Minimal
	Lifecycle
	Effects
	Locker
	ControlRegistry
	Alive() bool
}

// Button is a toolbar entry of a host that has no typed control registry.
type Button struct {
	ID      string
	Label   string
	Options []string
}

// Labeled hosts expose their toolbar by label only.
type Labeled interface {
	Buttons() []Button
	Click(id, option string) bool
}

var _ Stage = (*stage.Stage)(nil)

// Adapt returns m as a full Stage. When m lacks a capability, a shim stands
// in for it and is logged once at debug.
func Adapt(m Minimal, log *slog.Logger) Stage {
	if s, ok := m.(Stage); ok {
		return s
	}
	if log == nil {
		log = slog.Default()
	}
	a := &adapted{Minimal: m}
	locks := &softLocker{}
	if l, ok := m.(Locker); ok {
		a.Locker = l
	} else {
		log.Debug("coach shim", "capability", "locks")
		a.Locker = locks
	}
	if fx, ok := m.(Effects); ok {
		a.Effects = fx
	} else {
		log.Debug("coach shim", "capability", "effects")
		a.Effects = &softEffects{done: m.Done()}
	}
	switch r := m.(type) {
	case ControlRegistry:
		a.ControlRegistry = r
	case Labeled:
		log.Debug("coach shim", "capability", "controls", "via", "labels")
		a.ControlRegistry = discover(r, a.Locker, log)
	default:
		log.Debug("coach shim", "capability", "controls", "via", "none")
		a.ControlRegistry = noControls{}
	}
	if lc, ok := m.(Lifecycle); ok {
		a.Lifecycle = lc
	} else {
		log.Debug("coach shim", "capability", "lifecycle")
		a.Lifecycle = &softLifecycle{m: m, locks: a.Locker}
	}
	return a
}

type adapted struct {
	Minimal
	Lifecycle
	Effects
	Locker
	ControlRegistry
}

func (a *adapted) Alive() bool {
	select {
	case <-a.Done():
		return false
	default:
		return true
	}
}

// softLocker remembers locks the host cannot enforce. The script consults it
// before programmatic clicks.
type softLocker struct {
	mu sync.Mutex
	l  stage.Locks
}

func (s *softLocker) SetLocks(l stage.Locks) {
	s.mu.Lock()
	s.l = l
	s.mu.Unlock()
}

func (s *softLocker) Locks() stage.Locks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l
}

func (*softLocker) SetInputInterceptor(func(string) bool) {}
func (*softLocker) AllowContextOnce() {}

// softEffects drops every visual but keeps the countdown ticking so timed
// beats still end.
type softEffects struct {
	done <-chan struct{}
	mu   sync.Mutex
	stop chan struct{}
}

func (*softEffects) RippleAtCell(int, int) {}
func (*softEffects) ShowGuideTarget(int, int) {}
func (*softEffects) HideGuideTarget() {}
func (*softEffects) SetMood(stage.Mood) {}
func (*softEffects) CoachCry() {}
func (*softEffects) ShowWrongOverlay(int, int) {}
func (*softEffects) PingBall(stage.Control) {}
func (*softEffects) WaveHotelOnce() {}
func (*softEffects) MoveCoachNear(int, int) {}
func (*softEffects) StartRoam() {}
func (*softEffects) StopRoam() {}
func (*softEffects) Peek(bool) {}

func (e *softEffects) StartCountdown(seconds int, onTick func(int)) {
	e.StopCountdown()
	stop := make(chan struct{})
	e.mu.Lock()
	e.stop = stop
	e.mu.Unlock()
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for rem := seconds - 1; rem >= 0; rem-- {
			select {
			case <-t.C:
			case <-stop:
				return
			case <-e.done:
				return
			}
			if onTick != nil {
				onTick(rem)
			}
		}
	}()
}

func (e *softEffects) StopCountdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

type softLifecycle struct {
	m     Minimal
	locks Locker
}

func (*softLifecycle) Open() {}
func (*softLifecycle) Close() {}

func (l *softLifecycle) EndTutorial() {
	l.m.ClearTarget()
	l.locks.SetLocks(stage.Locks{})
	l.locks.SetInputInterceptor(nil)
}

type noControls struct{}

func (noControls) Controls() []stage.ControlInfo { return nil }
func (noControls) Trigger(stage.Control, string) bool { return false }

// labelRegistry maps logical controls onto a Labeled host's buttons.
type labelRegistry struct {
	host  Labeled
	locks Locker
	ids   map[stage.Control]string
	info  []stage.ControlInfo
}

var labelWords = []struct {
	ctl  stage.Control
	word string
}{
	{stage.ControlNew, "new"},
	{stage.ControlHint, "hint"},
	{stage.ControlUndo, "undo"},
	{stage.ControlRedo, "redo"},
	{stage.ControlMusic, "music"},
	{stage.ControlSettings, "settings"},
}

func discover(host Labeled, locks Locker, log *slog.Logger) *labelRegistry {
	reg := &labelRegistry{host: host, locks: locks, ids: map[stage.Control]string{}}
	for _, b := range host.Buttons() {
		ctl, ok := classify(b)
		if !ok {
			continue
		}
		if _, dup := reg.ids[ctl]; dup {
			continue
		}
		reg.ids[ctl] = b.ID
		reg.info = append(reg.info, stage.ControlInfo{Name: ctl, Label: b.Label, Options: append([]string(nil), b.Options...)})
		log.Debug("coach control discovered", "control", string(ctl), "button", b.ID)
	}
	return reg
}

func classify(b Button) (stage.Control, bool) {
	for _, opt := range b.Options {
		if _, ok := domain.ParseVariant(opt); ok {
			return stage.ControlVariant, true
		}
	}
	label := strings.ToLower(b.Label)
	for _, w := range labelWords {
		if strings.Contains(label, w.word) {
			return w.ctl, true
		}
	}
	return "", false
}

func (r *labelRegistry) Controls() []stage.ControlInfo {
	return append([]stage.ControlInfo(nil), r.info...)
}

// Trigger clicks the discovered button. A host without enforced locks is
// still not clicked while the adapter holds the toolbar locked.
func (r *labelRegistry) Trigger(name stage.Control, option string) bool {
	id, ok := r.ids[name]
	if !ok {
		return false
	}
	if _, soft := r.locks.(*softLocker); soft && r.locks.Locks().Toolbar {
		return false
	}
	return r.host.Click(id, option)
}
