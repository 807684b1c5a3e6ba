package coach

import (
	"context"
	"errors"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/stage"
)

// ErrStageGone reports that the Stage was destroyed while the script waited.
var ErrStageGone = errors.New("coach: stage destroyed")

// watch is a subscription opened before the action it waits for, so an
// event raised in between is not lost.
type watch struct {
	st     Stage
	ch     <-chan stage.Event
	cancel func()
}

// watchFor subscribes to kinds and then runs prompt, when given.
func watchFor(st Stage, prompt func(), kinds ...stage.EventKind) *watch {
	ch, cancel := st.Subscribe(64, kinds...)
	if prompt != nil {
		prompt()
	}
	return &watch{st: st, ch: ch, cancel: cancel}
}

func (w *watch) close() { w.cancel() }

// until returns (true, nil) once match accepts an event, (false, nil) on
// timeout, and an error when ctx ends or the Stage goes away.
func (w *watch) until(ctx context.Context, timeout time.Duration, match func(stage.Event) bool) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-w.ch:
			if !ok || ev.Kind == stage.EventDestroyed {
				return false, ErrStageGone
			}
			if match(ev) {
				return true, nil
			}
		case <-timer.C:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		case <-w.st.Done():
			return false, ErrStageGone
		}
	}
}

// untilState is until with a predicate over the Stage state, checked once
// up front and again after every event.
func (w *watch) untilState(ctx context.Context, timeout time.Duration, pred func(stage.Snapshot) bool) (bool, error) {
	if pred(w.st.Snapshot()) {
		return true, nil
	}
	return w.until(ctx, timeout, func(stage.Event) bool { return pred(w.st.Snapshot()) })
}

func waitCellClick(ctx context.Context, st Stage, timeout time.Duration, prompt func()) (bool, error) {
	w := watchFor(st, prompt, stage.EventCellClick)
	defer w.close()
	return w.until(ctx, timeout, func(stage.Event) bool { return true })
}

// waitTargetFill waits until cell holds answer.
func waitTargetFill(ctx context.Context, st Stage, timeout time.Duration, prompt func(), cell domain.CellCoord, answer uint8) (bool, error) {
	w := watchFor(st, prompt, stage.EventPlace, stage.EventPuzzle, stage.EventVariant)
	defer w.close()
	return w.untilState(ctx, timeout, func(sn stage.Snapshot) bool {
		return cell.Row < sn.N && cell.Col < sn.N && sn.Grid[cell.Row][cell.Col] == answer
	})
}

func waitControlClick(ctx context.Context, st Stage, timeout time.Duration, prompt func(), ctl stage.Control) (bool, error) {
	w := watchFor(st, prompt, stage.EventControl)
	defer w.close()
	return w.until(ctx, timeout, func(ev stage.Event) bool { return ev.Control == ctl })
}

// waitEvents waits for n events of kind.
func waitEvents(ctx context.Context, st Stage, timeout time.Duration, prompt func(), kind stage.EventKind, n int) (bool, error) {
	w := watchFor(st, prompt, kind)
	defer w.close()
	seen := 0
	return w.until(ctx, timeout, func(stage.Event) bool {
		seen++
		return seen >= n
	})
}

// waitFilled waits until pred accepts the number of filled cells.
func waitFilled(ctx context.Context, st Stage, timeout time.Duration, prompt func(), pred func(filled int) bool) (bool, error) {
	w := watchFor(st, prompt, stage.EventPlace, stage.EventErase, stage.EventPuzzle, stage.EventVariant)
	defer w.close()
	return w.untilState(ctx, timeout, func(sn stage.Snapshot) bool { return pred(sn.Filled()) })
}

func waitMorphSettled(ctx context.Context, st Stage, timeout time.Duration, prompt func()) (bool, error) {
	w := watchFor(st, prompt, stage.EventMorphSettled)
	defer w.close()
	return w.untilState(ctx, timeout, func(sn stage.Snapshot) bool { return sn.Visuals.Morph == stage.MorphNone })
}

// waitKeyHeld waits until key stays down for at least threshold. A release
// before the threshold starts over. onHold, when set, is told when the key
// goes down and up.
func waitKeyHeld(ctx context.Context, st Stage, timeout time.Duration, prompt func(), key string, threshold time.Duration, onHold func(down bool)) (bool, error) {
	w := watchFor(st, prompt, stage.EventKeyDown, stage.EventKeyUp)
	defer w.close()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var held <-chan time.Time
	var hold *time.Timer
	release := func() {
		if hold != nil {
			hold.Stop()
			hold, held = nil, nil
			if onHold != nil {
				onHold(false)
			}
		}
	}
	defer release()

	for {
		select {
		case ev, ok := <-w.ch:
			if !ok || ev.Kind == stage.EventDestroyed {
				return false, ErrStageGone
			}
			if ev.Key != key {
				continue
			}
			switch ev.Kind {
			case stage.EventKeyDown:
				if hold == nil {
					hold = time.NewTimer(threshold)
					held = hold.C
					if onHold != nil {
						onHold(true)
					}
				}
			case stage.EventKeyUp:
				release()
			}
		case <-held:
			hold, held = nil, nil
			if onHold != nil {
				onHold(false)
			}
			return true, nil
		case <-deadline.C:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		case <-st.Done():
			return false, ErrStageGone
		}
	}
}

// pause sleeps for d unless ctx ends or the Stage goes away first.
func pause(ctx context.Context, st Stage, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-st.Done():
		return ErrStageGone
	}
}
