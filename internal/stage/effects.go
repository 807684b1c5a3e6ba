package stage

import (
	"math"

	"svw.info/sudokucoach/internal/domain"
)

// ShowGuideTarget pulses a highlight on (r,c). Calling it again with the
// same cell changes nothing.
func (s *Stage) ShowGuideTarget(r, c int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.inBounds(r, c) || sameCell(s.vis.Guide, r, c) {
		return
	}
	s.showGuideLocked(domain.CellCoord{Row: r, Col: c})
}

// HideGuideTarget removes the guide highlight.
func (s *Stage) HideGuideTarget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.vis.Guide == nil {
		return
	}
	s.hideGuideLocked()
}

func (s *Stage) showGuideLocked(cell domain.CellCoord) {
	s.vis.Guide = &cell
	s.changedLocked()
}

func (s *Stage) hideGuideLocked() {
	if s.vis.Guide == nil {
		return
	}
	s.vis.Guide = nil
	s.vis.Nudge = false
	s.cancelLocked(&s.tNudge)
	s.changedLocked()
}

// nudgeLocked flashes the guide after input on the wrong cell.
func (s *Stage) nudgeLocked(attempt domain.CellCoord) {
	s.vis.Nudge = true
	s.cancelLocked(&s.tNudge)
	s.tNudge = s.afterLocked(s.t.Nudge, func() {
		s.vis.Nudge = false
		s.tNudge = 0
		s.changedLocked()
	})
	s.emitLocked(Event{Kind: EventNudge, Cell: attempt})
}

// ShowWrongOverlay highlights the row, column and block of (r,c) for a
// fixed time.
func (s *Stage) ShowWrongOverlay(r, c int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.inBounds(r, c) {
		return
	}
	s.wrongLocked(r, c, 0)
}

func (s *Stage) wrongLocked(r, c int, digit uint8) {
	n := s.board.N
	br, bc := s.variant.Box()
	r0, c0 := s.board.BoxOrigin(r, c)
	cells := make([]domain.CellCoord, 0, 3*n)
	seen := map[domain.CellCoord]bool{}
	add := func(rr, cc int) {
		k := domain.CellCoord{Row: rr, Col: cc}
		if !seen[k] {
			seen[k] = true
			cells = append(cells, k)
		}
	}
	for i := 0; i < n; i++ {
		add(r, i)
		add(i, c)
	}
	for dr := 0; dr < br; dr++ {
		for dc := 0; dc < bc; dc++ {
			add(r0+dr, c0+dc)
		}
	}
	s.vis.Wrong = cells
	s.vis.WrongCell = &domain.CellCoord{Row: r, Col: c}
	s.cancelLocked(&s.tWrong)
	s.tWrong = s.afterLocked(s.t.Wrong, func() {
		s.tWrong = 0
		s.clearWrongLocked()
	})
	s.emitLocked(Event{Kind: EventWrong, Cell: domain.CellCoord{Row: r, Col: c}, Digit: digit})
}

func (s *Stage) clearWrongLocked() {
	if s.vis.WrongCell == nil && len(s.vis.Wrong) == 0 {
		return
	}
	s.cancelLocked(&s.tWrong)
	s.vis.Wrong = nil
	s.vis.WrongCell = nil
	s.changedLocked()
}

func (s *Stage) celebrateLocked(cell domain.CellCoord) {
	s.vis.Celebrate = &cell
	s.cancelLocked(&s.tCelebrate)
	s.tCelebrate = s.afterLocked(s.t.Celebrate, func() {
		s.vis.Celebrate = nil
		s.tCelebrate = 0
		s.changedLocked()
	})
}

// RippleAtCell plays a short ripple from (r,c).
func (s *Stage) RippleAtCell(r, c int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.inBounds(r, c) {
		return
	}
	s.rippleLocked(domain.CellCoord{Row: r, Col: c})
}

func (s *Stage) rippleLocked(cell domain.CellCoord) {
	s.vis.Ripple = &cell
	s.cancelLocked(&s.tRipple)
	s.tRipple = s.afterLocked(s.t.Ripple, func() {
		s.vis.Ripple = nil
		s.tRipple = 0
		s.changedLocked()
	})
	s.changedLocked()
}

// SetMood changes the avatar expression.
func (s *Stage) SetMood(m Mood) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.vis.Mood == m {
		return
	}
	s.vis.Mood = m
	s.changedLocked()
}

// CoachCry shows tears for a while, then returns to the previous mood.
func (s *Stage) CoachCry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	prev := s.vis.Mood
	if s.vis.Crying {
		prev = MoodIdle
	}
	s.vis.Crying = true
	s.vis.Mood = MoodSad
	s.cancelLocked(&s.tCry)
	s.tCry = s.afterLocked(s.t.Cry, func() {
		s.vis.Crying = false
		s.vis.Mood = prev
		s.tCry = 0
		s.changedLocked()
	})
	s.changedLocked()
}

// PingBall bounces a marker on a toolbar control.
func (s *Stage) PingBall(ctl Control) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	if _, ok := controlIndex[ctl]; !ok {
		return
	}
	s.vis.Ping = ctl
	s.cancelLocked(&s.tPing)
	s.tPing = s.afterLocked(s.t.Ping, func() {
		s.vis.Ping = ""
		s.tPing = 0
		s.changedLocked()
	})
	s.changedLocked()
}

// WaveHotelOnce plays one wave across the digit keypad.
func (s *Stage) WaveHotelOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.vis.HotelWave {
		return
	}
	s.vis.HotelWave = true
	s.tWave = s.afterLocked(s.t.Wave, func() {
		s.vis.HotelWave = false
		s.tWave = 0
		s.changedLocked()
	})
	s.changedLocked()
}

// Peek shows or hides the solution over empty cells. It needs a solution.
func (s *Stage) Peek(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.vis.Peek == on || (on && s.solution == nil) {
		return
	}
	s.vis.Peek = on
	s.changedLocked()
}

// MoveCoachNear walks the avatar next to (r,c).
func (s *Stage) MoveCoachNear(r, c int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.inBounds(r, c) {
		return
	}
	s.moveNearLocked(r, c)
}

func (s *Stage) moveNearLocked(r, c int) {
	s.avatarTo = s.clamp(Point{X: float64(c) + 1, Y: float64(r)})
	if s.vis.AvatarMoving {
		return
	}
	if s.vis.Avatar == s.avatarTo {
		return
	}
	s.vis.AvatarMoving = true
	s.tFrame = s.afterLocked(s.t.Frame, s.stepAvatarLocked)
	s.changedLocked()
}

func (s *Stage) stepAvatarLocked() {
	s.tFrame = 0
	dx := s.avatarTo.X - s.vis.Avatar.X
	dy := s.avatarTo.Y - s.vis.Avatar.Y
	dist := math.Hypot(dx, dy)
	if dist <= s.avatarStep {
		s.vis.Avatar = s.avatarTo
		s.vis.AvatarMoving = false
		s.changedLocked()
		return
	}
	s.vis.Avatar = s.clamp(Point{
		X: s.vis.Avatar.X + dx/dist*s.avatarStep,
		Y: s.vis.Avatar.Y + dy/dist*s.avatarStep,
	})
	s.tFrame = s.afterLocked(s.t.Frame, s.stepAvatarLocked)
	s.changedLocked()
}

// clamp keeps p inside the surface: the board plus one column for the avatar.
func (s *Stage) clamp(p Point) Point {
	maxX := float64(s.board.N)
	maxY := float64(s.board.N - 1)
	p.X = math.Max(0, math.Min(maxX, p.X))
	p.Y = math.Max(0, math.Min(maxY, p.Y))
	return p
}

func (s *Stage) clampAvatarLocked() {
	s.vis.Avatar = s.clamp(s.vis.Avatar)
	s.avatarTo = s.clamp(s.avatarTo)
}

// StartRoam makes the avatar wander between random cells until StopRoam.
func (s *Stage) StartRoam() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.vis.Roaming {
		return
	}
	s.vis.Roaming = true
	s.roamLocked()
	s.changedLocked()
}

func (s *Stage) roamLocked() {
	s.tRoam = s.afterLocked(s.t.Roam, func() {
		s.tRoam = 0
		n := s.board.N
		s.moveNearLocked(s.rng.Intn(n), s.rng.Intn(n))
		s.roamLocked()
	})
}

// StopRoam ends roaming; an in-flight walk still finishes.
func (s *Stage) StopRoam() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.vis.Roaming {
		return
	}
	s.vis.Roaming = false
	s.cancelLocked(&s.tRoam)
	s.changedLocked()
}

// StartCountdown runs a repeating tick from seconds down to zero, calling
// onTick with the remaining seconds after every tick. It replaces a running
// countdown. At three seconds the banner turns urgent; at two it flashes and
// shakes. Reaching zero stops the countdown and removes its visuals.
func (s *Stage) StartCountdown(seconds int, onTick func(remaining int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || seconds <= 0 {
		return
	}
	s.stopCountdownLocked()
	s.vis.Countdown = Countdown{Active: true, Remaining: seconds, Urgency: urgencyFor(seconds)}
	s.vis.Countdown.Shake = s.vis.Countdown.Urgency == UrgencyPanic
	s.scheduleTickLocked(onTick)
	s.emitLocked(Event{Kind: EventTick, Remaining: seconds})
}

func (s *Stage) scheduleTickLocked(onTick func(int)) {
	s.tCountdown = s.afterLocked(s.t.Tick, func() {
		s.tCountdown = 0
		cd := &s.vis.Countdown
		cd.Remaining--
		cd.Urgency = urgencyFor(cd.Remaining)
		cd.Shake = cd.Urgency == UrgencyPanic
		remaining := cd.Remaining
		if onTick != nil {
			s.pending = append(s.pending, func() { onTick(remaining) })
		}
		s.emitLocked(Event{Kind: EventTick, Remaining: remaining})
		if remaining <= 0 {
			s.vis.Countdown = Countdown{}
			if s.vis.Mood == MoodWorried {
				s.vis.Mood = MoodIdle
			}
			s.emitLocked(Event{Kind: EventCountdownDone})
			return
		}
		if cd.Urgency != UrgencyCalm {
			s.vis.Mood = MoodWorried
		}
		s.scheduleTickLocked(onTick)
	})
}

// StopCountdown halts the countdown; no further ticks are delivered.
func (s *Stage) StopCountdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.stopCountdownLocked()
}

func (s *Stage) stopCountdownLocked() {
	if !s.vis.Countdown.Active && s.tCountdown == 0 {
		return
	}
	s.cancelLocked(&s.tCountdown)
	s.vis.Countdown = Countdown{}
	if s.vis.Mood == MoodWorried {
		s.vis.Mood = MoodIdle
	}
	s.emitLocked(Event{Kind: EventCountdownDone})
}
