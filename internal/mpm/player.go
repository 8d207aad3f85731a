package mpm

// Player steps through a Trace. Its position is always a valid step index;
// Advance and Retreat clamp at the ends instead of failing.
type Player struct {
	trace   *Trace
	pos     int
	reached bool // last step has been shown
	exited  bool
}

// NewPlayer starts playback at the first step of t.
func NewPlayer(t *Trace) *Player {
	p := &Player{trace: t}
	p.reached = t.Len() <= 1
	return p
}

// Len returns the number of steps.
func (p *Player) Len() int {
	return p.trace.Len()
}

// Index returns the current position, 0-based.
func (p *Player) Index() int {
	return p.pos
}

// Current returns the step at the current position.
func (p *Player) Current() Step {
	if p.trace.Len() == 0 {
		return Step{}
	}
	return p.trace.Steps[p.pos]
}

// AtStart reports whether the first step is shown.
func (p *Player) AtStart() bool {
	return p.pos == 0
}

// AtEnd reports whether the last step is shown.
func (p *Player) AtEnd() bool {
	return p.pos >= p.trace.Len()-1
}

// Advance moves to the next step, staying on the last one.
func (p *Player) Advance() Step {
	if !p.AtEnd() {
		p.pos++
	}
	if p.AtEnd() {
		p.reached = true
	}
	return p.Current()
}

// Retreat moves to the previous step, staying on the first one.
func (p *Player) Retreat() Step {
	if p.pos > 0 {
		p.pos--
	}
	return p.Current()
}

// Exit leaves step mode and returns the confirmed final schedule.
func (p *Player) Exit() *Result {
	p.exited = true
	if p.trace.Len() > 0 {
		p.pos = p.trace.Len() - 1
	}
	return Finalize(p.trace)
}

// Exited reports whether Exit has been called.
func (p *Player) Exited() bool {
	return p.exited
}

// Confirmed reports whether the final result may be shown as confirmed:
// the last step has been played or playback was exited.
func (p *Player) Confirmed() bool {
	return p.reached || p.exited
}
