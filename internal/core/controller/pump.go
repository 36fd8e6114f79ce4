package controller

import "time"

// Pump drives FrameUpdate on every registered controller once per tick.
type Pump struct {
	registry *Registry
	frames   uint64
}

func NewPump(r *Registry) *Pump {
	return &Pump{registry: r}
}

// Tick calls FrameUpdate in slot order. Controllers must not register new
// controllers from inside FrameUpdate.
func (p *Pump) Tick(dt time.Duration) {
	for _, c := range p.registry.controllers {
		c.FrameUpdate(dt)
	}
	p.frames++
}

// Frames returns how many ticks have been pumped.
func (p *Pump) Frames() uint64 { return p.frames }
