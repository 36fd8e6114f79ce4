// Package host owns the event loop around the dispatcher: the bus, the
// system and state managers, the screen registry and the ticker.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/dispatch"
	"github.com/l1jgo/uihost/internal/core/event"
	"github.com/l1jgo/uihost/internal/core/screen"
	"github.com/l1jgo/uihost/internal/core/state"
	"github.com/l1jgo/uihost/internal/core/system"
	"go.uber.org/zap"
)

type Host struct {
	bus        *event.Bus
	systems    *system.Manager
	states     *state.Manager
	screens    *screen.Manager
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger
}

// New creates the host services. Controllers are registered with Start once
// they have been constructed against these services.
func New(log *zap.Logger) *Host {
	bus := event.NewBus()
	return &Host{
		bus:     bus,
		systems: system.NewManager(bus, log),
		states:  state.NewManager(bus, log),
		screens: screen.NewManager(log),
		log:     log,
	}
}

// Start runs the controller initialization pass and attaches the dispatcher
// to the bus. It must be called exactly once, before Step.
func (h *Host) Start(regs ...controller.Registration) error {
	if h.dispatcher != nil {
		return fmt.Errorf("host already started")
	}
	d, err := dispatch.New(h.log, regs...)
	if err != nil {
		return err
	}
	d.Attach(h.bus)
	h.dispatcher = d
	return nil
}

// Step runs one frame: apply a pending state change, deliver queued events,
// tick loaded systems, then tick controllers.
func (h *Host) Step(dt time.Duration) {
	h.states.Update()
	h.bus.SwapBuffers()
	h.bus.DispatchAll()
	h.systems.Tick(dt)
	h.dispatcher.Tick(dt)
}

// Run steps the host every tickRate until ctx is done or maxFrames frames
// have run (0 = unlimited).
func (h *Host) Run(ctx context.Context, tickRate time.Duration, maxFrames uint64) error {
	if h.dispatcher == nil {
		return fmt.Errorf("host not started")
	}
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			h.Step(now.Sub(last))
			last = now
			if maxFrames > 0 && h.dispatcher.Frames() >= maxFrames {
				h.log.Info("frame limit reached", zap.Uint64("frames", maxFrames))
				return nil
			}
		}
	}
}

// Shutdown unloads every system and delivers the unload events so
// controllers drop their references.
func (h *Host) Shutdown() {
	h.systems.UnloadAll()
	h.bus.SwapBuffers()
	h.bus.DispatchAll()
}

func (h *Host) Bus() *event.Bus                  { return h.bus }
func (h *Host) Systems() *system.Manager         { return h.systems }
func (h *Host) States() *state.Manager           { return h.states }
func (h *Host) Screens() *screen.Manager         { return h.screens }
func (h *Host) Dispatcher() *dispatch.Dispatcher { return h.dispatcher }
