// Package dispatch is the single entry point the host talks to: it builds
// the controller registry, the system binder and the lifecycle cache in one
// initialization pass and then routes host events through them.
package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/event"
	"github.com/l1jgo/uihost/internal/core/inject"
	"github.com/l1jgo/uihost/internal/core/lifecycle"
	"github.com/l1jgo/uihost/internal/core/state"
	"github.com/l1jgo/uihost/internal/core/system"
	"go.uber.org/zap"
)

type Dispatcher struct {
	registry *controller.Registry
	binder   *inject.Binder
	cache    *lifecycle.Cache
	pump     *controller.Pump
	log      *zap.Logger
}

// New registers every controller in regs, scans their system dependencies and
// state interests, and seals the result. Registrations without a
// construction path are skipped. Any configuration defect fails the whole
// pass; the returned error lists every offending type.
func New(log *zap.Logger, regs ...controller.Registration) (*Dispatcher, error) {
	reg := controller.NewRegistry(log)
	for _, r := range regs {
		reg.Register(r)
	}

	binder := inject.NewBinder(reg, log)
	cache := lifecycle.NewCache(log)

	var errs []error
	reg.ForEach(func(_ int, c controller.Controller) {
		if err := binder.Scan(c); err != nil {
			errs = append(errs, err)
		}
		if err := cache.SubscribeAll(c); err != nil {
			errs = append(errs, err)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("initialize controllers: %w", errors.Join(errs...))
	}

	reg.Seal()
	cache.Seal()
	log.Info("controllers initialized",
		zap.Int("registered", reg.Len()),
		zap.Int("skipped", len(regs)-reg.Len()),
		zap.Int("system_types", len(binder.Keys())))

	return &Dispatcher{
		registry: reg,
		binder:   binder,
		cache:    cache,
		pump:     controller.NewPump(reg),
		log:      log,
	}, nil
}

// OnStateChanged notifies controllers leaving old's type, then controllers
// entering next's type. A nil old state skips the exit pass.
func (d *Dispatcher) OnStateChanged(old, next state.State) {
	if old != nil {
		d.cache.DispatchExited(state.TypeOf(old), old)
	}
	if next != nil {
		d.cache.DispatchEntered(state.TypeOf(next), next)
	}
}

// OnSystemLoaded injects s into every controller that depends on its type.
func (d *Dispatcher) OnSystemLoaded(s system.System) {
	d.binder.OnSystemLoaded(system.TypeOf(s), s)
}

// OnSystemUnloaded lets dependent controllers see s one last time, then
// clears their references.
func (d *Dispatcher) OnSystemUnloaded(s system.System) {
	d.binder.OnSystemUnloaded(system.TypeOf(s), s)
}

// Tick runs one frame update over all controllers in registration order.
func (d *Dispatcher) Tick(dt time.Duration) {
	d.pump.Tick(dt)
}

// Attach routes the host bus events to the dispatcher.
func (d *Dispatcher) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(ev state.Changed) {
		d.OnStateChanged(ev.Old, ev.New)
	})
	event.Subscribe(bus, func(ev system.Loaded) {
		d.binder.OnSystemLoaded(ev.Type, ev.System)
	})
	event.Subscribe(bus, func(ev system.Unloaded) {
		d.binder.OnSystemUnloaded(ev.Type, ev.System)
	})
}

func (d *Dispatcher) Registry() *controller.Registry { return d.registry }
func (d *Dispatcher) Binder() *inject.Binder         { return d.binder }
func (d *Dispatcher) Cache() *lifecycle.Cache        { return d.cache }
func (d *Dispatcher) Frames() uint64                 { return d.pump.Frames() }

// Controller returns the registered controller of type T. It panics if T was
// never registered.
func Controller[T controller.Controller](d *Dispatcher) T {
	return controller.Get[T](d.registry)
}
