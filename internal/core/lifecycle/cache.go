// Package lifecycle indexes controllers by the state types they follow and
// caches one invoker per (controller, state, direction) so dispatch never
// inspects types.
package lifecycle

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/state"
	"go.uber.org/zap"
)

type listener struct {
	c      controller.Controller
	invoke Invoker
}

type invokerKey struct {
	controller reflect.Type
	state      reflect.Type
	dir        Direction
}

// Cache holds the entered and exited listener lists per state type. Each
// list entry carries the invoker of its own direction.
type Cache struct {
	entered  map[reflect.Type][]listener
	exited   map[reflect.Type][]listener
	invokers map[invokerKey]Invoker
	sealed   bool
	log      *zap.Logger
}

func NewCache(log *zap.Logger) *Cache {
	return &Cache{
		entered:  make(map[reflect.Type][]listener),
		exited:   make(map[reflect.Type][]listener),
		invokers: make(map[invokerKey]Invoker),
		log:      log,
	}
}

// SubscribeAll subscribes every interest c declares through Declarer.
func (c *Cache) SubscribeAll(ctrl controller.Controller) error {
	d, ok := ctrl.(Declarer)
	if !ok {
		return nil
	}
	var errs []error
	for _, in := range d.StateInterests() {
		if err := c.Subscribe(ctrl, in); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe appends ctrl to the listener list of in.State for in.Direction
// and caches its invoker. Value-typed controllers or states, a missing
// handler, a handler declared for another controller type and duplicate
// interests are configuration defects.
func (c *Cache) Subscribe(ctrl controller.Controller, in Interest) error {
	if c.sealed {
		panic(fmt.Sprintf("lifecycle: subscribe %T after cache was sealed", ctrl))
	}
	ct := controller.TypeOf(ctrl)
	detail := fmt.Sprintf("%s %v", in.Direction, in.State)

	if ct.Kind() != reflect.Pointer {
		return controller.Defect(ct, controller.ErrValueController, detail)
	}
	if in.State == nil {
		return controller.Defect(ct, controller.ErrMissingHandler, "interest without state type")
	}
	if in.State.Kind() != reflect.Pointer {
		return controller.Defect(in.State, controller.ErrValueState, "declared by "+ct.String())
	}
	if in.invoke == nil {
		return controller.Defect(ct, controller.ErrMissingHandler, detail)
	}
	if !handles(ct, in.Controller) {
		return controller.Defect(ct, controller.ErrMissingHandler,
			fmt.Sprintf("%s handler is declared on %s", detail, in.Controller))
	}

	key := invokerKey{controller: ct, state: in.State, dir: in.Direction}
	if _, dup := c.invokers[key]; dup {
		return controller.Defect(ct, controller.ErrDuplicateInterest, detail)
	}
	c.invokers[key] = in.invoke

	l := listener{c: ctrl, invoke: in.invoke}
	if in.Direction == Exited {
		c.exited[in.State] = append(c.exited[in.State], l)
	} else {
		c.entered[in.State] = append(c.entered[in.State], l)
	}

	c.log.Debug("state interest subscribed",
		zap.String("controller", ct.String()),
		zap.String("state", in.State.String()),
		zap.Stringer("direction", in.Direction))
	return nil
}

// handles reports whether a handler declared on decl can be called with a
// controller of type ct.
func handles(ct, decl reflect.Type) bool {
	if decl == ct {
		return true
	}
	return decl != nil && decl.Kind() == reflect.Interface && ct.Implements(decl)
}

// Seal freezes the listener lists. Subscribe panics afterwards.
func (c *Cache) Seal() { c.sealed = true }

// DispatchEntered runs the entered invoker of every controller following
// entry into t.
func (c *Cache) DispatchEntered(t reflect.Type, s state.State) {
	for _, l := range c.entered[t] {
		l.invoke(l.c, s)
	}
}

// DispatchExited runs the exited invoker of every controller following exit
// from t.
func (c *Cache) DispatchExited(t reflect.Type, s state.State) {
	for _, l := range c.exited[t] {
		l.invoke(l.c, s)
	}
}

// Invoker returns the cached invoker for the triple.
func (c *Cache) Invoker(ctrl, st reflect.Type, dir Direction) (Invoker, bool) {
	inv, ok := c.invokers[invokerKey{controller: ctrl, state: st, dir: dir}]
	return inv, ok
}

// Listeners returns the controllers subscribed to t for dir, in order.
func (c *Cache) Listeners(t reflect.Type, dir Direction) []controller.Controller {
	src := c.entered[t]
	if dir == Exited {
		src = c.exited[t]
	}
	out := make([]controller.Controller, len(src))
	for i, l := range src {
		out[i] = l.c
	}
	return out
}
