// Package inject wires controllers to externally managed systems. Fields
// tagged `dep:"system"` are scanned once at registration; afterwards system
// load and unload events only run the cached setters and hooks.
package inject

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/system"
	"go.uber.org/zap"
)

// SystemLoadedHook is implemented by controllers that want to know when one
// of their system dependencies became available. The field is already set.
type SystemLoadedHook interface {
	OnSystemLoaded(s system.System)
}

// SystemUnloadedHook is implemented by controllers that want a last look at
// a system dependency before the field is cleared.
type SystemUnloadedHook interface {
	OnSystemUnloaded(s system.System)
}

// Declarer is implemented by controllers that bind systems explicitly with
// Bind instead of, or in addition to, tagged fields.
type Declarer interface {
	SystemBindings(b *Binder) error
}

// Setter assigns s to a controller's dependency field. A nil s clears it.
type Setter func(c controller.Controller, s system.System)

// Binding ties one controller field to a system type.
type Binding struct {
	Controller reflect.Type
	Field      string
	Set        Setter
}

type hookKey struct {
	controller reflect.Type
	system     reflect.Type
}

// Binder maps system types to the controller fields and hooks that depend
// on them.
type Binder struct {
	registry *controller.Registry
	bindings map[reflect.Type][]Binding
	loaded   map[reflect.Type][]SystemLoadedHook
	unloaded map[reflect.Type][]SystemUnloadedHook
	hooked   map[hookKey]struct{}
	keys     []reflect.Type // first-seen order
	held     map[heldKey]system.System
	live     []system.System // loaded systems, load order
	log      *zap.Logger
}

// heldKey identifies one bound field under one binding key.
type heldKey struct {
	controller reflect.Type
	field      string
	key        reflect.Type
}

func NewBinder(r *controller.Registry, log *zap.Logger) *Binder {
	return &Binder{
		registry: r,
		bindings: make(map[reflect.Type][]Binding),
		loaded:   make(map[reflect.Type][]SystemLoadedHook),
		unloaded: make(map[reflect.Type][]SystemUnloadedHook),
		hooked:   make(map[hookKey]struct{}),
		held:     make(map[heldKey]system.System),
		log:      log,
	}
}

// Scan records a binding for every tagged system field of c. A tagged field
// that can neither be set directly nor through a Set<Field> method is a
// defect whatever its type. Settable fields whose type is not a system
// contract are skipped.
func (b *Binder) Scan(c controller.Controller) error {
	t := controller.TypeOf(c)
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	var errs []error
	var fields []reflect.StructField
	if st.Kind() == reflect.Struct {
		fields = reflect.VisibleFields(st)
	}
	for _, f := range fields {
		if f.Tag.Get(Tag) != TagSystem {
			continue
		}
		if t.Kind() != reflect.Pointer {
			errs = append(errs, controller.Defect(t, controller.ErrValueController, "field "+f.Name))
			continue
		}
		set, err := setterFor(c, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !f.Type.Implements(system.Interface) {
			b.log.Debug("dependency field is not a system, skipped",
				zap.String("controller", t.String()),
				zap.String("field", f.Name),
				zap.String("type", f.Type.String()))
			continue
		}
		b.add(f.Type, Binding{Controller: t, Field: f.Name, Set: set})
		b.addHooks(c, f.Type)
	}
	if d, ok := c.(Declarer); ok {
		if err := d.SystemBindings(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Bind records an explicit binding of S into controller C without field
// scanning. C must already be registered.
func Bind[C controller.Controller, S system.System](b *Binder, field string, set func(C, S)) error {
	ct := reflect.TypeFor[C]()
	if ct.Kind() != reflect.Pointer {
		return controller.Defect(ct, controller.ErrValueController, "field "+field)
	}
	if set == nil {
		return controller.Defect(ct, controller.ErrUnsettableField, field)
	}
	c, ok := b.registry.Lookup(ct)
	if !ok {
		return fmt.Errorf("bind %s.%s: controller not registered", ct, field)
	}
	st := reflect.TypeFor[S]()
	b.add(st, Binding{
		Controller: ct,
		Field:      field,
		Set: func(c controller.Controller, s system.System) {
			var sv S
			if s != nil {
				sv = s.(S)
			}
			set(c.(C), sv)
		},
	})
	b.addHooks(c, st)
	return nil
}

func (b *Binder) add(key reflect.Type, bd Binding) {
	if _, ok := b.bindings[key]; !ok {
		b.noteKey(key)
	}
	b.bindings[key] = append(b.bindings[key], bd)
	b.log.Debug("system dependency bound",
		zap.String("controller", bd.Controller.String()),
		zap.String("field", bd.Field),
		zap.String("system", key.String()))
}

func (b *Binder) addHooks(c controller.Controller, key reflect.Type) {
	hk := hookKey{controller: controller.TypeOf(c), system: key}
	if _, ok := b.hooked[hk]; ok {
		return
	}
	b.hooked[hk] = struct{}{}
	if h, ok := c.(SystemLoadedHook); ok {
		b.loaded[key] = append(b.loaded[key], h)
	}
	if h, ok := c.(SystemUnloadedHook); ok {
		b.unloaded[key] = append(b.unloaded[key], h)
	}
}

func (b *Binder) noteKey(key reflect.Type) {
	for _, k := range b.keys {
		if k == key {
			return
		}
	}
	b.keys = append(b.keys, key)
}

// OnSystemLoaded assigns s to every bound field, then runs loaded hooks. A
// field bound under an interface key holds the implementer loaded last.
func (b *Binder) OnSystemLoaded(t reflect.Type, s system.System) {
	b.live = append(b.live, s)
	keys := b.matching(t)
	if len(keys) == 0 {
		return
	}
	for _, key := range keys {
		for _, bd := range b.bindings[key] {
			bd.Set(b.registry.Get(bd.Controller), s)
			b.held[heldKey{bd.Controller, bd.Field, key}] = s
		}
	}
	seen := make(map[SystemLoadedHook]struct{}, 4)
	for _, key := range keys {
		for _, h := range b.loaded[key] {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			h.OnSystemLoaded(s)
		}
	}
}

// OnSystemUnloaded runs unloaded hooks while the fields still point at s,
// then releases every field holding s. A field bound under an interface key
// falls back to the most recently loaded implementer still live, or nil.
// Fields holding another implementer are left alone.
func (b *Binder) OnSystemUnloaded(t reflect.Type, s system.System) {
	for i := len(b.live) - 1; i >= 0; i-- {
		if b.live[i] == s {
			b.live = append(b.live[:i], b.live[i+1:]...)
			break
		}
	}
	keys := b.matching(t)
	if len(keys) == 0 {
		return
	}
	seen := make(map[SystemUnloadedHook]struct{}, 4)
	for _, key := range keys {
		for _, h := range b.unloaded[key] {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			h.OnSystemUnloaded(s)
		}
	}
	for _, key := range keys {
		next := b.fallback(key)
		for _, bd := range b.bindings[key] {
			hk := heldKey{bd.Controller, bd.Field, key}
			if b.held[hk] != s {
				continue
			}
			bd.Set(b.registry.Get(bd.Controller), next)
			if next == nil {
				delete(b.held, hk)
			} else {
				b.held[hk] = next
			}
		}
	}
}

// fallback returns the most recently loaded live system served by key.
func (b *Binder) fallback(key reflect.Type) system.System {
	for i := len(b.live) - 1; i >= 0; i-- {
		st := system.TypeOf(b.live[i])
		if st == key || (key.Kind() == reflect.Interface && st.Implements(key)) {
			return b.live[i]
		}
	}
	return nil
}

// matching returns the binding keys served by a system of type t: the exact
// type first, then interface keys t implements in first-seen order.
func (b *Binder) matching(t reflect.Type) []reflect.Type {
	var keys []reflect.Type
	if _, ok := b.bindings[t]; ok {
		keys = append(keys, t)
	}
	for _, k := range b.keys {
		if k != t && k.Kind() == reflect.Interface && t.Implements(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Bindings returns the bindings recorded under system type t.
func (b *Binder) Bindings(t reflect.Type) []Binding {
	return b.bindings[t]
}

// Keys returns every system type that has at least one binding.
func (b *Binder) Keys() []reflect.Type {
	out := make([]reflect.Type, len(b.keys))
	copy(out, b.keys)
	return out
}
