package controller

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Registry owns the single instance of every registered controller type and
// hands out dense slot indices in registration order.
type Registry struct {
	controllers []Controller
	names       []string
	slots       map[reflect.Type]int
	sealed      bool
	log         *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		controllers: make([]Controller, 0, 32),
		names:       make([]string, 0, 32),
		slots:       make(map[reflect.Type]int, 32),
		log:         log,
	}
}

// Register constructs the controller described by reg and assigns it the next
// slot. Registrations without a usable construction path are logged and
// skipped; ok is false in that case.
func (r *Registry) Register(reg Registration) (slot int, ok bool) {
	if r.sealed {
		panic(fmt.Sprintf("controller: register %s after registry was sealed", reg.Type))
	}
	if reg.abstract {
		return -1, false
	}
	if _, dup := r.slots[reg.Type]; dup {
		panic(fmt.Sprintf("controller: %s registered twice", reg.Type))
	}
	if reg.New == nil {
		r.log.Warn("controller has no zero-argument construction path, skipped",
			zap.String("controller", reg.Type.String()),
			zap.String("name", reg.Name))
		return -1, false
	}

	c := reg.New()
	if c == nil {
		r.log.Warn("controller constructor returned nil, skipped",
			zap.String("controller", reg.Type.String()),
			zap.String("name", reg.Name))
		return -1, false
	}

	// Provide may declare an interface type; key by what was actually built.
	t := reflect.TypeOf(c)
	if _, dup := r.slots[t]; dup {
		panic(fmt.Sprintf("controller: %s registered twice", t))
	}

	name := reg.Name
	if name == "" {
		name = t.String()
	}
	r.controllers = append(r.controllers, c)
	r.names = append(r.names, name)
	slot = len(r.controllers) - 1
	r.slots[t] = slot

	r.log.Debug("controller registered",
		zap.String("controller", t.String()),
		zap.String("name", name),
		zap.Int("slot", slot))
	return slot, true
}

// Seal freezes the registry shape. Register panics afterwards.
func (r *Registry) Seal() { r.sealed = true }

func (r *Registry) Sealed() bool { return r.sealed }

// Get returns the controller registered for t. Asking for a type that was
// never registered is a programming error and panics.
func (r *Registry) Get(t reflect.Type) Controller {
	slot, ok := r.slots[t]
	if !ok {
		panic(fmt.Sprintf("controller: %s is not registered", t))
	}
	return r.controllers[slot]
}

// Lookup is Get without the panic.
func (r *Registry) Lookup(t reflect.Type) (Controller, bool) {
	slot, ok := r.slots[t]
	if !ok {
		return nil, false
	}
	return r.controllers[slot], true
}

// Slot returns the slot index assigned to t.
func (r *Registry) Slot(t reflect.Type) (int, bool) {
	slot, ok := r.slots[t]
	return slot, ok
}

// At returns the controller in the given slot.
func (r *Registry) At(slot int) Controller { return r.controllers[slot] }

// Name returns the display name recorded for t.
func (r *Registry) Name(t reflect.Type) string {
	if slot, ok := r.slots[t]; ok {
		return r.names[slot]
	}
	return t.String()
}

func (r *Registry) Len() int { return len(r.controllers) }

// ForEach visits controllers in slot order.
func (r *Registry) ForEach(fn func(slot int, c Controller)) {
	for i, c := range r.controllers {
		fn(i, c)
	}
}

// Get is the typed form of Registry.Get.
func Get[T Controller](r *Registry) T {
	return r.Get(reflect.TypeFor[T]()).(T)
}
