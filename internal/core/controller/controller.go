package controller

import (
	"reflect"
	"time"
)

// Controller is a long-lived, per-process object driven by the host loop.
// Exactly one instance of each concrete controller type exists.
type Controller interface {
	FrameUpdate(dt time.Duration)
}

// Base gives controllers a no-op FrameUpdate so they only implement the
// hooks they care about.
type Base struct{}

func (Base) FrameUpdate(time.Duration) {}

// Registration is one row of the controller registration table. It is built
// by Provide or Discover and consumed once by Registry.Register.
type Registration struct {
	Name string
	Type reflect.Type
	New  func() Controller

	abstract bool
}

// Provide registers T with an explicit construction closure.
func Provide[T Controller](name string, fn func() T) Registration {
	r := Registration{
		Name: name,
		Type: reflect.TypeFor[T](),
	}
	if fn != nil {
		r.New = func() Controller {
			c := fn()
			if isNil(c) {
				return nil
			}
			return c
		}
	}
	return r
}

// Discover registers T using its zero-argument construction path.
// Pointer-to-struct types are allocated with reflect.New and struct types use
// their zero value. Interface types are abstract and skipped. Any other kind
// has no construction path.
func Discover[T Controller](name string) Registration {
	t := reflect.TypeFor[T]()
	r := Registration{Name: name, Type: t}
	switch {
	case t.Kind() == reflect.Interface:
		r.abstract = true
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		elem := t.Elem()
		r.New = func() Controller {
			return reflect.New(elem).Interface().(Controller)
		}
	case t.Kind() == reflect.Struct:
		// Constructible, but value semantics are rejected later by the
		// binder and the lifecycle cache if the type needs injection or
		// state dispatch.
		r.New = func() Controller {
			return reflect.Zero(t).Interface().(Controller)
		}
	}
	return r
}

// Abstract reports whether the registration names an interface type.
func (r Registration) Abstract() bool { return r.abstract }

// TypeOf returns the dynamic type of c, the key every cache is indexed by.
func TypeOf(c Controller) reflect.Type { return reflect.TypeOf(c) }

func isNil(c Controller) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
