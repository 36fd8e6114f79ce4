package lifecycle

import (
	"reflect"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/state"
)

// Direction tells whether an interest fires on entering or on exiting a state.
type Direction uint8

const (
	Entered Direction = iota
	Exited
)

func (d Direction) String() string {
	if d == Exited {
		return "exited"
	}
	return "entered"
}

// Invoker calls a controller's handler for one (controller, state, direction)
// triple. The type assertions inside it were proven at subscription time.
type Invoker func(c controller.Controller, s state.State)

// Interest is one "entered S" or "exited S" capability of a controller type.
type Interest struct {
	State      reflect.Type
	Controller reflect.Type
	Direction  Direction

	invoke Invoker
}

// Declarer is implemented by controllers that react to state transitions.
type Declarer interface {
	StateInterests() []Interest
}

// OnEntered declares that C handles entering S with fn, usually a method
// expression such as (*HUD).onGameplayEntered.
func OnEntered[C controller.Controller, S state.State](fn func(C, S)) Interest {
	return typed(Entered, fn)
}

// OnExited declares that C handles leaving S with fn.
func OnExited[C controller.Controller, S state.State](fn func(C, S)) Interest {
	return typed(Exited, fn)
}

// OnEnteredAny declares interest in entering the state type t with a handler
// that takes the untyped state. Used by controllers built from a catalog.
func OnEnteredAny[C controller.Controller](t reflect.Type, fn func(C, state.State)) Interest {
	return untyped(Entered, t, fn)
}

// OnExitedAny is OnEnteredAny for leaving t.
func OnExitedAny[C controller.Controller](t reflect.Type, fn func(C, state.State)) Interest {
	return untyped(Exited, t, fn)
}

func typed[C controller.Controller, S state.State](dir Direction, fn func(C, S)) Interest {
	in := Interest{
		State:      reflect.TypeFor[S](),
		Controller: reflect.TypeFor[C](),
		Direction:  dir,
	}
	if fn != nil {
		in.invoke = func(c controller.Controller, s state.State) {
			fn(c.(C), s.(S))
		}
	}
	return in
}

func untyped[C controller.Controller](dir Direction, t reflect.Type, fn func(C, state.State)) Interest {
	in := Interest{
		State:      t,
		Controller: reflect.TypeFor[C](),
		Direction:  dir,
	}
	if fn != nil {
		in.invoke = func(c controller.Controller, s state.State) {
			fn(c.(C), s)
		}
	}
	return in
}
