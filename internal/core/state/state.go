// Package state holds the application state contract, the catalog of known
// state types and the manager that raises transitions on the host bus.
package state

import "reflect"

// State is a top-level application mode. Concrete states must be pointer
// types.
type State interface {
	StateName() string
}

// TypeOf returns the type identity a state is keyed by. TypeOf(nil) is nil.
func TypeOf(s State) reflect.Type {
	if s == nil {
		return nil
	}
	return reflect.TypeOf(s)
}

// Changed is raised on the host bus for every transition.
type Changed struct {
	Old State
	New State
}
