package system

import (
	"reflect"
	"time"
)

// Phase defines execution ordering of loaded systems within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain host input
	PhasePreUpdate               // 1: timers, scheduled work
	PhaseUpdate                  // 2: system logic
	PhasePostUpdate              // 3: derived state
	PhaseCleanup                 // 4: end-of-tick cleanup
)

// System is an externally owned subsystem. Controllers hold non-owning
// references to systems; the references are cleared when a system unloads.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// TypeOf returns the type identity a loaded system is keyed by.
func TypeOf(s System) reflect.Type { return reflect.TypeOf(s) }

// Interface is the reflect.Type of System, used to recognise dependency
// fields whose declared type is a system contract.
var Interface = reflect.TypeFor[System]()

// Loaded is raised on the host bus when a system becomes available.
type Loaded struct {
	Type   reflect.Type
	System System
}

// Unloaded is raised on the host bus when a system is about to go away.
type Unloaded struct {
	Type   reflect.Type
	System System
}
