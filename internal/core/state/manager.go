package state

import (
	"github.com/l1jgo/uihost/internal/core/event"
	"go.uber.org/zap"
)

// Manager tracks the current state and raises Changed on the bus when a
// requested transition is applied.
type Manager struct {
	bus     *event.Bus
	current State
	next    State
	log     *zap.Logger
}

func NewManager(bus *event.Bus, log *zap.Logger) *Manager {
	return &Manager{bus: bus, log: log}
}

// Current returns the active state, nil before the first transition.
func (m *Manager) Current() State { return m.current }

// Request schedules a transition, applied on the next Update. A later
// request in the same tick replaces an earlier one.
func (m *Manager) Request(next State) {
	m.next = next
}

// Update applies a pending transition. It reports whether one happened.
func (m *Manager) Update() bool {
	if m.next == nil {
		return false
	}
	old := m.current
	m.current = m.next
	m.next = nil
	event.Emit(m.bus, Changed{Old: old, New: m.current})

	oldName := "<none>"
	if old != nil {
		oldName = old.StateName()
	}
	m.log.Info("state changed",
		zap.String("from", oldName),
		zap.String("to", m.current.StateName()))
	return true
}
