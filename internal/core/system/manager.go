package system

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/l1jgo/uihost/internal/core/event"
	"go.uber.org/zap"
)

// Manager owns the set of loaded systems, announces load/unload on the bus
// and runs loaded systems in phase order each tick.
type Manager struct {
	bus     *event.Bus
	systems []System
	byType  map[reflect.Type]System
	sorted  bool
	log     *zap.Logger
}

func NewManager(bus *event.Bus, log *zap.Logger) *Manager {
	return &Manager{
		bus:     bus,
		systems: make([]System, 0, 16),
		byType:  make(map[reflect.Type]System, 16),
		log:     log,
	}
}

// Load makes s available and queues a Loaded event.
func (m *Manager) Load(s System) error {
	t := TypeOf(s)
	if _, ok := m.byType[t]; ok {
		return fmt.Errorf("system %s already loaded", t)
	}
	m.byType[t] = s
	m.systems = append(m.systems, s)
	m.sorted = false
	event.Emit(m.bus, Loaded{Type: t, System: s})
	m.log.Info("system loaded", zap.String("system", t.String()))
	return nil
}

// Unload queues an Unloaded event and stops ticking s.
func (m *Manager) Unload(s System) error {
	t := TypeOf(s)
	if cur, ok := m.byType[t]; !ok || cur != s {
		return fmt.Errorf("system %s is not loaded", t)
	}
	delete(m.byType, t)
	for i, cur := range m.systems {
		if cur == s {
			m.systems = append(m.systems[:i], m.systems[i+1:]...)
			break
		}
	}
	event.Emit(m.bus, Unloaded{Type: t, System: s})
	m.log.Info("system unloaded", zap.String("system", t.String()))
	return nil
}

// UnloadAll unloads every system, last in tick order first.
func (m *Manager) UnloadAll() {
	for len(m.systems) > 0 {
		s := m.systems[len(m.systems)-1]
		_ = m.Unload(s)
	}
}

// Tick runs all loaded systems ordered by phase. Systems sharing a phase keep
// load order.
func (m *Manager) Tick(dt time.Duration) {
	m.ensureSorted()
	for _, s := range m.systems {
		s.Update(dt)
	}
}

// TickPhase only runs systems of the given phase.
func (m *Manager) TickPhase(phase Phase, dt time.Duration) {
	m.ensureSorted()
	for _, s := range m.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (m *Manager) Len() int { return len(m.systems) }

func (m *Manager) ensureSorted() {
	if !m.sorted {
		sort.SliceStable(m.systems, func(i, j int) bool {
			return m.systems[i].Phase() < m.systems[j].Phase()
		})
		m.sorted = true
	}
}

// Get returns the loaded system of type T.
func Get[T System](m *Manager) (T, bool) {
	s, ok := m.byType[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return s.(T), true
}
