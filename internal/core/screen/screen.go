// Package screen keeps one instance of every screen layout and tracks which
// one is active.
package screen

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Screen is a layout the host can make active. OnAdded and OnRemoved run on
// activation and deactivation.
type Screen interface {
	OnAdded()
	OnRemoved()
}

// WidgetHost is implemented by screens that expose their widgets for lookup.
type WidgetHost interface {
	Widgets() []any
}

type Manager struct {
	screens map[reflect.Type]Screen
	active  Screen
	log     *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		screens: make(map[reflect.Type]Screen),
		log:     log,
	}
}

// Register adds s. Each screen type may be registered once.
func (m *Manager) Register(s Screen) error {
	t := reflect.TypeOf(s)
	if _, ok := m.screens[t]; ok {
		return fmt.Errorf("screen %s already registered", t)
	}
	m.screens[t] = s
	return nil
}

// Load activates the registered screen of type T.
func Load[T Screen](m *Manager) error {
	return m.LoadType(reflect.TypeFor[T]())
}

// LoadType activates the registered screen of type t. Loading the active
// screen again does nothing.
func (m *Manager) LoadType(t reflect.Type) error {
	s, ok := m.screens[t]
	if !ok {
		return fmt.Errorf("screen %s not registered", t)
	}
	m.setActive(s)
	return nil
}

// Unload deactivates the active screen, if any.
func (m *Manager) Unload() {
	m.setActive(nil)
}

// Active returns the active screen or nil.
func (m *Manager) Active() Screen { return m.active }

func (m *Manager) setActive(s Screen) {
	if m.active == s {
		return
	}
	if m.active != nil {
		m.active.OnRemoved()
	}
	m.active = s
	if s != nil {
		s.OnAdded()
		m.log.Debug("screen activated", zap.String("screen", reflect.TypeOf(s).String()))
	}
}

// Widget returns the first widget of type T on the active screen.
func Widget[T any](m *Manager) (T, bool) {
	var zero T
	host, ok := m.active.(WidgetHost)
	if !ok {
		return zero, false
	}
	for _, w := range host.Widgets() {
		if tw, ok := w.(T); ok {
			return tw, true
		}
	}
	return zero, false
}

// MustWidget is Widget for callers that require the widget. It panics when
// no screen is active or the active screen has no widget of type T.
func MustWidget[T any](m *Manager) T {
	w, ok := Widget[T](m)
	if !ok {
		panic(fmt.Sprintf("screen: active screen %T has no %s widget", m.active, reflect.TypeFor[T]()))
	}
	return w
}
