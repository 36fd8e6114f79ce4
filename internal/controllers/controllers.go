// Package controllers holds the compiled-in controllers and the registration
// table the host feeds to the dispatcher.
package controllers

import (
	"time"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/screen"
	"github.com/l1jgo/uihost/internal/core/state"
	"go.uber.org/zap"
)

// Navigator requests application state transitions. *state.Manager
// satisfies it.
type Navigator interface {
	Request(next state.State)
}

// Deps are the host services controllers are constructed with.
type Deps struct {
	Catalog     *state.Catalog
	Screens     *screen.Manager
	Nav         Navigator
	Sink        JournalSink
	FlushFrames int
	Timing      Timing
	Log         *zap.Logger
}

// Timing controls how long the demo stays in each state.
type Timing struct {
	MenuDelay  time.Duration
	LobbyDelay time.Duration
	RoundTime  time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		MenuDelay:  time.Second,
		LobbyDelay: 2 * time.Second,
		RoundTime:  5 * time.Second,
	}
}

// Registrations returns the compiled-in controller table in registration
// order.
func Registrations(d Deps) []controller.Registration {
	return []controller.Registration{
		controller.Provide("menu", func() *MenuController {
			return NewMenuController(d.Nav, d.Screens, d.Timing, d.Log)
		}),
		controller.Provide("hud", func() *HUDController {
			return NewHUDController(d.Nav, d.Screens, d.Timing, d.Log)
		}),
		controller.Discover[*ChatController]("chat"),
		controller.Provide("journal", func() *JournalController {
			return NewJournalController(d.Catalog, d.Sink, d.FlushFrames, d.Log)
		}),
	}
}

// RegisterScreens adds every screen the controllers activate.
func RegisterScreens(m *screen.Manager) error {
	if err := m.Register(&MenuScreen{}); err != nil {
		return err
	}
	return m.Register(&HUDScreen{clock: &RoundClock{}})
}
