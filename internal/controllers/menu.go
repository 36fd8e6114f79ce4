package controllers

import (
	"time"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/lifecycle"
	"github.com/l1jgo/uihost/internal/core/screen"
	"github.com/l1jgo/uihost/internal/core/state"
	"github.com/l1jgo/uihost/internal/states"
	"github.com/l1jgo/uihost/internal/systems"
	"go.uber.org/zap"
)

// MenuController shows the menu screen and walks the player from the main
// menu through the lobby into gameplay using the timer system.
type MenuController struct {
	controller.Base

	Timer *systems.Timer `dep:"system"`

	nav     Navigator
	screens *screen.Manager
	timing  Timing
	cancel  func()
	log     *zap.Logger
}

func NewMenuController(nav Navigator, screens *screen.Manager, timing Timing, log *zap.Logger) *MenuController {
	return &MenuController{nav: nav, screens: screens, timing: timing, log: log}
}

func (c *MenuController) StateInterests() []lifecycle.Interest {
	return []lifecycle.Interest{
		lifecycle.OnEntered((*MenuController).onMainMenuEntered),
		lifecycle.OnExited((*MenuController).onMainMenuExited),
		lifecycle.OnEntered((*MenuController).onLobbyEntered),
		lifecycle.OnExited((*MenuController).onLobbyExited),
	}
}

func (c *MenuController) onMainMenuEntered(_ *states.MainMenu) {
	if err := screen.Load[*MenuScreen](c.screens); err != nil {
		c.log.Error("menu screen", zap.Error(err))
	}
	c.schedule("lobby", c.timing.MenuDelay, &states.Lobby{})
}

func (c *MenuController) onMainMenuExited(_ *states.MainMenu) {
	c.stop()
	c.screens.Unload()
}

func (c *MenuController) onLobbyEntered(l *states.Lobby) {
	c.schedule("gameplay", c.timing.LobbyDelay, &states.Gameplay{Map: "arena"})
	c.log.Debug("lobby open", zap.Int("players", l.Players))
}

func (c *MenuController) onLobbyExited(_ *states.Lobby) {
	c.stop()
}

// schedule requests next after wait. Without a timer the transition happens
// on the next tick.
func (c *MenuController) schedule(key string, wait time.Duration, next state.State) {
	c.stop()
	if c.Timer == nil {
		c.nav.Request(next)
		return
	}
	c.cancel = c.Timer.After(wait, key, func(string) {
		c.cancel = nil
		c.nav.Request(next)
	})
}

func (c *MenuController) stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
