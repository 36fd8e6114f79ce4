package controllers

import (
	"time"

	"github.com/l1jgo/uihost/internal/core/lifecycle"
	"github.com/l1jgo/uihost/internal/core/screen"
	"github.com/l1jgo/uihost/internal/core/system"
	"github.com/l1jgo/uihost/internal/states"
	"github.com/l1jgo/uihost/internal/systems"
	"go.uber.org/zap"
)

// HUDController owns the gameplay HUD: it shows the HUD screen, runs the
// round clock on the timer system and sends the player back to the main menu
// when the round ends.
type HUDController struct {
	timer *systems.Timer `dep:"system"`

	nav       Navigator
	screens   *screen.Manager
	timing    Timing
	inRound   bool
	remaining time.Duration
	deadline  time.Duration // on the timer clock
	cancel    func()
	rounds    int
	log       *zap.Logger
}

func NewHUDController(nav Navigator, screens *screen.Manager, timing Timing, log *zap.Logger) *HUDController {
	return &HUDController{nav: nav, screens: screens, timing: timing, log: log}
}

// SetTimer is the injection point for the unexported timer field.
func (c *HUDController) SetTimer(t *systems.Timer) { c.timer = t }

func (c *HUDController) StateInterests() []lifecycle.Interest {
	return []lifecycle.Interest{
		lifecycle.OnEntered((*HUDController).onGameplayEntered),
		lifecycle.OnExited((*HUDController).onGameplayExited),
	}
}

// OnSystemLoaded resumes a round that started before the timer was available.
func (c *HUDController) OnSystemLoaded(s system.System) {
	if _, ok := s.(*systems.Timer); ok && c.inRound {
		c.startClock()
	}
}

// OnSystemUnloaded freezes the round clock at its current value.
func (c *HUDController) OnSystemUnloaded(s system.System) {
	if _, ok := s.(*systems.Timer); !ok || !c.inRound {
		return
	}
	if c.cancel != nil {
		c.remaining = max(c.deadline-c.timer.Now(), 0)
		c.stopClock()
	}
	c.log.Warn("timer unloaded mid-round, round clock halted",
		zap.Duration("remaining", c.remaining))
}

func (c *HUDController) onGameplayEntered(g *states.Gameplay) {
	c.inRound = true
	c.rounds++
	c.remaining = c.timing.RoundTime
	if err := screen.Load[*HUDScreen](c.screens); err != nil {
		c.log.Error("hud screen", zap.Error(err))
	}
	c.showRemaining()
	c.startClock()
	c.log.Info("round started", zap.String("map", g.Map), zap.Int("round", c.rounds))
}

func (c *HUDController) onGameplayExited(_ *states.Gameplay) {
	c.inRound = false
	c.stopClock()
	c.screens.Unload()
}

// startClock schedules the end of the round. Without a timer the clock
// stands still until one is loaded.
func (c *HUDController) startClock() {
	if c.timer == nil || c.cancel != nil {
		return
	}
	c.deadline = c.timer.Now() + c.remaining
	c.cancel = c.timer.After(c.remaining, "round", func(string) {
		c.cancel = nil
		c.endRound()
	})
}

func (c *HUDController) stopClock() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *HUDController) endRound() {
	c.inRound = false
	c.remaining = 0
	c.showRemaining()
	c.nav.Request(&states.MainMenu{})
}

// FrameUpdate refreshes the round clock widget from the timer.
func (c *HUDController) FrameUpdate(_ time.Duration) {
	if !c.inRound || c.cancel == nil {
		return
	}
	c.remaining = max(c.deadline-c.timer.Now(), 0)
	c.showRemaining()
}

func (c *HUDController) showRemaining() {
	if clock, ok := screen.Widget[*RoundClock](c.screens); ok {
		clock.Remaining = c.remaining
	}
}

// Rounds returns how many rounds have started.
func (c *HUDController) Rounds() int { return c.rounds }

// HasTimer reports whether the timer dependency is currently injected.
func (c *HUDController) HasTimer() bool { return c.timer != nil }
