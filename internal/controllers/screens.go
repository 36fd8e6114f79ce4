package controllers

import "time"

// MenuScreen is shown while the main menu is active.
type MenuScreen struct {
	shown int
}

func (s *MenuScreen) OnAdded()   { s.shown++ }
func (s *MenuScreen) OnRemoved() {}

// Shown returns how many times the screen was activated.
func (s *MenuScreen) Shown() int { return s.shown }

// RoundClock is the HUD widget showing the remaining round time.
type RoundClock struct {
	Remaining time.Duration
}

// HUDScreen is shown during gameplay.
type HUDScreen struct {
	clock   *RoundClock
	visible bool
}

func (s *HUDScreen) OnAdded()      { s.visible = true }
func (s *HUDScreen) OnRemoved()    { s.visible = false }
func (s *HUDScreen) Visible() bool { return s.visible }
func (s *HUDScreen) Widgets() []any {
	return []any{s.clock}
}
