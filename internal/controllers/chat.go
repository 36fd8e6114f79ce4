package controllers

import (
	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/lifecycle"
	"github.com/l1jgo/uihost/internal/core/system"
	"github.com/l1jgo/uihost/internal/states"
	"github.com/l1jgo/uihost/internal/systems"
)

// ChatController mirrors chat traffic into an unread counter and announces
// the lobby. It is constructed through its zero value.
type ChatController struct {
	controller.Base

	Chat *systems.Chat `dep:"system"`

	stop   func()
	unread int
	// Loaded records whether the chat field was already set when the
	// loaded hook ran.
	Loaded bool
}

func (c *ChatController) StateInterests() []lifecycle.Interest {
	return []lifecycle.Interest{
		lifecycle.OnEntered((*ChatController).onLobbyEntered),
		lifecycle.OnEntered((*ChatController).onGameplayEntered),
	}
}

func (c *ChatController) OnSystemLoaded(s system.System) {
	if _, ok := s.(*systems.Chat); !ok {
		return
	}
	c.Loaded = c.Chat != nil
	c.stop = c.Chat.Listen(func(systems.ChatMessage) { c.unread++ })
}

func (c *ChatController) OnSystemUnloaded(s system.System) {
	if _, ok := s.(*systems.Chat); !ok {
		return
	}
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

func (c *ChatController) onLobbyEntered(_ *states.Lobby) {
	if c.Chat != nil {
		c.Chat.Post("system", "lobby", "lobby is open")
	}
}

func (c *ChatController) onGameplayEntered(_ *states.Gameplay) {
	c.unread = 0
}

// Unread returns messages received since gameplay last started.
func (c *ChatController) Unread() int { return c.unread }
