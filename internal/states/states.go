// Package states defines the application modes the host moves through.
package states

import "github.com/l1jgo/uihost/internal/core/state"

type MainMenu struct{}

func (*MainMenu) StateName() string { return "main_menu" }

type Lobby struct {
	Players int
}

func (*Lobby) StateName() string { return "lobby" }

type Gameplay struct {
	Map string
}

func (*Gameplay) StateName() string { return "gameplay" }

// Catalog returns every state type the host knows, in transition order.
func Catalog() *state.Catalog {
	c := state.NewCatalog()
	state.Add[*MainMenu](c)
	state.Add[*Lobby](c)
	state.Add[*Gameplay](c)
	return c
}
