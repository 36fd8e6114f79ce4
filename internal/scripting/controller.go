package scripting

import (
	"time"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/lifecycle"
	"github.com/l1jgo/uihost/internal/core/state"
)

// Controller bridges the Lua scripts of an Engine into the controller
// registry. It follows every catalogued state some script handles.
type Controller struct {
	engine  *Engine
	catalog *state.Catalog
}

func NewController(e *Engine, cat *state.Catalog) *Controller {
	return &Controller{engine: e, catalog: cat}
}

var _ lifecycle.Declarer = (*Controller)(nil)
var _ controller.Controller = (*Controller)(nil)

func (c *Controller) StateInterests() []lifecycle.Interest {
	var out []lifecycle.Interest
	for _, t := range c.catalog.Types() {
		name := c.catalog.Name(t)
		if c.engine.handles(name, true) {
			out = append(out, lifecycle.OnEnteredAny(t, (*Controller).entered))
		}
		if c.engine.handles(name, false) {
			out = append(out, lifecycle.OnExitedAny(t, (*Controller).exited))
		}
	}
	return out
}

func (c *Controller) entered(s state.State) { c.engine.callState(s.StateName(), true) }
func (c *Controller) exited(s state.State)  { c.engine.callState(s.StateName(), false) }

func (c *Controller) FrameUpdate(dt time.Duration) {
	c.engine.callFrame(dt.Seconds())
}
