package host

import (
	"context"
	"testing"
	"time"

	"github.com/l1jgo/uihost/internal/controllers"
	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/dispatch"
	"github.com/l1jgo/uihost/internal/core/system"
	"github.com/l1jgo/uihost/internal/states"
	"github.com/l1jgo/uihost/internal/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const frame = 10 * time.Millisecond

func startHost(t *testing.T) *Host {
	t.Helper()
	h := New(zap.NewNop())
	require.NoError(t, controllers.RegisterScreens(h.Screens()))
	regs := controllers.Registrations(controllers.Deps{
		Catalog:     states.Catalog(),
		Screens:     h.Screens(),
		Nav:         h.States(),
		Sink:        controllers.LogSink{Log: zap.NewNop()},
		FlushFrames: 100,
		Timing:      controllers.Timing{MenuDelay: frame, LobbyDelay: frame, RoundTime: 2 * frame},
		Log:         zap.NewNop(),
	})
	require.NoError(t, h.Start(regs...))
	require.NoError(t, h.Systems().Load(systems.NewTimer()))
	require.NoError(t, h.Systems().Load(systems.NewChat(50)))
	return h
}

func TestHostWalksThroughARound(t *testing.T) {
	h := startHost(t)
	h.States().Request(&states.MainMenu{})

	h.Step(frame)
	assert.IsType(t, &states.MainMenu{}, h.States().Current())
	menu := dispatch.Controller[*controllers.MenuController](h.Dispatcher())
	require.NotNil(t, menu.Timer, "systems are injected before the first transition is dispatched")

	h.Step(frame)
	assert.IsType(t, &states.Lobby{}, h.States().Current())

	h.Step(frame)
	assert.IsType(t, &states.Gameplay{}, h.States().Current())
	hud := dispatch.Controller[*controllers.HUDController](h.Dispatcher())
	assert.Equal(t, 1, hud.Rounds())
	_, onHUD := h.Screens().Active().(*controllers.HUDScreen)
	assert.True(t, onHUD)

	h.Step(frame)
	h.Step(frame)
	assert.IsType(t, &states.MainMenu{}, h.States().Current())
	screen, ok := h.Screens().Active().(*controllers.MenuScreen)
	require.True(t, ok)
	assert.Equal(t, 2, screen.Shown())
	assert.Equal(t, uint64(5), h.Dispatcher().Frames())

	journal := dispatch.Controller[*controllers.JournalController](h.Dispatcher())
	assert.Equal(t, 7, journal.Buffered())

	chat, ok := system.Get[*systems.Chat](h.Systems())
	require.True(t, ok)
	var texts []string
	for _, m := range chat.History() {
		texts = append(texts, m.Text)
	}
	assert.Contains(t, texts, "lobby is open")
}

func TestShutdownClearsSystemReferences(t *testing.T) {
	h := startHost(t)
	h.Step(frame)

	menu := dispatch.Controller[*controllers.MenuController](h.Dispatcher())
	hud := dispatch.Controller[*controllers.HUDController](h.Dispatcher())
	chat := dispatch.Controller[*controllers.ChatController](h.Dispatcher())
	require.NotNil(t, menu.Timer)
	require.True(t, hud.HasTimer())
	require.NotNil(t, chat.Chat)

	h.Shutdown()
	assert.Equal(t, 0, h.Systems().Len())
	assert.Nil(t, menu.Timer)
	assert.False(t, hud.HasTimer())
	assert.Nil(t, chat.Chat)
}

func TestStartTwiceFails(t *testing.T) {
	h := startHost(t)
	assert.Error(t, h.Start())
}

func TestStartReportsDefects(t *testing.T) {
	type broken struct {
		controller.Base
		timer *systems.Timer `dep:"system"`
	}
	h := New(zap.NewNop())
	err := h.Start(controller.Discover[*broken]("broken"))
	assert.ErrorIs(t, err, controller.ErrUnsettableField)
	assert.Nil(t, h.Dispatcher())
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	h := startHost(t)
	assert.Error(t, New(zap.NewNop()).Run(context.Background(), frame, 1), "not started")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.Run(ctx, time.Millisecond, 3))
	assert.Equal(t, uint64(3), h.Dispatcher().Frames())
}

func TestRunStopsOnCancel(t *testing.T) {
	h := startHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, h.Run(ctx, time.Millisecond, 0))
}
