package controllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/dispatch"
	"github.com/l1jgo/uihost/internal/core/screen"
	"github.com/l1jgo/uihost/internal/core/state"
	"github.com/l1jgo/uihost/internal/persist"
	"github.com/l1jgo/uihost/internal/states"
	"github.com/l1jgo/uihost/internal/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type navRecorder struct{ requested []state.State }

func (n *navRecorder) Request(next state.State) { n.requested = append(n.requested, next) }

type memorySink struct {
	entries []persist.JournalEntry
	fail    error
}

func (s *memorySink) WriteEntries(_ context.Context, entries []persist.JournalEntry) error {
	if s.fail != nil {
		return s.fail
	}
	s.entries = append(s.entries, entries...)
	return nil
}

type fixture struct {
	d       *dispatch.Dispatcher
	nav     *navRecorder
	sink    *memorySink
	screens *screen.Manager
}

func newFixture(t *testing.T, flushFrames int) *fixture {
	t.Helper()
	f := &fixture{
		nav:     &navRecorder{},
		sink:    &memorySink{},
		screens: screen.NewManager(zap.NewNop()),
	}
	require.NoError(t, RegisterScreens(f.screens))
	d, err := dispatch.New(zap.NewNop(), Registrations(Deps{
		Catalog:     states.Catalog(),
		Screens:     f.screens,
		Nav:         f.nav,
		Sink:        f.sink,
		FlushFrames: flushFrames,
		Timing:      Timing{MenuDelay: 10 * time.Millisecond, LobbyDelay: 10 * time.Millisecond, RoundTime: 20 * time.Millisecond},
		Log:         zap.NewNop(),
	})...)
	require.NoError(t, err)
	f.d = d
	return f
}

func TestRegistrationTable(t *testing.T) {
	f := newFixture(t, 1)
	reg := f.d.Registry()
	require.Equal(t, 4, reg.Len())
	for i, name := range []string{"menu", "hud", "chat", "journal"} {
		assert.Equal(t, name, reg.Name(controller.TypeOf(reg.At(i))))
	}
}

func TestMenuWithoutTimerRequestsImmediately(t *testing.T) {
	f := newFixture(t, 1)

	f.d.OnStateChanged(nil, &states.MainMenu{})
	require.Len(t, f.nav.requested, 1)
	assert.IsType(t, &states.Lobby{}, f.nav.requested[0])

	menu, ok := f.screens.Active().(*MenuScreen)
	require.True(t, ok)
	assert.Equal(t, 1, menu.Shown())

	f.d.OnStateChanged(&states.MainMenu{}, &states.Lobby{})
	assert.Nil(t, f.screens.Active())
	require.Len(t, f.nav.requested, 2)
	assert.Equal(t, &states.Gameplay{Map: "arena"}, f.nav.requested[1])
}

func TestMenuUsesTimerAndCancelsOnExit(t *testing.T) {
	f := newFixture(t, 1)
	timer := systems.NewTimer()
	f.d.OnSystemLoaded(timer)
	assert.Same(t, timer, dispatch.Controller[*MenuController](f.d).Timer)

	f.d.OnStateChanged(nil, &states.MainMenu{})
	assert.Empty(t, f.nav.requested)
	assert.Equal(t, 1, timer.Pending())

	// Leaving before the delay elapses cancels the scheduled lobby.
	f.d.OnStateChanged(&states.MainMenu{}, &states.Gameplay{})
	timer.Update(time.Second)
	assert.Empty(t, f.nav.requested)
}

func TestHUDRoundNeedsTimer(t *testing.T) {
	f := newFixture(t, 1)
	hud := dispatch.Controller[*HUDController](f.d)

	f.d.OnStateChanged(nil, &states.Gameplay{Map: "arena"})
	assert.Equal(t, 1, hud.Rounds())
	f.d.Tick(time.Second)
	assert.Empty(t, f.nav.requested, "the round clock stands still without a timer")
	clock := screen.MustWidget[*RoundClock](f.screens)
	assert.Equal(t, 20*time.Millisecond, clock.Remaining)

	timer := systems.NewTimer()
	f.d.OnSystemLoaded(timer)
	require.True(t, hud.HasTimer())
	assert.Equal(t, 1, timer.Pending(), "round end is scheduled once the timer arrives")

	timer.Update(10 * time.Millisecond)
	f.d.Tick(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, clock.Remaining)
	assert.Empty(t, f.nav.requested)

	timer.Update(10 * time.Millisecond)
	require.Len(t, f.nav.requested, 1)
	assert.IsType(t, &states.MainMenu{}, f.nav.requested[0])
	assert.Equal(t, time.Duration(0), clock.Remaining)

	f.d.OnSystemUnloaded(timer)
	assert.False(t, hud.HasTimer())
}

func TestHUDFreezesClockWhenTimerUnloads(t *testing.T) {
	f := newFixture(t, 1)
	timer := systems.NewTimer()
	f.d.OnSystemLoaded(timer)
	f.d.OnStateChanged(nil, &states.Gameplay{Map: "arena"})

	timer.Update(5 * time.Millisecond)
	f.d.OnSystemUnloaded(timer)
	timer.Update(time.Second)
	assert.Empty(t, f.nav.requested, "the scheduled round end is cancelled")

	clock := screen.MustWidget[*RoundClock](f.screens)
	assert.Equal(t, 20*time.Millisecond, clock.Remaining, "widget keeps its last shown value")

	again := systems.NewTimer()
	f.d.OnSystemLoaded(again)
	again.Update(15 * time.Millisecond)
	require.Len(t, f.nav.requested, 1, "the round resumes with the time left")
}

func TestHUDExitCancelsRound(t *testing.T) {
	f := newFixture(t, 1)
	timer := systems.NewTimer()
	f.d.OnSystemLoaded(timer)

	f.d.OnStateChanged(nil, &states.Gameplay{})
	f.d.OnStateChanged(&states.Gameplay{}, &states.MainMenu{})
	timer.Update(time.Second)
	for _, r := range f.nav.requested {
		assert.IsType(t, &states.Lobby{}, r, "only the menu schedules transitions")
	}
}

func TestChatControllerTracksUnread(t *testing.T) {
	f := newFixture(t, 1)
	chat := systems.NewChat(10)
	f.d.OnSystemLoaded(chat)

	c := dispatch.Controller[*ChatController](f.d)
	assert.True(t, c.Loaded, "field is set before the loaded hook runs")

	f.d.OnStateChanged(nil, &states.Lobby{})
	chat.Update(0)
	texts := make([]string, 0, 2)
	for _, m := range chat.History() {
		texts = append(texts, m.Text)
	}
	assert.Contains(t, texts, "lobby is open")
	assert.Equal(t, 2, c.Unread(), "lobby notice and journal echo")

	f.d.OnStateChanged(&states.Lobby{}, &states.Gameplay{})
	assert.Equal(t, 0, c.Unread())

	f.d.OnSystemUnloaded(chat)
	assert.Nil(t, c.Chat)
	assert.Equal(t, 0, chat.Listeners())
}

func TestJournalRecordsEveryEdge(t *testing.T) {
	f := newFixture(t, 2)
	j := dispatch.Controller[*JournalController](f.d)

	f.d.OnStateChanged(nil, &states.MainMenu{})
	f.d.OnStateChanged(&states.MainMenu{}, &states.Lobby{})
	assert.Equal(t, 3, j.Buffered())

	f.d.Tick(time.Millisecond)
	assert.Empty(t, f.sink.entries)
	f.d.Tick(time.Millisecond)
	require.Len(t, f.sink.entries, 3)
	assert.Equal(t, 0, j.Buffered())

	var edges []string
	for _, e := range f.sink.entries {
		edges = append(edges, e.Kind+" "+e.State)
	}
	assert.Equal(t, []string{"entered main_menu", "exited main_menu", "entered lobby"}, edges)
}

func TestJournalKeepsEntriesWhenSinkFails(t *testing.T) {
	f := newFixture(t, 1)
	f.sink.fail = errors.New("database down")
	j := dispatch.Controller[*JournalController](f.d)

	f.d.OnStateChanged(nil, &states.Lobby{})
	f.d.Tick(time.Millisecond)
	assert.Equal(t, 1, j.Buffered())

	f.sink.fail = nil
	j.Flush()
	assert.Equal(t, 0, j.Buffered())
	assert.Len(t, f.sink.entries, 1)
}
