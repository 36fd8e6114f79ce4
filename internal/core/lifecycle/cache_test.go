package lifecycle

import (
	"reflect"
	"testing"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type lobby struct{ players int }

func (*lobby) StateName() string { return "lobby" }

type match struct{}

func (*match) StateName() string { return "match" }

type valueState struct{}

func (valueState) StateName() string { return "value" }

// tracker records every handler call as "<controller>:<direction>:<state>".
type tracker struct {
	calls *[]string
}

type roster struct {
	controller.Base
	tracker
	lastPlayers int
}

func (r *roster) lobbyEntered(s *lobby) {
	r.lastPlayers = s.players
	*r.calls = append(*r.calls, "roster:entered:lobby")
}

func (r *roster) lobbyExited(*lobby) {
	*r.calls = append(*r.calls, "roster:exited:lobby")
}

func (r *roster) StateInterests() []Interest {
	return []Interest{
		OnEntered((*roster).lobbyEntered),
		OnExited((*roster).lobbyExited),
	}
}

type scoreboard struct {
	controller.Base
	tracker
}

func (s *scoreboard) matchEntered(*match) {
	*s.calls = append(*s.calls, "scoreboard:entered:match")
}

func (s *scoreboard) StateInterests() []Interest {
	return []Interest{OnEntered((*scoreboard).matchEntered)}
}

type silent struct{ controller.Base }

type valueCtrl struct{ controller.Base }

func newCache() *Cache { return NewCache(zap.NewNop()) }

func TestDispatchReachesOnlyMatchingDirection(t *testing.T) {
	var calls []string
	c := newCache()
	r := &roster{tracker: tracker{&calls}}
	s := &scoreboard{tracker: tracker{&calls}}
	require.NoError(t, c.SubscribeAll(r))
	require.NoError(t, c.SubscribeAll(s))
	require.NoError(t, c.SubscribeAll(&silent{}))
	c.Seal()

	lobbyType := reflect.TypeFor[*lobby]()
	c.DispatchEntered(lobbyType, &lobby{players: 3})
	assert.Equal(t, []string{"roster:entered:lobby"}, calls)
	assert.Equal(t, 3, r.lastPlayers)

	calls = calls[:0]
	c.DispatchExited(lobbyType, &lobby{})
	assert.Equal(t, []string{"roster:exited:lobby"}, calls)

	calls = calls[:0]
	c.DispatchExited(reflect.TypeFor[*match](), &match{})
	assert.Empty(t, calls, "scoreboard only follows entering a match")

	c.DispatchEntered(reflect.TypeFor[*match](), &match{})
	assert.Equal(t, []string{"scoreboard:entered:match"}, calls)
}

func TestUnknownStateHasNoListeners(t *testing.T) {
	var calls []string
	c := newCache()
	require.NoError(t, c.SubscribeAll(&roster{tracker: tracker{&calls}}))

	type other struct{ lobby }
	c.DispatchEntered(reflect.TypeFor[*other](), &other{})
	assert.Empty(t, calls)
	assert.Empty(t, c.Listeners(reflect.TypeFor[*other](), Entered))
}

func TestListenersKeepSubscriptionOrder(t *testing.T) {
	var calls []string
	c := newCache()
	first := &roster{tracker: tracker{&calls}}
	second := &silent{}
	require.NoError(t, c.SubscribeAll(first))
	require.NoError(t, c.Subscribe(second, OnEntered(func(*silent, *lobby) {
		calls = append(calls, "silent:entered:lobby")
	})))

	got := c.Listeners(reflect.TypeFor[*lobby](), Entered)
	require.Len(t, got, 2)
	assert.Same(t, first, got[0])
	assert.Same(t, second, got[1])
	assert.Len(t, c.Listeners(reflect.TypeFor[*lobby](), Exited), 1)

	c.DispatchEntered(reflect.TypeFor[*lobby](), &lobby{})
	assert.Equal(t, []string{"roster:entered:lobby", "silent:entered:lobby"}, calls)
}

func TestCachedInvokerMatchesDirection(t *testing.T) {
	var calls []string
	c := newCache()
	r := &roster{tracker: tracker{&calls}}
	require.NoError(t, c.SubscribeAll(r))

	rt, lt := reflect.TypeFor[*roster](), reflect.TypeFor[*lobby]()
	exited, ok := c.Invoker(rt, lt, Exited)
	require.True(t, ok)
	exited(r, &lobby{})
	assert.Equal(t, []string{"roster:exited:lobby"}, calls)

	_, ok = c.Invoker(rt, reflect.TypeFor[*match](), Entered)
	assert.False(t, ok)
}

func TestAnyInterestReceivesConcreteState(t *testing.T) {
	var got state.State
	c := newCache()
	require.NoError(t, c.Subscribe(&silent{}, OnEnteredAny(reflect.TypeFor[*match](), func(_ *silent, s state.State) {
		got = s
	})))

	m := &match{}
	c.DispatchEntered(reflect.TypeFor[*match](), m)
	assert.Same(t, m, got)
}

func TestInterfaceDeclaredHandler(t *testing.T) {
	var n int
	c := newCache()
	err := c.Subscribe(&silent{}, OnExited(func(controller.Controller, *lobby) { n++ }))
	require.NoError(t, err)

	c.DispatchExited(reflect.TypeFor[*lobby](), &lobby{})
	assert.Equal(t, 1, n)
}

func TestSubscribeDefects(t *testing.T) {
	tests := []struct {
		name string
		ctrl controller.Controller
		in   Interest
		want error
	}{
		{
			name: "value controller",
			ctrl: valueCtrl{},
			in:   OnEntered(func(valueCtrl, *lobby) {}),
			want: controller.ErrValueController,
		},
		{
			name: "value state",
			ctrl: &silent{},
			in:   OnEntered(func(*silent, valueState) {}),
			want: controller.ErrValueState,
		},
		{
			name: "nil handler",
			ctrl: &silent{},
			in:   OnExited[*silent, *lobby](nil),
			want: controller.ErrMissingHandler,
		},
		{
			name: "handler for another controller",
			ctrl: &silent{},
			in:   OnEntered((*roster).lobbyEntered),
			want: controller.ErrMissingHandler,
		},
		{
			name: "missing state type",
			ctrl: &silent{},
			in:   OnEnteredAny(nil, func(*silent, state.State) {}),
			want: controller.ErrMissingHandler,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newCache().Subscribe(tt.ctrl, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var defect *controller.DefectError
			assert.ErrorAs(t, err, &defect)
		})
	}
}

func TestValueStateDefectNamesState(t *testing.T) {
	err := newCache().Subscribe(&silent{}, OnEntered(func(*silent, valueState) {}))
	var defect *controller.DefectError
	require.ErrorAs(t, err, &defect)
	assert.Equal(t, reflect.TypeFor[valueState](), defect.Type)
}

func TestDuplicateInterestIsDefect(t *testing.T) {
	c := newCache()
	s := &silent{}
	require.NoError(t, c.Subscribe(s, OnEntered(func(*silent, *lobby) {})))
	err := c.Subscribe(s, OnEntered(func(*silent, *lobby) {}))
	assert.ErrorIs(t, err, controller.ErrDuplicateInterest)

	// The opposite direction is a separate interest.
	assert.NoError(t, c.Subscribe(s, OnExited(func(*silent, *lobby) {})))
}

func TestSubscribeAfterSealPanics(t *testing.T) {
	c := newCache()
	c.Seal()
	assert.Panics(t, func() {
		_ = c.Subscribe(&silent{}, OnEntered(func(*silent, *lobby) {}))
	})
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "entered", Entered.String())
	assert.Equal(t, "exited", Exited.String())
}
