package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/l1jgo/uihost/internal/core/state"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Script is one controller table declared by a Lua file through the
// controller{...} global.
type Script struct {
	Name    string
	File    string
	entered map[string]*lua.LFunction
	exited  map[string]*lua.LFunction
	frame   *lua.LFunction
}

// Engine wraps a single gopher-lua VM hosting every scripted controller.
// Single-goroutine access only (host loop).
type Engine struct {
	vm      *lua.LState
	scripts []*Script
	loading string
	log     *zap.Logger
}

// NewEngine creates a Lua engine and loads the given script files from dir.
func NewEngine(dir string, files []string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	for _, f := range files {
		path := filepath.Join(dir, f)
		if _, err := os.Stat(path); err != nil {
			e.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		e.loading = path
		if err := e.vm.DoFile(path); err != nil {
			e.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	e.loading = ""
	return e, nil
}

// NewEngineFromSource loads scripts from in-memory sources keyed by name.
func NewEngineFromSource(sources map[string]string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.loading = name
		if err := e.vm.DoString(sources[name]); err != nil {
			e.Close()
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}
	e.loading = ""
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("controller", vm.NewFunction(e.luaController))
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))
	return e
}

// luaController implements controller{ name=..., on_entered={...},
// on_exited={...}, frame_update=fn }.
func (e *Engine) luaController(L *lua.LState) int {
	t := L.CheckTable(1)
	s := &Script{
		Name:    lStr(t, "name"),
		File:    e.loading,
		entered: handlerTable(L, t, "on_entered"),
		exited:  handlerTable(L, t, "on_exited"),
	}
	if s.Name == "" {
		L.ArgError(1, "controller name is required")
		return 0
	}
	for _, cur := range e.scripts {
		if cur.Name == s.Name {
			L.ArgError(1, fmt.Sprintf("controller %q declared twice", s.Name))
			return 0
		}
	}
	if fn, ok := t.RawGetString("frame_update").(*lua.LFunction); ok {
		s.frame = fn
	}
	e.scripts = append(e.scripts, s)
	return 0
}

func handlerTable(L *lua.LState, t *lua.LTable, key string) map[string]*lua.LFunction {
	out := make(map[string]*lua.LFunction)
	v := t.RawGetString(key)
	if v == lua.LNil {
		return out
	}
	ht, ok := v.(*lua.LTable)
	if !ok {
		L.ArgError(1, key+" must be a table")
		return out
	}
	ht.ForEach(func(k, v lua.LValue) {
		fn, ok := v.(*lua.LFunction)
		if !ok {
			L.ArgError(1, fmt.Sprintf("%s.%s must be a function", key, k.String()))
			return
		}
		out[k.String()] = fn
	})
	return out
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// Validate checks that every state a script handles exists in cat.
func (e *Engine) Validate(cat *state.Catalog) error {
	for _, s := range e.scripts {
		for _, m := range []map[string]*lua.LFunction{s.entered, s.exited} {
			for name := range m {
				if _, ok := cat.ByName(name); !ok {
					return fmt.Errorf("script controller %q (%s) handles unknown state %q", s.Name, s.File, name)
				}
			}
		}
	}
	return nil
}

// Scripts returns the loaded controller scripts in load order.
func (e *Engine) Scripts() []*Script { return e.scripts }

// handles reports whether any script reacts to the named state edge.
func (e *Engine) handles(stateName string, entered bool) bool {
	for _, s := range e.scripts {
		m := s.exited
		if entered {
			m = s.entered
		}
		if _, ok := m[stateName]; ok {
			return true
		}
	}
	return false
}

// callState runs every script handler for the named state edge in load order.
func (e *Engine) callState(stateName string, entered bool) {
	arg := e.vm.NewTable()
	arg.RawSetString("name", lua.LString(stateName))
	for _, s := range e.scripts {
		m := s.exited
		if entered {
			m = s.entered
		}
		fn, ok := m[stateName]
		if !ok {
			continue
		}
		if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, arg); err != nil {
			e.log.Error("lua state handler error",
				zap.String("controller", s.Name),
				zap.String("state", stateName),
				zap.Bool("entered", entered),
				zap.Error(err))
		}
	}
}

// callFrame runs every script's frame_update with dt in seconds.
func (e *Engine) callFrame(dtSeconds float64) {
	for _, s := range e.scripts {
		if s.frame == nil {
			continue
		}
		if err := e.vm.CallByParam(lua.P{Fn: s.frame, NRet: 0, Protect: true}, lua.LNumber(dtSeconds)); err != nil {
			e.log.Error("lua frame_update error", zap.String("controller", s.Name), zap.Error(err))
		}
	}
}

// Global reads a global from the VM; used by hosts and tests to inspect
// script state.
func (e *Engine) Global(name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

// --- Lua helpers ---

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
