// Copyright 2026 The gscore Authors
// This file is part of the gscore library.
//
// The gscore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gscore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gscore library. If not, see <http://www.gnu.org/licenses/>.

// Package luascore runs scores written in Lua.
//
// A script declares a global table named score:
//
//	score = {
//	  install = {"_name:str"},
//	  events  = {Set = {params = {"key:str", "value:str"}, indexed = 1}},
//	  methods = {
//	    get = {params = {"key:str"}, returns = "str", readonly = true,
//	           fn = function(key) return tos.get(key) end},
//	  },
//	  on_install = function(name) end,
//	}
//
// The chunk is compiled once at load time. Every invocation runs it in a
// fresh interpreter bound to the calling frame through the tos module, so a
// loaded score carries no mutable state and may serve concurrent frames.
package luascore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/params"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const (
	chunkName   = "score"
	scoreGlobal = "score"

	installHook = "on_install"
	updateHook  = "on_update"

	callStackSize = 256
	registrySize  = 1024 * 16
)

// Globals removed from the interpreter before any script runs.
var unsafeGlobals = []string{
	"collectgarbage", "dofile", "load", "loadfile", "loadstring",
	"module", "pcall", "print", "require", "xpcall",
}

// Loader implements score.Loader for params.ContentTypeLua.
type Loader struct {
	timeout time.Duration
}

// NewLoader returns a loader whose scores abort any single invocation
// running longer than timeout. A non-positive timeout selects
// params.DefaultLuaCallTimeout.
func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = params.DefaultLuaCallTimeout
	}
	return &Loader{timeout: timeout}
}

// Load implements score.Loader.
func (l *Loader) Load(contentType string, content []byte) (score.Score, error) {
	if contentType != params.ContentTypeLua {
		return nil, fmt.Errorf("%w: unsupported content type %q", score.ErrInvalidContent, contentType)
	}
	chunk, err := parse.Parse(bytes.NewReader(content), chunkName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", score.ErrInvalidContent, err)
	}
	proto, err := lua.Compile(chunk, chunkName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", score.ErrInvalidContent, err)
	}
	s := &Score{proto: proto, timeout: l.timeout}
	if err := s.declare(); err != nil {
		return nil, err
	}
	loadMeter.Mark(1)
	log.Debug("Lua score loaded", "methods", len(s.methods), "events", len(s.events), "size", len(content))
	return s, nil
}

// Score is a compiled Lua score.
type Score struct {
	proto   *lua.FunctionProto
	timeout time.Duration

	install []vm.Param
	events  []vm.EventSchema
	methods []score.Method
}

func (s *Score) InstallParams() []vm.Param { return s.install }
func (s *Score) Events() []vm.EventSchema  { return s.events }
func (s *Score) Methods() []score.Method   { return s.methods }

func (s *Score) OnInstall(h score.Host, args []types.Value) error {
	_, err := s.run(h, hookFunc(installHook), types.TypeInvalid, args)
	return err
}

func (s *Score) OnUpdate(h score.Host, args []types.Value) error {
	_, err := s.run(h, hookFunc(updateHook), types.TypeInvalid, args)
	return err
}

func (s *Score) event(name string) *vm.EventSchema {
	for i := range s.events {
		if s.events[i].Name == name {
			return &s.events[i]
		}
	}
	return nil
}

// newState opens an interpreter with the deterministic subset of the
// standard library.
func newState(ctx context.Context) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: callStackSize,
		RegistrySize:  registrySize,
	})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if math, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		math.RawSetString("random", lua.LNil)
		math.RawSetString("randomseed", lua.LNil)
	}
	L.SetContext(ctx)
	return L
}

// instantiate runs the chunk and returns its score table.
func (s *Score) instantiate(L *lua.LState) (*lua.LTable, error) {
	L.Push(L.NewFunctionFromProto(s.proto))
	if err := L.PCall(0, 0, nil); err != nil {
		return nil, err
	}
	tbl, ok := L.GetGlobal(scoreGlobal).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: script does not define the %s table", score.ErrInvalidScore, scoreGlobal)
	}
	return tbl, nil
}

// declare reads the score table into Go declarations.
func (s *Score) declare() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	L := newState(ctx)
	defer L.Close()

	tbl, err := s.instantiate(L)
	if errors.Is(err, score.ErrInvalidScore) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", score.ErrInvalidContent, err)
	}
	if s.install, err = parseParams(tbl.RawGetString("install")); err != nil {
		return fmt.Errorf("%w: install: %v", score.ErrInvalidScore, err)
	}
	if s.events, err = s.parseEvents(tbl.RawGetString("events")); err != nil {
		return err
	}
	if s.methods, err = s.parseMethods(tbl.RawGetString("methods")); err != nil {
		return err
	}
	for _, hook := range []string{installHook, updateHook} {
		switch tbl.RawGetString(hook).(type) {
		case *lua.LNilType, *lua.LFunction:
		default:
			return fmt.Errorf("%w: %s must be a function", score.ErrInvalidScore, hook)
		}
	}
	return nil
}

func (s *Score) parseEvents(v lua.LValue) ([]vm.EventSchema, error) {
	defs, err := namedTables(v)
	if err != nil {
		return nil, fmt.Errorf("%w: events: %v", score.ErrInvalidScore, err)
	}
	events := make([]vm.EventSchema, 0, len(defs))
	for _, name := range sortedKeys(defs) {
		def := defs[name]
		ps, err := parseParams(def.RawGetString("params"))
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: %v", score.ErrInvalidScore, name, err)
		}
		indexed, ok := def.RawGetString("indexed").(lua.LNumber)
		if !ok && def.RawGetString("indexed") != lua.LNil {
			return nil, fmt.Errorf("%w: event %s: indexed must be a number", score.ErrInvalidScore, name)
		}
		events = append(events, vm.EventSchema{Name: name, Params: ps, Indexed: int(indexed)})
	}
	return events, nil
}

func (s *Score) parseMethods(v lua.LValue) ([]score.Method, error) {
	defs, err := namedTables(v)
	if err != nil {
		return nil, fmt.Errorf("%w: methods: %v", score.ErrInvalidScore, err)
	}
	methods := make([]score.Method, 0, len(defs))
	for _, name := range sortedKeys(defs) {
		def := defs[name]
		if _, ok := def.RawGetString("fn").(*lua.LFunction); !ok {
			return nil, fmt.Errorf("%w: method %s has no fn", score.ErrInvalidScore, name)
		}
		ps, err := parseParams(def.RawGetString("params"))
		if err != nil {
			return nil, fmt.Errorf("%w: method %s: %v", score.ErrInvalidScore, name, err)
		}
		ret := types.TypeInvalid
		if r, ok := def.RawGetString("returns").(lua.LString); ok {
			if ret, err = types.ParseValueType(string(r)); err != nil {
				return nil, fmt.Errorf("%w: method %s: %v", score.ErrInvalidScore, name, err)
			}
		}
		methods = append(methods, score.Method{
			Name:     name,
			Params:   ps,
			Returns:  ret,
			ReadOnly: lua.LVAsBool(def.RawGetString("readonly")),
			Payable:  lua.LVAsBool(def.RawGetString("payable")),
			Fn: func(h score.Host, args []types.Value) (types.Value, error) {
				return s.run(h, methodFunc(name), ret, args)
			},
		})
	}
	return methods, nil
}

// parseParams reads a list of "name:type" strings.
func parseParams(v lua.LValue) ([]vm.Param, error) {
	if v == lua.LNil {
		return nil, nil
	}
	list, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("parameter list is a %s", v.Type())
	}
	ps := make([]vm.Param, 0, list.Len())
	for i := 1; i <= list.Len(); i++ {
		decl, ok := list.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("parameter %d is not a string", i)
		}
		name, typ, found := strings.Cut(string(decl), ":")
		if !found || name == "" {
			return nil, fmt.Errorf("parameter %q is not name:type", decl)
		}
		t, err := types.ParseValueType(typ)
		if err != nil {
			return nil, err
		}
		ps = append(ps, vm.Param{Name: name, Type: t})
	}
	return ps, nil
}

func namedTables(v lua.LValue) (map[string]*lua.LTable, error) {
	out := make(map[string]*lua.LTable)
	if v == lua.LNil {
		return out, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected a table, got %s", v.Type())
	}
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		def, isTable := v.(*lua.LTable)
		switch {
		case err != nil:
		case !ok:
			err = fmt.Errorf("key %v is not a string", k)
		case !isTable:
			err = fmt.Errorf("%s is not a table", name)
		default:
			out[string(name)] = def
		}
	})
	return out, err
}

func sortedKeys(m map[string]*lua.LTable) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// A lookup selects the function to run from the score table.
type lookup func(tbl *lua.LTable) lua.LValue

func hookFunc(name string) lookup {
	return func(tbl *lua.LTable) lua.LValue { return tbl.RawGetString(name) }
}

func methodFunc(name string) lookup {
	return func(tbl *lua.LTable) lua.LValue {
		methods, ok := tbl.RawGetString("methods").(*lua.LTable)
		if !ok {
			return lua.LNil
		}
		def, ok := methods.RawGetString(name).(*lua.LTable)
		if !ok {
			return lua.LNil
		}
		return def.RawGetString("fn")
	}
}

// run executes one invocation in a fresh interpreter.
func (s *Score) run(h score.Host, find lookup, ret types.ValueType, args []types.Value) (types.Value, error) {
	start := time.Now()
	defer callTimer.UpdateSince(start)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	L := newState(ctx)
	defer L.Close()

	c := &call{L: L, host: h, score: s}
	c.bind()

	tbl, err := s.instantiate(L)
	if err != nil {
		return nil, c.failure(ctx, err)
	}
	fn, ok := find(tbl).(*lua.LFunction)
	if !ok {
		// Hooks are optional; methods were checked at load.
		return nil, nil
	}
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLua(a)
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...); err != nil {
		return nil, c.failure(ctx, err)
	}
	rv := L.Get(-1)
	L.Pop(1)
	if ret == types.TypeInvalid {
		return nil, nil
	}
	v, err := fromLua(rv, ret)
	if err != nil {
		return nil, fmt.Errorf("%w: return value: %v", vm.ErrScore, err)
	}
	return v, nil
}
