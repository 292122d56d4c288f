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

package vm

import (
	"fmt"
	"math/big"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/params"
)

// reservedEvents may only be emitted by the runtime itself.
var reservedEvents = mapset.NewSet(params.ICXTransferEventName)

// IsReservedEvent reports whether name belongs to the runtime.
func IsReservedEvent(name string) bool { return reservedEvents.Contains(name) }

// Param is a declared event or method parameter.
type Param struct {
	Name string
	Type types.ValueType
}

// EventSchema declares an event: its parameter list and how many leading
// parameters are indexed.
type EventSchema struct {
	Name    string
	Params  []Param
	Indexed int
}

// Signature returns the canonical "Name(type1,type2,...)" string.
func (e *EventSchema) Signature() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	sb.WriteByte('(')
	for i, p := range e.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Validate checks the declaration.
func (e *EventSchema) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: empty event name", ErrEventDeclaration)
	}
	if e.Indexed < 0 || e.Indexed > params.MaxIndexedEventArgs || e.Indexed > len(e.Params) {
		return fmt.Errorf("%w: %s declares %d indexed of %d parameters (max %d)",
			ErrEventDeclaration, e.Name, e.Indexed, len(e.Params), params.MaxIndexedEventArgs)
	}
	seen := make(map[string]struct{}, len(e.Params))
	for _, p := range e.Params {
		if _, err := types.ParseValueType(p.Type.String()); err != nil {
			return fmt.Errorf("%w: %s.%s has invalid type", ErrEventDeclaration, e.Name, p.Name)
		}
		if p.Name == "" {
			return fmt.Errorf("%w: %s has an unnamed parameter", ErrEventDeclaration, e.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %s repeats parameter %q", ErrEventDeclaration, e.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Args carries emission or call arguments. Positional values bind to the
// leading parameters, Named values to the rest by name; both styles yield
// the same bound values.
type Args struct {
	Positional []interface{}
	Named      map[string]interface{}
}

// Positional builds Args from positional values.
func Positional(vals ...interface{}) Args {
	return Args{Positional: vals}
}

// With returns a copy of a with name bound to v.
func (a Args) With(name string, v interface{}) Args {
	named := make(map[string]interface{}, len(a.Named)+1)
	for k, x := range a.Named {
		named[k] = x
	}
	named[name] = v
	return Args{Positional: a.Positional, Named: named}
}

// BindParams binds args to ps in declaration order, converting native Go
// values and checking types. Count and naming problems are reported as
// mismatch (wrapped with ErrEventLog for events, ErrInvalidParams for
// methods); type problems always as ErrArgumentType.
func BindParams(ps []Param, args Args, mismatch error) ([]types.Value, error) {
	if len(args.Positional) > len(ps) {
		return nil, fmt.Errorf("%w: %d arguments for %d parameters", mismatch, len(args.Positional), len(ps))
	}
	used := 0
	out := make([]types.Value, len(ps))
	for i, p := range ps {
		var (
			raw interface{}
			ok  bool
		)
		if i < len(args.Positional) {
			raw, ok = args.Positional[i], true
			if _, dup := args.Named[p.Name]; dup {
				return nil, fmt.Errorf("%w: %q given twice", mismatch, p.Name)
			}
		} else if raw, ok = args.Named[p.Name]; ok {
			used++
		}
		if !ok {
			return nil, fmt.Errorf("%w: missing argument %q", mismatch, p.Name)
		}
		v, err := types.ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArgumentType, p.Name, err)
		}
		if v.Type() != p.Type {
			return nil, fmt.Errorf("%w: %s is %v, want %v", ErrArgumentType, p.Name, v.Type(), p.Type)
		}
		out[i] = v
	}
	if used != len(args.Named) {
		for name := range args.Named {
			if !hasParam(ps, name) {
				return nil, fmt.Errorf("%w: unexpected argument %q", mismatch, name)
			}
		}
	}
	return out, nil
}

func hasParam(ps []Param, name string) bool {
	for _, p := range ps {
		if p.Name == name {
			return true
		}
	}
	return false
}

// EventRegistry maps event names to their validated schemas. It is built
// once when a score is registered.
type EventRegistry struct {
	events map[string]*EventSchema
	names  []string
}

// NewEventRegistry validates every schema eagerly. Duplicate names and
// reserved names are declaration errors.
func NewEventRegistry(schemas ...EventSchema) (*EventRegistry, error) {
	r := &EventRegistry{events: make(map[string]*EventSchema, len(schemas))}
	for i := range schemas {
		s := schemas[i]
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if IsReservedEvent(s.Name) {
			return nil, fmt.Errorf("%w: %s is reserved", ErrEventDeclaration, s.Name)
		}
		if _, dup := r.events[s.Name]; dup {
			return nil, fmt.Errorf("%w: %s declared twice", ErrEventDeclaration, s.Name)
		}
		s.Params = append([]Param(nil), s.Params...)
		r.events[s.Name] = &s
		r.names = append(r.names, s.Name)
	}
	return r, nil
}

// Lookup returns the schema of name.
func (r *EventRegistry) Lookup(name string) (*EventSchema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.events[name]
	return s, ok
}

// Names lists the declared events in declaration order.
func (r *EventRegistry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// EmitEventLog validates an emission by score against schema, charges its
// steps and appends the record to the call tree's log buffer. Nothing is
// recorded when an error is returned.
func EmitEventLog(ctx *Context, score common.Address, schema *EventSchema, args Args) error {
	if ctx == nil {
		return ErrNoActiveContext
	}
	if ctx.ReadOnly() {
		eventLogRejectedMeter.Mark(1)
		return fmt.Errorf("%w: %s emitted in %v/%v context", ErrEventLog, schema.Name, ctx.Type, ctx.FuncType)
	}
	if err := schema.Validate(); err != nil {
		return err
	}
	if IsReservedEvent(schema.Name) {
		eventLogRejectedMeter.Mark(1)
		return fmt.Errorf("%w: %s is reserved for the runtime", ErrEventLog, schema.Name)
	}
	values, err := BindParams(schema.Params, args, ErrEventLog)
	if err != nil {
		eventLogRejectedMeter.Mark(1)
		return err
	}
	record := &types.EventLog{
		ScoreAddress: score,
		Indexed:      make([]types.Value, 0, schema.Indexed+1),
		Data:         make([]types.Value, 0, len(values)-schema.Indexed),
	}
	record.Indexed = append(record.Indexed, types.StrValue(schema.Signature()))
	record.Indexed = append(record.Indexed, values[:schema.Indexed]...)
	record.Data = append(record.Data, values[schema.Indexed:]...)
	return appendLog(ctx, record)
}

var transferSchema = EventSchema{
	Name: params.ICXTransferEventName,
	Params: []Param{
		{Name: "from", Type: types.TypeAddress},
		{Name: "to", Type: types.TypeAddress},
		{Name: "amount", Type: types.TypeInt},
	},
	Indexed: 3,
}

// EmitTransferEvent records the reserved native transfer event. It is
// called by the currency engine only, which never runs read-only.
func EmitTransferEvent(ctx *Context, score, from, to common.Address, amount *big.Int) error {
	if ctx == nil {
		return ErrNoActiveContext
	}
	record := &types.EventLog{
		ScoreAddress: score,
		Indexed: []types.Value{
			types.StrValue(transferSchema.Signature()),
			types.AddressValue(from),
			types.AddressValue(to),
			types.BigValue(amount),
		},
	}
	return appendLog(ctx, record)
}

func appendLog(ctx *Context, record *types.EventLog) error {
	if ctx.Steps != nil {
		size := 0
		for _, v := range record.Indexed {
			size += len(v.IndexBytes())
		}
		for _, v := range record.Data {
			size += len(v.IndexBytes())
		}
		if err := ctx.Steps.Apply(params.StepEventLog, uint64(size)); err != nil {
			return err
		}
	}
	ctx.Logs.Append(record)
	eventLogMeter.Mark(1)
	log.Trace("Event log emitted", "score", record.ScoreAddress, "event", record.Signature(), "indexed", len(record.Indexed), "data", len(record.Data))
	return nil
}
