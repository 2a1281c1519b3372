package xpath

import "go.uber.org/zap"

// Function is a statically-resolved XPath function implementation. args are
// already-evaluated argument sequences, in call order.
type Function func(ctx *DynamicContext, args [][]any) ([]any, error)

// StaticContext carries the variable bindings and function library available
// to an expression, independent of any particular context item (§3
// "StaticContext", grounded on pyopath/doer.py's class of the same name).
//
// Logger is nil-safe: a zero StaticContext logs nothing. The CLI wires a
// real *zap.Logger; library callers that never set one pay nothing.
type StaticContext struct {
	Variables map[string]any
	Functions map[string]Function
	Logger    *zap.Logger
}

// NewStaticContext returns a StaticContext seeded with the builtin function
// library (functions.go).
func NewStaticContext() *StaticContext {
	sc := &StaticContext{
		Variables: map[string]any{},
		Functions: map[string]Function{},
	}
	registerBuiltins(sc)
	return sc
}

func (sc *StaticContext) log() *zap.Logger {
	if sc == nil || sc.Logger == nil {
		return zap.NewNop()
	}
	return sc.Logger
}

// copyFrom snapshots other's bindings, per pyopath's copy_static_context:
// the root DynamicContext gets its own copy of the Variables map, so the
// caller's StaticContext map is not shared with the evaluation. Contexts
// derived from it by withFocus share that copy.
func (sc *StaticContext) copyFrom(other *StaticContext) {
	sc.Variables = make(map[string]any, len(other.Variables))
	for k, v := range other.Variables {
		sc.Variables[k] = v
	}
	sc.Functions = other.Functions
	sc.Logger = other.Logger
}

// DynamicContext is the full expression context at one point of evaluation:
// the static bindings plus the focus triple (item, position, size) and the
// optional name of the step that produced item (§3 "DynamicContext",
// grounded on pyopath/doer.py's class of the same name).
//
// Evaluation never mutates a DynamicContext in place; each step derives a
// fresh one, so Sequence iteration can freely fan a single parent context
// out across many children without aliasing bugs.
type DynamicContext struct {
	StaticContext

	Item     any
	Position int
	Size     int
	Name     string

	HasItem bool
}

// NewDynamicContext builds the root context a query starts from: the host
// data as item 1 of 1.
func NewDynamicContext(static *StaticContext, item any) *DynamicContext {
	dc := &DynamicContext{Item: item, Position: 1, Size: 1, HasItem: true}
	if static != nil {
		dc.copyFrom(static)
	} else {
		dc.Variables = map[string]any{}
	}
	return dc
}

// withFocus derives a new DynamicContext sharing dc's static bindings but
// focused on a different item/position/size/name, per
// enumerate_items/evaluate_axis in pyopath/doer.py.
func (dc *DynamicContext) withFocus(item any, position, size int, name string) *DynamicContext {
	return &DynamicContext{
		StaticContext: dc.StaticContext,
		Item:          item,
		Position:      position,
		Size:          size,
		Name:          name,
		HasItem:       true,
	}
}

// requireItem returns the context item or a CodeMissingContext error if none
// is bound, per §6.4's XPDY0002.
func (dc *DynamicContext) requireItem() (any, error) {
	if dc == nil || !dc.HasItem {
		return nil, newError(CodeMissingContext, -1, "no context item is bound")
	}
	return dc.Item, nil
}
