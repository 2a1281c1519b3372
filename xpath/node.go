package xpath

import (
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// NodeKind is the closed set of node kinds an adapter may report, per §6.2.
type NodeKind uint8

const (
	ElementNode NodeKind = iota
	AttributeNode
	TextNode
	DocumentNode
	CommentNode
	ProcessingInstructionNode
	NamespaceNodeKind
)

// Node is the opaque handle the evaluator operates on (§3 "Node
// (external)"). It is implemented by the capability record every adapter
// returns from Wrap — never by a caller's own tree type directly. Equality
// of two Node values from the same adapter is defined by IdentityEqual, not
// by Go's `==`: an adapter that allocates a fresh wrapper per call would
// otherwise report two views of the same underlying item as distinct.
//
// is_node, resolved per spec §9 Open Question 3, is nominal: a value is a
// node iff it satisfies this interface, never by structural inspection of
// the underlying Go value.
type Node interface {
	NodeKind() NodeKind
	Name() string
	StringValue() string
	Children() []Node
	Attributes() []Node
	Parent() (Node, bool)
	Unwrap() any
	IdentityEqual(other Node) bool
}

// externalNode is the subset NodeTest.Matches needs; kept distinct from the
// full Node interface so ast.go does not import evaluation concerns.
type externalNode interface {
	NodeKind() NodeKind
	Name() string
}

// AdapterFactory wraps a concrete host value into a Node. Adapters register
// one factory per host Go type they support (§6.2 "Registration").
type AdapterFactory func(v any) (Node, error)

var (
	registryMu sync.RWMutex
	registry   = map[reflect.Type]AdapterFactory{}

	// dispatchCache memoizes the reflect.TypeOf -> factory lookup. Adapter
	// registration is rare (once at program init) but Wrap is called once
	// per query, so this repurposes a dependency the teacher's go.mod
	// carried (github.com/hashicorp/golang-lru/v2) but never imported from
	// any .go file.
	dispatchCache, _ = lru.New[reflect.Type, AdapterFactory](256)
)

// Register associates a host Go type with the adapter factory that wraps
// values of that type. Hosts call this before running queries against their
// tree model (§6.2 "a host registers (host-type -> adapter-factory) pairs
// before queries run").
func Register(sample any, factory AdapterFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	t := reflect.TypeOf(sample)
	registry[t] = factory
	dispatchCache.Remove(t)
}

// Wrap dispatches on the runtime type of v to produce a Node, per §6.2
// "wrap(x) dispatches on the runtime type of x". It returns an error if no
// adapter was registered for v's type.
func Wrap(v any) (Node, error) {
	t := reflect.TypeOf(v)
	if factory, ok := dispatchCache.Get(t); ok {
		return factory(v)
	}

	registryMu.RLock()
	factory, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, typeErrorf("no node-model adapter registered for type %s", t)
	}
	dispatchCache.Add(t, factory)
	return factory(v)
}
