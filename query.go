// Package xpathql is the embedding facade spec.md §6.3 describes: Query
// compiles and evaluates an XPath expression against any host value with a
// registered node-model adapter (xmlnode, jsonnode, or a caller's own).
package xpathql

import (
	"github.com/arbortree/xpathql/xpath"
)

// Options configures a Query call (§6.3's "options").
type Options struct {
	// UnwrapNodes, when true (the default via DefaultOptions), replaces
	// every node result with its host value (xpath.Node.Unwrap()) before
	// returning. Library callers that want to keep walking the result with
	// more xpath.Node operations should set this to false.
	UnwrapNodes bool

	// StaticContext, when non-nil, supplies the variable bindings and
	// function library the query runs under instead of
	// xpath.NewStaticContext()'s defaults. Callers that only want to add
	// variables should copy NewStaticContext()'s Functions map across.
	StaticContext *xpath.StaticContext
}

// DefaultOptions returns UnwrapNodes: true with a nil StaticContext, which
// Query replaces with xpath.NewStaticContext(). A zero Options leaves
// UnwrapNodes false.
func DefaultOptions() Options {
	return Options{UnwrapNodes: true}
}

// Query parses text as an XPath expression (cached by text, §6.3a) and
// evaluates it against data, which is dispatched to a registered
// node-model adapter via xpath.Wrap (§6.2). The root context item is
// position 1 of size 1, per pyopath/doer.py's query() entry point.
func Query(data any, text string, options Options) ([]any, error) {
	ast, err := xpath.ParseCached(text)
	if err != nil {
		return nil, err
	}

	node, err := xpath.Wrap(data)
	if err != nil {
		return nil, err
	}

	sc := options.StaticContext
	if sc == nil {
		sc = xpath.NewStaticContext()
	}
	dc := xpath.NewDynamicContext(sc, node)

	seq, err := xpath.Eval(dc, ast)
	if err != nil {
		return nil, err
	}

	var out []any
	for {
		item, ok, err := seq()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if options.UnwrapNodes {
			if n, isNode := item.(xpath.Node); isNode {
				item = n.Unwrap()
			}
		}
		out = append(out, item)
	}
	return out, nil
}
