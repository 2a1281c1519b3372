// Package jsonnode adapts arbitrary JSON data — the "plain mapping/sequence
// data" spec.md §1 scopes this engine to alongside markup trees — into the
// xpath.Node capability interface (§6.2). It is grounded on
// _examples/474420502-xjson, which layers an XPath-like query surface over
// parsed JSON: object keys become child element-like nodes named after the
// key, array elements become repeated children sharing their parent's name.
//
// Tree construction decodes with github.com/json-iterator/go (a drop-in
// faster encoding/json, xjson's own inspiration for wanting a quicker
// parse); scalar string values are instead read back out of the original
// document bytes with github.com/tidwall/gjson's path lookup, which is
// cheaper than re-marshaling a decoded Go value when all that's needed is
// its textual form.
package jsonnode

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/arbortree/xpathql/xpath"
)

func init() {
	xpath.Register(&Node{}, func(v any) (xpath.Node, error) {
		n, ok := v.(*Node)
		if !ok {
			return nil, fmt.Errorf("jsonnode: expected *jsonnode.Node, got %T", v)
		}
		return n, nil
	})
}

// Node is one element- or text-like node of a JSON document viewed as a
// tree: objects and arrays are ElementNode, scalars (and `null`) are
// TextNode leaves.
type Node struct {
	kind     xpath.NodeKind
	name     string
	value    any // decoded scalar value; only meaningful for TextNode
	path     string
	parent   *Node
	children []*Node
	root     *Node
	raw      []byte // set on the root node only
}

var _ xpath.Node = (*Node)(nil)

// Parse decodes JSON bytes into a *Node tree. The returned node is the
// top-level value itself (an ElementNode for an object/array, a TextNode
// for a bare scalar document) with no parent, matching xmlnode.Parse's
// convention that the context item a query starts from is the document's
// own root, not a synthetic wrapper.
func Parse(data []byte) (*Node, error) {
	var decoded any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("jsonnode: %w", err)
	}

	root := buildNode(nil, "#root", decoded, "")
	root.root = root
	root.raw = data
	if root.children != nil {
		fixupRoot(root)
	}
	return root, nil
}

// fixupRoot rewrites the root pointer of every descendant built before the
// root's own address was known (buildNode needs root.raw to resolve scalar
// leaves, but root doesn't exist yet while its own children are built).
func fixupRoot(root *Node) {
	var walk func(*Node)
	walk = func(n *Node) {
		n.root = root
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
}

func buildChildren(root *Node, name string, value any, path string) []*Node {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]*Node, 0, len(keys))
		for _, k := range keys {
			childPath := joinPath(path, k)
			out = append(out, buildNode(root, k, v[k], childPath))
		}
		return out
	case []any:
		out := make([]*Node, 0, len(v))
		for i, item := range v {
			childPath := joinPath(path, strconv.Itoa(i))
			out = append(out, buildNode(root, name, item, childPath))
		}
		return out
	default:
		return nil
	}
}

func buildNode(root *Node, name string, value any, path string) *Node {
	switch value.(type) {
	case map[string]any, []any:
		n := &Node{kind: xpath.ElementNode, name: name, path: path, root: root}
		n.children = buildChildren(root, name, value, path)
		for _, c := range n.children {
			c.parent = n
		}
		return n
	default:
		return &Node{kind: xpath.TextNode, name: name, value: value, path: path, root: root}
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func (n *Node) NodeKind() xpath.NodeKind { return n.kind }
func (n *Node) Name() string             { return n.name }

// StringValue reads a scalar leaf's textual form straight out of the
// original document bytes via gjson, rather than re-stringifying the
// already-decoded Go value; for elements it concatenates descendant text.
func (n *Node) StringValue() string {
	if n.kind == xpath.TextNode {
		if n.value == nil {
			return ""
		}
		if n.path == "" {
			// gjson has no notion of "the whole document" for an empty
			// path; this only happens for a bare top-level scalar (a JSON
			// document that is just `"foo"`, `1`, or `true`).
			return scalarString(n.value)
		}
		return gjson.GetBytes(n.root.raw, n.path).String()
	}
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

// scalarString stringifies a decoded top-level scalar (string, float64,
// bool, or nil) the same way gjson.Result.String() would have, for the one
// case gjson can't be asked directly: a bare scalar document has no path
// for gjson to look the value back up at.
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func (n *Node) collectText(b *strings.Builder) {
	for _, c := range n.children {
		if c.kind == xpath.TextNode {
			b.WriteString(c.StringValue())
		} else {
			c.collectText(b)
		}
	}
}

func (n *Node) Children() []xpath.Node {
	out := make([]xpath.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Attributes is always empty: JSON has no analogue of markup attributes.
func (n *Node) Attributes() []xpath.Node { return nil }

func (n *Node) Parent() (xpath.Node, bool) {
	if n.parent == nil {
		return nil, false
	}
	return n.parent, true
}

// Unwrap returns the scalar Go value a TextNode leaf decoded to (string,
// float64, bool, or nil); elements unwrap to themselves, since they have no
// single host value simpler than the tree itself.
func (n *Node) Unwrap() any {
	if n.kind == xpath.TextNode {
		return n.value
	}
	return n
}

func (n *Node) IdentityEqual(other xpath.Node) bool {
	o, ok := other.(*Node)
	return ok && o == n
}
