package xpath

import (
	"fmt"
	"strconv"
	"strings"
)

// ASTNode is a parsed expression: a tagged variant per spec §3. Kind
// discriminates the concrete type for the evaluator's dispatch switch;
// String renders the node in the s-expression style of pyopath's Pretty()
// decorator, which the original_source AST used for debugging and
// structural equality.
type ASTNode interface {
	Kind() Kind
	String() string
}

// Kind tags every AST node variant.
type Kind uint8

const (
	KindExpressions Kind = iota
	KindOr
	KindAnd
	KindCompare
	KindAdditive
	KindMultiplicative
	KindUnion
	KindIntersect
	KindUnary
	KindPathOperator
	KindRootStep
	KindAxisStep
	KindPostfix
	KindPredicate
	KindFunctionCall
	KindLiteral
	KindContext
	KindVarRef
)

// Expressions is a comma sequence: each item is evaluated and the results
// concatenated in order.
type Expressions struct{ Items []ASTNode }

func (n *Expressions) Kind() Kind { return KindExpressions }
func (n *Expressions) String() string {
	return "Expressions(" + joinNodes(n.Items) + ")"
}

// OrExpr is an n-ary, flattened logical disjunction.
type OrExpr struct{ Items []ASTNode }

func (n *OrExpr) Kind() Kind     { return KindOr }
func (n *OrExpr) String() string { return "OrExpr(" + joinNodes(n.Items) + ")" }

// AndExpr is an n-ary, flattened logical conjunction.
type AndExpr struct{ Items []ASTNode }

func (n *AndExpr) Kind() Kind     { return KindAnd }
func (n *AndExpr) String() string { return "AndExpr(" + joinNodes(n.Items) + ")" }

// CompareOp enumerates the value, general, and node comparison operators.
// Value and general comparisons are kept distinct per spec §3 even where
// the underlying arithmetic is shared, because their cardinality rules
// differ (§4.E).
type CompareOp uint8

const (
	OpValueEq CompareOp = iota
	OpValueNe
	OpValueLt
	OpValueLe
	OpValueGt
	OpValueGe
	OpGeneralEq
	OpGeneralNe
	OpGeneralLt
	OpGeneralLe
	OpGeneralGt
	OpGeneralGe
	OpIs
)

func (op CompareOp) String() string {
	switch op {
	case OpValueEq:
		return "eq"
	case OpValueNe:
		return "ne"
	case OpValueLt:
		return "lt"
	case OpValueLe:
		return "le"
	case OpValueGt:
		return "gt"
	case OpValueGe:
		return "ge"
	case OpGeneralEq:
		return "="
	case OpGeneralNe:
		return "!="
	case OpGeneralLt:
		return "<"
	case OpGeneralLe:
		return "<="
	case OpGeneralGt:
		return ">"
	case OpGeneralGe:
		return ">="
	case OpIs:
		return "is"
	default:
		return "?"
	}
}

// isValueComparison reports whether op is one of the non-associative word
// comparisons (eq, ne, lt, le, gt, ge) that require singleton operands.
func (op CompareOp) isValueComparison() bool { return op <= OpValueGe }

// Compare is a (non-associative) comparison between two operands.
type Compare struct {
	LHS, RHS ASTNode
	Op       CompareOp
}

func (n *Compare) Kind() Kind { return KindCompare }
func (n *Compare) String() string {
	return fmt.Sprintf("Compare(%s,%s,%s)", n.LHS, n.RHS, n.Op)
}

// AdditiveExpr is left-associative `+`/`-`.
type AdditiveExpr struct {
	LHS, RHS ASTNode
	Op       byte // '+' or '-'
}

func (n *AdditiveExpr) Kind() Kind { return KindAdditive }
func (n *AdditiveExpr) String() string {
	return fmt.Sprintf("AdditiveExpr(%s,%s,%q)", n.LHS, n.RHS, string(n.Op))
}

// MultiplicativeExpr is left-associative `*`, `div`, `idiv`, `mod`.
type MultiplicativeExpr struct {
	LHS, RHS ASTNode
	Op       string // "*", "div", "idiv", "mod"
}

func (n *MultiplicativeExpr) Kind() Kind { return KindMultiplicative }
func (n *MultiplicativeExpr) String() string {
	return fmt.Sprintf("MultiplicativeExpr(%s,%s,%q)", n.LHS, n.RHS, n.Op)
}

// UnionExpr merges two node sequences (`union` or `|`).
type UnionExpr struct{ LHS, RHS ASTNode }

func (n *UnionExpr) Kind() Kind     { return KindUnion }
func (n *UnionExpr) String() string { return fmt.Sprintf("UnionExpr(%s,%s)", n.LHS, n.RHS) }

// IntersectExpr is `intersect` or `except`.
type IntersectExpr struct {
	LHS, RHS ASTNode
	Op       string // "intersect" or "except"
}

func (n *IntersectExpr) Kind() Kind { return KindIntersect }
func (n *IntersectExpr) String() string {
	return fmt.Sprintf("IntersectExpr(%s,%s,%q)", n.LHS, n.RHS, n.Op)
}

// UnaryExpr is a right-associative run of unary `+`/`-`.
type UnaryExpr struct {
	Inner ASTNode
	Sign  byte // '+' or '-'
}

func (n *UnaryExpr) Kind() Kind { return KindUnary }
func (n *UnaryExpr) String() string {
	return fmt.Sprintf("UnaryExpr(%s,%q)", n.Inner, string(n.Sign))
}

// PathOperator is the `/` composition operator. `//` is desugared at parse
// time into PathOperator(PathOperator(lhs, descendant-or-self::node()), rhs).
type PathOperator struct{ LHS, RHS ASTNode }

func (n *PathOperator) Kind() Kind { return KindPathOperator }
func (n *PathOperator) String() string {
	return fmt.Sprintf("PathOperator(%s,%s)", n.LHS, n.RHS)
}

// RootStep is the leading `/` or `//` marker: evaluating it walks from the
// context node to the document root. Resolves spec §9 Open Question 1 in
// favour of a dedicated AST node over a flagged wrapper tuple.
type RootStep struct{}

func (n *RootStep) Kind() Kind     { return KindRootStep }
func (n *RootStep) String() string { return "RootStep()" }

// Axis is the closed enumeration of forward and reverse axes (§3).
type Axis uint8

const (
	Child Axis = iota
	Descendant
	Attribute
	Self
	DescendantOrSelf
	FollowingSibling
	Following
	Namespace
	Parent
	Ancestor
	PrecedingSibling
	Preceding
	AncestorOrSelf
)

func (a Axis) String() string {
	switch a {
	case Child:
		return "child"
	case Descendant:
		return "descendant"
	case Attribute:
		return "attribute"
	case Self:
		return "self"
	case DescendantOrSelf:
		return "descendant-or-self"
	case FollowingSibling:
		return "following-sibling"
	case Following:
		return "following"
	case Namespace:
		return "namespace"
	case Parent:
		return "parent"
	case Ancestor:
		return "ancestor"
	case PrecedingSibling:
		return "preceding-sibling"
	case Preceding:
		return "preceding"
	case AncestorOrSelf:
		return "ancestor-or-self"
	default:
		return "?"
	}
}

// isReverse reports whether the axis walks towards the root (used to decide
// whether candidates need reversing to preserve document order, §5).
func (a Axis) isReverse() bool {
	switch a {
	case Parent, Ancestor, PrecedingSibling, Preceding, AncestorOrSelf:
		return true
	default:
		return false
	}
}

// NodeTest filters axis candidates by kind and/or name (§3).
type NodeTest interface {
	Matches(n externalNode) bool
	String() string
}

// NameTest matches element-ish candidates by local name, or `*` for any.
type NameTest struct{ Name string }

func (t NameTest) Matches(n externalNode) bool {
	if t.Name == "*" {
		return true
	}
	return n.Name() == t.Name
}
func (t NameTest) String() string { return fmt.Sprintf("NameTest(%q)", t.Name) }

// AnyKindTest matches node() — any node whatsoever.
type AnyKindTest struct{}

func (AnyKindTest) Matches(externalNode) bool { return true }
func (AnyKindTest) String() string            { return "AnyKindTest()" }

// TextTest matches text() — text nodes only.
type TextTest struct{}

func (TextTest) Matches(n externalNode) bool { return n.NodeKind() == TextNode }
func (TextTest) String() string              { return "TextTest()" }

// ElementTest matches element(name?) — element nodes, optionally by name.
type ElementTest struct {
	Name    string
	HasName bool
}

func (t ElementTest) Matches(n externalNode) bool {
	if n.NodeKind() != ElementNode {
		return false
	}
	if !t.HasName || t.Name == "*" {
		return true
	}
	return n.Name() == t.Name
}
func (t ElementTest) String() string {
	if !t.HasName {
		return "ElementTest()"
	}
	return fmt.Sprintf("ElementTest(%q)", t.Name)
}

// AttributeTest matches attribute(name?) — attribute nodes, optionally by name.
type AttributeTest struct {
	Name    string
	HasName bool
}

func (t AttributeTest) Matches(n externalNode) bool {
	if n.NodeKind() != AttributeNode {
		return false
	}
	if !t.HasName || t.Name == "*" {
		return true
	}
	return n.Name() == t.Name
}
func (t AttributeTest) String() string {
	if !t.HasName {
		return "AttributeTest()"
	}
	return fmt.Sprintf("AttributeTest(%q)", t.Name)
}

// Predicate is a bracketed filter expression, evaluated once per candidate.
type Predicate struct{ Expr ASTNode }

func (n *Predicate) Kind() Kind     { return KindPredicate }
func (n *Predicate) String() string { return fmt.Sprintf("Predicate(%s)", n.Expr) }

// AxisStep is one step of a path: axis + node test + predicates, applied
// left to right.
type AxisStep struct {
	Axis       Axis
	Test       NodeTest
	Predicates []*Predicate
}

func (n *AxisStep) Kind() Kind { return KindAxisStep }
func (n *AxisStep) String() string {
	parts := []string{n.Axis.String(), n.Test.String()}
	for _, p := range n.Predicates {
		parts = append(parts, p.String())
	}
	return "AxisStep(" + strings.Join(parts, ",") + ")"
}

// ArgumentList is the postfix `(...)` of a function call.
type ArgumentList struct{ Args []ASTNode }

// PostfixExpr is a primary expression followed by predicates or argument
// lists applied left to right.
type PostfixExpr struct {
	Primary   ASTNode
	Postfixes []any // *Predicate | *ArgumentList
}

func (n *PostfixExpr) Kind() Kind { return KindPostfix }
func (n *PostfixExpr) String() string {
	parts := []string{n.Primary.String()}
	for _, p := range n.Postfixes {
		switch v := p.(type) {
		case *Predicate:
			parts = append(parts, v.String())
		case *ArgumentList:
			parts = append(parts, "ArgumentList("+joinNodes(v.Args)+")")
		}
	}
	return "PostfixExpr(" + strings.Join(parts, ",") + ")"
}

// FunctionCall is a call to a statically-resolved function by name.
type FunctionCall struct {
	Name string
	Args []ASTNode
}

func (n *FunctionCall) Kind() Kind { return KindFunctionCall }
func (n *FunctionCall) String() string {
	return fmt.Sprintf("StaticFunctionCall(%q,%s)", n.Name, joinNodes(n.Args))
}

// Literal is a string, integer, or double constant.
type Literal struct{ Value any } // string | int64 | float64

func (n *Literal) Kind() Kind { return KindLiteral }
func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case string:
		return fmt.Sprintf("Literal(%q)", v)
	case int64:
		return "Literal(" + strconv.FormatInt(v, 10) + ")"
	case float64:
		return "Literal(" + strconv.FormatFloat(v, 'g', -1, 64) + ")"
	default:
		return "Literal(?)"
	}
}

// Context is the `.` leaf: the current context item.
type Context struct{}

func (Context) Kind() Kind     { return KindContext }
func (Context) String() string { return "Context()" }

// VarRef is a `$name` variable reference.
type VarRef struct{ Name string }

func (n *VarRef) Kind() Kind     { return KindVarRef }
func (n *VarRef) String() string { return fmt.Sprintf("VarRef(%q)", n.Name) }

func joinNodes(nodes []ASTNode) string {
	parts := make([]string, len(nodes))
	for i, node := range nodes {
		parts[i] = node.String()
	}
	return strings.Join(parts, ",")
}
