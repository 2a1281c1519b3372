package xpath

import (
	"sort"

	"go.uber.org/zap"
)

// Eval evaluates an AST against a dynamic context and returns the resulting
// sequence as a lazy Seq, per spec §4.E. Every branch below is grounded on
// the matching `evaluate_*` function of pyopath/doer.py, generalized from
// that file's single implemented case (the child axis) to the full grammar
// ast.go defines.
func Eval(ctx *DynamicContext, node ASTNode) (Seq, error) {
	switch n := node.(type) {
	case *Expressions:
		return evalExpressions(ctx, n)
	case *OrExpr:
		return evalOr(ctx, n)
	case *AndExpr:
		return evalAnd(ctx, n)
	case *Compare:
		return evalCompare(ctx, n)
	case *AdditiveExpr:
		return evalAdditive(ctx, n)
	case *MultiplicativeExpr:
		return evalMultiplicative(ctx, n)
	case *UnionExpr:
		return evalUnion(ctx, n)
	case *IntersectExpr:
		return evalIntersect(ctx, n)
	case *UnaryExpr:
		return evalUnary(ctx, n)
	case *PathOperator:
		return evalPath(ctx, n)
	case *RootStep:
		return evalRootStep(ctx)
	case *AxisStep:
		return evalAxisStep(ctx, n)
	case *PostfixExpr:
		return evalPostfix(ctx, n)
	case *FunctionCall:
		return evalFunctionCall(ctx, n)
	case *Literal:
		return fromSlice([]any{n.Value}), nil
	case *Context:
		item, err := ctx.requireItem()
		if err != nil {
			return nil, err
		}
		return fromSlice([]any{item}), nil
	case *VarRef:
		return evalVarRef(ctx, n)
	default:
		return nil, newError(CodeNotImplemented, -1, "evaluation not implemented for %T", node)
	}
}

func evalExpressions(ctx *DynamicContext, n *Expressions) (Seq, error) {
	var all []any
	for _, item := range n.Items {
		s, err := Eval(ctx, item)
		if err != nil {
			return nil, err
		}
		items, err := materialise(s)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return fromSlice(all), nil
}

func evalOr(ctx *DynamicContext, n *OrExpr) (Seq, error) {
	for _, item := range n.Items {
		s, err := Eval(ctx, item)
		if err != nil {
			return nil, err
		}
		b, err := effectiveBoolean(s)
		if err != nil {
			return nil, err
		}
		if b {
			return fromSlice([]any{true}), nil
		}
	}
	return fromSlice([]any{false}), nil
}

func evalAnd(ctx *DynamicContext, n *AndExpr) (Seq, error) {
	for _, item := range n.Items {
		s, err := Eval(ctx, item)
		if err != nil {
			return nil, err
		}
		b, err := effectiveBoolean(s)
		if err != nil {
			return nil, err
		}
		if !b {
			return fromSlice([]any{false}), nil
		}
	}
	return fromSlice([]any{true}), nil
}

func evalOperand(ctx *DynamicContext, n ASTNode) ([]any, error) {
	s, err := Eval(ctx, n)
	if err != nil {
		return nil, err
	}
	return materialise(s)
}

func evalCompare(ctx *DynamicContext, n *Compare) (Seq, error) {
	lhs, err := evalOperand(ctx, n.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := evalOperand(ctx, n.RHS)
	if err != nil {
		return nil, err
	}

	if n.Op == OpIs {
		if len(lhs) != 1 || len(rhs) != 1 {
			return nil, typeErrorf("'is' requires singleton node operands")
		}
		ln, ok1 := lhs[0].(Node)
		rn, ok2 := rhs[0].(Node)
		if !ok1 || !ok2 {
			return nil, typeErrorf("'is' requires node operands")
		}
		return fromSlice([]any{ln.IdentityEqual(rn)}), nil
	}

	if n.Op.isValueComparison() {
		if len(lhs) != 1 || len(rhs) != 1 {
			return nil, typeErrorf("value comparison %s requires singleton operands", n.Op)
		}
		result, err := compareAtomic(atomizeForCompare(lhs[0]), atomizeForCompare(rhs[0]), n.Op)
		if err != nil {
			return nil, err
		}
		return fromSlice([]any{result}), nil
	}

	// General comparison: existential over all pairings, vacuously false
	// when either side is empty (§4.E).
	if len(lhs) == 0 || len(rhs) == 0 {
		return fromSlice([]any{false}), nil
	}
	for _, l := range lhs {
		for _, r := range rhs {
			ok, err := compareAtomic(atomizeForCompare(l), atomizeForCompare(r), n.Op)
			if err != nil {
				return nil, err
			}
			if ok {
				return fromSlice([]any{true}), nil
			}
		}
	}
	return fromSlice([]any{false}), nil
}

func evalAdditive(ctx *DynamicContext, n *AdditiveExpr) (Seq, error) {
	l, err := singletonNumber(ctx, n.LHS)
	if err != nil {
		return nil, err
	}
	r, err := singletonNumber(ctx, n.RHS)
	if err != nil {
		return nil, err
	}
	if n.Op == '+' {
		return fromSlice([]any{l + r}), nil
	}
	return fromSlice([]any{l - r}), nil
}

func evalMultiplicative(ctx *DynamicContext, n *MultiplicativeExpr) (Seq, error) {
	l, err := singletonNumber(ctx, n.LHS)
	if err != nil {
		return nil, err
	}
	r, err := singletonNumber(ctx, n.RHS)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "*":
		return fromSlice([]any{l * r}), nil
	case "div":
		if r == 0 {
			return nil, newError(CodeDivisionByZero, -1, "division by zero")
		}
		return fromSlice([]any{l / r}), nil
	case "idiv":
		if r == 0 {
			return nil, newError(CodeDivisionByZero, -1, "division by zero")
		}
		return fromSlice([]any{int64(l / r)}), nil
	case "mod":
		if r == 0 {
			return nil, newError(CodeDivisionByZero, -1, "division by zero")
		}
		return fromSlice([]any{floatMod(l, r)}), nil
	default:
		return nil, newError(CodeNotImplemented, -1, "unknown multiplicative operator %q", n.Op)
	}
}

func floatMod(l, r float64) float64 {
	q := l / r
	if q < 0 {
		q = -floorFloat(-q)
	} else {
		q = floorFloat(q)
	}
	return l - q*r
}

func floorFloat(f float64) float64 {
	i := int64(f)
	if float64(i) > f {
		i--
	}
	return float64(i)
}

func singletonNumber(ctx *DynamicContext, n ASTNode) (float64, error) {
	items, err := evalOperand(ctx, n)
	if err != nil {
		return 0, err
	}
	if len(items) != 1 {
		return 0, typeErrorf("arithmetic operand must be a singleton, got %d items", len(items))
	}
	return toNumber(atomizeForCompare(items[0]))
}

func evalUnary(ctx *DynamicContext, n *UnaryExpr) (Seq, error) {
	v, err := singletonNumber(ctx, n.Inner)
	if err != nil {
		return nil, err
	}
	if n.Sign == '-' {
		v = -v
	}
	return fromSlice([]any{v}), nil
}

// evalPath materializes the left-hand side, per spec.md §9.4's decision
// against streaming path composition, then evaluates the right-hand side
// once per left-hand item with that item rescoped as the context.
func evalPath(ctx *DynamicContext, n *PathOperator) (Seq, error) {
	lhsItems, err := evalOperand(ctx, n.LHS)
	if err != nil {
		return nil, err
	}
	ctx.log().Debug("path composition", zap.Int("lhs_items", len(lhsItems)))
	var out []any
	for i, item := range lhsItems {
		node, ok := item.(Node)
		if !ok {
			return nil, newError(CodeAxisOnNonNode, -1, "path step applied to non-node item (position %d)", i+1)
		}
		stepCtx := ctx.withFocus(node, i+1, len(lhsItems), "")
		rhsItems, err := evalOperand(stepCtx, n.RHS)
		if err != nil {
			return nil, err
		}
		out = append(out, rhsItems...)
	}
	return fromSlice(dedupDocumentOrder(out)), nil
}

func evalRootStep(ctx *DynamicContext) (Seq, error) {
	item, err := ctx.requireItem()
	if err != nil {
		return nil, err
	}
	node, ok := item.(Node)
	if !ok {
		return nil, typeErrorf("root step requires a node context item, got %T", item)
	}
	for {
		parent, ok := node.Parent()
		if !ok {
			break
		}
		node = parent
	}
	return fromSlice([]any{node}), nil
}

// evalAxisStep enumerates candidates along an axis from the context node,
// filters by node test, then applies predicates left to right; a reverse
// axis's survivors are then put back into document order. Positional
// predicates match by integer equality with the candidate's 1-based
// position; a predicate that evaluates to a non-integer number matches
// nothing, per spec §7 (not an error — pyopath/doer.py's predicate_filter
// via effective_boolean would otherwise reject it outright).
func evalAxisStep(ctx *DynamicContext, n *AxisStep) (Seq, error) {
	item, err := ctx.requireItem()
	if err != nil {
		return nil, err
	}
	node, ok := item.(Node)
	if !ok {
		return nil, newError(CodeAxisOnNonNode, -1, "axis step applied to non-node item")
	}

	candidates := axisCandidates(node, n.Axis)
	ctx.log().Debug("axis enumeration",
		zap.String("axis", n.Axis.String()), zap.Int("candidates", len(candidates)))
	var filtered []Node
	for _, c := range candidates {
		if n.Test.Matches(c) {
			filtered = append(filtered, c)
		}
	}

	items := make([]any, len(filtered))
	for i, f := range filtered {
		items[i] = f
	}

	for _, pred := range n.Predicates {
		items, err = applyPredicate(ctx, items, pred)
		if err != nil {
			return nil, err
		}
	}
	if n.Axis.isReverse() {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return fromSlice(items), nil
}

func applyPredicate(ctx *DynamicContext, items []any, pred *Predicate) ([]any, error) {
	ctx.log().Debug("predicate filtering", zap.Int("candidates", len(items)))
	var out []any
	scoped := rescope(ctx, fromSlice(items), "", len(items))
	position := 0
	for {
		item, ok, err := scoped()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		position++
		stepCtx := item.(*DynamicContext)
		s, err := Eval(stepCtx, pred.Expr)
		if err != nil {
			return nil, err
		}
		results, err := materialise(s)
		if err != nil {
			return nil, err
		}
		keep, err := predicateKeeps(results, position)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, stepCtx.Item)
		}
	}
	return out, nil
}

// predicateKeeps implements §7's positional-predicate rule: a singleton
// numeric result selects by position (non-integer numbers match nothing);
// anything else reduces via effective boolean value.
func predicateKeeps(results []any, position int) (bool, error) {
	if len(results) == 1 {
		switch v := results[0].(type) {
		case int64:
			return v == int64(position), nil
		case float64:
			if v != floorFloat(v) {
				return false, nil
			}
			return int64(v) == int64(position), nil
		}
	}
	return effectiveBoolean(fromSlice(results))
}

func evalUnion(ctx *DynamicContext, n *UnionExpr) (Seq, error) {
	lhs, err := evalOperand(ctx, n.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := evalOperand(ctx, n.RHS)
	if err != nil {
		return nil, err
	}
	if err := requireAllNodes(lhs, rhs); err != nil {
		return nil, err
	}
	return fromSlice(dedupDocumentOrder(append(append([]any{}, lhs...), rhs...))), nil
}

func evalIntersect(ctx *DynamicContext, n *IntersectExpr) (Seq, error) {
	lhs, err := evalOperand(ctx, n.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := evalOperand(ctx, n.RHS)
	if err != nil {
		return nil, err
	}
	if err := requireAllNodes(lhs, rhs); err != nil {
		return nil, err
	}

	var out []any
	for _, l := range lhs {
		ln := l.(Node)
		found := false
		for _, r := range rhs {
			if ln.IdentityEqual(r.(Node)) {
				found = true
				break
			}
		}
		if (n.Op == "intersect") == found {
			out = append(out, l)
		}
	}
	return fromSlice(dedupDocumentOrder(out)), nil
}

func requireAllNodes(lists ...[]any) error {
	for _, list := range lists {
		for _, item := range list {
			if _, ok := item.(Node); !ok {
				return typeErrorf("set operation requires node sequences, got %T", item)
			}
		}
	}
	return nil
}

func evalPostfix(ctx *DynamicContext, n *PostfixExpr) (Seq, error) {
	items, err := evalOperand(ctx, n.Primary)
	if err != nil {
		return nil, err
	}
	for _, postfix := range n.Postfixes {
		switch p := postfix.(type) {
		case *Predicate:
			items, err = applyPredicate(ctx, items, p)
			if err != nil {
				return nil, err
			}
		case *ArgumentList:
			return nil, newError(CodeNotImplemented, -1, "dynamic function calls are not supported")
		}
	}
	return fromSlice(items), nil
}

func evalFunctionCall(ctx *DynamicContext, n *FunctionCall) (Seq, error) {
	fn, ok := ctx.Functions[n.Name]
	if !ok {
		return nil, newError(CodeUnknownFunction, -1, "unknown function %q", n.Name)
	}
	args := make([][]any, len(n.Args))
	for i, a := range n.Args {
		items, err := evalOperand(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = items
	}
	result, err := fn(ctx, args)
	if err != nil {
		return nil, err
	}
	return fromSlice(result), nil
}

func evalVarRef(ctx *DynamicContext, n *VarRef) (Seq, error) {
	v, ok := ctx.Variables[n.Name]
	if !ok {
		return nil, newError(CodeMissingContext, -1, "undefined variable $%s", n.Name)
	}
	if items, ok := v.([]any); ok {
		return fromSlice(items), nil
	}
	return fromSlice([]any{v}), nil
}

// axisCandidates enumerates the (unfiltered) candidates along axis from
// node, in the order the axis traverses them (forward axes in document
// order, reverse axes walking outward from node).
func axisCandidates(node Node, axis Axis) []Node {
	switch axis {
	case Self:
		return []Node{node}
	case Child:
		return node.Children()
	case Attribute:
		return node.Attributes()
	case Parent:
		if p, ok := node.Parent(); ok {
			return []Node{p}
		}
		return nil
	case Descendant:
		return descendants(node)
	case DescendantOrSelf:
		return append([]Node{node}, descendants(node)...)
	case Ancestor:
		return ancestors(node)
	case AncestorOrSelf:
		return append([]Node{node}, ancestors(node)...)
	case FollowingSibling:
		return siblings(node, true)
	case PrecedingSibling:
		return siblings(node, false)
	case Following:
		return followingOrPreceding(node, true)
	case Preceding:
		return followingOrPreceding(node, false)
	case Namespace:
		return nil
	default:
		return nil
	}
}

func descendants(node Node) []Node {
	var out []Node
	for _, c := range node.Children() {
		out = append(out, c)
		out = append(out, descendants(c)...)
	}
	return out
}

func ancestors(node Node) []Node {
	var out []Node
	cur := node
	for {
		p, ok := cur.Parent()
		if !ok {
			return out
		}
		out = append(out, p)
		cur = p
	}
}

func siblings(node Node, following bool) []Node {
	parent, ok := node.Parent()
	if !ok {
		return nil
	}
	children := parent.Children()
	idx := -1
	for i, c := range children {
		if c.IdentityEqual(node) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	if following {
		return append([]Node{}, children[idx+1:]...)
	}
	out := append([]Node{}, children[:idx]...)
	reverseNodes(out)
	return out
}

// followingOrPreceding walks the whole tree from the document root in
// document order and keeps nodes strictly after (or before) node, skipping
// its own ancestors/descendants per the XPath axis definitions.
func followingOrPreceding(node Node, following bool) []Node {
	root := node
	for {
		p, ok := root.Parent()
		if !ok {
			break
		}
		root = p
	}
	all := append([]Node{root}, descendants(root)...)

	var selfAndDescendants []Node
	collectSelfAndDescendants(node, &selfAndDescendants)
	inSelfOrDescendants := func(c Node) bool {
		for _, s := range selfAndDescendants {
			if s.IdentityEqual(c) {
				return true
			}
		}
		return false
	}

	var out []Node
	seenSelf := false
	for _, c := range all {
		if c.IdentityEqual(node) {
			seenSelf = true
			continue
		}
		if following {
			if seenSelf && !inSelfOrDescendants(c) {
				out = append(out, c)
			}
			continue
		}
		if !seenSelf && !inSelfOrDescendants(c) {
			out = append(out, c)
		}
	}
	if !following {
		reverseNodes(out)
	}
	return out
}

func collectSelfAndDescendants(node Node, out *[]Node) {
	*out = append(*out, node)
	for _, c := range node.Children() {
		collectSelfAndDescendants(c, out)
	}
}

func reverseNodes(nodes []Node) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}

// documentPath returns n's child-index path from the document root, used to
// order and deduplicate node sequences per §4.E's "document order, no
// duplicates" requirement on path and set operator results.
func documentPath(n Node) []int {
	var path []int
	cur := n
	for {
		parent, ok := cur.Parent()
		if !ok {
			return path
		}
		idx := 0
		for i, c := range parent.Children() {
			if c.IdentityEqual(cur) {
				idx = i
				break
			}
		}
		path = append([]int{idx}, path...)
		cur = parent
	}
}

func pathLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func sortDocumentOrder(items []any) []any {
	out := append([]any{}, items...)
	sort.SliceStable(out, func(i, j int) bool {
		ni, oki := out[i].(Node)
		nj, okj := out[j].(Node)
		if !oki || !okj {
			return false
		}
		return pathLess(documentPath(ni), documentPath(nj))
	})
	return out
}

func dedupDocumentOrder(items []any) []any {
	sorted := sortDocumentOrder(items)
	var out []any
	for _, item := range sorted {
		n, ok := item.(Node)
		if !ok {
			out = append(out, item)
			continue
		}
		dup := false
		for _, seen := range out {
			if sn, ok := seen.(Node); ok && sn.IdentityEqual(n) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, item)
		}
	}
	return out
}
