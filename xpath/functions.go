package xpath

import "strings"

// registerBuiltins installs the static function library every
// NewStaticContext starts with. Names and arity follow the XPath 3.1
// function signatures spec.md §1 calls out as in-scope; teacher's
// `xpath.go` implements a broader XPath 1.0 function set over its own DOM,
// and this mirrors its naming and coercion conventions (string-coerce
// single-argument functions default to the context item when called with
// zero arguments) rather than its DOM-specific bodies.
func registerBuiltins(sc *StaticContext) {
	sc.Functions["true"] = func(_ *DynamicContext, _ [][]any) ([]any, error) {
		return []any{true}, nil
	}
	sc.Functions["false"] = func(_ *DynamicContext, _ [][]any) ([]any, error) {
		return []any{false}, nil
	}
	sc.Functions["not"] = func(ctx *DynamicContext, args [][]any) ([]any, error) {
		items, err := requireArgs(args, 1)
		if err != nil {
			return nil, err
		}
		b, err := effectiveBoolean(fromSlice(items[0]))
		if err != nil {
			return nil, err
		}
		return []any{!b}, nil
	}
	sc.Functions["boolean"] = func(ctx *DynamicContext, args [][]any) ([]any, error) {
		items, err := requireArgs(args, 1)
		if err != nil {
			return nil, err
		}
		b, err := effectiveBoolean(fromSlice(items[0]))
		if err != nil {
			return nil, err
		}
		return []any{b}, nil
	}
	sc.Functions["string"] = func(ctx *DynamicContext, args [][]any) ([]any, error) {
		item, err := argOrContext(ctx, args)
		if err != nil {
			return nil, err
		}
		return []any{toStringValue(item)}, nil
	}
	sc.Functions["number"] = func(ctx *DynamicContext, args [][]any) ([]any, error) {
		item, err := argOrContext(ctx, args)
		if err != nil {
			return nil, err
		}
		n, err := toNumber(atomizeForCompare(item))
		if err != nil {
			return nil, err
		}
		return []any{n}, nil
	}
	sc.Functions["name"] = func(ctx *DynamicContext, args [][]any) ([]any, error) {
		item, err := argOrContext(ctx, args)
		if err != nil {
			return nil, err
		}
		n, ok := item.(Node)
		if !ok {
			return nil, typeErrorf("name() requires a node argument, got %T", item)
		}
		return []any{n.Name()}, nil
	}
	sc.Functions["local-name"] = sc.Functions["name"]

	sc.Functions["string-length"] = func(ctx *DynamicContext, args [][]any) ([]any, error) {
		item, err := argOrContext(ctx, args)
		if err != nil {
			return nil, err
		}
		return []any{int64(len(toStringValue(item)))}, nil
	}
	sc.Functions["concat"] = func(_ *DynamicContext, args [][]any) ([]any, error) {
		var b strings.Builder
		for _, a := range args {
			if len(a) != 1 {
				return nil, typeErrorf("concat() arguments must be singletons")
			}
			b.WriteString(toStringValue(atomizeForCompare(a[0])))
		}
		return []any{b.String()}, nil
	}
	sc.Functions["contains"] = stringPredicate(strings.Contains)
	sc.Functions["starts-with"] = stringPredicate(strings.HasPrefix)
	sc.Functions["ends-with"] = stringPredicate(strings.HasSuffix)
	sc.Functions["substring"] = func(_ *DynamicContext, args [][]any) ([]any, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, typeErrorf("substring() takes 2 or 3 arguments")
		}
		s := toStringValue(atomizeForCompare(singleton(args[0])))
		start, err := toNumber(atomizeForCompare(singleton(args[1])))
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		from := int(start) - 1
		length := len(runes) - from
		if len(args) == 3 {
			l, err := toNumber(atomizeForCompare(singleton(args[2])))
			if err != nil {
				return nil, err
			}
			length = int(l)
		}
		if from < 0 {
			length += from
			from = 0
		}
		if from >= len(runes) || length <= 0 {
			return []any{""}, nil
		}
		end := from + length
		if end > len(runes) {
			end = len(runes)
		}
		return []any{string(runes[from:end])}, nil
	}

	sc.Functions["count"] = func(_ *DynamicContext, args [][]any) ([]any, error) {
		items, err := requireArgs(args, 1)
		if err != nil {
			return nil, err
		}
		return []any{int64(len(items[0]))}, nil
	}
	sc.Functions["sum"] = func(_ *DynamicContext, args [][]any) ([]any, error) {
		items, err := requireArgs(args, 1)
		if err != nil {
			return nil, err
		}
		var total float64
		for _, item := range items[0] {
			n, err := toNumber(atomizeForCompare(item))
			if err != nil {
				return nil, err
			}
			total += n
		}
		return []any{total}, nil
	}
	sc.Functions["position"] = func(ctx *DynamicContext, _ [][]any) ([]any, error) {
		if !ctx.HasItem {
			return nil, newError(CodeMissingContext, -1, "position() requires a context item")
		}
		return []any{int64(ctx.Position)}, nil
	}
	sc.Functions["last"] = func(ctx *DynamicContext, _ [][]any) ([]any, error) {
		if !ctx.HasItem {
			return nil, newError(CodeMissingContext, -1, "last() requires a context item")
		}
		return []any{int64(ctx.Size)}, nil
	}
}

func requireArgs(args [][]any, n int) ([][]any, error) {
	if len(args) != n {
		return nil, typeErrorf("function expects %d argument(s), got %d", n, len(args))
	}
	return args, nil
}

func singleton(items []any) any {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func argOrContext(ctx *DynamicContext, args [][]any) (any, error) {
	if len(args) == 0 {
		return ctx.requireItem()
	}
	if len(args) != 1 || len(args[0]) != 1 {
		return nil, typeErrorf("expected a single argument")
	}
	return args[0][0], nil
}

func stringPredicate(f func(s, substr string) bool) Function {
	return func(_ *DynamicContext, args [][]any) ([]any, error) {
		items, err := requireArgs(args, 2)
		if err != nil {
			return nil, err
		}
		s := toStringValue(atomizeForCompare(singleton(items[0])))
		sub := toStringValue(atomizeForCompare(singleton(items[1])))
		return []any{f(s, sub)}, nil
	}
}
