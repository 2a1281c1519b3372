package xpath

// Seq is a lazy, pull-based item sequence (§4.F). Calling next returns the
// next item, false once exhausted, or an error that aborts iteration. A Seq
// value is single-use: callers that need to inspect an item and still
// iterate it again must go through peekOne, which returns a replacement Seq
// with the peeked item pushed back to the front.
type Seq func() (item any, ok bool, err error)

// fromSlice adapts an already-materialized slice into a Seq, the common
// case: every node-model adapter hands back []Node slices (§6.2), so axis
// candidates are rarely produced lazily in practice even though the
// evaluation pipeline above them is.
func fromSlice(items []any) Seq {
	i := 0
	return func() (any, bool, error) {
		if i >= len(items) {
			return nil, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	}
}

// materialise drains a Seq into a slice, per §4.F's materialisation
// operation. The `/` path operator's left-hand side must be materialized
// before its right-hand side runs (spec.md §4.E, §9.4); the other operators
// also materialise their operands through evalOperand.
func materialise(s Seq) ([]any, error) {
	var out []any
	for {
		item, ok, err := s()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}

// peekOne inspects the first item of s without losing it: it returns the
// item (if any) and a Seq that yields that same item first, then continues
// with whatever remained of s. Used by effectiveBoolean, which must look at
// one item before deciding whether a second one disqualifies the sequence
// from reducing to a boolean.
func peekOne(s Seq) (item any, ok bool, rest Seq, err error) {
	item, ok, err = s()
	if err != nil || !ok {
		return item, ok, s, err
	}
	consumed := false
	rest = func() (any, bool, error) {
		if !consumed {
			consumed = true
			return item, true, nil
		}
		return s()
	}
	return item, ok, rest, nil
}

// rescope wraps each item of s as a child DynamicContext of parent, with
// 1-based position and the given size. The size is stamped as passed: a
// negative size is not replaced by a computed count, so callers pass the
// length they already know (applyPredicate passes len(items)). This is
// pyopath/doer.py's enumerate_items, generalized beyond the child axis.
func rescope(parent *DynamicContext, s Seq, name string, size int) Seq {
	position := 0
	return func() (any, bool, error) {
		item, ok, err := s()
		if err != nil || !ok {
			return nil, false, err
		}
		position++
		return parent.withFocus(item, position, size, name), true, nil
	}
}

// effectiveBoolean computes the Effective Boolean Value of a sequence per
// §4.E / https://www.w3.org/TR/xpath-31/#id-ebv, mirroring
// pyopath/doer.py's effective_boolean: empty -> false; a node sequence (any
// length, first item a node) -> true; a singleton boolean/string/numeric ->
// its own truthiness; anything else -> a type error.
func effectiveBoolean(s Seq) (bool, error) {
	first, ok, rest, err := peekOne(s)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if _, isNode := first.(Node); isNode {
		return true, nil
	}

	// Advance past the first item and check there isn't a second.
	_, _, err = rest()
	if err != nil {
		return false, err
	}
	_, hasSecond, err := rest()
	if err != nil {
		return false, err
	}
	if hasSecond {
		return false, typeErrorf("cannot reduce a sequence of more than one item to an effective boolean value")
	}

	switch v := first.(type) {
	case bool:
		return v, nil
	case string:
		return v != "", nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0 && !isNaN(v), nil
	default:
		return false, typeErrorf("cannot reduce %T to an effective boolean value", first)
	}
}

func isNaN(f float64) bool { return f != f }
