package query

// Truncate replaces every array or object nested depth or more levels below
// v with nil. Scalars are kept at any level. A depth of 0 disables truncation.
// The input is never modified; containers on the kept levels are copied.
func Truncate(v any, depth int) any {
	if depth <= 0 {
		return v
	}

	return truncate(v, depth, 0)
}

func truncate(v any, maxDepth, cur int) any {
	switch t := v.(type) {
	case map[string]any:
		if cur >= maxDepth {
			return nil
		}

		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = truncate(child, maxDepth, cur+1)
		}

		return out
	case []any:
		if cur >= maxDepth {
			return nil
		}

		out := make([]any, len(t))
		for i, child := range t {
			out[i] = truncate(child, maxDepth, cur+1)
		}

		return out
	default:
		return v
	}
}
