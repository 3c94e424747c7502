package utils

import "fmt"

// ToStringSlice converts a decoded JSON array to strings. Elements that are
// not strings are dropped; a bare string becomes a one element slice.
func ToStringSlice(v any) []string {
	switch vals := v.(type) {
	case nil:
		return nil
	case string:
		return []string{vals}
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, e := range vals {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(vals)}
	}
}
