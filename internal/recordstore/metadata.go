package recordstore

// Metadata value accessors. Backing stores do not preserve Go numeric
// types exactly: JSON decoding yields float64, Qdrant payloads yield
// int64. These helpers normalize so domain code can map metadata onto
// typed structs without caring which backend produced it.

// MetaString returns the string stored at key, or "" when absent or not a
// string.
func MetaString(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

// MetaInt returns the integer stored at key, tolerating the numeric type
// drift introduced by JSON and payload round trips.
func MetaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

// MetaFloat returns the float stored at key.
func MetaFloat(meta map[string]any, key string) float64 {
	switch v := meta[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// valueEqual reports whether a stored metadata value matches a filter
// value, normalizing numeric types the same way the accessors do.
func valueEqual(stored, want any) bool {
	if stored == want {
		return true
	}
	sf, sok := asFloat(stored)
	wf, wok := asFloat(want)
	if sok && wok {
		return sf == wf
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
