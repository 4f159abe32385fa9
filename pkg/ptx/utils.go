package ptx

import (
	"encoding/json"
	"strconv"
)

// boolToInt converts a bool to int (true=1, false=0)
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// asInt64 extracts an integral number from a decoded reply element.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		if float32(int64(n)) != n {
			return 0, false
		}
		return int64(n), true
	case float64:
		if float64(int64(n)) != n {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// flagValue interprets one element of a batched get_prop reply.
func flagValue(v any) Value {
	if b, ok := v.(bool); ok {
		return BoolValue(b)
	}
	if n, ok := asInt64(v); ok {
		return BoolValue(n != 0)
	}
	return Unknown()
}

// nameValue interprets the first element of a name get_prop reply.
func nameValue(v any) Value {
	if s, ok := v.(string); ok {
		return TextValue(s)
	}
	return Unknown()
}

// isConfirmation reports whether a reply element is the 0/1 acknowledgement
// the switch sends after a command.
func isConfirmation(v any) bool {
	if _, ok := v.(bool); ok {
		return false
	}
	n, ok := asInt64(v)
	return ok && (n == 0 || n == 1)
}
