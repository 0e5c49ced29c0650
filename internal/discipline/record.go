package discipline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Bookkeeping keys stamped by the lifecycle manager.
const (
	KeyID        = "id"
	KeyCreatedAt = "createdAt"
	KeyUpdatedAt = "updatedAt"
)

// Record is one flat case record keyed by field name. Values are strings
// or booleans once normalized; inbound payloads may carry any JSON scalar.
type Record map[string]any

// Clone returns a shallow copy. Values are scalars so this is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Text returns the value of key rendered as a string ("" when absent).
func (r Record) Text(key string) string {
	return valueText(r[key])
}

// Bool reports whether the value of key is truthy.
func (r Record) Bool(key string) bool {
	return truthy(r[key])
}

// Has reports whether key is present with a non-empty value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return strings.TrimSpace(valueText(v)) != ""
}

// ID returns the record id.
func (r Record) ID() string { return r.Text(KeyID) }

func valueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "yes"
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return false
	}
}
