package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the closed set of payload value types.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
)

// Value is a single submitted payload value. Submissions are untyped JSON,
// but only scalars are accepted: string, number, bool, or null. Arrays and
// objects are rejected at decode time.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// Payload maps field names to submitted values. It is persisted as a JSON
// document, so field names (not field IDs) are the stable keys.
type Payload map[string]Value

// StringValue builds a string Value.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// NumberValue builds a numeric Value.
func NumberValue(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

// BoolValue builds a boolean Value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// NullValue builds a null Value.
func NullValue() Value { return Value{Kind: ValueNull} }

// IsEmpty reports whether the value should be treated as absent by
// required-field checks: null, or a string that is empty after trimming.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case ValueNull:
		return true
	case ValueString:
		return strings.TrimSpace(v.Str) == ""
	default:
		return false
	}
}

// Display renders the value for human-facing output.
func (v Value) Display() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// MarshalJSON encodes the value as the underlying JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueNumber:
		return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
	case ValueBool:
		return []byte(strconv.FormatBool(v.Bool)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar into the value. Arrays and objects
// are not valid payload values.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return fmt.Errorf("empty payload value")
	}
	switch {
	case s == "null":
		*v = Value{Kind: ValueNull}
		return nil
	case s == "true":
		*v = Value{Kind: ValueBool, Bool: true}
		return nil
	case s == "false":
		*v = Value{Kind: ValueBool, Bool: false}
		return nil
	case s[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid string payload value: %w", err)
		}
		*v = Value{Kind: ValueString, Str: str}
		return nil
	case s[0] == '[' || s[0] == '{':
		return fmt.Errorf("unsupported payload value type: arrays and objects are not allowed")
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric payload value %q: %w", s, err)
		}
		*v = Value{Kind: ValueNumber, Num: n}
		return nil
	}
}
