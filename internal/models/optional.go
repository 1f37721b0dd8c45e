package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OptionalInt is an integer that may be absent. The zero value is unset.
//
// Parse-or-omit rule: null, an empty or blank string, and any text that is not
// an integer decode to unset. Integral JSON numbers and integer strings are set.
type OptionalInt struct {
	value int
	set   bool
}

// SomeInt returns a set OptionalInt holding v.
func SomeInt(v int) OptionalInt {
	return OptionalInt{value: v, set: true}
}

// ParseOptionalInt applies the parse-or-omit rule to form text.
func ParseOptionalInt(s string) OptionalInt {
	s = strings.TrimSpace(s)
	if s == "" {
		return OptionalInt{}
	}
	if v, err := strconv.Atoi(s); err == nil {
		return SomeInt(v)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromFloat(f)
	}
	return OptionalInt{}
}

// IsSet reports whether a value is present.
func (o OptionalInt) IsSet() bool { return o.set }

// Get returns the value and whether it is present.
func (o OptionalInt) Get() (int, bool) { return o.value, o.set }

// Ptr returns a pointer to a copy of the value, or nil when unset.
func (o OptionalInt) Ptr() *int {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// String renders the value for a form field; unset renders empty.
func (o OptionalInt) String() string {
	if !o.set {
		return ""
	}
	return strconv.Itoa(o.value)
}

// OptionalIntFrom converts a nullable pointer.
func OptionalIntFrom(p *int) OptionalInt {
	if p == nil {
		return OptionalInt{}
	}
	return SomeInt(*p)
}

// MarshalJSON encodes a set value as a number and unset as null.
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.value)), nil
}

// UnmarshalJSON accepts a number, a numeric string, or null.
// Anything it cannot read as an integer leaves the value unset.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = ParseOptionalInt(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// booleans, objects, arrays: omit
		return nil
	}
	if v, err := n.Int64(); err == nil {
		if v >= math.MinInt && v <= math.MaxInt {
			*o = SomeInt(int(v))
		}
		return nil
	}
	if f, err := n.Float64(); err == nil {
		*o = fromFloat(f)
	}
	return nil
}

// UnmarshalYAML applies the same rules to a YAML scalar; other node kinds are omitted.
func (o *OptionalInt) UnmarshalYAML(node *yaml.Node) error {
	*o = OptionalInt{}
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return nil
	}
	*o = ParseOptionalInt(node.Value)
	return nil
}

func fromFloat(f float64) OptionalInt {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return OptionalInt{}
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return OptionalInt{}
	}
	return SomeInt(int(f))
}
