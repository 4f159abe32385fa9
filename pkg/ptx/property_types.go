package ptx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PropertyName is a device property as named in get_prop requests.
type PropertyName string

const (
	flagPrefix = "is_on_"
	namePrefix = "switchname"
)

// FlagProperty returns the on/off property for channel i.
func FlagProperty(i int) PropertyName {
	return PropertyName(fmt.Sprintf("%s%d", flagPrefix, i))
}

// NameProperty returns the display-name property for channel i.
func NameProperty(i int) PropertyName {
	return PropertyName(fmt.Sprintf("%s%d", namePrefix, i))
}

// IsFlag reports whether p is an on/off flag property.
func (p PropertyName) IsFlag() bool {
	return strings.HasPrefix(string(p), flagPrefix)
}

// IsName reports whether p is a channel name property.
func (p PropertyName) IsName() bool {
	return strings.HasPrefix(string(p), namePrefix)
}

// Channel returns the channel index encoded in the property, or 0.
func (p PropertyName) Channel() int {
	var suffix string
	switch {
	case p.IsFlag():
		suffix = strings.TrimPrefix(string(p), flagPrefix)
	case p.IsName():
		suffix = strings.TrimPrefix(string(p), namePrefix)
	default:
		return 0
	}
	i, err := strconv.Atoi(suffix)
	if err != nil || i < 1 {
		return 0
	}
	return i
}

func (p PropertyName) String() string {
	return string(p)
}

type valueKind uint8

const (
	kindUnknown valueKind = iota
	kindBool
	kindText
)

// Value is a property value as read from the device. The zero Value is unknown.
type Value struct {
	kind valueKind
	b    bool
	s    string
}

// Unknown returns a value that could not be determined.
func Unknown() Value {
	return Value{}
}

// BoolValue wraps an on/off reading.
func BoolValue(b bool) Value {
	return Value{kind: kindBool, b: b}
}

// TextValue wraps a text reading.
func TextValue(s string) Value {
	return Value{kind: kindText, s: s}
}

// IsUnknown reports whether the value carries no reading.
func (v Value) IsUnknown() bool {
	return v.kind == kindUnknown
}

// Bool returns the boolean and whether the value holds one.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == kindBool
}

// Text returns the string and whether the value holds one.
func (v Value) Text() (string, bool) {
	return v.s, v.kind == kindText
}

func (v Value) String() string {
	switch v.kind {
	case kindBool:
		return strconv.FormatBool(v.b)
	case kindText:
		return v.s
	default:
		return "unknown"
	}
}

// MarshalJSON encodes unknown as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindBool:
		return json.Marshal(v.b)
	case kindText:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// State is the tri-state on/off reading of a channel.
type State int8

const (
	StateUnknown State = iota
	StateOff
	StateOn
)

// StateOf converts a bool into a known State.
func StateOf(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// Known reports whether the state is on or off.
func (s State) Known() bool {
	return s == StateOn || s == StateOff
}

// Bool returns the on/off value and whether it is known.
func (s State) Bool() (bool, bool) {
	return s == StateOn, s.Known()
}

func (s State) String() string {
	switch s {
	case StateOn:
		return "on"
	case StateOff:
		return "off"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state as true, false or null.
func (s State) MarshalJSON() ([]byte, error) {
	switch s {
	case StateOn:
		return []byte("true"), nil
	case StateOff:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (s *State) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*s = StateOn
	case "false":
		*s = StateOff
	case "null":
		*s = StateUnknown
	default:
		return fmt.Errorf("invalid state %s", data)
	}
	return nil
}
