package ptx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is one snapshot of a switch's properties. It is never modified after
// construction, so it may be shared between goroutines.
type Status struct {
	model  Model
	keys   []PropertyName
	values map[PropertyName]Value
}

func newStatus(d Descriptor, values []Value) *Status {
	s := &Status{
		model:  d.Model,
		keys:   make([]PropertyName, len(d.Properties)),
		values: make(map[PropertyName]Value, len(d.Properties)),
	}
	copy(s.keys, d.Properties)
	for i, p := range d.Properties {
		if i < len(values) {
			s.values[p] = values[i]
		} else {
			s.values[p] = Unknown()
		}
	}
	return s
}

// Model returns the model the status was read for.
func (s *Status) Model() Model {
	return s.model
}

// Keys returns the property names in descriptor order.
func (s *Status) Keys() []PropertyName {
	out := make([]PropertyName, len(s.keys))
	copy(out, s.keys)
	return out
}

// Value returns the value of a property and whether the property is part of the record.
func (s *Status) Value(name PropertyName) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// IsOn returns the on/off state of channel i.
func (s *Status) IsOn(i int) State {
	if i < 1 || i > MaxChannels {
		return StateUnknown
	}
	v, ok := s.values[FlagProperty(i)]
	if !ok {
		return StateUnknown
	}
	b, ok := v.Bool()
	if !ok {
		return StateUnknown
	}
	return StateOf(b)
}

// SwitchName returns the display name of channel i.
func (s *Status) SwitchName(i int) (string, bool) {
	if i < 1 || i > MaxChannels {
		return "", false
	}
	v, ok := s.values[NameProperty(i)]
	if !ok {
		return "", false
	}
	return v.Text()
}

func (s *Status) String() string {
	var b strings.Builder
	for i := 1; i <= MaxChannels; i++ {
		fmt.Fprintf(&b, "Switch %d Status: %s\n", i, s.IsOn(i))
	}
	for i := 1; i <= MaxChannels; i++ {
		name, ok := s.SwitchName(i)
		if !ok {
			name = "unknown"
		}
		fmt.Fprintf(&b, "Switch %d Name: %s\n", i, name)
	}
	return b.String()
}

// MarshalJSON encodes the record as a property map, unknown values as null.
func (s *Status) MarshalJSON() ([]byte, error) {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[string(k)] = v
	}
	return json.Marshal(out)
}
