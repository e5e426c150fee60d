package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

/* OrderedObject is a JSON object whose members serialize in insertion order.
 * Resolved payloads use it instead of map[string]any so two runs over the
 * same template produce byte-identical documents.
 */
type OrderedObject []Member

// Member is one named value of an ordered object.
type Member struct {
	Name  string
	Value any
}

// MarshalJSON encodes the object with members in insertion order.
func (o OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(m.Name)
		if err != nil {
			return nil, fmt.Errorf("marshaling member name %q: %w", m.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("marshaling member %q: %w", m.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving member order.
func (o *OrderedObject) UnmarshalJSON(data []byte) error {
	v, err := DecodeOrdered(data)
	if err != nil {
		return err
	}
	obj, ok := v.(OrderedObject)
	if !ok {
		return fmt.Errorf("expected a JSON object, got %T", v)
	}
	*o = obj
	return nil
}

// Get returns the named member value.
func (o OrderedObject) Get(name string) (any, bool) {
	for _, m := range o {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// GetString returns the named member as a string, empty when absent or non-string.
func (o OrderedObject) GetString(name string) string {
	v, ok := o.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Has reports whether the named member exists.
func (o OrderedObject) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// DecodeOrdered decodes arbitrary JSON, representing objects as OrderedObject
// and numbers as json.Number so re-serialization is order- and digit-stable.
func DecodeOrdered(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeOrderedValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

func decodeOrderedValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading JSON token: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}

	switch delim {
	case '{':
		obj := OrderedObject{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("reading object key: %w", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
			}
			value, err := decodeOrderedValue(dec)
			if err != nil {
				return nil, fmt.Errorf("decoding member %q: %w", key, err)
			}
			obj = append(obj, Member{Name: key, Value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("reading object close: %w", err)
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			value, err := decodeOrderedValue(dec)
			if err != nil {
				return nil, fmt.Errorf("decoding array element: %w", err)
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("reading array close: %w", err)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
