package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

/* Node represents a single field in a payload schema.
 * A node carries exactly one of three value sources: a static value,
 * a dynamic field key resolved per prospect, or nested object properties.
 */

// FieldKey identifies a dynamic field that maps to prospect data.
type FieldKey string

const (
	FirstName FieldKey = "firstName"
	LastName  FieldKey = "lastName"
	Email     FieldKey = "email"
	Phone     FieldKey = "phone"
)

// DefaultFieldKeys returns the built-in set of recognized dynamic keys.
func DefaultFieldKeys() []FieldKey {
	return []FieldKey{FirstName, LastName, Email, Phone}
}

// Kind discriminates the three node forms.
type Kind int

const (
	KindStatic Kind = iota + 1
	KindDynamic
	KindObject
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is one field definition in a payload schema.
type Node struct {
	// Type is the declared JSON type of the field ("string", "integer", "object", ...).
	Type string

	// Static holds the literal value for static nodes. A static node may
	// legitimately carry a null value, so presence is tracked separately.
	Static    any
	hasStatic bool

	// Dynamic names the prospect field this node resolves from.
	Dynamic FieldKey

	// Properties holds the ordered children of an object node.
	Properties Properties
}

// StaticNode builds a static node carrying the given value.
func StaticNode(typ string, value any) Node {
	return Node{Type: typ, Static: value, hasStatic: true}
}

// DynamicNode builds a dynamic node resolving the given field key.
func DynamicNode(typ string, key FieldKey) Node {
	return Node{Type: typ, Dynamic: key}
}

// ObjectNode builds an object node with the given ordered children.
func ObjectNode(properties Properties) Node {
	return Node{Type: "object", Properties: properties}
}

// Kind returns the node form. Dynamic wins over object wins over static,
// mirroring how templates are authored; Validate rejects ambiguous nodes.
func (n Node) Kind() Kind {
	switch {
	case n.Dynamic != "":
		return KindDynamic
	case n.Properties != nil:
		return KindObject
	default:
		return KindStatic
	}
}

// Validate checks the one-form-per-node invariant.
func (n Node) Validate() error {
	forms := 0
	if n.hasStatic {
		forms++
	}
	if n.Dynamic != "" {
		forms++
	}
	if n.Properties != nil {
		forms++
	}
	if forms > 1 {
		return fmt.Errorf("node declares %d value sources, want at most one", forms)
	}
	if n.Properties != nil {
		for _, p := range n.Properties {
			if err := p.Node.Validate(); err != nil {
				return fmt.Errorf("property %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// ValidateKeys checks every dynamic key in the subtree against the allowed set.
func (n Node) ValidateKeys(allowed map[FieldKey]struct{}) error {
	switch n.Kind() {
	case KindDynamic:
		if _, ok := allowed[n.Dynamic]; !ok {
			return fmt.Errorf("unrecognized dynamic field key: %q", n.Dynamic)
		}
	case KindObject:
		for _, p := range n.Properties {
			if err := p.Node.ValidateKeys(allowed); err != nil {
				return fmt.Errorf("property %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// nodeJSON is the wire representation of a node.
type nodeJSON struct {
	// Static is a non-pointer RawMessage: a JSON null decodes to the raw
	// bytes "null" while an absent member stays nil, which is how a static
	// null stays distinguishable from no static value at all.
	Type       string          `json:"type"`
	Static     json.RawMessage `json:"static,omitempty"`
	Dynamic    string          `json:"dynamic,omitempty"`
	Properties *Properties     `json:"properties,omitempty"`
}

// UnmarshalJSON parses the {"type": ..., "static"|"dynamic"|"properties": ...} format.
func (n *Node) UnmarshalJSON(data []byte) error {
	var aux nodeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshaling schema node: %w", err)
	}

	n.Type = aux.Type
	n.Dynamic = FieldKey(aux.Dynamic)
	n.hasStatic = false
	n.Static = nil
	n.Properties = nil

	if aux.Static != nil {
		n.hasStatic = true
		dec := json.NewDecoder(bytes.NewReader(aux.Static))
		dec.UseNumber()
		if err := dec.Decode(&n.Static); err != nil {
			return fmt.Errorf("unmarshaling static value: %w", err)
		}
	}
	if aux.Properties != nil {
		n.Properties = *aux.Properties
	}

	return nil
}

// MarshalJSON returns the wire representation of the node.
func (n Node) MarshalJSON() ([]byte, error) {
	aux := nodeJSON{Type: n.Type, Dynamic: string(n.Dynamic)}
	if n.hasStatic {
		raw, err := json.Marshal(n.Static)
		if err != nil {
			return nil, fmt.Errorf("marshaling static value: %w", err)
		}
		aux.Static = json.RawMessage(raw)
	}
	if n.Properties != nil {
		aux.Properties = &n.Properties
	}
	return json.Marshal(aux)
}

// Property is a named child of an object node.
type Property struct {
	Name string
	Node Node
}

/* Properties is an ordered list of object children.
 * JSON objects do not contractually preserve member order, but reproducible
 * test fixtures depend on it, so parsing and serialization both keep the
 * order in which properties appear.
 */
type Properties []Property

// UnmarshalJSON decodes a JSON object into properties, preserving member order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading properties: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties must be a JSON object, got %v", tok)
	}

	out := Properties{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading property name: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("property name must be a string, got %v", keyTok)
		}

		var node Node
		if err := dec.Decode(&node); err != nil {
			return fmt.Errorf("decoding property %q: %w", name, err)
		}
		out = append(out, Property{Name: name, Node: node})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading properties close: %w", err)
	}

	*p = out
	return nil
}

// MarshalJSON encodes the properties as a JSON object in insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, fmt.Errorf("marshaling property name %q: %w", prop.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		node, err := json.Marshal(prop.Node)
		if err != nil {
			return nil, fmt.Errorf("marshaling property %q: %w", prop.Name, err)
		}
		buf.Write(node)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the named property.
func (p Properties) Get(name string) (Node, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Node, true
		}
	}
	return Node{}, false
}
