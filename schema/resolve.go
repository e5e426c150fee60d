package schema

import "fmt"

/* Resolution turns a node tree into a concrete, JSON-serializable value.
 * It is a pure function of the node and the substitution map and is safe
 * to call concurrently.
 */

// MissingSubstitutionError reports a dynamic key with no substitution value.
// Resolution is strict on purpose: silently emitting null hides drift between
// a template and the substitution set until a downstream system rejects it.
type MissingSubstitutionError struct {
	Key string
}

func (e *MissingSubstitutionError) Error() string {
	return fmt.Sprintf("no substitution value for dynamic key %q", e.Key)
}

// Resolve produces the value for a node given the substitution map.
//
// Static nodes return their value unchanged, dynamic nodes look up their key,
// object nodes resolve every child into an OrderedObject preserving the
// template's property order.
func Resolve(node Node, substitutions map[string]any) (any, error) {
	switch node.Kind() {
	case KindDynamic:
		value, ok := substitutions[string(node.Dynamic)]
		if !ok {
			return nil, &MissingSubstitutionError{Key: string(node.Dynamic)}
		}
		return value, nil
	case KindObject:
		out := make(OrderedObject, 0, len(node.Properties))
		for _, p := range node.Properties {
			value, err := Resolve(p.Node, substitutions)
			if err != nil {
				return nil, fmt.Errorf("resolving property %q: %w", p.Name, err)
			}
			out = append(out, Member{Name: p.Name, Value: value})
		}
		return out, nil
	default:
		return node.Static, nil
	}
}
