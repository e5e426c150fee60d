package schema

import (
	"fmt"
	"strings"
)

/* Legacy text-substitution mode for fixture templates.
 * The template is treated as text and every {key} placeholder is replaced
 * literally before the result is re-parsed as JSON.
 */

// Substitute replaces every {key} placeholder in the template with its value
// and re-parses the result, returning the resolved document decoded with
// order-preserving objects.
//
// Known limitation: if a substitution value itself contains {...}-shaped text
// that happens to match another key, or breaks the JSON syntax, the re-parse
// can corrupt or reject the payload. Callers get an error in the reject case;
// the corruption case is inherent to text substitution.
func Substitute(template []byte, values map[string]string) (OrderedObject, error) {
	text := string(template)
	for key, value := range values {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}

	resolved, err := DecodeOrdered([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("re-parsing substituted template: %w", err)
	}
	obj, ok := resolved.(OrderedObject)
	if !ok {
		return nil, fmt.Errorf("substituted template is not a JSON object")
	}
	return obj, nil
}
