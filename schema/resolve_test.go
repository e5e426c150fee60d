package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("success - nested template resolves in order", func(t *testing.T) {
		node := ObjectNode(Properties{
			{Name: "name", Node: DynamicNode("string", FirstName)},
			{Name: "meta", Node: ObjectNode(Properties{
				{Name: "src", Node: StaticNode("string", "test")},
			})},
		})

		value, err := Resolve(node, map[string]any{"firstName": "Ann"})
		require.NoError(t, err)

		data, err := json.Marshal(value)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Ann","meta":{"src":"test"}}`, string(data))
	})

	t.Run("success - resolution is deterministic", func(t *testing.T) {
		node := ObjectNode(Properties{
			{Name: "c", Node: StaticNode("string", "1")},
			{Name: "a", Node: StaticNode("string", "2")},
			{Name: "b", Node: DynamicNode("string", Email)},
		})
		subs := map[string]any{"email": "x@example.com"}

		first, err := Resolve(node, subs)
		require.NoError(t, err)
		firstJSON, err := json.Marshal(first)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			again, err := Resolve(node, subs)
			require.NoError(t, err)
			againJSON, err := json.Marshal(again)
			require.NoError(t, err)
			assert.Equal(t, string(firstJSON), string(againJSON))
		}
		assert.Equal(t, `{"c":"1","a":"2","b":"x@example.com"}`, string(firstJSON))
	})

	t.Run("success - static values pass through unchanged", func(t *testing.T) {
		value, err := Resolve(StaticNode("integer", json.Number("42")), nil)
		require.NoError(t, err)
		assert.Equal(t, json.Number("42"), value)
	})

	t.Run("success - static null is preserved", func(t *testing.T) {
		value, err := Resolve(StaticNode("string", nil), nil)
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("error - missing substitution fails the whole payload", func(t *testing.T) {
		node := ObjectNode(Properties{
			{Name: "name", Node: DynamicNode("string", FirstName)},
			{Name: "mail", Node: DynamicNode("string", Email)},
		})

		_, err := Resolve(node, map[string]any{"firstName": "Ann"})
		require.Error(t, err)

		var missing *MissingSubstitutionError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "email", missing.Key)
	})

	t.Run("error - nested missing substitution names the property path", func(t *testing.T) {
		node := ObjectNode(Properties{
			{Name: "contact", Node: ObjectNode(Properties{
				{Name: "phone", Node: DynamicNode("string", Phone)},
			})},
		})

		_, err := Resolve(node, map[string]any{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contact")
	})
}

func TestNodeValidate(t *testing.T) {
	t.Run("success - each single form is valid", func(t *testing.T) {
		assert.NoError(t, StaticNode("string", "x").Validate())
		assert.NoError(t, DynamicNode("string", FirstName).Validate())
		assert.NoError(t, ObjectNode(Properties{}).Validate())
	})

	t.Run("error - node with two value sources", func(t *testing.T) {
		node := StaticNode("string", "x")
		node.Dynamic = FirstName
		require.Error(t, node.Validate())
	})

	t.Run("error - invalid child is reported with its name", func(t *testing.T) {
		bad := StaticNode("string", "x")
		bad.Dynamic = Email
		node := ObjectNode(Properties{{Name: "inner", Node: bad}})

		err := node.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inner")
	})
}

func TestNodeValidateKeys(t *testing.T) {
	allowed := map[FieldKey]struct{}{FirstName: {}, Email: {}}

	t.Run("success - known keys", func(t *testing.T) {
		node := ObjectNode(Properties{
			{Name: "name", Node: DynamicNode("string", FirstName)},
		})
		assert.NoError(t, node.ValidateKeys(allowed))
	})

	t.Run("error - unknown key", func(t *testing.T) {
		node := ObjectNode(Properties{
			{Name: "phone", Node: DynamicNode("string", Phone)},
		})
		err := node.ValidateKeys(allowed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "phone")
	})
}
