package bonzo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAssignment(t *testing.T) {
	prospect := Prospect{
		ID:               1,
		BusinessEntityID: 42,
		AssignedTo:       123,
		AssignedUser:     AssignedUser{ID: 123, Email: "owner@example.test"},
	}

	t.Run("all checks pass", func(t *testing.T) {
		result := ValidateAssignment(prospect, "owner@example.test", 123, 42)
		assert.True(t, result.AllMatch())
	})

	t.Run("wrong email fails only the email check", func(t *testing.T) {
		result := ValidateAssignment(prospect, "other@example.test", 123, 42)
		assert.False(t, result.UserEmailMatch)
		assert.True(t, result.UserIDMatch)
		assert.True(t, result.TeamIDMatch)
		assert.True(t, result.AssignedToMatch)
		assert.False(t, result.AllMatch())
	})

	t.Run("mismatched assigned_to is caught independently of assigned_user", func(t *testing.T) {
		crossed := prospect
		crossed.AssignedTo = 999

		result := ValidateAssignment(crossed, "owner@example.test", 123, 42)
		assert.True(t, result.UserIDMatch)
		assert.False(t, result.AssignedToMatch)
	})

	t.Run("wrong team fails the team check", func(t *testing.T) {
		result := ValidateAssignment(prospect, "owner@example.test", 123, 7)
		assert.False(t, result.TeamIDMatch)
	})
}
