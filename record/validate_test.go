package record

import (
	"testing"

	"github.com/VindiceCode/bonzobuddy/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecord(id, firstName, email string) Record {
	return Record{
		RecordID: id,
		Payload: schema.OrderedObject{
			{Name: "first_name", Value: firstName},
			{Name: "email", Value: email},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("success - clean record set", func(t *testing.T) {
		records := []Record{
			makeRecord("run_001", "TestRecord_001", "a@example.test"),
			makeRecord("run_002", "TestRecord_002", "b@example.test"),
		}
		assert.Empty(t, Validate(records, 2))
	})

	t.Run("reports count mismatch", func(t *testing.T) {
		records := []Record{makeRecord("run_001", "x", "a@example.test")}
		errs := Validate(records, 3)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "expected 3 records, got 1")
	})

	t.Run("reports duplicate record ids and emails", func(t *testing.T) {
		records := []Record{
			makeRecord("run_001", "x", "same@example.test"),
			makeRecord("run_001", "y", "same@example.test"),
		}
		errs := Validate(records, 2)
		require.Len(t, errs, 2)
		assert.Contains(t, errs[0], "duplicate record_id")
		assert.Contains(t, errs[1], "duplicate email")
	})

	t.Run("reports every problem at once", func(t *testing.T) {
		records := []Record{
			{RecordID: "run_001", Payload: schema.OrderedObject{}},
		}
		errs := Validate(records, 2)
		// count mismatch, missing first_name, missing email
		assert.Len(t, errs, 3)
	})

	t.Run("accepts lo_email in place of email", func(t *testing.T) {
		records := []Record{{
			RecordID: "run_001",
			Payload: schema.OrderedObject{
				{Name: "first_name", Value: "x"},
				{Name: "lo_email", Value: "lo@example.test"},
			},
		}}
		assert.Empty(t, Validate(records, 1))
	})

	t.Run("reports empty user_id string", func(t *testing.T) {
		records := []Record{{
			RecordID: "run_001",
			Payload: schema.OrderedObject{
				{Name: "first_name", Value: "x"},
				{Name: "email", Value: "a@example.test"},
				{Name: "user_id", Value: ""},
			},
		}}
		errs := Validate(records, 1)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "missing user_id")
	})
}
