package bonzo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prospectJSON(id int, firstName, fullName string, assignedTo int) string {
	return fmt.Sprintf(`{
		"id": %d,
		"business_entity_id": 42,
		"first_name": %q,
		"last_name": "Test",
		"full_name": %q,
		"source": "integration-test",
		"email": "p%d@example.test",
		"assigned_to": %d,
		"assigned_user": {"id": %d, "email": "owner@example.test"},
		"created_at": "2026-08-30T10:00:00Z",
		"updated_at": "2026-08-30T10:00:00Z",
		"business": {}
	}`, id, firstName, fullName, id, assignedTo, assignedTo)
}

func TestGetUserProspects(t *testing.T) {
	t.Run("success - sends bearer auth and impersonation header", func(t *testing.T) {
		var gotAuth, gotOnBehalfOf, gotLimit string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotOnBehalfOf = r.Header.Get("On-Behalf-Of")
			gotLimit = r.URL.Query().Get("limit")
			assert.Equal(t, "/api/v3/prospects", r.URL.Path)
			fmt.Fprintf(w, `{"data": [%s]}`, prospectJSON(1, "TestRecord_001", "TestRecord_001 Test", 123))
		}))
		defer server.Close()

		client := NewClient("secret-key", WithBaseURL(server.URL))
		prospects, err := client.GetUserProspects(context.Background(), 123, 50, "")
		require.NoError(t, err)

		require.Len(t, prospects, 1)
		assert.Equal(t, 1, prospects[0].ID)
		assert.Equal(t, 42, prospects[0].BusinessEntityID)
		assert.Equal(t, "Bearer secret-key", gotAuth)
		assert.Equal(t, "123", gotOnBehalfOf)
		assert.Equal(t, "50", gotLimit)
	})

	t.Run("success - zero user id omits the impersonation header", func(t *testing.T) {
		var hadHeader bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hadHeader = r.Header["On-Behalf-Of"]
			fmt.Fprint(w, `{"data": []}`)
		}))
		defer server.Close()

		client := NewClient("secret-key", WithBaseURL(server.URL))
		_, err := client.GetUserProspects(context.Background(), 0, 10, "")
		require.NoError(t, err)
		assert.False(t, hadHeader)
	})

	t.Run("success - limit defaults to 100 and created_after is forwarded", func(t *testing.T) {
		var gotQuery map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			fmt.Fprint(w, `{"data": []}`)
		}))
		defer server.Close()

		client := NewClient("secret-key", WithBaseURL(server.URL))
		_, err := client.GetUserProspects(context.Background(), 1, 0, "2026-08-30T00:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, []string{"100"}, gotQuery["limit"])
		assert.Equal(t, []string{"2026-08-30T00:00:00Z"}, gotQuery["created_after"])
	})

	t.Run("success - prospect missing a required field is dropped", func(t *testing.T) {
		incomplete := `{"id": 2, "first_name": "NoOtherFields"}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data": [%s, %s]}`,
				prospectJSON(1, "TestRecord_001", "TestRecord_001 Test", 123), incomplete)
		}))
		defer server.Close()

		client := NewClient("secret-key", WithBaseURL(server.URL))
		prospects, err := client.GetUserProspects(context.Background(), 123, 10, "")
		require.NoError(t, err)
		require.Len(t, prospects, 1)
		assert.Equal(t, 1, prospects[0].ID)
	})

	t.Run("error - api status with parsed message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "invalid credentials"}`)
		}))
		defer server.Close()

		client := NewClient("bad-key", WithBaseURL(server.URL))
		_, err := client.GetUserProspects(context.Background(), 1, 10, "")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "invalid credentials", apiErr.Message)
	})

	t.Run("error - transport failure has status code zero", func(t *testing.T) {
		client := NewClient("key", WithBaseURL("http://127.0.0.1:1"))
		_, err := client.GetUserProspects(context.Background(), 1, 10, "")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 0, apiErr.StatusCode)
	})
}

func TestParseErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", parseErrorMessage([]byte(`{"message": "nope"}`)))
	assert.Equal(t, "denied", parseErrorMessage([]byte(`{"error": "denied"}`)))
	assert.Equal(t, "plain text", parseErrorMessage([]byte(" plain text \n")))
}

func TestFindTestProspects(t *testing.T) {
	t.Run("success - matches any name field case-insensitively", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data": [%s, %s, %s]}`,
				prospectJSON(1, "testrecord_001", "testrecord_001 Test", 123),
				prospectJSON(2, "Jane", "Jane TESTRECORD", 123),
				prospectJSON(3, "Unrelated", "Unrelated Person", 123))
		}))
		defer server.Close()

		client := NewClient("key", WithBaseURL(server.URL))
		matches, err := client.FindTestProspects(context.Background(), 123, "TestRecord", "")
		require.NoError(t, err)

		require.Len(t, matches, 2)
		assert.Equal(t, 1, matches[0].ID)
		assert.Equal(t, 2, matches[1].ID)
	})

	t.Run("success - no matches yields an empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data": [%s]}`, prospectJSON(1, "Real", "Real Person", 9))
		}))
		defer server.Close()

		client := NewClient("key", WithBaseURL(server.URL))
		matches, err := client.FindTestProspects(context.Background(), 9, "TestRecord", "")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestAPIError(t *testing.T) {
	withStatus := &APIError{StatusCode: 422, Message: "unprocessable"}
	assert.Contains(t, withStatus.Error(), "status 422")
	assert.Contains(t, withStatus.Error(), "unprocessable")

	transport := &APIError{Message: "connection refused"}
	assert.Equal(t, "api request failed: connection refused", transport.Error())
}
