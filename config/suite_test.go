package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuiteFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validSuiteYAML = `
test_name: hubspot smoke test
webhook_url: https://hooks.example.test/hubspot
superuser_api_key: sk-test
integration_type: hubspot
test_records: 10
distribution: even
processing_delay: 30
test_users:
  - name: User One
    email: user1@example.test
    user_id: 101
    team_id: 7
  - name: User Two
    email: user2@example.test
    user_id: 102
    team_id: 7
validation_rules:
  - field: source
    expected: integration-test
  - field: lo_email
    matches_lo_email: true
webhook_settings:
  timeout: 15
  retry_attempts: 2
  retry_delay: 3
  concurrent_requests: 4
test_data_settings:
  first_name_pattern: SmokeTest
  email_domain: example.test
`

func TestLoadSuite(t *testing.T) {
	t.Run("success - full suite file", func(t *testing.T) {
		suite, err := LoadSuite(writeSuiteFile(t, validSuiteYAML))
		require.NoError(t, err)

		assert.Equal(t, "hubspot smoke test", suite.TestName)
		assert.Equal(t, "https://hooks.example.test/hubspot", suite.WebhookURL)
		assert.Equal(t, "hubspot", suite.IntegrationType)
		assert.Equal(t, 10, suite.TestRecords)
		assert.Equal(t, 30*time.Second, suite.ProcessingDelay)

		require.Len(t, suite.TestUsers, 2)
		assert.Equal(t, 101, suite.TestUsers[0].UserID)
		assert.Equal(t, "user2@example.test", suite.TestUsers[1].Email)

		require.Len(t, suite.ValidationRules, 2)
		assert.True(t, suite.ValidationRules[1].MatchesLoEmail)

		assert.Equal(t, 15*time.Second, suite.Webhook.Timeout)
		assert.Equal(t, 2, suite.Webhook.RetryAttempts)
		assert.Equal(t, 4, suite.Webhook.ConcurrentRequests)

		assert.Equal(t, "SmokeTest", suite.TestData.FirstNamePattern)
		assert.Equal(t, "example.test", suite.TestData.EmailDomain)
	})

	t.Run("success - superuser webhook url defaults to webhook url", func(t *testing.T) {
		suite, err := LoadSuite(writeSuiteFile(t, validSuiteYAML))
		require.NoError(t, err)
		assert.Equal(t, suite.WebhookURL, suite.SuperuserWebhookURL)
	})

	t.Run("success - distribution defaults to even", func(t *testing.T) {
		yaml := `
test_name: minimal
webhook_url: https://hooks.example.test/x
superuser_api_key: sk-test
integration_type: zillow
test_records: 1
test_users:
  - name: User
    email: u@example.test
    user_id: 1
    team_id: 1
`
		suite, err := LoadSuite(writeSuiteFile(t, yaml))
		require.NoError(t, err)
		assert.Equal(t, "even", suite.Distribution)
	})

	t.Run("error - missing required fields", func(t *testing.T) {
		yaml := `
test_name: broken
webhook_url: https://hooks.example.test/x
test_records: 5
`
		_, err := LoadSuite(writeSuiteFile(t, yaml))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating suite config")
	})

	t.Run("error - webhook url is not a url", func(t *testing.T) {
		yaml := `
test_name: broken
webhook_url: not a url
superuser_api_key: sk-test
integration_type: hubspot
test_records: 5
test_users:
  - name: User
    email: u@example.test
    user_id: 1
    team_id: 1
`
		_, err := LoadSuite(writeSuiteFile(t, yaml))
		require.Error(t, err)
	})

	t.Run("error - zero test records", func(t *testing.T) {
		yaml := `
test_name: broken
webhook_url: https://hooks.example.test/x
superuser_api_key: sk-test
integration_type: hubspot
test_records: 0
test_users:
  - name: User
    email: u@example.test
    user_id: 1
    team_id: 1
`
		_, err := LoadSuite(writeSuiteFile(t, yaml))
		require.Error(t, err)
	})

	t.Run("error - malformed YAML", func(t *testing.T) {
		_, err := LoadSuite(writeSuiteFile(t, "test_name: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing suite YAML")
	})

	t.Run("error - missing file", func(t *testing.T) {
		_, err := LoadSuite(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}
