package config

import (
	"fmt"
	"os"
	"time"

	"github.com/VindiceCode/bonzobuddy/record"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

/* Suite is one integration test run's configuration, loaded from a YAML
 * file. It is read-only for the duration of a run: no component in the core
 * writes to it.
 */
type Suite struct {
	TestName            string `validate:"required"`
	WebhookURL          string `validate:"required,url"`
	SuperuserWebhookURL string
	SuperuserAPIKey     string `validate:"required"`
	IntegrationType     string `validate:"required"`
	TestRecords         int    `validate:"gt=0"`
	Distribution        string `validate:"required"`
	ProcessingDelay     time.Duration
	TestUsers           []record.User `validate:"min=1"`
	ValidationRules     []ValidationRule
	Webhook             WebhookSettings
	TestData            record.DataSettings
}

// ValidationRule describes one field-level expectation for downstream records.
type ValidationRule struct {
	Field          string
	Expected       string
	MatchesLoEmail bool
}

// WebhookSettings tunes the delivery engine; zero values use the engine's
// defaults.
type WebhookSettings struct {
	Timeout            time.Duration
	RetryAttempts      int
	RetryDelay         time.Duration
	ConcurrentRequests int
}

// suiteFile is the YAML wire representation; kept separate from the domain
// types so file layout changes don't leak into callers.
type suiteFile struct {
	TestName            string           `yaml:"test_name"`
	WebhookURL          string           `yaml:"webhook_url"`
	SuperuserWebhookURL string           `yaml:"superuser_webhook_url"`
	SuperuserAPIKey     string           `yaml:"superuser_api_key"`
	IntegrationType     string           `yaml:"integration_type"`
	TestRecords         int              `yaml:"test_records"`
	Distribution        string           `yaml:"distribution"`
	ProcessingDelay     int              `yaml:"processing_delay"`
	TestUsers           []userFile       `yaml:"test_users"`
	ValidationRules     []ruleFile       `yaml:"validation_rules"`
	WebhookSettings     *webhookFile     `yaml:"webhook_settings"`
	TestDataSettings    *dataSettingFile `yaml:"test_data_settings"`
}

type userFile struct {
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	UserID int    `yaml:"user_id"`
	TeamID int    `yaml:"team_id"`
}

type ruleFile struct {
	Field          string `yaml:"field"`
	Expected       string `yaml:"expected"`
	MatchesLoEmail bool   `yaml:"matches_lo_email"`
}

type webhookFile struct {
	Timeout            int `yaml:"timeout"`
	RetryAttempts      int `yaml:"retry_attempts"`
	RetryDelay         int `yaml:"retry_delay"`
	ConcurrentRequests int `yaml:"concurrent_requests"`
}

type dataSettingFile struct {
	FirstNamePattern string `yaml:"first_name_pattern"`
	LastNamePattern  string `yaml:"last_name_pattern"`
	EmailDomain      string `yaml:"email_domain"`
	PhoneAreaCode    string `yaml:"phone_area_code"`
	AddressPattern   string `yaml:"address_pattern"`
	City             string `yaml:"city"`
	State            string `yaml:"state"`
	Zip              string `yaml:"zip"`
}

// LoadSuite reads, converts and validates a test-suite configuration file.
func LoadSuite(filePath string) (*Suite, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	var file suiteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing suite YAML: %w", err)
	}

	suite := &Suite{
		TestName:            file.TestName,
		WebhookURL:          file.WebhookURL,
		SuperuserWebhookURL: file.SuperuserWebhookURL,
		SuperuserAPIKey:     file.SuperuserAPIKey,
		IntegrationType:     file.IntegrationType,
		TestRecords:         file.TestRecords,
		Distribution:        file.Distribution,
		ProcessingDelay:     time.Duration(file.ProcessingDelay) * time.Second,
	}
	if suite.SuperuserWebhookURL == "" {
		suite.SuperuserWebhookURL = suite.WebhookURL
	}
	if suite.Distribution == "" {
		suite.Distribution = "even"
	}

	for _, u := range file.TestUsers {
		suite.TestUsers = append(suite.TestUsers, record.User{
			Name:   u.Name,
			Email:  u.Email,
			UserID: u.UserID,
			TeamID: u.TeamID,
		})
	}
	for _, r := range file.ValidationRules {
		suite.ValidationRules = append(suite.ValidationRules, ValidationRule{
			Field:          r.Field,
			Expected:       r.Expected,
			MatchesLoEmail: r.MatchesLoEmail,
		})
	}
	if file.WebhookSettings != nil {
		suite.Webhook = WebhookSettings{
			Timeout:            time.Duration(file.WebhookSettings.Timeout) * time.Second,
			RetryAttempts:      file.WebhookSettings.RetryAttempts,
			RetryDelay:         time.Duration(file.WebhookSettings.RetryDelay) * time.Second,
			ConcurrentRequests: file.WebhookSettings.ConcurrentRequests,
		}
	}
	if file.TestDataSettings != nil {
		suite.TestData = record.DataSettings{
			FirstNamePattern: file.TestDataSettings.FirstNamePattern,
			LastNamePattern:  file.TestDataSettings.LastNamePattern,
			EmailDomain:      file.TestDataSettings.EmailDomain,
			PhoneAreaCode:    file.TestDataSettings.PhoneAreaCode,
			AddressPattern:   file.TestDataSettings.AddressPattern,
			City:             file.TestDataSettings.City,
			State:            file.TestDataSettings.State,
			Zip:              file.TestDataSettings.Zip,
		}
	}

	if err := validator.New().Struct(suite); err != nil {
		return nil, fmt.Errorf("validating suite config: %w", err)
	}
	return suite, nil
}
