package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/VindiceCode/bonzobuddy/bonzo"
	"github.com/VindiceCode/bonzobuddy/config"
	"github.com/VindiceCode/bonzobuddy/delivery"
)

// Subsystem statuses. OverallStatus combines them: healthy when every checked
// subsystem is healthy, partial when some are, unhealthy when none, error
// when the check run itself failed.
const (
	StatusHealthy   = "healthy"
	StatusPartial   = "partial"
	StatusUnhealthy = "unhealthy"
	StatusError     = "error"
	StatusUnknown   = "unknown"
)

// WebhookHealth is the endpoint-reachability check result.
type WebhookHealth struct {
	WebhookURL   string                 `json:"webhook_url"`
	Timestamp    string                 `json:"timestamp"`
	Status       string                 `json:"status"`
	ResponseTime float64                `json:"response_time"`
	Details      delivery.EndpointCheck `json:"details"`
}

// UserAccess is one user's API accessibility result.
type UserAccess struct {
	UserID        int    `json:"user_id"`
	Email         string `json:"email"`
	Accessible    bool   `json:"accessible"`
	Error         string `json:"error,omitempty"`
	ProspectCount int    `json:"prospect_count"`
}

// APIHealth is the API connectivity check result across all test users.
type APIHealth struct {
	Timestamp       string       `json:"timestamp"`
	Status          string       `json:"status"`
	UsersAccessible int          `json:"users_accessible"`
	TotalUsers      int          `json:"total_users"`
	UserDetails     []UserAccess `json:"user_details"`
}

// UserTestData is one user's recent-test-data result.
type UserTestData struct {
	UserID             int    `json:"user_id"`
	Email              string `json:"email"`
	TestProspectsFound int    `json:"test_prospects_found"`
	Error              string `json:"error,omitempty"`
}

// TestDataHealth is the recent-test-data check result.
type TestDataHealth struct {
	Timestamp          string         `json:"timestamp"`
	CutoffTime         string         `json:"cutoff_time"`
	HoursBack          int            `json:"hours_back"`
	TotalTestProspects int            `json:"total_test_prospects"`
	UserBreakdown      []UserTestData `json:"user_breakdown"`
}

// Checks groups the individual check results present in a report.
type Checks struct {
	WebhookHealth   *WebhookHealth  `json:"webhook_health,omitempty"`
	APIConnectivity *APIHealth      `json:"api_connectivity,omitempty"`
	RecentTestData  *TestDataHealth `json:"recent_test_data,omitempty"`
}

// Report is the assembled integration health report.
type Report struct {
	IntegrationType string `json:"integration_type"`
	TestName        string `json:"test_name"`
	CheckTimestamp  string `json:"check_timestamp"`
	OverallStatus   string `json:"overall_status"`
	Checks          Checks `json:"checks"`
	Error           string `json:"error,omitempty"`
}

/* Checker assembles health reports from the delivery engine and the API
 * client. Pure aggregation: it performs no network or file activity beyond
 * what its collaborators do on its behalf.
 */
type Checker struct {
	suite   *config.Suite
	sender  *delivery.Sender
	client  *bonzo.Client
	logger  *slog.Logger
	pattern string
}

// NewChecker wires a checker for one suite. The pattern identifies this
// suite's test prospects in the remote system.
func NewChecker(suite *config.Suite, sender *delivery.Sender, client *bonzo.Client, pattern string) *Checker {
	return &Checker{
		suite:   suite,
		sender:  sender,
		client:  client,
		logger:  slog.With("module", "health"),
		pattern: pattern,
	}
}

// CheckWebhook pings the webhook endpoint.
func (c *Checker) CheckWebhook(ctx context.Context) WebhookHealth {
	c.logger.Info("checking webhook endpoint health")
	details := c.sender.ValidateEndpoint(ctx)

	status := StatusUnhealthy
	if details.EndpointReachable {
		status = StatusHealthy
		c.logger.Info("webhook endpoint healthy", "response_time", details.ResponseTime)
	} else {
		c.logger.Error("webhook endpoint unhealthy", "error", details.Error)
	}

	return WebhookHealth{
		WebhookURL:   c.suite.WebhookURL,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Status:       status,
		ResponseTime: details.ResponseTime,
		Details:      details,
	}
}

// CheckAPIConnectivity verifies the superuser credential can impersonate each
// test user.
func (c *Checker) CheckAPIConnectivity(ctx context.Context) APIHealth {
	c.logger.Info("checking api connectivity", "users", len(c.suite.TestUsers))

	result := APIHealth{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Status:      StatusUnknown,
		TotalUsers:  len(c.suite.TestUsers),
		UserDetails: make([]UserAccess, 0, len(c.suite.TestUsers)),
	}

	for _, user := range c.suite.TestUsers {
		access := UserAccess{UserID: user.UserID, Email: user.Email}

		prospects, err := c.client.GetUserProspects(ctx, user.UserID, 10, "")
		if err != nil {
			access.Error = err.Error()
			c.logger.Error("user not accessible", "email", user.Email, "error", err)
		} else {
			access.Accessible = true
			access.ProspectCount = len(prospects)
			result.UsersAccessible++
			c.logger.Info("user accessible", "email", user.Email, "prospects", len(prospects))
		}

		result.UserDetails = append(result.UserDetails, access)
	}

	switch {
	case result.UsersAccessible == result.TotalUsers:
		result.Status = StatusHealthy
	case result.UsersAccessible > 0:
		result.Status = StatusPartial
	default:
		result.Status = StatusUnhealthy
	}

	c.logger.Info("api connectivity checked",
		"accessible", result.UsersAccessible, "total", result.TotalUsers, "status", result.Status)
	return result
}

// CheckRecentTestData counts test prospects created in the last hoursBack
// hours for each user.
func (c *Checker) CheckRecentTestData(ctx context.Context, hoursBack int) TestDataHealth {
	cutoff := time.Now().UTC().Add(-time.Duration(hoursBack) * time.Hour)
	c.logger.Info("checking recent test data", "hours_back", hoursBack)

	result := TestDataHealth{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		CutoffTime:    cutoff.Format(time.RFC3339),
		HoursBack:     hoursBack,
		UserBreakdown: make([]UserTestData, 0, len(c.suite.TestUsers)),
	}

	for _, user := range c.suite.TestUsers {
		data := UserTestData{UserID: user.UserID, Email: user.Email}

		prospects, err := c.client.FindTestProspects(ctx, user.UserID, c.pattern, cutoff.Format(time.RFC3339))
		if err != nil {
			data.Error = err.Error()
			c.logger.Error("test data check failed", "email", user.Email, "error", err)
		} else {
			data.TestProspectsFound = len(prospects)
			result.TotalTestProspects += len(prospects)
		}

		result.UserBreakdown = append(result.UserBreakdown, data)
	}

	c.logger.Info("recent test data checked", "total", result.TotalTestProspects)
	return result
}

// Run assembles a full health report. The recent-test-data check is
// informational and does not affect the overall status.
func (c *Checker) Run(ctx context.Context, includeTestData bool, hoursBack int) Report {
	c.logger.Info("starting integration health check",
		"integration", c.suite.IntegrationType, "test_name", c.suite.TestName)

	report := Report{
		IntegrationType: c.suite.IntegrationType,
		TestName:        c.suite.TestName,
		CheckTimestamp:  time.Now().UTC().Format(time.RFC3339),
		OverallStatus:   StatusUnknown,
	}

	webhook := c.CheckWebhook(ctx)
	report.Checks.WebhookHealth = &webhook

	api := c.CheckAPIConnectivity(ctx)
	report.Checks.APIConnectivity = &api

	if includeTestData {
		testData := c.CheckRecentTestData(ctx, hoursBack)
		report.Checks.RecentTestData = &testData
	}

	// A canceled or expired context means the run failed, not the subsystems.
	if err := ctx.Err(); err != nil {
		report.OverallStatus = StatusError
		report.Error = err.Error()
		c.logger.Error("integration health check aborted", "error", err)
		return report
	}

	webhookOK := webhook.Status == StatusHealthy
	apiOK := api.Status == StatusHealthy
	switch {
	case webhookOK && apiOK:
		report.OverallStatus = StatusHealthy
	case webhookOK || apiOK:
		report.OverallStatus = StatusPartial
	default:
		report.OverallStatus = StatusUnhealthy
	}

	c.logger.Info("integration health check completed", "status", report.OverallStatus)
	return report
}

// Summary renders a short human-readable overview of the report.
func Summary(report Report) string {
	out := fmt.Sprintf("Integration: %s\nOverall Status: %s\nCheck Time: %s\n",
		report.IntegrationType, report.OverallStatus, report.CheckTimestamp)

	if wh := report.Checks.WebhookHealth; wh != nil {
		out += fmt.Sprintf("Webhook Health: %s (%.3fs)\n", wh.Status, wh.ResponseTime)
	}
	if api := report.Checks.APIConnectivity; api != nil {
		out += fmt.Sprintf("API Connectivity: %s (%d/%d users accessible)\n",
			api.Status, api.UsersAccessible, api.TotalUsers)
	}
	if td := report.Checks.RecentTestData; td != nil {
		out += fmt.Sprintf("Recent Test Data: %d prospects in last %dh\n",
			td.TotalTestProspects, td.HoursBack)
	}
	return out
}
