package record

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/VindiceCode/bonzobuddy/schema"
)

// ErrDistributionNotImplemented marks distribution policies that are declared
// but not built yet. They fail explicitly instead of silently aliasing to
// "even": a caller must never believe a distribution took place that didn't.
var ErrDistributionNotImplemented = errors.New("distribution method not implemented")

// DataSettings controls the shape of generated per-record test data.
type DataSettings struct {
	FirstNamePattern string
	LastNamePattern  string
	EmailDomain      string
	PhoneAreaCode    string
	AddressPattern   string
	City             string
	State            string
	Zip              string
}

func (s DataSettings) withDefaults() DataSettings {
	if s.FirstNamePattern == "" {
		s.FirstNamePattern = "TestRecord"
	}
	if s.LastNamePattern == "" {
		s.LastNamePattern = "Test"
	}
	if s.EmailDomain == "" {
		s.EmailDomain = "bonzobuddy.test"
	}
	if s.PhoneAreaCode == "" {
		s.PhoneAreaCode = "555"
	}
	if s.AddressPattern == "" {
		s.AddressPattern = "123 Test St"
	}
	if s.City == "" {
		s.City = "TestCity"
	}
	if s.State == "" {
		s.State = "CA"
	}
	if s.Zip == "" {
		s.Zip = "12345"
	}
	return s
}

// FactoryConfig carries everything a factory needs for one run. Exactly one
// of Template (legacy {key} placeholder fixture) or Schema (static/dynamic
// field tree) must be set.
type FactoryConfig struct {
	IntegrationType string
	TotalRecords    int
	Distribution    string
	Users           []User
	Template        []byte
	Schema          *schema.Schema
	Settings        DataSettings
}

/* Factory generates bulk test records for a run.
 * Configuration is read-only for the factory's lifetime.
 */
type Factory struct {
	cfg    FactoryConfig
	logger *slog.Logger
}

// NewFactory validates the configuration and builds a factory.
func NewFactory(cfg FactoryConfig) (*Factory, error) {
	if cfg.IntegrationType == "" {
		return nil, fmt.Errorf("integration type cannot be empty")
	}
	if cfg.TotalRecords <= 0 {
		return nil, fmt.Errorf("total records must be positive, got %d", cfg.TotalRecords)
	}
	if len(cfg.Users) == 0 {
		return nil, fmt.Errorf("at least one test user is required")
	}
	if (cfg.Template == nil) == (cfg.Schema == nil) {
		return nil, fmt.Errorf("exactly one of template or schema must be set")
	}
	cfg.Settings = cfg.Settings.withDefaults()

	return &Factory{
		cfg:    cfg,
		logger: slog.With("module", "record"),
	}, nil
}

// Generate materializes the run's records: the distribution decides how many
// records each user receives, and the sequence number increases monotonically
// across the whole run regardless of user boundaries.
func (f *Factory) Generate(runID string) ([]Record, error) {
	counts, err := f.distribute()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, f.cfg.TotalRecords)
	sequence := 1
	for i, user := range f.cfg.Users {
		for range counts[i] {
			recordID := RecordID(runID, sequence)
			payload, err := f.buildPayload(user, recordID, sequence)
			if err != nil {
				return nil, fmt.Errorf("building payload for %s: %w", recordID, err)
			}
			records = append(records, Record{
				RecordID:       recordID,
				UserEmail:      user.Email,
				UserID:         user.UserID,
				TeamID:         user.TeamID,
				Payload:        payload,
				SequenceNumber: sequence,
			})
			sequence++
		}
	}

	f.logger.Info("generated test records", "count", len(records), "users", len(f.cfg.Users), "run_id", runID)
	return records, nil
}

// distribute returns per-user record counts in user-list order.
func (f *Factory) distribute() ([]int, error) {
	switch f.cfg.Distribution {
	case "", "even":
		return DistributeEven(f.cfg.TotalRecords, len(f.cfg.Users)), nil
	case "weighted", "custom":
		return nil, fmt.Errorf("%q: %w", f.cfg.Distribution, ErrDistributionNotImplemented)
	default:
		return nil, fmt.Errorf("unknown distribution method: %q", f.cfg.Distribution)
	}
}

// DistributeEven splits total over n users: floor(total/n) each, with the
// first total%n users receiving one extra. Deterministic and order-stable.
// Anything that predicts per-user counts for a run must use this split.
func DistributeEven(total, n int) []int {
	base := total / n
	remainder := total % n

	counts := make([]int, n)
	for i := range counts {
		counts[i] = base
		if i < remainder {
			counts[i]++
		}
	}
	return counts
}

func (f *Factory) buildPayload(user User, recordID string, sequence int) (schema.OrderedObject, error) {
	data := f.generateData(recordID, sequence)

	if f.cfg.Schema != nil {
		// Modern path: resolve the field tree against the closed dynamic-key set.
		return f.cfg.Schema.GeneratePayload(map[string]any{
			string(schema.FirstName): data["first_name"],
			string(schema.LastName):  data["last_name"],
			string(schema.Email):     data["email"],
			string(schema.Phone):     data["phone"],
		})
	}

	// Legacy path: literal {key} substitution over the fixture template.
	values := map[string]string{
		"user.email":   user.Email,
		"user.id":      strconv.Itoa(user.UserID),
		"user.user_id": strconv.Itoa(user.UserID),
		"team.id":      strconv.Itoa(user.TeamID),
	}
	for key, value := range data {
		values[key] = value
	}
	return schema.Substitute(f.cfg.Template, values)
}

// generateData builds the per-record substitution set. Email and record ID
// carry the uniqueness guarantee; phone is random and may collide.
func (f *Factory) generateData(recordID string, sequence int) map[string]string {
	settings := f.cfg.Settings
	now := time.Now().UTC()

	street := settings.AddressPattern
	if parts := strings.Fields(settings.AddressPattern); len(parts) > 1 {
		street = strings.Join(parts[1:], " ")
	}

	return map[string]string{
		"first_name": fmt.Sprintf("%s_%03d", settings.FirstNamePattern, sequence),
		"last_name":  settings.LastNamePattern,
		"email":      fmt.Sprintf("test.%s.%03d@%s", f.cfg.IntegrationType, sequence, settings.EmailDomain),
		"phone":      fmt.Sprintf("%s-%d-%d", settings.PhoneAreaCode, 100+rand.IntN(900), 1000+rand.IntN(9000)),
		"address":    fmt.Sprintf("%d %s", 100+rand.IntN(9900), street),
		"city":       settings.City,
		"state":      settings.State,
		"zip":        settings.Zip,
		"alert_date": now.Format("2006-01-02"),
		"created_at": now.Format(time.RFC3339),
		"record_id":  recordID,
	}
}
