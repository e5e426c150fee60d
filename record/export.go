package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/VindiceCode/bonzobuddy/schema"
)

// ExportInfo describes the run an exported record set belongs to.
type ExportInfo struct {
	IntegrationType string `json:"integration_type"`
	TestName        string `json:"test_name"`
	TotalRecords    int    `json:"total_records"`
	Users           []User `json:"users"`
	GeneratedAt     string `json:"generated_at"`
}

// MarshalJSON flattens users into the export wire format.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		UserID int    `json:"user_id"`
		TeamID int    `json:"team_id"`
	}{u.Name, u.Email, u.UserID, u.TeamID})
}

type exportedRecord struct {
	RecordID       string               `json:"record_id"`
	UserEmail      string               `json:"user_email"`
	UserID         int                  `json:"user_id"`
	TeamID         int                  `json:"team_id"`
	SequenceNumber int                  `json:"sequence_number"`
	Payload        schema.OrderedObject `json:"payload"`
}

type exportDocument struct {
	TestRunInfo ExportInfo       `json:"test_run_info"`
	TestRecords []exportedRecord `json:"test_records"`
}

// Export writes the record set plus run metadata to a JSON file, creating
// parent directories as needed.
func Export(records []Record, info ExportInfo, path string) error {
	info.TotalRecords = len(records)
	if info.GeneratedAt == "" {
		info.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}

	doc := exportDocument{
		TestRunInfo: info,
		TestRecords: make([]exportedRecord, 0, len(records)),
	}
	for _, rec := range records {
		doc.TestRecords = append(doc.TestRecords, exportedRecord{
			RecordID:       rec.RecordID,
			UserEmail:      rec.UserEmail,
			UserID:         rec.UserID,
			TeamID:         rec.TeamID,
			SequenceNumber: rec.SequenceNumber,
			Payload:        rec.Payload,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}
