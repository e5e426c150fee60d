package health

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultReportDir is where health reports land unless a path is given.
const DefaultReportDir = "reports/integration_health_reports"

// Save writes a health report as indented JSON. An empty path derives one
// from the integration type and current time under DefaultReportDir.
// Returns the path actually written.
func Save(report Report, path string) (string, error) {
	if path == "" {
		ts := time.Now().Format("20060102_150405")
		integration := report.IntegrationType
		if integration == "" {
			integration = "unknown"
		}
		path = filepath.Join(DefaultReportDir, fmt.Sprintf("health_check_%s_%s.json", integration, ts))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling health report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing health report: %w", err)
	}
	return path, nil
}
