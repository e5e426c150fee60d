package schema

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Schema is a complete payload schema for one integration profile.
type Schema struct {
	Name        string
	Category    string
	Integration string
	Profile     string // empty for single-schema integrations
	Fields      Properties
}

// GeneratePayload resolves every field against the substitution map,
// preserving the schema's field order in the result.
func (s *Schema) GeneratePayload(substitutions map[string]any) (OrderedObject, error) {
	value, err := Resolve(ObjectNode(s.Fields), substitutions)
	if err != nil {
		return nil, err
	}
	return value.(OrderedObject), nil
}

/* Registry is the integration → schema lookup table.
 * It is built once at startup by scanning a schemas directory laid out as
 * schemas/{category}/{integration}/*_schema.json and is immutable afterwards:
 * callers share it freely across goroutines.
 */
type Registry struct {
	schemas    map[string]map[string]*Schema // integration → profile → schema
	categories map[string][]string           // category → integrations
	keys       map[FieldKey]struct{}
}

// NewRegistry scans the schemas directory and builds the lookup table.
// extraKeys widens the recognized dynamic-key set beyond the defaults.
func NewRegistry(schemasPath string, extraKeys ...FieldKey) (*Registry, error) {
	r := &Registry{
		schemas:    make(map[string]map[string]*Schema),
		categories: make(map[string][]string),
		keys:       make(map[FieldKey]struct{}),
	}
	for _, k := range DefaultFieldKeys() {
		r.keys[k] = struct{}{}
	}
	for _, k := range extraKeys {
		r.keys[k] = struct{}{}
	}

	entries, err := os.ReadDir(schemasPath)
	if err != nil {
		return nil, fmt.Errorf("reading schemas directory: %w", err)
	}

	for _, categoryEntry := range entries {
		if !categoryEntry.IsDir() || strings.HasPrefix(categoryEntry.Name(), ".") {
			continue
		}
		category := categoryEntry.Name()

		integrationEntries, err := os.ReadDir(filepath.Join(schemasPath, category))
		if err != nil {
			return nil, fmt.Errorf("reading category %s: %w", category, err)
		}

		for _, integrationEntry := range integrationEntries {
			if !integrationEntry.IsDir() || strings.HasPrefix(integrationEntry.Name(), ".") {
				continue
			}
			integration := integrationEntry.Name()
			r.categories[category] = append(r.categories[category], integration)

			pattern := filepath.Join(schemasPath, category, integration, "*_schema.json")
			files, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("globbing schemas for %s: %w", integration, err)
			}

			for _, file := range files {
				schema, err := loadSchemaFile(file, category, integration)
				if err != nil {
					// A malformed schema should not take down the whole registry.
					slog.Warn("skipping schema file", "file", file, "error", err)
					continue
				}
				if err := ObjectNode(schema.Fields).ValidateKeys(r.keys); err != nil {
					slog.Warn("skipping schema file", "file", file, "error", err)
					continue
				}
				if r.schemas[integration] == nil {
					r.schemas[integration] = make(map[string]*Schema)
				}
				r.schemas[integration][schema.Profile] = schema
			}
		}
	}

	return r, nil
}

// Get returns the schema for an integration and profile. An empty profile
// selects the integration's single default schema.
func (r *Registry) Get(integration, profile string) (*Schema, error) {
	profiles, ok := r.schemas[integration]
	if !ok {
		return nil, fmt.Errorf("unknown integration: %s", integration)
	}
	schema, ok := profiles[profile]
	if !ok {
		if profile == "" {
			return nil, fmt.Errorf("integration %s has no default schema; profiles: %v", integration, r.Profiles(integration))
		}
		return nil, fmt.Errorf("unknown profile %q for integration %s", profile, integration)
	}
	return schema, nil
}

// Profiles lists the available profiles for an integration, sorted.
func (r *Registry) Profiles(integration string) []string {
	profiles := make([]string, 0, len(r.schemas[integration]))
	for profile := range r.schemas[integration] {
		profiles = append(profiles, profile)
	}
	sort.Strings(profiles)
	return profiles
}

// Integrations lists every known integration across categories, sorted.
func (r *Registry) Integrations() []string {
	integrations := make([]string, 0, len(r.schemas))
	for integration := range r.schemas {
		integrations = append(integrations, integration)
	}
	sort.Strings(integrations)
	return integrations
}

// Categories lists the discovered categories, sorted.
func (r *Registry) Categories() []string {
	categories := make([]string, 0, len(r.categories))
	for category := range r.categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func loadSchemaFile(path, category, integration string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var fields Properties
	if err := fields.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}
	if err := ObjectNode(fields).Validate(); err != nil {
		return nil, fmt.Errorf("validating schema file: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".json")
	return &Schema{
		Name:        stem,
		Category:    category,
		Integration: integration,
		Profile:     extractProfile(stem, integration),
		Fields:      fields,
	}, nil
}

// extractProfile pulls the profile name out of a schema filename stem.
// "zillow_simple_schema" → "simple", "hubspot_schema" → "" (single schema).
func extractProfile(stem, integration string) string {
	lower := strings.ToLower(stem)
	integrationLower := strings.ToLower(integration)

	if strings.HasPrefix(lower, integrationLower+"_") {
		remaining := stem[len(integrationLower)+1:]
		if strings.EqualFold(remaining, "schema") {
			return ""
		}
		return strings.TrimSuffix(remaining, "_schema")
	}

	if strings.HasSuffix(lower, "_schema") {
		base := stem[:len(stem)-len("_schema")]
		if !strings.EqualFold(base, integration) {
			return base
		}
	}

	return ""
}
