package config

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/crossforge/crossforge/pkg/xerrors"
)

//go:embed schemas/site_schema.json
var siteSchemaJSON string

//go:embed schemas/commits_schema.json
var commitsSchemaJSON string

var (
	siteSchemaOnce    sync.Once
	commitsSchemaOnce sync.Once

	compiledSiteSchema    *jsonschema.Schema
	compiledCommitsSchema *jsonschema.Schema

	siteSchemaErr    error
	commitsSchemaErr error
)

func compileSchema(schemaJSON, schemaURL string) (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

func getSiteSchema() (*jsonschema.Schema, error) {
	siteSchemaOnce.Do(func() {
		compiledSiteSchema, siteSchemaErr = compileSchema(siteSchemaJSON, "https://crossforge.dev/schemas/bootstrap-site.json")
	})
	return compiledSiteSchema, siteSchemaErr
}

func getCommitsSchema() (*jsonschema.Schema, error) {
	commitsSchemaOnce.Do(func() {
		compiledCommitsSchema, commitsSchemaErr = compileSchema(commitsSchemaJSON, "https://crossforge.dev/schemas/bootstrap-commits.json")
	})
	return compiledCommitsSchema, commitsSchemaErr
}

// ValidateSiteSchema validates a parsed bootstrap-site.yml tree against the
// site override shape (labels.match/ban, pkg_management, container, etc).
func ValidateSiteSchema(yml map[string]any) error {
	return validateAgainst(yml, getSiteSchema)
}

// ValidateCommitsSchema validates a parsed bootstrap-commits.yml tree
// against the commit-pin shape (commits.<name>.{rolling_id,fixed_commit}).
func ValidateCommitsSchema(yml map[string]any) error {
	return validateAgainst(yml, getCommitsSchema)
}

func validateAgainst(yml map[string]any, get func() (*jsonschema.Schema, error)) error {
	schema, err := get()
	if err != nil {
		return xerrors.NewConfigError("internal schema compile error: %v", err)
	}
	// Round-trip through JSON so int/float/map[string]any values normalize
	// the way the YAML decoder produced them into what jsonschema expects.
	raw, err := json.Marshal(yml)
	if err != nil {
		return xerrors.NewConfigError("failed to marshal for schema validation: %v", err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return xerrors.NewConfigError("failed to unmarshal for schema validation: %v", err)
	}
	if err := schema.Validate(normalized); err != nil {
		return xerrors.NewConfigError("schema validation failed: %v", err)
	}
	return nil
}
