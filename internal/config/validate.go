package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/config.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("config.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// checkFile validates a config file against the schema and returns any
// issues as human-readable warnings. A missing file is fine; so is any
// validator failure (the config is advisory, never load-bearing enough to
// abort the CLI).
func checkFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return check(data)
}

func check(data []byte) []string {
	schema, err := getSchema()
	if err != nil {
		return []string{fmt.Sprintf("config schema unavailable: %v", err)}
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []string{fmt.Sprintf("config file is not valid YAML: %v", err)}
	}
	if raw == nil {
		return nil
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return []string{fmt.Sprintf("config file could not be normalized: %v", err)}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("config validation: %v", err)}
	}

	var warnings []string
	collectIssues(ve, &warnings)
	if len(warnings) == 0 {
		warnings = []string{ve.Error()}
	}
	return warnings
}

// collectIssues walks the error tree to leaf errors with instance paths.
func collectIssues(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		if ve.ErrorKind == nil {
			return
		}
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		*out = append(*out, fmt.Sprintf("config%s: %s", path, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, cause := range ve.Causes {
		collectIssues(cause, out)
	}
}
