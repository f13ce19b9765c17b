package style

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFile is matched by style files that do not follow the profile
// schema.
var ErrInvalidFile = errors.New("invalid style file")

//go:embed profile.schema.json
var profileSchemaJSON string

var profileSchema = jsonschema.MustCompileString("profile.schema.json", profileSchemaJSON)

// validateFile checks raw YAML style file content against the profile
// schema. The error lists every failing location.
func validateFile(name string, data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse style file %s: %w", name, err)
	}
	if raw == nil {
		return nil
	}

	err := profileSchema.Validate(jsonValue(raw))
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("%w %s: %v", ErrInvalidFile, name, err)
	}
	return fmt.Errorf("%w %s: %s", ErrInvalidFile, name, strings.Join(issues(verr), "; "))
}

// issues flattens a validation error tree into "location: message" leaves.
func issues(err *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := node.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Sprintf("%s: %s", loc, node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}

// jsonValue converts decoded YAML into the value shapes the validator
// accepts. Mapping keys become strings.
func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonValue(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = jsonValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonValue(e)
		}
		return out
	}
	return v
}
