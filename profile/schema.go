package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "rvdispatch://profile/params.json"

var (
	compileOnce sync.Once
	compiled    *validator.Schema
	compileErr  error
)

// Schema returns the JSON schema of Params. Unknown keys are allowed since
// parameter files usually carry the whole test configuration.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	return r.Reflect(&Params{})
}

// SchemaJSON returns Schema rendered as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func compiledSchema() (*validator.Schema, error) {
	compileOnce.Do(func() {
		raw, err := SchemaJSON()
		if err != nil {
			compileErr = fmt.Errorf("marshal params schema: %w", err)
			return
		}
		c := validator.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("add params schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Validate checks a flat parameter map against Schema. Values must already
// be normalised to strings (see Normalize).
func Validate(params map[string]any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Normalize renders scalar values as strings so that "platform_version: 4"
// and "platform_version: '4'" mean the same thing. Nested values are kept.
func Normalize(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		switch v.(type) {
		case map[string]any, []any, nil:
			out[k] = v
		default:
			out[k] = stringParam(params, k)
		}
	}
	return out
}
