package scenario

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Schema returns the CUE source scenario files are checked against.
func Schema() string { return schemaSource }

// CheckSchema validates the structure of a YAML scenario document:
// required keys, value types and ranges, and kind-specific config keys.
// A cue.Context is not safe for concurrent use, so each call compiles
// the schema into its own context.
func CheckSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing scenario: %w", err)
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling scenario schema: %w", err)
	}
	root := schema.LookupPath(cue.ParsePath("#Scenario"))
	v := root.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrSchema, cueerrors.Details(err, nil))
	}
	return nil
}
