package expect

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/plotcheck/internal/verify"
)

//go:embed schema.cue
var schemaSource string

// Schema returns the CUE source of the #Expectation definition.
func Schema() string { return schemaSource }

// Load reads an expectation from path. Files ending in .cue are compiled as
// CUE; everything else is parsed as YAML.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expectation file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return ParseCUE(filepath.Base(path), data)
	}
	return ParseYAML(data)
}

// ParseYAML parses a YAML expectation. Unknown fields are rejected.
func ParseYAML(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, &verify.Error{
			Kind:    verify.KindConfiguration,
			Message: "failed to parse expectation YAML",
			Err:     err,
		}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// DecodeYAML decodes an expectation embedded in another YAML document.
func DecodeYAML(node *yaml.Node) (*Spec, error) {
	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode expectation: %w", err)
	}
	return ParseYAML(data)
}

// ParseCUE compiles a CUE expectation, unifies it with #Expectation and
// decodes the concrete result. The file may either be the expectation
// itself or define it under an "expect" field.
func ParseCUE(filename string, data []byte) (*Spec, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("expectation schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Expectation"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueConfigError(err)
	}
	if nested := v.LookupPath(cue.ParsePath("expect")); nested.Exists() {
		v = nested
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueConfigError(err)
	}

	var spec Spec
	if err := unified.Decode(&spec); err != nil {
		return nil, cueConfigError(err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// cueConfigError turns a CUE error into a configuration error carrying the
// first error's position.
func cueConfigError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &verify.Error{Kind: verify.KindConfiguration, Message: "invalid CUE expectation", Err: err}
	}
	first := errs[0]
	source := ""
	if pos := cueerrors.Positions(first); len(pos) > 0 && pos[0].IsValid() {
		source = fmt.Sprintf("%s:%d:%d", pos[0].Filename(), pos[0].Line(), pos[0].Column())
	}
	return &verify.Error{
		Kind:    verify.KindConfiguration,
		Message: "invalid CUE expectation",
		Source:  source,
		Err:     first,
	}
}
