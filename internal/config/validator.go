package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema/config.cue
var configSchemaCUE []byte

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(configSchemaCUE)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema.LookupPath(cue.ParsePath("#Config")),
	}, nil
}

// Validate checks cfg against the schema and the Go-side naming rules.
func (v *Validator) Validate(cfg *Config) error {
	errs := v.check(v.ctx.Encode(cfg))

	for _, check := range []struct {
		value string
		fn    func(string) error
	}{
		{cfg.Project.Slug, ValidateSlug},
	} {
		if check.value == "" {
			continue
		}
		if err := check.fn(check.value); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				errs = append(errs, *ve)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateFile validates the raw file at path. Unlike Validate, unknown
// keys are reported.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if errs := v.check(v.ctx.BuildFile(file)); len(errs) > 0 {
		return errs
	}

	cfg, err := NewLoader().Load(path)
	if err != nil {
		return err
	}
	return v.Validate(cfg)
}

// check unifies value with the schema and collects every violation.
func (v *Validator) check(value cue.Value) ValidationErrors {
	if value.Err() != nil {
		return toValidationErrors(value.Err())
	}
	unified := v.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "(root)"
		}
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if key := field + msg; !seen[key] {
			seen[key] = true
			errs = append(errs, ValidationError{Field: field, Message: msg})
		}
	}
	return errs
}
