package prompt

import (
	"fmt"
	"strings"
)

// FieldError describes one offending request field
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError is returned by Normalize when one or more fields are absent or invalid.
// Unknown enum values are wrapped so errors.As finds the specific Unknown*Error as well.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		errs = append(errs, f)
	}
	return errs
}

// UnknownTemplateError reports a template key with no catalog entry
type UnknownTemplateError struct {
	Value string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Value)
}

// UnknownPersonalityError reports a personality key with no catalog entry
type UnknownPersonalityError struct {
	Value string
}

func (e *UnknownPersonalityError) Error() string {
	return fmt.Sprintf("unknown personality %q", e.Value)
}

// UnknownFormatError reports an output format key with no catalog entry
type UnknownFormatError struct {
	Value string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q", e.Value)
}

// TemplateInterpolationError means a fragment references a placeholder with no binding.
// It indicates a catalog or composer defect, never bad user input.
type TemplateInterpolationError struct {
	Fragment string
	Missing  []string
}

func (e *TemplateInterpolationError) Error() string {
	return fmt.Sprintf("fragment %q has unbound placeholders: %s", e.Fragment, strings.Join(e.Missing, ", "))
}
