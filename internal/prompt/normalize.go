package prompt

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// Defaults applied to absent optional fields
const (
	DefaultTone           = models.ToneProfessional
	DefaultComplexity     = 3
	DefaultLength         = models.LengthMedium
	DefaultCTAIntegration = 50
	DefaultOutputFormat   = models.OutputFormatPlainText
)

// NormalizedRequest is a fully defaulted, validated generation request
type NormalizedRequest struct {
	SchemaVersion  int                 `json:"schemaVersion" validate:"eq=3"`
	Template       models.Template     `json:"template" validate:"required,doc_template"`
	Personality    models.Personality  `json:"personality" validate:"required,doc_personality"`
	Context        string              `json:"context"`
	Tone           models.Tone         `json:"tone" validate:"doc_tone"`
	Audience       models.Audience     `json:"audience" validate:"-"`
	Complexity     int                 `json:"complexity" validate:"min=1,max=5"`
	Length         models.Length       `json:"length" validate:"doc_length"`
	CTAIntegration int                 `json:"ctaIntegration" validate:"min=0,max=100"`
	CTAText        string              `json:"ctaText"`
	Keywords       []string            `json:"keywords"`
	OutputFormat   models.OutputFormat `json:"outputFormat" validate:"doc_format"`
}

// WordTarget returns the approximate word count for the requested length
func (r NormalizedRequest) WordTarget() int {
	return r.Length.WordTarget()
}

// legacyOutputContent maps the older outputContent values onto output formats
var legacyOutputContent = map[string]models.OutputFormat{
	"text":   models.OutputFormatPlainText,
	"style":  models.OutputFormatPlainText,
	"notion": models.OutputFormatNotionMarkdown,
	"react":  models.OutputFormatReactComponent,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names so field errors match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enums := map[string]func(string) bool{
		"doc_template":    func(s string) bool { return models.Template(s).Valid() },
		"doc_personality": func(s string) bool { return models.Personality(s).Valid() },
		"doc_tone":        func(s string) bool { return models.Tone(s).Valid() },
		"doc_length":      func(s string) bool { return models.Length(s).Valid() },
		"doc_format":      func(s string) bool { return models.OutputFormat(s).Valid() },
	}
	for tag, valid := range enums {
		valid := valid
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// Normalize applies defaults, translates legacy request shapes and validates the result.
// It never touches the catalog; unknown enum values are rejected here by the recognized sets.
func Normalize(raw models.GenerationRequest) (NormalizedRequest, error) {
	req := NormalizedRequest{
		SchemaVersion:  models.CurrentSchemaVersion,
		Tone:           DefaultTone,
		Complexity:     DefaultComplexity,
		Length:         DefaultLength,
		CTAIntegration: DefaultCTAIntegration,
		OutputFormat:   DefaultOutputFormat,
		Keywords:       []string{},
	}
	var fields []FieldError

	if raw.SchemaVersion != nil {
		req.SchemaVersion = *raw.SchemaVersion
	}
	if raw.Template != nil {
		req.Template = models.Template(enumValue(raw.Template))
	}
	if raw.Personality != nil {
		req.Personality = models.Personality(enumValue(raw.Personality))
	}

	if raw.Context == nil {
		fields = append(fields, FieldError{Field: "context", Rule: "required", Message: "context is required (it may be empty)"})
	} else {
		req.Context = *raw.Context
	}

	if v := enumValue(raw.Tone); v != "" {
		req.Tone = models.Tone(v)
	}
	if raw.Audience != nil {
		req.Audience = *raw.Audience
	}
	if raw.Complexity != nil {
		req.Complexity = *raw.Complexity
	}
	if v := enumValue(raw.Length); v != "" {
		req.Length = models.Length(v)
	}
	if raw.CTAIntegration != nil {
		req.CTAIntegration = *raw.CTAIntegration
	}
	if raw.CTAText != nil {
		req.CTAText = strings.TrimSpace(*raw.CTAText)
	}

	for _, kw := range raw.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			req.Keywords = append(req.Keywords, kw)
		}
	}

	format, formatErr := resolveOutputFormat(raw.OutputFormat, raw.OutputContent)
	if formatErr != nil {
		fields = append(fields, *formatErr)
	} else if format != "" {
		req.OutputFormat = format
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return NormalizedRequest{}, fmt.Errorf("validate request: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, fieldErrorFrom(fe))
		}
	}

	if len(fields) > 0 {
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
		return NormalizedRequest{}, &ValidationError{Fields: fields}
	}

	return req, nil
}

// resolveOutputFormat reconciles outputFormat with the legacy outputContent field.
// An empty result means neither was supplied.
func resolveOutputFormat(outputFormat, outputContent *string) (models.OutputFormat, *FieldError) {
	format := models.OutputFormat(enumValue(outputFormat))

	legacy := enumValue(outputContent)
	if legacy == "" {
		return format, nil
	}

	mapped, ok := legacyOutputContent[legacy]
	if !ok {
		mapped = models.OutputFormat(legacy)
		if !mapped.Valid() {
			return "", &FieldError{
				Field:   "outputContent",
				Rule:    "doc_format",
				Message: fmt.Sprintf("unknown output content %q", legacy),
				Err:     &UnknownFormatError{Value: legacy},
			}
		}
	}

	if format != "" && format != mapped {
		return "", &FieldError{
			Field:   "outputFormat",
			Rule:    "conflict",
			Message: fmt.Sprintf("outputFormat %q conflicts with outputContent %q", format, legacy),
		}
	}

	return mapped, nil
}

func fieldErrorFrom(fe validator.FieldError) FieldError {
	value := fmt.Sprintf("%v", fe.Value())
	out := FieldError{Field: fe.Field(), Rule: fe.Tag()}

	switch fe.Tag() {
	case "required":
		out.Message = fe.Field() + " is required"
	case "doc_template":
		out.Err = &UnknownTemplateError{Value: value}
	case "doc_personality":
		out.Err = &UnknownPersonalityError{Value: value}
	case "doc_format":
		out.Err = &UnknownFormatError{Value: value}
	case "doc_tone":
		out.Message = fmt.Sprintf("unknown tone %q (allowed: %s)", value, joinValues(models.Tones))
	case "doc_length":
		out.Message = fmt.Sprintf("unknown length %q (allowed: %s)", value, joinValues(models.Lengths))
	case "min", "max":
		out.Message = fmt.Sprintf("%s must be between %s, got %s", fe.Field(), rangeFor(fe.Field()), value)
	case "eq":
		out.Message = fmt.Sprintf("unsupported schemaVersion %s (only %d is accepted)", value, models.CurrentSchemaVersion)
	default:
		out.Message = fmt.Sprintf("failed %s validation", fe.Tag())
	}

	if out.Err != nil {
		out.Message = out.Err.Error()
	}
	return out
}

func rangeFor(field string) string {
	switch field {
	case "complexity":
		return "1 and 5"
	case "ctaIntegration":
		return "0 and 100"
	default:
		return "the allowed bounds"
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// enumValue canonicalizes an enum field: keys are matched without regard to case or surrounding space
func enumValue(s *string) string {
	return strings.ToLower(trimmed(s))
}
