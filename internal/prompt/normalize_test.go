package prompt

import (
	"errors"
	"testing"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func validRaw() models.GenerationRequest {
	return models.GenerationRequest{
		Template:    ptr("release-notes"),
		Personality: ptr("steve-jobs"),
		Context:     ptr("Version 2.0 ships dark mode and offline sync."),
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestNormalize_Defaults(t *testing.T) {
	req, err := Normalize(validRaw())
	require.NoError(t, err)

	assert.Equal(t, models.CurrentSchemaVersion, req.SchemaVersion)
	assert.Equal(t, models.TemplateReleaseNotes, req.Template)
	assert.Equal(t, models.PersonalitySteveJobs, req.Personality)
	assert.Equal(t, models.ToneProfessional, req.Tone)
	assert.Equal(t, 3, req.Complexity)
	assert.Equal(t, models.LengthMedium, req.Length)
	assert.Equal(t, 50, req.CTAIntegration)
	assert.Equal(t, "", req.CTAText)
	assert.Equal(t, []string{}, req.Keywords)
	assert.Equal(t, models.OutputFormatPlainText, req.OutputFormat)
	assert.False(t, req.Audience.Enabled)
	assert.Equal(t, 500, req.WordTarget())
}

func TestNormalize_EmptyContextIsAllowed(t *testing.T) {
	raw := validRaw()
	raw.Context = ptr("")

	req, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "", req.Context)
}

func TestNormalize_RequiredFields(t *testing.T) {
	_, err := Normalize(models.GenerationRequest{})
	require.Error(t, err)
	assert.Equal(t, []string{"context", "personality", "template"}, fieldNames(t, err))
}

func TestNormalize_UnknownEnums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.GenerationRequest)
		field  string
		target any
	}{
		{
			name:   "template",
			mutate: func(r *models.GenerationRequest) { r.Template = ptr("haiku") },
			field:  "template",
			target: new(*UnknownTemplateError),
		},
		{
			name:   "personality",
			mutate: func(r *models.GenerationRequest) { r.Personality = ptr("bill-gates") },
			field:  "personality",
			target: new(*UnknownPersonalityError),
		},
		{
			name:   "output format",
			mutate: func(r *models.GenerationRequest) { r.OutputFormat = ptr("pdf") },
			field:  "outputFormat",
			target: new(*UnknownFormatError),
		},
		{
			name:   "legacy output content",
			mutate: func(r *models.GenerationRequest) { r.OutputContent = ptr("slides") },
			field:  "outputContent",
			target: new(*UnknownFormatError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			_, err := Normalize(raw)
			require.Error(t, err)
			assert.Equal(t, []string{tt.field}, fieldNames(t, err))
			assert.True(t, errors.As(err, tt.target), "expected %T in error chain", tt.target)
		})
	}
}

func TestNormalize_UnknownTemplateMessage(t *testing.T) {
	raw := validRaw()
	raw.Template = ptr("haiku")

	_, err := Normalize(raw)

	var unknown *UnknownTemplateError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "haiku", unknown.Value)
	assert.Contains(t, err.Error(), `template: unknown template "haiku"`)
}

func TestNormalize_EnumFieldsIgnoreCase(t *testing.T) {
	raw := models.GenerationRequest{
		Template:     ptr("Release-Notes"),
		Personality:  ptr(" STEVE-JOBS "),
		Context:      ptr("v2"),
		Tone:         ptr("Formal"),
		Length:       ptr("LONG"),
		OutputFormat: ptr("Notion-Markdown"),
	}

	req, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, models.TemplateReleaseNotes, req.Template)
	assert.Equal(t, models.PersonalitySteveJobs, req.Personality)
	assert.Equal(t, models.ToneFormal, req.Tone)
	assert.Equal(t, models.LengthLong, req.Length)
	assert.Equal(t, models.OutputFormatNotionMarkdown, req.OutputFormat)

	raw.OutputFormat = ptr("NOTION-MARKDOWN")
	raw.OutputContent = ptr("Notion")
	req, err = Normalize(raw)
	require.NoError(t, err, "outputFormat and outputContent agree once case is ignored")
	assert.Equal(t, models.OutputFormatNotionMarkdown, req.OutputFormat)
}

func TestNormalize_RejectsOutOfRangeNumbers(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.GenerationRequest)
		field  string
	}{
		{"complexity too low", func(r *models.GenerationRequest) { r.Complexity = ptr(0) }, "complexity"},
		{"complexity too high", func(r *models.GenerationRequest) { r.Complexity = ptr(6) }, "complexity"},
		{"complexity on the percent scale", func(r *models.GenerationRequest) { r.Complexity = ptr(70) }, "complexity"},
		{"cta negative", func(r *models.GenerationRequest) { r.CTAIntegration = ptr(-1) }, "ctaIntegration"},
		{"cta above 100", func(r *models.GenerationRequest) { r.CTAIntegration = ptr(101) }, "ctaIntegration"},
		{"old schema", func(r *models.GenerationRequest) { r.SchemaVersion = ptr(2) }, "schemaVersion"},
		{"unknown tone", func(r *models.GenerationRequest) { r.Tone = ptr("sarcastic") }, "tone"},
		{"unknown length", func(r *models.GenerationRequest) { r.Length = ptr("epic") }, "length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			_, err := Normalize(raw)
			require.Error(t, err)
			assert.Equal(t, []string{tt.field}, fieldNames(t, err))
		})
	}
}

func TestNormalize_AcceptsBoundaryNumbers(t *testing.T) {
	for _, complexity := range []int{1, 5} {
		for _, cta := range []int{0, 100} {
			raw := validRaw()
			raw.Complexity = ptr(complexity)
			raw.CTAIntegration = ptr(cta)

			req, err := Normalize(raw)
			require.NoError(t, err)
			assert.Equal(t, complexity, req.Complexity)
			assert.Equal(t, cta, req.CTAIntegration)
		}
	}
}

func TestNormalize_LegacyOutputContent(t *testing.T) {
	tests := []struct {
		content  string
		expected models.OutputFormat
	}{
		{"text", models.OutputFormatPlainText},
		{"style", models.OutputFormatPlainText},
		{"notion", models.OutputFormatNotionMarkdown},
		{"Notion", models.OutputFormatNotionMarkdown},
		{"react", models.OutputFormatReactComponent},
		{"react-component", models.OutputFormatReactComponent},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			raw := validRaw()
			raw.OutputContent = ptr(tt.content)

			req, err := Normalize(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req.OutputFormat)
		})
	}
}

func TestNormalize_OutputFormatConflict(t *testing.T) {
	raw := validRaw()
	raw.OutputFormat = ptr("plain-text")
	raw.OutputContent = ptr("react")

	_, err := Normalize(raw)
	require.Error(t, err)
	assert.Equal(t, []string{"outputFormat"}, fieldNames(t, err))

	raw.OutputFormat = ptr("react-component")
	req, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, models.OutputFormatReactComponent, req.OutputFormat)
}

func TestNormalize_KeywordsTrimmedInOrder(t *testing.T) {
	raw := validRaw()
	raw.Keywords = models.Keywords{" alpha ", "", "beta", "   "}

	req, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, req.Keywords)
}

func TestNormalize_LongAlwaysTargetsThousandWords(t *testing.T) {
	raw := validRaw()
	raw.Length = ptr("long")
	raw.Complexity = ptr(1)
	raw.Template = ptr("product-specs")

	req, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 1000, req.WordTarget())
}

func TestNormalize_CollectsEveryFieldError(t *testing.T) {
	raw := validRaw()
	raw.Template = ptr("haiku")
	raw.Complexity = ptr(9)
	raw.Tone = ptr("grumpy")

	_, err := Normalize(raw)
	assert.Equal(t, []string{"complexity", "template", "tone"}, fieldNames(t, err))
}
