package prompt

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
)

const (
	keywordSeparator = ", "
	listSeparator    = ", "
)

// Composer turns normalized requests into the ordered prompt messages
type Composer struct {
	catalog *Catalog
}

// NewComposer creates a composer backed by catalog
func NewComposer(catalog *Catalog) *Composer {
	return &Composer{catalog: catalog}
}

// Catalog returns the catalog the composer reads from
func (c *Composer) Catalog() *Catalog {
	return c.catalog
}

// ComposeRequest normalizes raw and composes the result
func (c *Composer) ComposeRequest(raw models.GenerationRequest) (NormalizedRequest, []models.Message, error) {
	req, err := Normalize(raw)
	if err != nil {
		return NormalizedRequest{}, nil, err
	}

	messages, err := c.Compose(req)
	if err != nil {
		return NormalizedRequest{}, nil, err
	}
	return req, messages, nil
}

// Compose builds the system message followed by the format and structure
// assistant messages. The output depends only on req and the catalog.
func (c *Composer) Compose(req NormalizedRequest) ([]models.Message, error) {
	tmpl, err := c.catalog.Template(req.Template)
	if err != nil {
		return nil, err
	}
	persona, err := c.catalog.Personality(req.Personality)
	if err != nil {
		return nil, err
	}
	format, err := c.catalog.Format(req.OutputFormat)
	if err != nil {
		return nil, err
	}

	bindings := buildBindings(req, tmpl, persona)

	audienceBlock := ""
	if details := audienceDetails(req.Audience); details != "" {
		bindings[bindAudienceDetails] = details
		block, err := render("audience", c.catalog.audience, bindings)
		if err != nil {
			return nil, err
		}
		audienceBlock = block + "\n\n"
	}
	bindings[bindAudienceBlock] = audienceBlock

	keywordsBlock := ""
	if len(req.Keywords) > 0 {
		block, err := render("keywords", c.catalog.keywords, bindings)
		if err != nil {
			return nil, err
		}
		keywordsBlock = block + "\n\n"
	}
	bindings[bindKeywordsBlock] = keywordsBlock

	system, err := render("system", c.catalog.system, bindings)
	if err != nil {
		return nil, err
	}

	formatText, err := render("format "+string(req.OutputFormat), format.Instructions, bindings)
	if err != nil {
		return nil, err
	}

	structure, err := c.structure(req, tmpl, bindings)
	if err != nil {
		return nil, err
	}

	return []models.Message{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleAssistant, Content: formatText},
		{Role: models.RoleAssistant, Content: structure},
	}, nil
}

// structure renders the template skeleton plus the call-to-action block when enabled
func (c *Composer) structure(req NormalizedRequest, tmpl TemplateFragment, bindings map[string]string) (string, error) {
	name := "template " + string(req.Template)

	out, err := render(name, tmpl.Structure, bindings)
	if err != nil {
		return "", err
	}
	if req.CTAIntegration <= 0 {
		return out, nil
	}

	cta, err := render(name+" callToAction", tmpl.CallToAction, bindings)
	if err != nil {
		return "", err
	}
	out += "\n\n" + cta

	if req.CTAText != "" {
		line, err := render(name+" callToActionText", tmpl.CallToActionText, bindings)
		if err != nil {
			return "", err
		}
		out += "\n" + line
	}

	return out, nil
}

// buildBindings binds every value fragments may reference, except the optional blocks
func buildBindings(req NormalizedRequest, tmpl TemplateFragment, persona PersonalityFragment) map[string]string {
	return map[string]string{
		bindTemplateKey:           string(req.Template),
		bindTemplateTitle:         tmpl.Title,
		bindPersonalityKey:        string(req.Personality),
		bindPersonalityName:       persona.DisplayName,
		bindPersonalityTone:       persona.Tone,
		bindPersonalityFormality:  persona.Formality,
		bindPersonalityEmotion:    persona.EmotionalStyle,
		bindPersonalityHumor:      persona.HumorLevel,
		bindPersonalityEmphasis:   persona.EmphasisStyle,
		bindPersonalityDepth:      persona.TechnicalDepth,
		bindPersonalityTraits:     bulletList(persona.Characteristics),
		bindPersonalityOpenings:   strings.Join(persona.Openings, listSeparator),
		bindPersonalityTransition: strings.Join(persona.Transitions, listSeparator),
		bindPersonalityWords:      strings.Join(persona.EmphasisWords, listSeparator),
		bindPersonalityClosings:   strings.Join(persona.Closings, listSeparator),
		bindPersonalityEmoji:      persona.EmojiStyle,
		bindTone:                  string(req.Tone),
		bindComplexity:            strconv.Itoa(req.Complexity),
		bindLength:                string(req.Length),
		bindWordTarget:            strconv.Itoa(req.WordTarget()),
		bindContext:               req.Context,
		bindCTAIntegration:        strconv.Itoa(req.CTAIntegration),
		bindCTAText:               req.CTAText,
		bindOutputFormat:          string(req.OutputFormat),
		bindKeywords:              strings.Join(req.Keywords, keywordSeparator),
		bindAudienceDetails:       "",
	}
}

// audienceDetails summarizes an enabled audience as bullet lines; empty when it should be omitted
func audienceDetails(a models.Audience) string {
	if !a.Enabled {
		return ""
	}

	var lines []string
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, "- "+label+": "+value)
		}
	}

	add("Description", a.Description)

	var demographics []string
	for _, v := range []string{a.Demographics.AgeRange, a.Demographics.Gender} {
		if v = strings.TrimSpace(v); v != "" {
			demographics = append(demographics, v)
		}
	}
	add("Demographics", strings.Join(demographics, ", "))
	add("Professional status", a.Professional)
	add("Experience level", a.Experience)
	add("Purchase behavior", a.PurchaseBehavior)

	return strings.Join(lines, "\n")
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
