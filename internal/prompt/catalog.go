package prompt

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/scribe-api/internal/logger"
	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/Conceptual-Machines/scribe-api/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// TemplateFragment is the structural skeleton of one document type
type TemplateFragment struct {
	Title            string `yaml:"title" json:"title"`
	Structure        string `yaml:"structure" json:"-"`
	CallToAction     string `yaml:"callToAction" json:"-"`
	CallToActionText string `yaml:"callToActionText" json:"-"`
}

// PersonalityFragment describes one writing voice
type PersonalityFragment struct {
	DisplayName     string   `yaml:"displayName" json:"displayName"`
	Tone            string   `yaml:"tone" json:"tone"`
	Formality       string   `yaml:"formality" json:"formality"`
	EmotionalStyle  string   `yaml:"emotionalStyle" json:"emotionalStyle"`
	HumorLevel      string   `yaml:"humorLevel" json:"humorLevel"`
	EmphasisStyle   string   `yaml:"emphasisStyle" json:"emphasisStyle"`
	TechnicalDepth  string   `yaml:"technicalDepth" json:"technicalDepth"`
	Characteristics []string `yaml:"characteristics" json:"characteristics"`
	Openings        []string `yaml:"openings" json:"-"`
	Transitions     []string `yaml:"transitions" json:"-"`
	EmphasisWords   []string `yaml:"emphasisWords" json:"-"`
	Closings        []string `yaml:"closings" json:"-"`
	EmojiStyle      string   `yaml:"emojiStyle" json:"emojiStyle"`
}

// FormatFragment holds the formatting sub-prompt of one output format
type FormatFragment struct {
	Instructions string `yaml:"instructions"`
}

// CatalogData is the raw, mutable content a Catalog is built from
type CatalogData struct {
	Version       int                                        `yaml:"version"`
	System        string                                     `yaml:"system"`
	Audience      string                                     `yaml:"audience"`
	Keywords      string                                     `yaml:"keywords"`
	Templates     map[models.Template]TemplateFragment       `yaml:"templates"`
	Personalities map[models.Personality]PersonalityFragment `yaml:"personalities"`
	Formats       map[models.OutputFormat]FormatFragment     `yaml:"formats"`
}

// Catalog is the immutable fragment lookup table shared by every request.
// It is safe for concurrent use because nothing mutates it after construction.
type Catalog struct {
	system        string
	audience      string
	keywords      string
	templates     map[models.Template]TemplateFragment
	personalities map[models.Personality]PersonalityFragment
	formats       map[models.OutputFormat]FormatFragment
}

// NewCatalog builds a catalog from data without completeness checks.
// Partial catalogs are useful in tests; lookups of missing keys fail with Unknown*Error.
func NewCatalog(data CatalogData) *Catalog {
	c := &Catalog{
		system:        strings.TrimSpace(data.System),
		audience:      strings.TrimSpace(data.Audience),
		keywords:      strings.TrimSpace(data.Keywords),
		templates:     make(map[models.Template]TemplateFragment, len(data.Templates)),
		personalities: make(map[models.Personality]PersonalityFragment, len(data.Personalities)),
		formats:       make(map[models.OutputFormat]FormatFragment, len(data.Formats)),
	}

	for k, v := range data.Templates {
		v.Structure = strings.TrimSpace(v.Structure)
		v.CallToAction = strings.TrimSpace(v.CallToAction)
		v.CallToActionText = strings.TrimSpace(v.CallToActionText)
		c.templates[k] = v
	}
	for k, v := range data.Personalities {
		v.Characteristics = append([]string(nil), v.Characteristics...)
		v.Openings = append([]string(nil), v.Openings...)
		v.Transitions = append([]string(nil), v.Transitions...)
		v.EmphasisWords = append([]string(nil), v.EmphasisWords...)
		v.Closings = append([]string(nil), v.Closings...)
		c.personalities[k] = v
	}
	for k, v := range data.Formats {
		v.Instructions = strings.TrimSpace(v.Instructions)
		c.formats[k] = v
	}

	return c
}

// ParseCatalog decodes YAML catalog data and checks that every recognized
// template, personality and output format has an entry
func ParseCatalog(raw []byte) (*Catalog, error) {
	var data CatalogData
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}

	return NewCatalog(data), nil
}

// LoadCatalogFile reads and validates a catalog from disk
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// DefaultCatalog returns the catalog compiled into the binary
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embedded.CatalogYAML)
}

// LoadCatalog returns the catalog at path, or the embedded default when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	logger.Info("Loading prompt catalog override", logger.Fields{"path": path})
	return LoadCatalogFile(path)
}

// Validate checks the catalog covers every recognized key, holds no unknown
// keys and only references placeholders the composer binds
func (d CatalogData) Validate() error {
	var problems []string

	check := func(name, fragment string) {
		if strings.TrimSpace(fragment) == "" {
			problems = append(problems, name+" is empty")
			return
		}
		for _, p := range Placeholders(fragment) {
			if !knownBindings[p] {
				problems = append(problems, fmt.Sprintf("%s references unknown placeholder {{%s}}", name, p))
			}
		}
	}

	check("system", d.System)
	check("audience", d.Audience)
	check("keywords", d.Keywords)

	for _, t := range models.Templates {
		frag, ok := d.Templates[t]
		if !ok {
			problems = append(problems, fmt.Sprintf("template %q is missing", t))
			continue
		}
		if frag.Title == "" {
			problems = append(problems, fmt.Sprintf("template %q has no title", t))
		}
		check("template "+string(t)+" structure", frag.Structure)
		check("template "+string(t)+" callToAction", frag.CallToAction)
		check("template "+string(t)+" callToActionText", frag.CallToActionText)
	}
	for t := range d.Templates {
		if !t.Valid() {
			problems = append(problems, fmt.Sprintf("template %q is not recognized", t))
		}
	}

	for _, p := range models.Personalities {
		frag, ok := d.Personalities[p]
		if !ok {
			problems = append(problems, fmt.Sprintf("personality %q is missing", p))
			continue
		}
		if frag.DisplayName == "" {
			problems = append(problems, fmt.Sprintf("personality %q has no displayName", p))
		}
	}
	for p := range d.Personalities {
		if !p.Valid() {
			problems = append(problems, fmt.Sprintf("personality %q is not recognized", p))
		}
	}

	for _, f := range models.OutputFormats {
		frag, ok := d.Formats[f]
		if !ok {
			problems = append(problems, fmt.Sprintf("format %q is missing", f))
			continue
		}
		check("format "+string(f), frag.Instructions)
	}
	for f := range d.Formats {
		if !f.Valid() {
			problems = append(problems, fmt.Sprintf("format %q is not recognized", f))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Template returns the structural fragment for t
func (c *Catalog) Template(t models.Template) (TemplateFragment, error) {
	frag, ok := c.templates[t]
	if !ok {
		return TemplateFragment{}, &UnknownTemplateError{Value: string(t)}
	}
	return frag, nil
}

// Personality returns the voice fragment for p
func (c *Catalog) Personality(p models.Personality) (PersonalityFragment, error) {
	frag, ok := c.personalities[p]
	if !ok {
		return PersonalityFragment{}, &UnknownPersonalityError{Value: string(p)}
	}
	return frag, nil
}

// Format returns the formatting fragment for f
func (c *Catalog) Format(f models.OutputFormat) (FormatFragment, error) {
	frag, ok := c.formats[f]
	if !ok {
		return FormatFragment{}, &UnknownFormatError{Value: string(f)}
	}
	return frag, nil
}

// Templates lists the catalog's templates in display order
func (c *Catalog) Templates() []models.Template {
	out := make([]models.Template, 0, len(c.templates))
	for _, t := range models.Templates {
		if _, ok := c.templates[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Personalities lists the catalog's personalities in display order
func (c *Catalog) Personalities() []models.Personality {
	out := make([]models.Personality, 0, len(c.personalities))
	for _, p := range models.Personalities {
		if _, ok := c.personalities[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Formats lists the catalog's output formats in display order
func (c *Catalog) Formats() []models.OutputFormat {
	out := make([]models.OutputFormat, 0, len(c.formats))
	for _, f := range models.OutputFormats {
		if _, ok := c.formats[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
