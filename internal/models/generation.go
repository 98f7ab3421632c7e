package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Template selects the structural skeleton of the generated document
type Template string

const (
	TemplateReleaseNotes Template = "release-notes"
	TemplateUserStories  Template = "user-stories"
	TemplateProductSpecs Template = "product-specs"
)

// Templates lists every recognized template in display order
var Templates = []Template{TemplateReleaseNotes, TemplateUserStories, TemplateProductSpecs}

// Personality selects the writing voice
type Personality string

const (
	PersonalitySteveJobs Personality = "steve-jobs"
	PersonalitySamAltman Personality = "sam-altman"
	PersonalityShreyas   Personality = "shreyas"
)

// Personalities lists every recognized personality in display order
var Personalities = []Personality{PersonalitySteveJobs, PersonalitySamAltman, PersonalityShreyas}

// OutputFormat controls the formatting sub-prompt
type OutputFormat string

const (
	OutputFormatPlainText      OutputFormat = "plain-text"
	OutputFormatNotionMarkdown OutputFormat = "notion-markdown"
	OutputFormatReactComponent OutputFormat = "react-component"
)

// OutputFormats lists every recognized output format in display order
var OutputFormats = []OutputFormat{OutputFormatPlainText, OutputFormatNotionMarkdown, OutputFormatReactComponent}

// Length is the approximate size of the generated document
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Lengths lists every recognized length in display order
var Lengths = []Length{LengthShort, LengthMedium, LengthLong}

// WordTarget returns the approximate number of words for a length, or 0 if unknown
func (l Length) WordTarget() int {
	switch l {
	case LengthShort:
		return 250
	case LengthMedium:
		return 500
	case LengthLong:
		return 1000
	default:
		return 0
	}
}

// Tone is the overall register of the writing
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneInformal     Tone = "informal"
	ToneHumorous     Tone = "humorous"
	ToneProfessional Tone = "professional"
)

// Tones lists every recognized tone in display order
var Tones = []Tone{ToneFormal, ToneInformal, ToneHumorous, ToneProfessional}

// CurrentSchemaVersion is the only request schema revision the API accepts
const CurrentSchemaVersion = 3

// GenerationRequest is the JSON body of POST /generate.
// Optional fields are pointers so the normalizer can tell "absent" from "zero".
type GenerationRequest struct {
	SchemaVersion  *int      `json:"schemaVersion,omitempty"`
	Template       *string   `json:"template,omitempty"`
	Personality    *string   `json:"personality,omitempty"`
	Context        *string   `json:"context,omitempty"`
	Tone           *string   `json:"tone,omitempty"`
	Audience       *Audience `json:"audience,omitempty"`
	Complexity     *int      `json:"complexity,omitempty"`
	Length         *string   `json:"length,omitempty"`
	CTAIntegration *int      `json:"ctaIntegration,omitempty"`
	CTAText        *string   `json:"ctaText,omitempty"`
	Keywords       Keywords  `json:"keywords,omitempty"`
	OutputFormat   *string   `json:"outputFormat,omitempty"`
	// OutputContent is the legacy name of OutputFormat
	OutputContent *string `json:"outputContent,omitempty"`
}

// Demographics describes the age and gender of the target audience
type Demographics struct {
	AgeRange string `json:"ageRange"`
	Gender   string `json:"gender"`
}

// Audience describes who the document is written for.
// A disabled audience never influences the prompt.
type Audience struct {
	Enabled          bool         `json:"enabled"`
	Demographics     Demographics `json:"demographics"`
	Professional     string       `json:"professional"`
	Experience       string       `json:"experience"`
	PurchaseBehavior string       `json:"purchaseBehavior"`
	// Description holds the free-text audience sent by older clients
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts both the structured audience object and the legacy free-text string
func (a *Audience) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*a = Audience{}
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var description string
		if err := json.Unmarshal(trimmed, &description); err != nil {
			return err
		}
		description = strings.TrimSpace(description)
		*a = Audience{Enabled: description != "", Description: description}
		return nil
	}

	type audienceObject Audience
	var obj audienceObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("audience must be an object or a string: %w", err)
	}
	*a = Audience(obj)
	return nil
}

// Keywords is an ordered keyword list; older clients send a comma-separated string
type Keywords []string

// UnmarshalJSON accepts a JSON array of strings or a comma-separated string
func (k *Keywords) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*k = nil
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var joined string
		if err := json.Unmarshal(trimmed, &joined); err != nil {
			return err
		}
		*k = Keywords(strings.Split(joined, ","))
		return nil
	}

	var list []string
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return fmt.Errorf("keywords must be an array of strings or a comma-separated string: %w", err)
	}
	*k = Keywords(list)
	return nil
}

// Valid reports whether t is a recognized template
func (t Template) Valid() bool {
	for _, known := range Templates {
		if t == known {
			return true
		}
	}
	return false
}

// Valid reports whether p is a recognized personality
func (p Personality) Valid() bool {
	for _, known := range Personalities {
		if p == known {
			return true
		}
	}
	return false
}

// Valid reports whether f is a recognized output format
func (f OutputFormat) Valid() bool {
	for _, known := range OutputFormats {
		if f == known {
			return true
		}
	}
	return false
}

// Valid reports whether l is a recognized length
func (l Length) Valid() bool {
	return l.WordTarget() > 0
}

// Valid reports whether t is a recognized tone
func (t Tone) Valid() bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}
