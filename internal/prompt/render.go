package prompt

import (
	"regexp"
)

// placeholderPattern matches {{name}} tokens, tolerating inner spaces
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Binding names the composer supplies to every fragment
const (
	bindTemplateKey           = "template_key"
	bindTemplateTitle         = "template_title"
	bindPersonalityKey        = "personality_key"
	bindPersonalityName       = "personality_name"
	bindPersonalityTone       = "personality_tone"
	bindPersonalityFormality  = "personality_formality"
	bindPersonalityEmotion    = "personality_emotional_style"
	bindPersonalityHumor      = "personality_humor_level"
	bindPersonalityEmphasis   = "personality_emphasis_style"
	bindPersonalityDepth      = "personality_technical_depth"
	bindPersonalityTraits     = "personality_characteristics"
	bindPersonalityOpenings   = "personality_openings"
	bindPersonalityTransition = "personality_transitions"
	bindPersonalityWords      = "personality_emphasis_words"
	bindPersonalityClosings   = "personality_closings"
	bindPersonalityEmoji      = "personality_emoji_style"
	bindTone                  = "tone"
	bindComplexity            = "complexity"
	bindLength                = "length"
	bindWordTarget            = "word_target"
	bindContext               = "context"
	bindCTAIntegration        = "cta_integration"
	bindCTAText               = "cta_text"
	bindOutputFormat          = "output_format"
	bindKeywords              = "keywords"
	bindAudienceDetails       = "audience_details"
	bindAudienceBlock         = "audience_block"
	bindKeywordsBlock         = "keywords_block"
)

var knownBindings = map[string]bool{
	bindTemplateKey: true, bindTemplateTitle: true,
	bindPersonalityKey: true, bindPersonalityName: true, bindPersonalityTone: true,
	bindPersonalityFormality: true, bindPersonalityEmotion: true, bindPersonalityHumor: true,
	bindPersonalityEmphasis: true, bindPersonalityDepth: true, bindPersonalityTraits: true,
	bindPersonalityOpenings: true, bindPersonalityTransition: true, bindPersonalityWords: true,
	bindPersonalityClosings: true, bindPersonalityEmoji: true,
	bindTone: true, bindComplexity: true, bindLength: true, bindWordTarget: true,
	bindContext: true, bindCTAIntegration: true, bindCTAText: true, bindOutputFormat: true,
	bindKeywords: true, bindAudienceDetails: true, bindAudienceBlock: true, bindKeywordsBlock: true,
}

// Placeholders returns the distinct placeholder names in fragment, in order of first use
func Placeholders(fragment string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(fragment, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// render substitutes every placeholder in fragment in a single pass.
// Inserted values are never rescanned, so user text containing {{...}} passes through verbatim.
func render(name, fragment string, bindings map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)

	out := placeholderPattern.ReplaceAllStringFunc(fragment, func(token string) string {
		key := placeholderPattern.FindStringSubmatch(token)[1]
		if value, ok := bindings[key]; ok {
			return value
		}
		if !seen[key] {
			seen[key] = true
			missing = append(missing, key)
		}
		return token
	})

	if len(missing) > 0 {
		return "", &TemplateInterpolationError{Fragment: name, Missing: missing}
	}
	return out, nil
}
