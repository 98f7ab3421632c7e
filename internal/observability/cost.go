package observability

import (
	"strconv"
	"strings"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains list pricing for the models the gateway is expected to serve.
// Output prices apply to reasoning/thinking tokens too, which providers report inside output tokens.
var PricingTable = map[string]ModelPricing{
	// OpenAI
	"gpt-4o":       {InputPricePer1K: 0.0025, OutputPricePer1K: 0.01},
	"gpt-4o-mini":  {InputPricePer1K: 0.00015, OutputPricePer1K: 0.0006},
	"gpt-4.1":      {InputPricePer1K: 0.002, OutputPricePer1K: 0.008},
	"gpt-4.1-mini": {InputPricePer1K: 0.0004, OutputPricePer1K: 0.0016},
	"gpt-5":        {InputPricePer1K: 0.00125, OutputPricePer1K: 0.01},
	"gpt-5-mini":   {InputPricePer1K: 0.00025, OutputPricePer1K: 0.002},
	"gpt-5-nano":   {InputPricePer1K: 0.00005, OutputPricePer1K: 0.0004},
	"o4-mini":      {InputPricePer1K: 0.0011, OutputPricePer1K: 0.0044},
	// Google
	"gemini-2.5-pro":   {InputPricePer1K: 0.00125, OutputPricePer1K: 0.01},
	"gemini-2.5-flash": {InputPricePer1K: 0.0003, OutputPricePer1K: 0.0025},
	// Anthropic
	"claude-sonnet-4-5": {InputPricePer1K: 0.003, OutputPricePer1K: 0.015},
	"claude-haiku-4-5":  {InputPricePer1K: 0.001, OutputPricePer1K: 0.005},
	"claude-opus-4-1":   {InputPricePer1K: 0.015, OutputPricePer1K: 0.075},
}

// LookupPricing finds pricing for a model. Dated snapshots such as
// "gpt-4o-2024-08-06" resolve to the longest matching table entry.
func LookupPricing(model string) (ModelPricing, bool) {
	model = strings.ToLower(model)
	if pricing, ok := PricingTable[model]; ok {
		return pricing, true
	}

	best := ""
	for name := range PricingTable {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return ModelPricing{}, false
	}
	return PricingTable[best], true
}

// CalculateCost calculates the cost in USD for one completion.
// Unknown models (self-hosted OpenAI-compatible endpoints) cost nothing.
func CalculateCost(model string, inputTokens, outputTokens int64) float64 {
	pricing, ok := LookupPricing(model)
	if !ok {
		return 0
	}

	inputCost := (float64(inputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(outputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + formatFloat(cost, costFormatPrecision)
}

// formatFloat formats a float with specified precision using strconv
func formatFloat(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}
