package anthropic

import "go.uber.org/zap"

// Cache token multipliers relative to the input rate.
const (
	cacheWriteMultiplier = 1.25
	cacheReadMultiplier  = 0.1
)

// TokenUsage is the token accounting of one call.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// modelRate is USD per million tokens.
type modelRate struct {
	input  float64
	output float64
}

var modelRates = map[string]modelRate{
	"claude-haiku-4-5-20251001":  {input: 0.80, output: 4.00},
	"claude-sonnet-4-5-20250929": {input: 3.00, output: 15.00},
	"claude-opus-4-6":            {input: 15.00, output: 75.00},
}

// EstimateCost returns the estimated USD cost for model, or 0 when the
// model has no known rate.
func (u TokenUsage) EstimateCost(model string) float64 {
	r, ok := modelRates[model]
	if !ok {
		return 0
	}
	perToken := func(n int64, rate float64) float64 { return float64(n) / 1e6 * rate }
	return perToken(u.InputTokens, r.input) +
		perToken(u.OutputTokens, r.output) +
		perToken(u.CacheCreationInputTokens, r.input*cacheWriteMultiplier) +
		perToken(u.CacheReadInputTokens, r.input*cacheReadMultiplier)
}

// LogCost logs the usage and estimated cost of one call.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadInputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}
