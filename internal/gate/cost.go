package gate

// Per-turn usage assumptions for the session cost estimate.
const (
	inputTokensPerTurn  = 80_000
	outputTokensPerTurn = 500
)

// Pricing is the model price in USD per million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// DefaultPricing is used when no prices are configured.
func DefaultPricing() Pricing {
	return Pricing{InputPerMillion: 0.80, OutputPerMillion: 4.00}
}

// EstimatedCost approximates what a session has cost after turns model calls.
func (pr Pricing) EstimatedCost(turns int) float64 {
	in := float64(turns) * inputTokensPerTurn * pr.InputPerMillion / 1_000_000
	out := float64(turns) * outputTokensPerTurn * pr.OutputPerMillion / 1_000_000
	return in + out
}
