package domain

// Verbosity selects how much the agent is allowed to say per turn.
type Verbosity string

const (
	VerbosityConcise Verbosity = "concise"
	VerbosityFull    Verbosity = "full"
)

// AccessTier is derived from a session's unlock state; it is never stored.
type AccessTier struct {
	Quota             int       `json:"quota"`
	MaxResponseTokens int       `json:"max_response_tokens"`
	Verbosity         Verbosity `json:"verbosity"`
}
