// Package gate decides whether a visitor turn may reach the model and which
// access tier governs it.
package gate

import (
	"strings"

	"github.com/comptoir-labs/comptoir/internal/domain"
)

// Default tier limits.
const (
	DefaultFreeQuota      = 5
	DefaultUnlockedQuota  = 30
	DefaultFreeTokens     = 1024
	DefaultUnlockedTokens = 4096
)

// Policy holds the free and unlocked tier limits.
type Policy struct {
	FreeQuota      int
	UnlockedQuota  int
	FreeTokens     int
	UnlockedTokens int
}

// DefaultPolicy returns the stock tier limits.
func DefaultPolicy() Policy {
	return Policy{
		FreeQuota:      DefaultFreeQuota,
		UnlockedQuota:  DefaultUnlockedQuota,
		FreeTokens:     DefaultFreeTokens,
		UnlockedTokens: DefaultUnlockedTokens,
	}
}

// Evaluate derives the access tier for a session.
func (p Policy) Evaluate(s *domain.Session) domain.AccessTier {
	if s.Unlocked {
		return domain.AccessTier{
			Quota:             p.UnlockedQuota,
			MaxResponseTokens: p.UnlockedTokens,
			Verbosity:         domain.VerbosityFull,
		}
	}
	return domain.AccessTier{
		Quota:             p.FreeQuota,
		MaxResponseTokens: p.FreeTokens,
		Verbosity:         domain.VerbosityConcise,
	}
}

// Admit reports whether another turn fits in the tier's quota.
func (p Policy) Admit(s *domain.Session, tier domain.AccessTier) bool {
	return s.MessageCount < tier.Quota
}

// RecordTurn charges one turn. Call it only after the model produced a reply.
func (p Policy) RecordTurn(s *domain.Session) {
	s.MessageCount++
}

// Remaining returns how many turns the active tier still allows.
func (p Policy) Remaining(s *domain.Session) int {
	n := p.Evaluate(s).Quota - s.MessageCount
	if n < 0 {
		return 0
	}
	return n
}

// Exhausted reports whether the session has used its active quota.
func (p Policy) Exhausted(s *domain.Session) bool {
	return !p.Admit(s, p.Evaluate(s))
}

// Unlock flips the session to the unlocked tier if candidate, trimmed,
// exactly matches one of the valid codes. Matching is case-sensitive.
// There is no way back to the locked tier.
func Unlock(s *domain.Session, candidate string, valid Codes) bool {
	code := strings.TrimSpace(candidate)
	if code == "" {
		return false
	}
	if _, ok := valid[code]; !ok {
		return false
	}
	s.Unlocked = true
	return true
}

// Codes is the set of accepted unlock passcodes.
type Codes map[string]struct{}

// ParseCodes splits a comma-separated passcode list. Blank entries are
// dropped, so an empty or missing setting yields an empty set.
func ParseCodes(raw string) Codes {
	codes := make(Codes)
	for _, part := range strings.Split(raw, ",") {
		if c := strings.TrimSpace(part); c != "" {
			codes[c] = struct{}{}
		}
	}
	return codes
}
