package gate

import (
	"math"
	"testing"
	"time"

	"github.com/comptoir-labs/comptoir/internal/domain"
)

func newSession() *domain.Session {
	return domain.NewSession("v:tab", time.Unix(0, 0))
}

func TestEvaluate(t *testing.T) {
	p := DefaultPolicy()
	s := newSession()

	tier := p.Evaluate(s)
	if tier.Quota != DefaultFreeQuota || tier.MaxResponseTokens != DefaultFreeTokens || tier.Verbosity != domain.VerbosityConcise {
		t.Fatalf("unexpected free tier: %+v", tier)
	}

	s.Unlocked = true
	tier = p.Evaluate(s)
	if tier.Quota != DefaultUnlockedQuota || tier.MaxResponseTokens != DefaultUnlockedTokens || tier.Verbosity != domain.VerbosityFull {
		t.Fatalf("unexpected unlocked tier: %+v", tier)
	}
}

func TestAdmitStopsAtQuota(t *testing.T) {
	p := Policy{FreeQuota: 5, UnlockedQuota: 30, FreeTokens: 1024, UnlockedTokens: 4096}
	s := newSession()
	s.MessageCount = 4

	if !p.Admit(s, p.Evaluate(s)) {
		t.Fatal("expected admit with 4 of 5 used")
	}

	p.RecordTurn(s)
	if s.MessageCount != 5 {
		t.Fatalf("expected count 5, got %d", s.MessageCount)
	}
	if p.Admit(s, p.Evaluate(s)) {
		t.Fatal("expected reject once count reaches quota")
	}
	if !p.Exhausted(s) {
		t.Fatal("expected exhausted")
	}
	if got := p.Remaining(s); got != 0 {
		t.Fatalf("expected 0 remaining, got %d", got)
	}
}

func TestUnlockRaisesQuotaWithoutResettingCounter(t *testing.T) {
	p := DefaultPolicy()
	s := newSession()
	s.MessageCount = DefaultFreeQuota

	if !Unlock(s, "ABC123", ParseCodes("ABC123")) {
		t.Fatal("expected unlock")
	}
	if s.MessageCount != DefaultFreeQuota {
		t.Fatalf("counter must not reset, got %d", s.MessageCount)
	}
	if !p.Admit(s, p.Evaluate(s)) {
		t.Fatal("expected admit after unlock")
	}
	if got := p.Remaining(s); got != DefaultUnlockedQuota-DefaultFreeQuota {
		t.Fatalf("unexpected remaining %d", got)
	}
}

func TestUnlock(t *testing.T) {
	codes := ParseCodes("ABC123")

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"case sensitive", "abc123", false},
		{"trimmed", " ABC123 ", true},
		{"exact", "ABC123", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"prefix", "ABC12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession()
			got := Unlock(s, tt.candidate, codes)
			if got != tt.want {
				t.Fatalf("Unlock(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
			if s.Unlocked != tt.want {
				t.Fatalf("Unlocked = %v, want %v", s.Unlocked, tt.want)
			}
		})
	}
}

func TestUnlockIsMonotonic(t *testing.T) {
	codes := ParseCodes("ABC123")
	s := newSession()

	Unlock(s, "ABC123", codes)
	Unlock(s, "wrong", codes)
	Unlock(s, "", codes)

	if !s.Unlocked {
		t.Fatal("failed unlock attempts must not relock the session")
	}
}

func TestParseCodes(t *testing.T) {
	codes := ParseCodes(" one, two ,,three,")
	if len(codes) != 3 {
		t.Fatalf("expected 3 codes, got %d: %v", len(codes), codes)
	}
	for _, c := range []string{"one", "two", "three"} {
		if _, ok := codes[c]; !ok {
			t.Errorf("missing code %q", c)
		}
	}

	if got := ParseCodes(""); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
	if Unlock(newSession(), "anything", ParseCodes("")) {
		t.Fatal("empty code set must reject everything")
	}
}

func TestCounterNeverDecreases(t *testing.T) {
	p := DefaultPolicy()
	s := newSession()
	prev := s.MessageCount
	for i := 0; i < 50; i++ {
		tier := p.Evaluate(s)
		if p.Admit(s, tier) {
			p.RecordTurn(s)
		}
		if s.MessageCount < prev {
			t.Fatalf("counter decreased from %d to %d", prev, s.MessageCount)
		}
		if s.MessageCount > tier.Quota {
			t.Fatalf("counter %d exceeded quota %d", s.MessageCount, tier.Quota)
		}
		prev = s.MessageCount
	}
	if s.MessageCount != DefaultFreeQuota {
		t.Fatalf("expected counter to stop at %d, got %d", DefaultFreeQuota, s.MessageCount)
	}
}

func TestEstimatedCost(t *testing.T) {
	pr := Pricing{InputPerMillion: 0.80, OutputPerMillion: 4.00}
	got := pr.EstimatedCost(5)
	want := 5*80_000*0.80/1_000_000 + 5*500*4.00/1_000_000
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("EstimatedCost(5) = %f, want %f", got, want)
	}
	if pr.EstimatedCost(0) != 0 {
		t.Fatal("expected zero cost for zero turns")
	}
}
