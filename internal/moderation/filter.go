package moderation

import (
	"context"
	"strings"
)

// IsBlocked reports whether any keyword occurs inside the normalized text.
// Matching is by substring, so a keyword embedded in a longer word still
// hits. keywords must already be normalized; it is never modified.
func IsBlocked(text string, keywords []string) bool {
	normalized := Normalize(text)
	if normalized == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// Decision is the outcome of a content check. Reason never names the keyword.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

var allowed = Decision{Allowed: true}

// KeywordSource supplies the effective keyword list.
type KeywordSource interface {
	Effective(ctx context.Context) ([]string, error)
}

// Gate checks user text before it is persisted.
type Gate struct {
	policy KeywordSource
}

func NewGate(policy KeywordSource) *Gate {
	return &Gate{policy: policy}
}

// Check blocks if any of texts is blocked. Each text is matched on its own.
func (g *Gate) Check(ctx context.Context, texts ...string) (Decision, error) {
	keywords, err := g.policy.Effective(ctx)
	if err != nil {
		return Decision{}, err
	}
	for _, text := range texts {
		if IsBlocked(text, keywords) {
			return Decision{Allowed: false, Reason: ContentBlockedMessage}, nil
		}
	}
	return allowed, nil
}

// Require is Check for callers that want ErrContentBlocked instead of a Decision.
func (g *Gate) Require(ctx context.Context, texts ...string) error {
	d, err := g.Check(ctx, texts...)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return ErrContentBlocked
	}
	return nil
}
