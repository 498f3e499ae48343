package moderation

import (
	"context"
	"errors"
	"testing"
)

func TestIsBlocked(t *testing.T) {
	kws := []string{"spam"}
	tests := []struct {
		name     string
		text     string
		keywords []string
		want     bool
	}{
		{"empty text", "", kws, false},
		{"whitespace text", "   ", kws, false},
		{"punctuation only", "?!...", kws, false},
		{"plain hit", "this is SPAM content", kws, true},
		{"clean", "clean text", kws, false},
		{"spaced evasion", "s p a m", kws, true},
		{"underscore evasion", "buy s_p_a_m now", kws, true},
		{"embedded substring", "spammer", kws, true},
		{"across words", "pass pam", []string{"sspam"}, true},
		{"no keywords", "anything at all", nil, false},
		{"empty keyword ignored", "text", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlocked(tt.text, tt.keywords); got != tt.want {
				t.Errorf("IsBlocked(%q, %v) = %v, want %v", tt.text, tt.keywords, got, tt.want)
			}
		})
	}
}

func TestIsBlocked_DoesNotMutateKeywords(t *testing.T) {
	kws := []string{"spam", "foo"}
	IsBlocked("spam foo", kws)
	if kws[0] != "spam" || kws[1] != "foo" || len(kws) != 2 {
		t.Fatalf("keywords mutated: %v", kws)
	}
}

type staticKeywords []string

func (s staticKeywords) Effective(context.Context) ([]string, error) { return s, nil }

type failingKeywords struct{}

func (failingKeywords) Effective(context.Context) ([]string, error) { return nil, errStoreDown }

func TestGate_Check(t *testing.T) {
	gate := NewGate(staticKeywords{"spam"})
	ctx := context.Background()

	d, err := gate.Check(ctx, "hello", "world")
	if err != nil || !d.Allowed {
		t.Fatalf("expected allowed, got %+v err=%v", d, err)
	}

	d, err = gate.Check(ctx, "title", "this is sp-am")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected blocked decision")
	}
	if d.Reason != ContentBlockedMessage {
		t.Fatalf("reason should be generic, got %q", d.Reason)
	}
}

func TestGate_Require(t *testing.T) {
	gate := NewGate(staticKeywords{"spam"})
	if err := gate.Require(context.Background(), "SPAM!"); !errors.Is(err, ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
	if err := gate.Require(context.Background(), "fine"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestGate_PropagatesStoreError(t *testing.T) {
	gate := NewGate(failingKeywords{})
	if _, err := gate.Check(context.Background(), "x"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}
