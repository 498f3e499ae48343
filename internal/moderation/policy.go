package moderation

import (
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/vibecoder/backend/internal/models"
)

const (
	// DefaultAutoHideThreshold is the report count seeded on first start.
	DefaultAutoHideThreshold = 3

	maxCustomKeywords = 500
	maxKeywordRunes   = 100
)

// SettingsStore persists the single moderation settings row.
// LoadModerationSettings returns nil, nil when the row does not exist.
type SettingsStore interface {
	LoadModerationSettings(ctx context.Context) (*models.ModerationSettings, error)
	SaveModerationSettings(ctx context.Context, keywords []string, threshold int) (*models.ModerationSettings, error)
	SeedModerationSettings(ctx context.Context, keywords []string, threshold int) (bool, error)
}

// PolicyCache holds the effective keyword list between requests.
// SetPolicyKeywords must not replace an entry with a higher version.
type PolicyCache interface {
	GetPolicyKeywords(ctx context.Context) ([]string, bool, error)
	SetPolicyKeywords(ctx context.Context, keywords []string, version int64) error
	InvalidatePolicy(ctx context.Context) error
}

// PolicyStore reads and writes the keyword policy. The cache is optional.
type PolicyStore struct {
	store SettingsStore
	cache PolicyCache
}

func NewPolicyStore(store SettingsStore, cache PolicyCache) *PolicyStore {
	return &PolicyStore{store: store, cache: cache}
}

// EnsureSeeded creates the settings row with defaults if it is missing.
// Safe to call on every start.
func (p *PolicyStore) EnsureSeeded(ctx context.Context) error {
	created, err := p.store.SeedModerationSettings(ctx, EffectiveKeywords(nil), DefaultAutoHideThreshold)
	if err != nil {
		return err
	}
	if created {
		log.Info("Seeded moderation settings", "threshold", DefaultAutoHideThreshold)
	}
	return nil
}

// GetSettings returns the stored settings or ErrSettingsNotFound.
func (p *PolicyStore) GetSettings(ctx context.Context) (*models.ModerationSettings, error) {
	settings, err := p.store.LoadModerationSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, fmt.Errorf("%w: run startup seeding first", ErrSettingsNotFound)
	}
	return settings, nil
}

// UpdateSettings replaces the custom keywords and threshold. The stored
// keyword list is always the effective set.
func (p *PolicyStore) UpdateSettings(ctx context.Context, custom []string, threshold int) (*models.ModerationSettings, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: auto-hide report threshold must be at least 1, got %d", ErrValidation, threshold)
	}
	if err := validateKeywords(custom); err != nil {
		return nil, err
	}

	saved, err := p.store.SaveModerationSettings(ctx, EffectiveKeywords(custom), threshold)
	if err != nil {
		return nil, err
	}
	p.refresh(ctx, saved)
	return saved, nil
}

// ReconcileBaseline rewrites the stored keywords when the compiled-in
// baseline has changed since they were saved. Reports whether it wrote.
func (p *PolicyStore) ReconcileBaseline(ctx context.Context) (bool, error) {
	settings, err := p.GetSettings(ctx)
	if err != nil {
		return false, err
	}

	want := EffectiveKeywords(CustomOnly(settings.BlockedKeywords))
	if slices.Equal(want, settings.BlockedKeywords) {
		return false, nil
	}

	saved, err := p.store.SaveModerationSettings(ctx, want, settings.AutoHideReportThreshold)
	if err != nil {
		return false, err
	}
	p.refresh(ctx, saved)
	log.Info("Reconciled moderation keywords with baseline", "before", len(settings.BlockedKeywords), "after", len(want))
	return true, nil
}

// Effective returns the keyword list the gate enforces.
func (p *PolicyStore) Effective(ctx context.Context) ([]string, error) {
	if p.cache != nil {
		kws, ok, err := p.cache.GetPolicyKeywords(ctx)
		if err != nil {
			log.Warn("Policy cache read failed", "error", err)
		} else if ok {
			return kws, nil
		}
	}

	settings, err := p.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.SetPolicyKeywords(ctx, settings.BlockedKeywords, policyVersion(settings)); err != nil {
			log.Warn("Policy cache write failed", "error", err)
		}
	}
	return settings.BlockedKeywords, nil
}

// ShouldAutoHide reports whether openReports has reached the configured threshold.
func (p *PolicyStore) ShouldAutoHide(ctx context.Context, openReports int) (bool, int, error) {
	settings, err := p.GetSettings(ctx)
	if err != nil {
		return false, 0, err
	}
	return openReports >= settings.AutoHideReportThreshold, settings.AutoHideReportThreshold, nil
}

// refresh writes freshly saved settings through to the cache. A concurrent
// Effective that loaded the previous row carries an older version and
// cannot overwrite this entry. Falls back to dropping the entry.
func (p *PolicyStore) refresh(ctx context.Context, saved *models.ModerationSettings) {
	if p.cache == nil {
		return
	}
	err := p.cache.SetPolicyKeywords(ctx, saved.BlockedKeywords, policyVersion(saved))
	if err == nil {
		return
	}
	log.Warn("Policy cache write-through failed, invalidating", "error", err)
	if err := p.cache.InvalidatePolicy(ctx); err != nil {
		log.Warn("Policy cache invalidation failed", "error", err)
	}
}

// policyVersion orders saved settings rows by their update time.
func policyVersion(s *models.ModerationSettings) int64 {
	return s.UpdatedAt.UnixMicro()
}

func validateKeywords(keywords []string) error {
	if len(keywords) > maxCustomKeywords {
		return fmt.Errorf("%w: at most %d custom keywords allowed, got %d", ErrValidation, maxCustomKeywords, len(keywords))
	}
	for _, kw := range keywords {
		if !utf8.ValidString(kw) {
			return fmt.Errorf("%w: keyword is not valid UTF-8", ErrValidation)
		}
		if utf8.RuneCountInString(kw) > maxKeywordRunes {
			return fmt.Errorf("%w: keyword longer than %d characters", ErrValidation, maxKeywordRunes)
		}
	}
	return nil
}
