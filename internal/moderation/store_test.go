package moderation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/vibecoder/backend/internal/models"
)

var errStoreDown = errors.New("store unavailable")

// memorySettings is an in-memory SettingsStore.
type memorySettings struct {
	mu       sync.Mutex
	row      *models.ModerationSettings
	saves    int
	failSave bool
}

func (m *memorySettings) LoadModerationSettings(_ context.Context) (*models.ModerationSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return nil, nil
	}
	copy := *m.row
	copy.BlockedKeywords = append([]string(nil), m.row.BlockedKeywords...)
	return &copy, nil
}

func (m *memorySettings) SaveModerationSettings(_ context.Context, keywords []string, threshold int) (*models.ModerationSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return nil, errStoreDown
	}
	m.saves++
	updatedAt := time.Now().UTC().Truncate(time.Microsecond)
	if m.row != nil && !updatedAt.After(m.row.UpdatedAt) {
		updatedAt = m.row.UpdatedAt.Add(time.Microsecond)
	}
	m.row = &models.ModerationSettings{
		ID:                      models.ModerationSettingsID,
		BlockedKeywords:         append([]string(nil), keywords...),
		AutoHideReportThreshold: threshold,
		UpdatedAt:               updatedAt,
	}
	copy := *m.row
	return &copy, nil
}

func (m *memorySettings) SeedModerationSettings(ctx context.Context, keywords []string, threshold int) (bool, error) {
	m.mu.Lock()
	exists := m.row != nil
	m.mu.Unlock()
	if exists {
		return false, nil
	}
	_, err := m.SaveModerationSettings(ctx, keywords, threshold)
	return err == nil, err
}

// memoryAudit is an in-memory AuditStore.
type memoryAudit struct {
	mu         sync.Mutex
	entries    []models.AdminActionLog
	failAppend bool
}

func (m *memoryAudit) AppendAuditLog(_ context.Context, entry *models.AdminActionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return errStoreDown
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAudit) RecentAuditLogs(_ context.Context, limit int) ([]models.AdminActionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.AdminActionLog(nil), m.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryAudit) LatestAuditLogByType(_ context.Context, actionType string) (*models.AdminActionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.AdminActionLog
	for i := range m.entries {
		e := m.entries[i]
		if e.ActionType != actionType {
			continue
		}
		if latest == nil || !e.CreatedAt.Before(latest.CreatedAt) {
			latest = &e
		}
	}
	return latest, nil
}

func (m *memoryAudit) count(actionType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.ActionType == actionType {
			n++
		}
	}
	return n
}

// memoryCache is an in-memory PolicyCache.
type memoryCache struct {
	mu          sync.Mutex
	keywords    []string
	version     int64
	ok          bool
	invalidated int
	failSet     bool
}

func (c *memoryCache) GetPolicyKeywords(_ context.Context) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keywords, c.ok, nil
}

func (c *memoryCache) SetPolicyKeywords(_ context.Context, keywords []string, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errStoreDown
	}
	if c.ok && c.version > version {
		return nil
	}
	c.keywords, c.version, c.ok = keywords, version, true
	return nil
}

func (c *memoryCache) InvalidatePolicy(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keywords, c.version, c.ok = nil, 0, false
	c.invalidated++
	return nil
}

// stepClock advances one second per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.AdminActionLog
	err  error
}

func (p *recordingPublisher) PublishAdminAction(_ context.Context, entry models.AdminActionLog) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, entry)
	return p.err
}

func newSeededPolicy(t testing.TB) (*PolicyStore, *memorySettings) {
	t.Helper()
	settings := &memorySettings{}
	p := NewPolicyStore(settings, nil)
	if err := p.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	return p, settings
}
