package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
	"github.com/vibecoder/backend/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[uuid.UUID]*models.User{}} }

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Nickname == user.Nickname {
			return fmt.Errorf("user %w", repository.ErrConflict)
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", repository.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %w", repository.ErrNotFound)
}

func (m *memUsers) UpdateProfile(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("user %w", repository.ErrNotFound)
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %w", repository.ErrNotFound)
	}
	u.Status = status
	return nil
}

type memProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
	likes    map[uuid.UUID]map[uuid.UUID]bool
}

func newMemProjects() *memProjects {
	return &memProjects{
		projects: map[uuid.UUID]*models.Project{},
		likes:    map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (m *memProjects) List(_ context.Context, req models.ListProjectsRequest) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Project{}
	for _, p := range m.projects {
		if p.Status == models.ProjectStatusPublished {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memProjects) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Project{}
	for _, p := range m.projects {
		if p.AuthorID == authorID && p.Status != models.ProjectStatusDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProjects) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.Status == models.ProjectStatusDeleted {
		return nil, fmt.Errorf("project %w", repository.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memProjects) Create(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *memProjects) Like(_ context.Context, projectID, userID uuid.UUID) (int, error) {
	return m.setLike(projectID, userID, true)
}

func (m *memProjects) Unlike(_ context.Context, projectID, userID uuid.UUID) (int, error) {
	return m.setLike(projectID, userID, false)
}

func (m *memProjects) setLike(projectID, userID uuid.UUID, like bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok || p.Status != models.ProjectStatusPublished {
		return 0, fmt.Errorf("project %w", repository.ErrNotFound)
	}
	if m.likes[projectID] == nil {
		m.likes[projectID] = map[uuid.UUID]bool{}
	}
	if like {
		m.likes[projectID][userID] = true
	} else {
		delete(m.likes[projectID], userID)
	}
	p.LikeCount = len(m.likes[projectID])
	return p.LikeCount, nil
}

func (m *memProjects) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("project %w", repository.ErrNotFound)
	}
	p.Status = status
	return nil
}

func (m *memProjects) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[id].Status
}

type memComments struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*models.Comment
}

func newMemComments() *memComments { return &memComments{comments: map[uuid.UUID]*models.Comment{}} }

func (m *memComments) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m *memComments) ListVisible(_ context.Context, projectID uuid.UUID, _ string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if c.ProjectID == projectID && c.Status == models.CommentStatusVisible {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memComments) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %w", repository.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *memComments) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return fmt.Errorf("comment %w", repository.ErrNotFound)
	}
	c.Status = status
	return nil
}

type memReports struct {
	mu      sync.Mutex
	reports []*models.Report
}

func isActiveReport(r *models.Report) bool {
	return r.Status == models.ReportStatusOpen || r.Status == models.ReportStatusReviewing
}

func (m *memReports) Create(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reports {
		if existing.TargetType == r.TargetType && existing.TargetID == r.TargetID &&
			existing.ReporterID == r.ReporterID && isActiveReport(existing) {
			return fmt.Errorf("active report by this user %w", repository.ErrConflict)
		}
	}
	r.CreatedAt = time.Now()
	cp := *r
	m.reports = append(m.reports, &cp)
	return nil
}

func (m *memReports) CountOpen(_ context.Context, targetType string, targetID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reporters := map[uuid.UUID]bool{}
	for _, r := range m.reports {
		if r.TargetType == targetType && r.TargetID == targetID && isActiveReport(r) {
			reporters[r.ReporterID] = true
		}
	}
	return len(reporters), nil
}

func (m *memReports) List(_ context.Context, status string) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Report{}
	for _, r := range m.reports {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReports) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			r.Status = status
			if models.IsClosingReportStatus(status) {
				now := time.Now()
				r.ResolvedAt = &now
			}
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("report %w", repository.ErrNotFound)
}

type memSettings struct {
	mu  sync.Mutex
	row *models.ModerationSettings
}

func (m *memSettings) LoadModerationSettings(_ context.Context) (*models.ModerationSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return nil, nil
	}
	cp := *m.row
	cp.BlockedKeywords = append([]string(nil), m.row.BlockedKeywords...)
	return &cp, nil
}

func (m *memSettings) SaveModerationSettings(_ context.Context, keywords []string, threshold int) (*models.ModerationSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.row = &models.ModerationSettings{
		ID:                      models.ModerationSettingsID,
		BlockedKeywords:         append([]string(nil), keywords...),
		AutoHideReportThreshold: threshold,
		UpdatedAt:               time.Now().UTC(),
	}
	cp := *m.row
	return &cp, nil
}

func (m *memSettings) SeedModerationSettings(ctx context.Context, keywords []string, threshold int) (bool, error) {
	m.mu.Lock()
	exists := m.row != nil
	m.mu.Unlock()
	if exists {
		return false, nil
	}
	_, err := m.SaveModerationSettings(ctx, keywords, threshold)
	return err == nil, err
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AdminActionLog
}

func (m *memAudit) AppendAuditLog(_ context.Context, entry *models.AdminActionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudit) RecentAuditLogs(_ context.Context, limit int) ([]models.AdminActionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AdminActionLog, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memAudit) LatestAuditLogByType(_ context.Context, actionType string) (*models.AdminActionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ActionType == actionType {
			cp := m.entries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAudit) byType(actionType string) []models.AdminActionLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AdminActionLog
	for _, e := range m.entries {
		if e.ActionType == actionType {
			out = append(out, e)
		}
	}
	return out
}
