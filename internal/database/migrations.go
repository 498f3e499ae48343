package database

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				email VARCHAR(255) UNIQUE NOT NULL,
				nickname VARCHAR(100) UNIQUE NOT NULL,
				bio TEXT,
				avatar_url VARCHAR(500),
				role VARCHAR(20) NOT NULL DEFAULT 'user',
				status VARCHAR(20) NOT NULL DEFAULT 'active',
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
		`,
		Down: `
			DROP TABLE IF EXISTS users;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS projects (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				summary VARCHAR(500) NOT NULL,
				description TEXT,
				thumbnail_url VARCHAR(500),
				demo_url VARCHAR(500),
				repo_url VARCHAR(500),
				platform VARCHAR(50) NOT NULL DEFAULT 'web',
				tags TEXT[] NOT NULL DEFAULT '{}',
				status VARCHAR(20) NOT NULL DEFAULT 'published',
				like_count INT NOT NULL DEFAULT 0,
				comment_count INT NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_projects_author ON projects(author_id);
			CREATE INDEX IF NOT EXISTS idx_projects_status_created ON projects(status, created_at DESC);

			CREATE TABLE IF NOT EXISTS project_likes (
				project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				PRIMARY KEY (project_id, user_id)
			);
		`,
		Down: `
			DROP TABLE IF EXISTS project_likes;
			DROP TABLE IF EXISTS projects;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS comments (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				parent_id UUID REFERENCES comments(id) ON DELETE CASCADE,
				content TEXT NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'visible',
				like_count INT NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_comments_project ON comments(project_id, created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS comments;
		`,
	},
	{
		Version: 4,
		Up: `
			CREATE TABLE IF NOT EXISTS reports (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				target_type VARCHAR(20) NOT NULL,
				target_id UUID NOT NULL,
				reporter_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				reason VARCHAR(50) NOT NULL,
				memo TEXT,
				status VARCHAR(20) NOT NULL DEFAULT 'open',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				resolved_at TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_reports_target ON reports(target_type, target_id, status);
			CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status, created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS reports;
		`,
	},
	{
		Version: 5,
		Up: `
			CREATE TABLE IF NOT EXISTS moderation_settings (
				id INT PRIMARY KEY CHECK (id = 1),
				blocked_keywords TEXT[] NOT NULL DEFAULT '{}',
				auto_hide_report_threshold INT NOT NULL DEFAULT 3 CHECK (auto_hide_report_threshold >= 1),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS moderation_settings;
		`,
	},
	{
		Version: 6,
		Up: `
			CREATE TABLE IF NOT EXISTS admin_action_logs (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				admin_id UUID NOT NULL,
				action_type VARCHAR(50) NOT NULL,
				target_type VARCHAR(50) NOT NULL,
				target_id VARCHAR(100) NOT NULL,
				reason TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_admin_action_logs_created ON admin_action_logs(created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_admin_action_logs_type ON admin_action_logs(action_type, created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS admin_action_logs;
		`,
	},
	{
		Version: 7,
		Up: `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_active_reporter
				ON reports(target_type, target_id, reporter_id)
				WHERE status IN ('open', 'reviewing');
		`,
		Down: `
			DROP INDEX IF EXISTS idx_reports_active_reporter;
		`,
	},
}

func sortedMigrations() []Migration {
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	// Run pending migrations in ascending order by version
	for _, migration := range sortedMigrations() {
		if migration.Version <= currentVersion {
			continue
		}

		log.Info("Running migration", "version", migration.Version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		log.Info("Migration completed", "version", migration.Version)
	}

	return nil
}

// RollbackMigrations reverts the newest applied migrations, at most steps of them
func RollbackMigrations(db *sql.DB, steps int) error {
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	sorted := sortedMigrations()
	for i := len(sorted) - 1; i >= 0 && steps > 0; i-- {
		migration := sorted[i]
		if migration.Version > currentVersion {
			continue
		}

		log.Info("Reverting migration", "version", migration.Version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Down); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to revert migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to unrecord migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit rollback %d: %w", migration.Version, err)
		}
		steps--
	}

	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// CurrentVersion returns the highest applied migration version, 0 if none
func CurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
