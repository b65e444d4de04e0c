package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"gorm.io/gorm"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migration represents a database migration
type Migration struct {
	ID string
	Up func(*gorm.DB) error
}

// MigrationRecord represents a record of executed migrations
type MigrationRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// TableName keeps the bookkeeping table name stable.
func (MigrationRecord) TableName() string { return "schema_migrations" }

// Registry holds migrations by ID and runs the pending ones in ID order.
type Registry struct {
	migrations map[string]Migration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{migrations: make(map[string]Migration)}
}

// Default returns a registry loaded with the embedded SQL migrations.
func Default() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadSQL(sqlFiles, "sql"); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a new migration to the registry
func (r *Registry) Register(id string, up func(*gorm.DB) error) {
	r.migrations[id] = Migration{ID: id, Up: up}
}

// IDs returns the registered migration IDs in execution order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.migrations))
	for id := range r.migrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadSQL registers every .sql file in dir; the file name without the
// extension is the migration ID.
func (r *Registry) LoadSQL(fsys fs.FS, dir string) error {
	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}
		stmt := string(content)
		r.Register(strings.TrimSuffix(file.Name(), ".sql"), func(db *gorm.DB) error {
			return db.Exec(stmt).Error
		})
	}
	return nil
}

// Run executes all pending migrations
func (r *Registry) Run(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}
	done := make(map[string]bool, len(executed))
	for _, m := range executed {
		done[m.ID] = true
	}

	for _, id := range r.IDs() {
		if done[id] {
			continue
		}
		slog.Info("Running migration", "id", id)
		if err := r.migrations[id].Up(db); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", id, err)
		}
		if err := db.Create(&MigrationRecord{ID: id}).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", id, err)
		}
	}
	return nil
}
