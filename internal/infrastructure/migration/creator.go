package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MigrationFile describes a created up/down migration pair
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration creates an empty up/down migration pair named with a
// sortable timestamp version
func CreateMigration(migrationsDir, name string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	baseName := fmt.Sprintf("%s_%s", version, sanitizeName(name))

	mf := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(migrationsDir, baseName+".up.sql"),
		DownPath: filepath.Join(migrationsDir, baseName+".down.sql"),
	}

	header := fmt.Sprintf("-- %s\n-- Created: %s\n\n", name, now.Format(time.RFC3339))
	if err := os.WriteFile(mf.UpPath, []byte(header), 0644); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(header), 0644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}

	return mf, nil
}

// sanitizeName converts a migration name to a safe snake_case file name
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	return strings.TrimSuffix(string(result), "_")
}

// ListMigrations returns the base names of all migrations in a directory
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			migrations = append(migrations, base)
		}
	}
	return migrations, nil
}
