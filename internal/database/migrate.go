package database

import (
	"embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"packtrail/internal/middleware"
)

// Migration is a versioned pair of SQL scripts.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations []Migration

func init() {
	if err := RegisterMigrations(migrationFS); err != nil {
		fmt.Printf("failed to register internal migrations: %v\n", err)
	}
}

// RegisterMigrations loads every <version>_<name>.up.sql / .down.sql pair
// from the embedded filesystem into the package registry. A .up.sql without
// its .down.sql counterpart is an error; files that do not follow the naming
// scheme are skipped with a warning.
func RegisterMigrations(efs embed.FS) error {
	entries, err := efs.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		m, err := loadMigrationPair(efs, entry.Name())
		if err != nil {
			return err
		}
		if m == nil {
			middleware.Logger.Warn("skipping misnamed migration file",
				slog.String("file", entry.Name()))
			continue
		}
		migrations = append(migrations, *m)
	}

	slices.SortFunc(migrations, func(a, b Migration) int {
		return a.Version - b.Version
	})
	return nil
}

// loadMigrationPair reads one up/down script pair. A nil, nil return means
// the filename did not parse as <version>_<name>.up.sql.
func loadMigrationPair(efs embed.FS, upName string) (*Migration, error) {
	base := strings.TrimSuffix(upName, ".up.sql")
	versionStr, name, found := strings.Cut(base, "_")
	if !found {
		return nil, nil
	}
	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return nil, nil
	}

	up, err := efs.ReadFile(filepath.Join("migrations", upName))
	if err != nil {
		return nil, fmt.Errorf("read migration %s: %w", upName, err)
	}
	downName := base + ".down.sql"
	down, err := efs.ReadFile(filepath.Join("migrations", downName))
	if err != nil {
		return nil, fmt.Errorf("read migration %s: %w", downName, err)
	}

	return &Migration{
		Version:    version,
		Name:       name,
		UpScript:   string(up),
		DownScript: string(down),
	}, nil
}

// GetMigrations returns the registered migrations sorted by version.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the registered migration with the given
// version, or nil.
func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}
