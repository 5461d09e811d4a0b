package store

import (
	"fmt"
	"sort"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

// Tables are created with IF NOT EXISTS so a database written by an earlier
// build, which has the tables but no schema_versions history, migrates cleanly.
var migrations = []migration{
	{
		Version:     1,
		Description: "users: single scoring profile",
		SQL: `
CREATE TABLE IF NOT EXISTS users (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    points      INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "habits: habit catalog",
		SQL: `
CREATE TABLE IF NOT EXISTS habits (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    habit_name  TEXT NOT NULL,
    points      INTEGER NOT NULL
);
`,
	},
	{
		Version:     3,
		Description: "records: daily point deltas",
		SQL: `
CREATE TABLE IF NOT EXISTS records (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    points      INTEGER NOT NULL,
    created_at  TEXT NOT NULL UNIQUE
);
`,
	},
	{
		Version:     4,
		Description: "records: collapse duplicate day labels, enforce uniqueness",
		SQL: `
UPDATE records
   SET points = MAX(-32768, MIN(32767, (SELECT SUM(r2.points) FROM records r2 WHERE r2.created_at = records.created_at)))
 WHERE id IN (SELECT MIN(id) FROM records GROUP BY created_at HAVING COUNT(*) > 1);

DELETE FROM records WHERE id NOT IN (SELECT MIN(id) FROM records GROUP BY created_at);

CREATE UNIQUE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return Classify(fmt.Errorf("create schema_versions: %w", err))
	}

	pending := make([]migration, len(migrations))
	copy(pending, migrations)
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	// Versions are checked one by one, so gaps in the recorded history and
	// versions this build does not know about are both tolerated.
	for _, m := range pending {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return Classify(fmt.Errorf("check migration %d: %w", m.Version, err))
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return Classify(fmt.Errorf("begin migration %d: %w", m.Version, err))
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return Classify(fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err))
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return Classify(fmt.Errorf("record migration %d: %w", m.Version, err))
		}

		if err := tx.Commit(); err != nil {
			return Classify(fmt.Errorf("commit migration %d: %w", m.Version, err))
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}

// LatestVersion returns the highest migration version known to this build.
func LatestVersion() int {
	latest := 0
	for _, m := range migrations {
		if m.Version > latest {
			latest = m.Version
		}
	}
	return latest
}
