package database

import (
	"fmt"
	"io/fs"
	"sort"

	schema "github.com/credoworks/bursar/pkg/database/sql"
	"github.com/credoworks/bursar/pkg/logging"
)

// EnsureSchema applies the embedded schema files in lexical order. The
// statements are idempotent (CREATE ... IF NOT EXISTS), so running at
// every startup is safe.
func EnsureSchema(db PostgresConn, logger logging.Logger) error {
	entries, err := fs.Glob(schema.Content, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list schema files: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		content, err := schema.Content.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
		logger.WithField("file", name).Debug("Applied schema file")
	}
	return nil
}
