package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// VerifySchema checks that the record tables exist. The database source is read-only,
// so nothing is created here.
func VerifySchema(ctx context.Context, db *sql.DB, tables []string) error {
	for _, table := range tables {
		var exists bool
		query := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public'
				AND table_name = $1
			)`

		if err := db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			return fmt.Errorf("checking table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("required table %s does not exist", table)
		}
	}
	return nil
}
