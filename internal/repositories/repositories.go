package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/desertthunder/msx/internal/shared"
)

var tableName = regexp.MustCompile(`^[a-z_]+$`)

// NextSequence increments and returns the counter stored in the "{table}_sequence" table.
//
// The increment and read are a single UPDATE ... RETURNING statement, so concurrent callers never share a value.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !tableName.MatchString(table) {
		return 0, fmt.Errorf("%w: table name %q", shared.ErrInvalidArgument, table)
	}

	var sequence int
	err := db.QueryRow(`UPDATE ` + table + `_sequence SET value = value + 1 WHERE id = 1 RETURNING value`).Scan(&sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s_sequence has no counter row", shared.ErrNotFound, table)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	return sequence, nil
}
