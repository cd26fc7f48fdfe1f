// Package reader implements the table-reader capability over uploaded
// SQLite database files.
//
// The reader is intentionally dumb: it enumerates tables, reports column
// order, and materializes whole row sets. It offers no offset/limit;
// pagination over its output belongs to the caller. Databases are opened
// read-only so a parse can never mutate an uploaded file.
package reader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrMalformedFile indicates the uploaded file is not a readable database.
var ErrMalformedFile = errors.New("malformed database file")

// ErrTableNotFound indicates the requested table does not exist in the file.
var ErrTableNotFound = errors.New("table not found")

// Handle is an open, read-only view of one uploaded database file.
type Handle struct {
	db   *gorm.DB
	path string
}

// Open opens the database file at path for reading.
// Returns ErrMalformedFile (wrapped) if the file is missing or is not a
// valid SQLite database.
func Open(path string) (*Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	db, err := gorm.Open(sqlite.Open("file:"+path+"?mode=ro"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	h := &Handle{db: db, path: path}

	// The driver opens lazily; a sqlite_master probe is what actually
	// detects a non-database file.
	if _, err := h.ListTables(); err != nil {
		h.Close()
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	return h, nil
}

// Path returns the file path this handle was opened from.
func (h *Handle) Path() string {
	return h.path
}

// Close releases the underlying database connection.
func (h *Handle) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListTables returns the names of all user tables in the file, ordered by name.
// Internal sqlite_* tables are excluded.
func (h *Handle) ListTables() ([]string, error) {
	var names []string
	err := h.db.
		Raw(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Columns returns the ordered column names of the given table.
// Returns ErrTableNotFound if the table does not exist.
func (h *Handle) Columns(table string) ([]string, error) {
	var cols []struct {
		Name string
	}
	err := h.db.Raw(fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(table))).Scan(&cols).Error
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names, nil
}

// RowCount returns the number of rows in the given table.
func (h *Handle) RowCount(table string) (int, error) {
	if err := h.mustExist(table); err != nil {
		return 0, err
	}
	// The SQL is built directly: gorm's Table() would escape the already
	// quoted identifier a second time.
	var count int64
	err := h.db.Raw(`SELECT COUNT(*) FROM ` + quoteIdent(table)).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// AllRows materializes every row of the given table as column-name → value
// maps, in the table's natural order. There is no streaming variant.
func (h *Handle) AllRows(table string) ([]map[string]any, error) {
	if err := h.mustExist(table); err != nil {
		return nil, err
	}
	var rows []map[string]any
	err := h.db.Raw(`SELECT * FROM ` + quoteIdent(table)).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mustExist verifies the table exists so callers get ErrTableNotFound
// instead of a driver-specific "no such table" error.
func (h *Handle) mustExist(table string) error {
	var count int64
	err := h.db.
		Raw(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).
		Scan(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	return nil
}

// quoteIdent quotes a SQL identifier, escaping embedded quotes.
// Table names come from uploaded files and must never be interpolated raw.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
