package reader

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newFixture creates a sqlite file with a small wells table and returns its path.
func newFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}

	stmts := []string{
		`CREATE TABLE wells (name TEXT, block TEXT, latitude REAL)`,
		`INSERT INTO wells VALUES ('W-1', 'BL-01', -22.5)`,
		`INSERT INTO wells VALUES ('W-2', 'BL-02', -23.1)`,
		`CREATE TABLE empty_cols_probe (id INTEGER)`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	if !errors.Is(err, ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}

func TestOpenNotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(path, []byte("this is not a database"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if !errors.Is(err, ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}

func TestListTables(t *testing.T) {
	h, err := Open(newFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	names, err := h.ListTables()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"empty_cols_probe", "wells"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListTables = %v, want %v", names, want)
	}
}

func TestColumns(t *testing.T) {
	h, err := Open(newFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	cols, err := h.Columns("wells")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"name", "block", "latitude"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("Columns = %v, want %v", cols, want)
	}

	if _, err := h.Columns("missing"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Columns(missing) err = %v, want ErrTableNotFound", err)
	}
}

func TestRowCount(t *testing.T) {
	h, err := Open(newFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	count, err := h.RowCount("wells")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("RowCount = %d, want 2", count)
	}

	count, err = h.RowCount("empty_cols_probe")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("RowCount(empty) = %d, want 0", count)
	}

	if _, err := h.RowCount("missing"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("RowCount(missing) err = %v, want ErrTableNotFound", err)
	}
}

func TestAllRows(t *testing.T) {
	h, err := Open(newFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	rows, err := h.AllRows("wells")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := rows[0]["name"]; got != "W-1" {
		t.Errorf("rows[0][name] = %v, want W-1", got)
	}
	if got := rows[1]["block"]; got != "BL-02" {
		t.Errorf("rows[1][block] = %v, want BL-02", got)
	}

	if _, err := h.AllRows("missing"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("AllRows(missing) err = %v, want ErrTableNotFound", err)
	}
}

func TestQuotedTableName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoted.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Exec(`CREATE TABLE "odd name" (v TEXT)`).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Exec(`INSERT INTO "odd name" VALUES ('x')`).Error; err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.Close()

	h, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	count, err := h.RowCount("odd name")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("RowCount = %d, want 1", count)
	}
}
