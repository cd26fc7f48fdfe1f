package core

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rmachado/welldata/internal/reader"
)

// newTestHandle builds a sqlite file with one wells table and one production
// table, with a known bad row in each, and opens it through the reader.
func newTestHandle(t *testing.T) *reader.Handle {
	t.Helper()

	path := filepath.Join(t.TempDir(), "batch.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}

	stmts := []string{
		`CREATE TABLE pocos (
			poco TEXT, bloco TEXT, campo TEXT, provincia TEXT,
			latitude TEXT, longitude TEXT, profundidade TEXT,
			tipo TEXT, estado TEXT
		)`,
		`INSERT INTO pocos VALUES ('W-1','BL-01','Campo A','Prov A','-22.5','-40.1','2450','oil','active')`,
		`INSERT INTO pocos VALUES ('W-2','BL-01','Campo A','Prov A','-23,1','-41,2','3100,5','gás','ativo')`,
		`INSERT INTO pocos VALUES ('','BL-02','Campo B','Prov A','-22.0','-40.0','1000','oil','active')`,
		`INSERT INTO pocos VALUES ('W-4','BL-02','Campo B','Prov A','95','-40.0','1000','oil','active')`,
		`INSERT INTO pocos VALUES ('W-5','BL-02','Campo B','Prov A','-22.1','-40.2','1200','mixed','declining')`,
		`CREATE TABLE producao (
			wlbr_id TEXT, wlbr_nm TEXT, daytime TEXT, oil TEXT, gas TEXT, water TEXT
		)`,
		`INSERT INTO producao VALUES ('W-1','Poço A','15/06/2023','120,5','800','40')`,
		`INSERT INTO producao VALUES ('','Poço B','2023-06-16','100','750','35')`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatal(err)
	}

	h, err := reader.Open(path)
	if err != nil {
		t.Fatalf("reader.Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestDescribeTables(t *testing.T) {
	h := newTestHandle(t)

	descriptors, err := DescribeTables(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("got %d tables, want 2", len(descriptors))
	}

	// Tables come back in name order
	if descriptors[0].Name != "pocos" || descriptors[1].Name != "producao" {
		t.Errorf("names = %q, %q", descriptors[0].Name, descriptors[1].Name)
	}
	if descriptors[0].RowCount != 5 {
		t.Errorf("pocos RowCount = %d, want 5", descriptors[0].RowCount)
	}
	if descriptors[1].RowCount != 2 {
		t.Errorf("producao RowCount = %d, want 2", descriptors[1].RowCount)
	}
	if len(descriptors[0].Columns) != 9 {
		t.Errorf("pocos has %d columns, want 9", len(descriptors[0].Columns))
	}
}

func TestFetchPage(t *testing.T) {
	h := newTestHandle(t)

	page, err := FetchPage(h, "pocos", 0, 10)
	if err != nil {
		t.Fatal(err)
	}

	if page.DataType != KindWells {
		t.Errorf("DataType = %q, want wells", page.DataType)
	}
	if page.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", page.TotalRows)
	}
	if len(page.Rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(page.Rows))
	}
	if page.HasMore {
		t.Error("HasMore = true, want false")
	}

	// Rows 1, 2 and 5 are clean; 3 is missing a name; 4 has a bad latitude
	for _, i := range []int{0, 1, 4} {
		if !page.Rows[i].Valid() {
			t.Errorf("row %d invalid: %v", i+1, page.Rows[i].Errors)
		}
	}
	for _, i := range []int{2, 3} {
		if page.Rows[i].Valid() {
			t.Errorf("row %d should be invalid", i+1)
		}
	}
}

func TestFetchPagePagination(t *testing.T) {
	h := newTestHandle(t)

	page, err := FetchPage(h, "pocos", 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(page.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(page.Rows))
	}
	// Row numbers are absolute positions, not page-local
	if page.Rows[0].Row != 3 || page.Rows[1].Row != 4 {
		t.Errorf("row numbers = %d, %d, want 3, 4", page.Rows[0].Row, page.Rows[1].Row)
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}

	// Offset past the end yields an empty page
	page, err = FetchPage(h, "pocos", 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(page.Rows))
	}
	if page.HasMore {
		t.Error("HasMore = true past the end")
	}
}

func TestFetchPageDefaults(t *testing.T) {
	h := newTestHandle(t)

	page, err := FetchPage(h, "pocos", -5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Offset != 0 {
		t.Errorf("Offset = %d, want 0", page.Offset)
	}
	if page.Limit != 100 {
		t.Errorf("Limit = %d, want 100", page.Limit)
	}
	if len(page.Rows) != 5 {
		t.Errorf("got %d rows, want 5", len(page.Rows))
	}
}

func TestFetchPageUnknownTable(t *testing.T) {
	h := newTestHandle(t)

	if _, err := FetchPage(h, "missing", 0, 10); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

func TestParseTable(t *testing.T) {
	h := newTestHandle(t)

	result, err := ParseTable(h, "producao")
	if err != nil {
		t.Fatal(err)
	}

	if result.DataType != KindProduction {
		t.Errorf("DataType = %q, want production", result.DataType)
	}
	if result.TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2", result.TotalRows)
	}
	if len(result.Success) != 1 || len(result.Failed) != 1 {
		t.Fatalf("success/failed = %d/%d, want 1/1", len(result.Success), len(result.Failed))
	}

	rec := result.Success[0].Record.(*ProductionRecord)
	if rec.WlbrID != "W-1" {
		t.Errorf("WlbrID = %q, want W-1", rec.WlbrID)
	}
	if rec.ProductionDate != "2023-06-15" {
		t.Errorf("ProductionDate = %q, want 2023-06-15", rec.ProductionDate)
	}
	if rec.OilVolume != 120.5 {
		t.Errorf("OilVolume = %v, want 120.5", rec.OilVolume)
	}

	if result.Failed[0].Row != 2 {
		t.Errorf("failed row = %d, want 2", result.Failed[0].Row)
	}
}
