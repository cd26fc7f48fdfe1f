// Package core provides the row normalization and validation pipeline that
// turns raw table rows from uploaded database files into typed well and
// production records. This package has no HTTP dependencies.
package core

// RecordKind identifies which of the two known schemas a table holds.
type RecordKind string

const (
	KindWells      RecordKind = "wells"
	KindProduction RecordKind = "production"
)

// TableDescriptor is a read-only projection of one table in an uploaded
// file: name, declared row count, and ordered column names.
type TableDescriptor struct {
	Name     string   `json:"name"`
	RowCount int      `json:"rowCount"`
	Columns  []string `json:"columns"`
}

// RowOutcome is the tagged result of validating one row: either a typed
// record with an empty error list, or no record and a non-empty ordered
// list of human-readable validation errors. Never both, never neither.
// Row numbers are 1-based.
type RowOutcome struct {
	Row    int            `json:"row"`
	Record any            `json:"record"`
	Errors []string       `json:"errors"`
	Raw    map[string]any `json:"raw"`
}

// Valid reports whether the row produced a record.
func (o RowOutcome) Valid() bool {
	return len(o.Errors) == 0
}

// WellRecord is the canonical wells schema.
type WellRecord struct {
	Name                string  `json:"name"`
	Block               string  `json:"block"`
	Field               string  `json:"field"`
	Province            string  `json:"province"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	Depth               float64 `json:"depth"`
	Type                string  `json:"type"`   // oil, gas, mixed
	Status              string  `json:"status"` // active, inactive, exploratory, declining
	EstimatedReserves   float64 `json:"estimated_reserves"`
	DailyProduction     float64 `json:"daily_production"`
	ProductionStartDate *string `json:"production_start_date"` // ISO calendar date or null
	DeclineRate         float64 `json:"decline_rate"`
}

// ProductionRecord is the canonical production schema.
type ProductionRecord struct {
	WlbrID         string  `json:"wlbr_id"`
	WlbrNm         string  `json:"wlbr_nm,omitempty"`
	CmplID         string  `json:"cmpl_id,omitempty"`
	ProductionDate string  `json:"production_date"` // ISO calendar date
	OilVolume      float64 `json:"oil_volume"`
	WaterVolume    float64 `json:"water_volume"`
	GasVolume      float64 `json:"gas_volume"`
	Glg            float64 `json:"glg"`
	HoursProduced  float64 `json:"hours_produced"`
	ChokeSize      float64 `json:"choke_size"`
	Bhp            float64 `json:"bhp"`
	Bht            float64 `json:"bht"`
	Whp            float64 `json:"whp"`
	Wht            float64 `json:"wht"`
	Chp            float64 `json:"chp"`
}

// Page is one page of validated rows from a table.
type Page struct {
	TableName string       `json:"tableName"`
	Columns   []string     `json:"columns"`
	DataType  RecordKind   `json:"dataType"`
	TotalRows int          `json:"totalRows"`
	Offset    int          `json:"offset"`
	Limit     int          `json:"limit"`
	Rows      []RowOutcome `json:"rows"`
	HasMore   bool         `json:"hasMore"`
}

// TableParse is the result of validating a whole table in one pass.
type TableParse struct {
	DataType  RecordKind   `json:"dataType"`
	Success   []RowOutcome `json:"success"`
	Failed    []RowOutcome `json:"failed"`
	TotalRows int          `json:"totalRows"`
}
