package core

// normalize.go maps raw column labels to canonical field names.
//
// The lookup tables carry the Portuguese variants and abbreviations seen in
// real well databases. They are package-level configuration data, kept out
// of function bodies so new variants land as one-line additions with test
// coverage, not logic edits. Matching is case- and whitespace-insensitive.
// Unrecognized labels pass through lower-cased and trimmed.

import "strings"

// wellsColumnMap maps normalized raw labels to canonical wells fields.
var wellsColumnMap = map[string]string{
	"name":      "name",
	"nome":      "name",
	"poco":      "name",
	"poço":      "name",
	"well":      "name",
	"well name": "name",
	"well_name": "name",

	"block": "block",
	"bloco": "block",

	"field": "field",
	"campo": "field",

	"province":  "province",
	"provincia": "province",
	"província": "province",

	"latitude": "latitude",
	"lat":      "latitude",

	"longitude": "longitude",
	"long":      "longitude",
	"lon":       "longitude",

	"depth":        "depth",
	"profundidade": "depth",
	"prof":         "depth",

	"type": "type",
	"tipo": "type",

	"status":   "status",
	"estado":   "status",
	"situacao": "status",
	"situação": "status",

	"estimated reserves": "estimated_reserves",
	"estimated_reserves": "estimated_reserves",
	"reservas":           "estimated_reserves",
	"reservas estimadas": "estimated_reserves",
	"reservas_estimadas": "estimated_reserves",

	"daily production": "daily_production",
	"daily_production": "daily_production",
	"producao diaria":  "daily_production",
	"producao_diaria":  "daily_production",
	"produção diária":  "daily_production",

	"production start date": "production_start_date",
	"production_start_date": "production_start_date",
	"inicio producao":       "production_start_date",
	"inicio_producao":       "production_start_date",
	"início produção":       "production_start_date",
	"data inicio":           "production_start_date",
	"data_inicio":           "production_start_date",

	"decline rate":  "decline_rate",
	"decline_rate":  "decline_rate",
	"taxa declinio": "decline_rate",
	"taxa_declinio": "decline_rate",
	"taxa declínio": "decline_rate",
}

// productionColumnMap maps normalized raw labels to canonical production fields.
var productionColumnMap = map[string]string{
	"wlbr_id": "wlbr_id",
	"wlbr id": "wlbr_id",
	"well_id": "wlbr_id",
	"poco_id": "wlbr_id",

	"wlbr_nm":   "wlbr_nm",
	"wlbr nm":   "wlbr_nm",
	"well_name": "wlbr_nm",
	"nome_poco": "wlbr_nm",

	"cmpl_id": "cmpl_id",
	"cmpl id": "cmpl_id",

	"production_date": "production_date",
	"production date": "production_date",
	"daytime":         "production_date",
	"data":            "production_date",
	"data_producao":   "production_date",
	"data produção":   "production_date",
	"date":            "production_date",

	"oil_volume": "oil_volume",
	"oil volume": "oil_volume",
	"oil":        "oil_volume",
	"oil_vol":    "oil_volume",
	"oleo":       "oil_volume",
	"óleo":       "oil_volume",

	"water_volume": "water_volume",
	"water volume": "water_volume",
	"water":        "water_volume",
	"water_vol":    "water_volume",
	"agua":         "water_volume",
	"água":         "water_volume",

	"gas_volume": "gas_volume",
	"gas volume": "gas_volume",
	"gas":        "gas_volume",
	"gas_vol":    "gas_volume",
	"gás":        "gas_volume",

	"glg": "glg",

	"hours_produced": "hours_produced",
	"hours produced": "hours_produced",
	"hours":          "hours_produced",
	"horas":          "hours_produced",
	"horas_producao": "hours_produced",

	"choke_size": "choke_size",
	"choke size": "choke_size",
	"choke":      "choke_size",

	"bhp": "bhp",
	"bht": "bht",
	"whp": "whp",
	"wht": "wht",
	"chp": "chp",
}

// columnMapFor returns the lookup table for a record kind.
func columnMapFor(kind RecordKind) map[string]string {
	if kind == KindProduction {
		return productionColumnMap
	}
	return wellsColumnMap
}

// normalizeLabel lower-cases a raw column label and collapses all interior
// whitespace runs to single spaces.
func normalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// CanonicalColumn maps one raw column label to its canonical field name for
// the given kind. Unrecognized labels pass through normalized.
func CanonicalColumn(kind RecordKind, label string) string {
	key := normalizeLabel(label)
	if canonical, ok := columnMapFor(kind)[key]; ok {
		return canonical
	}
	return key
}

// MapRow builds the canonical view of one raw row using the table's column
// list. The raw row itself is never modified; callers keep it as the
// preserved original view. When two raw columns map to the same canonical
// field, the first non-nil value in column order wins.
func MapRow(kind RecordKind, raw map[string]any, columns []string) map[string]any {
	mapped := make(map[string]any, len(columns))
	for _, col := range columns {
		canonical := CanonicalColumn(kind, col)
		if prev, exists := mapped[canonical]; exists && prev != nil {
			continue
		}
		mapped[canonical] = raw[col]
	}
	return mapped
}
