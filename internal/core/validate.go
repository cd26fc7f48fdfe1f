package core

// validate.go converts one raw row into a RowOutcome: a fully populated
// typed record, or an ordered list of field-level error messages.
//
// Error messages are user-facing and in Portuguese, matching the language
// of the source data. Row-level failures are collected, never returned as
// Go errors. A bad row must not abort the surrounding table operation.

import "strings"

// wellTypeTokens resolves locale variants of the well type enum.
var wellTypeTokens = map[string]string{
	"oil":      "oil",
	"oleo":     "oil",
	"óleo":     "oil",
	"petroleo": "oil",
	"petróleo": "oil",
	"gas":      "gas",
	"gás":      "gas",
	"mixed":    "mixed",
	"misto":    "mixed",
	"mista":    "mixed",
}

// wellStatusTokens resolves locale variants of the well status enum.
var wellStatusTokens = map[string]string{
	"active":       "active",
	"ativo":        "active",
	"ativa":        "active",
	"inactive":     "inactive",
	"inativo":      "inactive",
	"inativa":      "inactive",
	"exploratory":  "exploratory",
	"exploratorio": "exploratory",
	"exploratório": "exploratory",
	"declining":    "declining",
	"declinio":     "declining",
	"declínio":     "declining",
	"em declinio":  "declining",
	"em declínio":  "declining",
}

// ValidateRow dispatches to the validator for the detected kind.
// rowIndex is 0-based; the outcome's row number is rowIndex+1.
func ValidateRow(kind RecordKind, raw map[string]any, columns []string, rowIndex int) RowOutcome {
	if kind == KindProduction {
		return ValidateProductionRow(raw, columns, rowIndex)
	}
	return ValidateWellsRow(raw, columns, rowIndex)
}

// ValidateWellsRow validates one raw row against the wells schema.
func ValidateWellsRow(raw map[string]any, columns []string, rowIndex int) RowOutcome {
	mapped := MapRow(KindWells, raw, columns)
	outcome := RowOutcome{Row: rowIndex + 1, Errors: []string{}, Raw: raw}

	name := CoerceString(mapped["name"])
	block := CoerceString(mapped["block"])
	field := CoerceString(mapped["field"])
	province := CoerceString(mapped["province"])

	if name == "" {
		outcome.Errors = append(outcome.Errors, "Nome do poço é obrigatório")
	}
	if block == "" {
		outcome.Errors = append(outcome.Errors, "Bloco é obrigatório")
	}
	if field == "" {
		outcome.Errors = append(outcome.Errors, "Campo é obrigatório")
	}
	if province == "" {
		outcome.Errors = append(outcome.Errors, "Província é obrigatória")
	}

	lat := CoerceNumber(mapped["latitude"])
	if lat == nil || *lat < -90 || *lat > 90 {
		outcome.Errors = append(outcome.Errors, "Latitude inválida ou fora do intervalo (-90 a 90)")
	}

	lon := CoerceNumber(mapped["longitude"])
	if lon == nil || *lon < -180 || *lon > 180 {
		outcome.Errors = append(outcome.Errors, "Longitude inválida ou fora do intervalo (-180 a 180)")
	}

	depth := CoerceNumber(mapped["depth"])
	if depth == nil || *depth < 0 {
		outcome.Errors = append(outcome.Errors, "Profundidade inválida (deve ser maior ou igual a zero)")
	}

	wellType, ok := resolveToken(mapped["type"], wellTypeTokens)
	if !ok {
		outcome.Errors = append(outcome.Errors, "Tipo de poço inválido (esperado: oil, gas ou mixed)")
	}

	status, ok := resolveToken(mapped["status"], wellStatusTokens)
	if !ok {
		outcome.Errors = append(outcome.Errors, "Status inválido (esperado: active, inactive, exploratory ou declining)")
	}

	if len(outcome.Errors) > 0 {
		return outcome
	}

	outcome.Record = &WellRecord{
		Name:                name,
		Block:               block,
		Field:               field,
		Province:            province,
		Latitude:            *lat,
		Longitude:           *lon,
		Depth:               *depth,
		Type:                wellType,
		Status:              status,
		EstimatedReserves:   numberOrDefault(mapped["estimated_reserves"], 0),
		DailyProduction:     numberOrDefault(mapped["daily_production"], 0),
		ProductionStartDate: CoerceDate(mapped["production_start_date"]),
		DeclineRate:         numberOrDefault(mapped["decline_rate"], 0),
	}
	return outcome
}

// ValidateProductionRow validates one raw row against the production
// schema. Only wlbr_id and a resolvable production date are required; every
// other numeric field defaults to 0 when absent or unparseable.
func ValidateProductionRow(raw map[string]any, columns []string, rowIndex int) RowOutcome {
	mapped := MapRow(KindProduction, raw, columns)
	outcome := RowOutcome{Row: rowIndex + 1, Errors: []string{}, Raw: raw}

	wlbrID := CoerceString(mapped["wlbr_id"])
	if wlbrID == "" {
		outcome.Errors = append(outcome.Errors, "WLBR_ID é obrigatório")
	}

	date := CoerceDate(mapped["production_date"])
	if date == nil {
		outcome.Errors = append(outcome.Errors, "Data de produção é obrigatória ou inválida")
	}

	if len(outcome.Errors) > 0 {
		return outcome
	}

	outcome.Record = &ProductionRecord{
		WlbrID:         wlbrID,
		WlbrNm:         CoerceString(mapped["wlbr_nm"]),
		CmplID:         CoerceString(mapped["cmpl_id"]),
		ProductionDate: *date,
		OilVolume:      numberOrDefault(mapped["oil_volume"], 0),
		WaterVolume:    numberOrDefault(mapped["water_volume"], 0),
		GasVolume:      numberOrDefault(mapped["gas_volume"], 0),
		Glg:            numberOrDefault(mapped["glg"], 0),
		HoursProduced:  numberOrDefault(mapped["hours_produced"], 0),
		ChokeSize:      numberOrDefault(mapped["choke_size"], 0),
		Bhp:            numberOrDefault(mapped["bhp"], 0),
		Bht:            numberOrDefault(mapped["bht"], 0),
		Whp:            numberOrDefault(mapped["whp"], 0),
		Wht:            numberOrDefault(mapped["wht"], 0),
		Chp:            numberOrDefault(mapped["chp"], 0),
	}
	return outcome
}

// resolveToken normalizes a raw enum value and resolves it through a locale
// token table. Empty input and unknown tokens both fail resolution.
func resolveToken(v any, tokens map[string]string) (string, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(CoerceString(v))), " ")
	if key == "" {
		return "", false
	}
	canonical, ok := tokens[key]
	return canonical, ok
}
