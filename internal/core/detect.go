package core

// detect.go classifies a table as wells or production data from its column
// names alone.
//
// The indicator lists are versioned configuration, same as the column maps
// in normalize.go. The scoring is a substring-match heuristic and the
// tie-break is deliberate: ambiguous or empty tables default to wells, and
// downstream consumers depend on that bias.

import "strings"

// productionIndicators are tokens whose presence in a column name suggests
// production (time-series measurement) data.
var productionIndicators = []string{
	"oil", "gas", "water", "daytime", "wlbr_id", "cmpl_id", "bhp", "whp", "choke",
}

// wellsIndicators are tokens whose presence suggests well master data,
// including the Portuguese spellings.
var wellsIndicators = []string{
	"latitude", "longitude", "block", "field", "province",
	"bloco", "campo", "provincia", "província",
}

// DetectKind classifies a table by counting indicator hits against its
// column names. Production wins only on a strictly greater score.
func DetectKind(columns []string) RecordKind {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(c)
	}

	if matchCount(lowered, productionIndicators) > matchCount(lowered, wellsIndicators) {
		return KindProduction
	}
	return KindWells
}

// matchCount returns how many indicators appear as a substring of at least
// one column name. Each indicator counts once no matter how many columns
// contain it.
func matchCount(columns, indicators []string) int {
	count := 0
	for _, ind := range indicators {
		for _, col := range columns {
			if strings.Contains(col, ind) {
				count++
				break
			}
		}
	}
	return count
}
