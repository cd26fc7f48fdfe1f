package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// CoerceNumber Tests
// ----------------------------------------------------------------------------

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantNil bool
		want    float64
	}{
		// Pass-through for values that are already numeric
		{name: "float64 unchanged", input: float64(12.5), want: 12.5},
		{name: "negative float unchanged", input: float64(-3.25), want: -3.25},
		{name: "int", input: int(42), want: 42},
		{name: "int64", input: int64(7), want: 7},
		{name: "zero", input: float64(0), want: 0},

		// Nil and empty input
		{name: "nil", input: nil, wantNil: true},
		{name: "empty string", input: "", wantNil: true},
		{name: "whitespace only", input: "   ", wantNil: true},

		// Plain strings
		{name: "integer string", input: "123", want: 123},
		{name: "decimal string", input: "123.45", want: 123.45},
		{name: "negative string", input: "-56.7", want: -56.7},

		// Locale input: comma as decimal separator
		{name: "comma decimal", input: "1,5", want: 1.5},
		{name: "comma decimal with unit", input: "1234,56 m", want: 1234.56},
		{name: "thousands dot with comma decimal", input: "1.234,56", want: 1.234},

		// Stripping of non-numeric characters
		{name: "currency prefix", input: "R$ 150", want: 150},
		{name: "embedded letters", input: "abc12.5def", want: 12.5},
		{name: "degree suffix", input: "-12.34°", want: -12.34},

		// Unparseable input
		{name: "letters only", input: "abc", wantNil: true},
		{name: "lone minus", input: "-", wantNil: true},
		{name: "lone dot", input: ".", wantNil: true},
		{name: "boolean", input: true, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceNumber(tt.input)
			if tt.wantNil {
				if got != nil {
					t.Errorf("CoerceNumber(%v) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("CoerceNumber(%v) = nil, want %v", tt.input, tt.want)
			}
			if *got != tt.want {
				t.Errorf("CoerceNumber(%v) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestCoerceNumberIdempotent(t *testing.T) {
	inputs := []float64{0, 1, -1, 12.34, -9876.5, 1e9}

	for _, in := range inputs {
		first := CoerceNumber(in)
		if first == nil {
			t.Fatalf("CoerceNumber(%v) = nil", in)
		}
		second := CoerceNumber(*first)
		if second == nil || *second != *first {
			t.Errorf("CoerceNumber not idempotent for %v: first=%v second=%v", in, first, second)
		}
		if *first != in {
			t.Errorf("CoerceNumber(%v) changed the value to %v", in, *first)
		}
	}
}

// ----------------------------------------------------------------------------
// CoerceDate Tests
// ----------------------------------------------------------------------------

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantNil bool
		want    string
	}{
		{name: "iso date", input: "2023-06-15", want: "2023-06-15"},
		{name: "iso datetime", input: "2023-06-15 10:30:00", want: "2023-06-15"},
		{name: "rfc3339", input: "2023-06-15T10:30:00Z", want: "2023-06-15"},
		{name: "brazilian day first", input: "15/06/2023", want: "2023-06-15"},
		{name: "day first with time", input: "15/06/2023 08:00:00", want: "2023-06-15"},
		{name: "compact", input: "20230615", want: "2023-06-15"},
		{name: "slash iso", input: "2023/06/15", want: "2023-06-15"},
		{name: "time.Time value", input: time.Date(2023, 6, 15, 22, 1, 2, 0, time.UTC), want: "2023-06-15"},

		{name: "nil", input: nil, wantNil: true},
		{name: "empty", input: "", wantNil: true},
		{name: "garbage", input: "not a date", wantNil: true},
		{name: "number alone", input: "99", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceDate(tt.input)
			if tt.wantNil {
				if got != nil {
					t.Errorf("CoerceDate(%v) = %q, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("CoerceDate(%v) = nil, want %q", tt.input, tt.want)
			}
			if *got != tt.want {
				t.Errorf("CoerceDate(%v) = %q, want %q", tt.input, *got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CoerceString Tests
// ----------------------------------------------------------------------------

func TestCoerceString(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "plain", input: "Poço A", want: "Poço A"},
		{name: "trims whitespace", input: "  Campo Norte  ", want: "Campo Norte"},
		{name: "nil", input: nil, want: ""},
		{name: "number", input: float64(7), want: "7"},
		{name: "bytes", input: []byte("BL-01"), want: "BL-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceString(tt.input); got != tt.want {
				t.Errorf("CoerceString(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
