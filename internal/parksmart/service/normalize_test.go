package service_test

import (
	"strings"
	"testing"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/service"
)

func TestNormalizePlate_CanonicalForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"51F-123.45", "51F12345", true},
		{"51f 123 45", "51F12345", true},
		{"  29a-999.99  ", "29A99999", true},
		{"abc123", "ABC123", true},
		{"ab-12", "", false},       // 4 chars after stripping
		{"", "", false},            // empty input
		{"!!--..", "", false},      // nothing left
		{strings.Repeat("A1", 7), "", false}, // 14 chars, too long
		{"ABCDEF123456", "ABCDEF123456", true}, // exactly 12
		{"ABC123x", "ABC123X", true},
	}

	for _, tc := range cases {
		got, ok := service.NormalizePlate(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizePlate(%q) = (%q, %v), want (%q, %v)",
				tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizePlate_Idempotent(t *testing.T) {
	inputs := []string{"51F-123.45", "29a 999.99", "ABC123", "plate-00-11"}

	for _, in := range inputs {
		first, ok := service.NormalizePlate(in)
		if !ok {
			continue
		}
		second, ok := service.NormalizePlate(first)
		if !ok {
			t.Errorf("normalized plate %q rejected on second pass", first)
			continue
		}
		if second != first {
			t.Errorf("normalize not idempotent: %q -> %q -> %q", in, first, second)
		}
	}
}

func TestNormalizePlate_OutputCharsetAndLength(t *testing.T) {
	inputs := []string{"51F-123.45", "x1y2z3", "AA.BB.CC.DD", "123 456 789 012"}

	for _, in := range inputs {
		got, ok := service.NormalizePlate(in)
		if !ok {
			continue
		}
		if len(got) < 6 || len(got) > 12 {
			t.Errorf("NormalizePlate(%q) length %d outside [6,12]", in, len(got))
		}
		for _, r := range got {
			if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				t.Errorf("NormalizePlate(%q) contains %q outside [A-Z0-9]", in, r)
			}
		}
	}
}
