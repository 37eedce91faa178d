package drivetime

import "testing"

func TestEstimateSameStreetBuckets(t *testing.T) {
	h := DefaultHeuristic()
	tests := []struct {
		name    string
		from    string
		to      string
		minutes int
	}{
		{"next door", "100 Oak Lane", "120 Oak Lane", 2},
		{"same block", "100 Oak Lane", "250 Oak Lane", 3},
		{"few blocks", "100 Oak Lane", "450 Oak Lane", 5},
		{"far end", "100 Oak Lane", "900 Oak Lane", 7},
		{"abbreviated type", "100 Oak Ln", "120 Oak Lane", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.Estimate(tc.from, tc.to).DurationMinutes; got != tc.minutes {
				t.Fatalf("%s -> %s: expected %d min, got %d", tc.from, tc.to, tc.minutes, got)
			}
		})
	}
}

func TestEstimateSharedNameToken(t *testing.T) {
	h := DefaultHeuristic()
	got := h.Estimate("100 Maple Lane", "500 Maple Street").DurationMinutes
	if got != h.SharedNameMinutes {
		t.Fatalf("shared name token: expected %d min, got %d", h.SharedNameMinutes, got)
	}
	// Tokens of three characters or fewer are too generic to match.
	got = h.Estimate("100 Oak Lane", "500 Oak Street").DurationMinutes
	if got == h.SharedNameMinutes {
		t.Fatalf("short token should not match as shared name")
	}
}

func TestEstimateSameTypeSmallDelta(t *testing.T) {
	h := DefaultHeuristic()
	got := h.Estimate("100 Oak Lane", "150 Maple Lane").DurationMinutes
	if got != h.SameTypeMinutes {
		t.Fatalf("same type: expected %d min, got %d", h.SameTypeMinutes, got)
	}
}

func TestEstimateUnrelated(t *testing.T) {
	h := DefaultHeuristic()
	got := h.Estimate("100 Oak Lane", "900 Pine Drive").DurationMinutes
	if got < 8 {
		t.Fatalf("unrelated streets: expected at least 8 min, got %d", got)
	}
	if got != 18 {
		// Delta 800 falls in the 1000 bucket.
		t.Fatalf("unrelated delta 800: expected 18 min, got %d", got)
	}
}

func TestEstimateDeterministicAndSymmetric(t *testing.T) {
	h := DefaultHeuristic()
	first := h.Estimate("100 Oak Lane", "900 Pine Drive")
	for i := 0; i < 10; i++ {
		if got := h.Estimate("100 Oak Lane", "900 Pine Drive"); got != first {
			t.Fatalf("estimate changed between calls: %v vs %v", got, first)
		}
	}
	if got := h.Estimate("900 Pine Drive", "100 Oak Lane"); got != first {
		t.Fatalf("estimate not symmetric: %v vs %v", got, first)
	}
}

func TestParseAddress(t *testing.T) {
	p := parseAddress("1420 North Oak Ridge Dr, Springfield")
	if p.houseNumber != 1420 {
		t.Fatalf("expected house number 1420, got %d", p.houseNumber)
	}
	if p.streetName != "north oak ridge" {
		t.Fatalf("expected street name %q, got %q", "north oak ridge", p.streetName)
	}
	if p.streetType != "drive" {
		t.Fatalf("expected street type drive, got %q", p.streetType)
	}
}

func TestParseAddressNoHouseNumber(t *testing.T) {
	p := parseAddress("Oak Lane")
	if p.houseNumber != 0 || p.streetName != "oak" || p.streetType != "lane" {
		t.Fatalf("unexpected parse: %+v", p)
	}
}
