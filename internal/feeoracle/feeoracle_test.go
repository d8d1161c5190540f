package feeoracle

import "testing"

func TestReduceThreeValues(t *testing.T) {
	tiers, err := Reduce(map[string]float64{"1": 5.0, "6": 3.0, "144": 1.0})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if tiers != (Tiers{Low: 1, Middle: 3, High: 5}) {
		t.Fatalf("unexpected tiers: %+v", tiers)
	}
}

func TestReduceSingleValue(t *testing.T) {
	tiers, err := Reduce(map[string]float64{"1": 2.0})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if tiers != (Tiers{Low: 2, Middle: 2, High: 2}) {
		t.Fatalf("unexpected tiers: %+v", tiers)
	}
}

func TestReduceTwoValues(t *testing.T) {
	tiers, err := Reduce(map[string]float64{"1": 4.0, "6": 2.0})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if tiers != (Tiers{Low: 2, Middle: 2, High: 4}) {
		t.Fatalf("unexpected tiers: %+v", tiers)
	}
}

func TestReduceEmptyErrors(t *testing.T) {
	if _, err := Reduce(map[string]float64{}); err == nil {
		t.Fatalf("expected error for empty estimate map")
	}
}
