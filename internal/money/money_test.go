package money

import "testing"

func TestBTCStringToSats(t *testing.T) {
	cases := map[string]int64{
		"0.12345678": 12_345_678,
		"1.2345678":  123_456_780,
		"1":          100_000_000,
		"0":          0,
	}
	for in, want := range cases {
		got, err := BTCStringToSats(in)
		if err != nil {
			t.Fatalf("BTCStringToSats(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("BTCStringToSats(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestBTCStringToSatsRejectsSubSatoshi(t *testing.T) {
	if _, err := BTCStringToSats("0.123456789"); err == nil {
		t.Fatalf("expected error for sub-satoshi precision")
	}
}

func TestBTCStringToSatsRejectsNegative(t *testing.T) {
	if _, err := BTCStringToSats("-1"); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestSatsToBTCStringRoundTrips(t *testing.T) {
	got := SatsToBTCString(12_345_678)
	back, err := BTCStringToSats(got)
	if err != nil {
		t.Fatalf("BTCStringToSats(%q): %v", got, err)
	}
	if back != 12_345_678 {
		t.Errorf("round trip mismatch: got %d", back)
	}
}
