package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		"50": "50.00", "0.01": "0.01", "19.9": "19.90", "30.00": "30.00",
		"1.500000": "1.50", "5e2": "500.00", "9999999999999999.99": "9999999999999999.99",
	}
	for in, want := range valid {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if Format(got) != want {
			t.Fatalf("%s: expected %s, got %s", in, want, Format(got))
		}
	}

	for _, in := range []string{"", "abc", "0", "-1", "0.001", "1.0001000", "1e30", "10000000000000000"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q: expected invalid amount, got %v", in, err)
		}
	}
}

func TestAmountsDoNotDrift(t *testing.T) {
	total := amt("0")
	for i := 0; i < 1000; i++ {
		total = total.Add(amt("0.10"))
	}
	if Format(total) != "100.00" {
		t.Fatalf("expected 100.00, got %s", Format(total))
	}
}

func TestParseAmountExtremeExponents(t *testing.T) {
	start := time.Now()
	for _, in := range []string{"1e-10000000", "1000e-10000000", "1e10000000", "1e-2147483648"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q: expected invalid amount, got %v", in, err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("extreme exponents took %s", elapsed)
	}
}
