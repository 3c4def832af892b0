package common

import (
	"testing"
)

// ---------- GenerateDigitCode ----------

func TestGenerateDigitCode_LengthAndDigits(t *testing.T) {
	const n = VerificationCodeLength
	s, err := GenerateDigitCode(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n {
		t.Fatalf("expected length %d, got %d", n, len(s))
	}
	for i, r := range s {
		if r < '0' || r > '9' {
			t.Fatalf("expected digit at %d, got %q", i, r)
		}
	}
}

func TestGenerateDigitCode_ZeroSize(t *testing.T) {
	s, err := GenerateDigitCode(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestGenerateDigitCode_NegativeSize(t *testing.T) {
	s, err := GenerateDigitCode(-3)
	if err != nil {
		t.Fatalf("unexpected error for negative size: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for negative size, got %q", s)
	}
}

func TestGenerateDigitCode_AllDigitsReachable(t *testing.T) {
	seen := make(map[rune]bool, 10)
	for i := 0; i < 200 && len(seen) < 10; i++ {
		s, err := GenerateDigitCode(32)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range s {
			seen[r] = true
		}
	}
	if len(seen) != 10 {
		t.Fatalf("expected all ten digits to appear, saw %d", len(seen))
	}
}

func TestGenerateDigitCode_EntropyHint(t *testing.T) {
	a, err := GenerateDigitCode(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateDigitCode(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Logf("warning: two GenerateDigitCode(16) results are identical; extremely unlikely")
	}
}
