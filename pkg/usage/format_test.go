package usage

import "testing"

func TestHumanTokens(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{999, "999"},
		{1000, "1K"},
		{1532, "1.5K"},
		{10_000, "10K"},
		{999_999, "1000K"},
		{1_000_000, "1M"},
		{1_550_000, "1.6M"},
	}

	for _, tc := range tests {
		if got := HumanTokens(tc.in); got != tc.want {
			t.Fatalf("HumanTokens(%d)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	if got := FormatCost(0.0001236); got != "$0.000124" {
		t.Fatalf("FormatCost=%q", got)
	}
	if got := FormatCost(0); got != "$0.000000" {
		t.Fatalf("FormatCost(0)=%q", got)
	}
}
