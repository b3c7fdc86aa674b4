package competitiondomain

import (
	"errors"
	"testing"
)

func TestParsePrizeBands(t *testing.T) {
	bands, err := ParsePrizeBands(map[string]string{
		"1":    "Season ticket",
		"2":    "Scarf",
		"4-7":  "Pay for the above",
		"8-10": "Pay and host the party",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[int]string{
		1:  "Season ticket",
		2:  "Scarf",
		3:  "",
		4:  "Pay for the above",
		7:  "Pay for the above",
		10: "Pay and host the party",
		11: "",
	}
	for rank, want := range cases {
		if got := bands.LabelFor(rank); got != want {
			t.Fatalf("rank %d: got %q, want %q", rank, got, want)
		}
	}
}

func TestParsePrizeBandsErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]string
		wantErr error
	}{
		{"not a number", map[string]string{"first": "x"}, ErrInvalidPrizeBand},
		{"reversed range", map[string]string{"6-3": "x"}, ErrInvalidPrizeBand},
		{"zero rank", map[string]string{"0": "x"}, ErrInvalidPrizeBand},
		{"overlap", map[string]string{"1-3": "x", "3-5": "y"}, ErrOverlappingPrizes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePrizeBands(tt.raw); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
