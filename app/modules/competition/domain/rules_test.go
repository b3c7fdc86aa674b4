package competitiondomain

import (
	"errors"
	"slices"
	"testing"
)

func TestRuleConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RuleConfig
		wantErr error
	}{
		{name: "default", cfg: DefaultRuleConfig()},
		{name: "distance ignores band size", cfg: RuleConfig{RuleSet: RuleSetDistance}},
		{name: "unknown rule set", cfg: RuleConfig{RuleSet: "legacy"}, wantErr: ErrUnknownRuleSet},
		{name: "band without size", cfg: RuleConfig{RuleSet: RuleSetBand}, wantErr: ErrInvalidBandSize},
		{name: "negative points", cfg: RuleConfig{RuleSet: RuleSetBand, BandSize: 2, PointsAlmost: -1}, wantErr: ErrNegativePoints},
		{name: "repeated position", cfg: RuleConfig{RuleSet: RuleSetDistance, PredictedPositions: []int{1, 2, 2}}, wantErr: ErrInvalidPositions},
		{name: "zero position", cfg: RuleConfig{RuleSet: RuleSetDistance, PredictedPositions: []int{0}}, wantErr: ErrInvalidPositions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpectedPositions(t *testing.T) {
	cfg := DefaultRuleConfig()
	if got := cfg.ExpectedPositions(4); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Fatalf("unexpected positions %v", got)
	}

	cfg.PredictedPositions = []int{1, 2, 15, 16}
	got := cfg.ExpectedPositions(16)
	if !slices.Equal(got, []int{1, 2, 15, 16}) {
		t.Fatalf("unexpected positions %v", got)
	}
	got[0] = 99
	if cfg.PredictedPositions[0] != 1 {
		t.Fatalf("ExpectedPositions must return a copy")
	}
}

func TestRuleConfigWithDefaults(t *testing.T) {
	got := RuleConfig{}.WithDefaults()
	if got.RuleSet != RuleSetBand || got.BandSize != DefaultBandSize {
		t.Fatalf("zero config: got %+v", got)
	}
	if got.PointsCorrect != 3 || got.PointsAlmost != 1 || got.BonusPoints != 6 {
		t.Fatalf("zero config points: got %+v", got)
	}

	custom := RuleConfig{RuleSet: RuleSetDistance, PointsCorrect: 5, BonusPoints: 2}.WithDefaults()
	if custom.RuleSet != RuleSetDistance || custom.BandSize != 0 {
		t.Fatalf("distance config changed: %+v", custom)
	}
	if custom.PointsCorrect != 5 || custom.PointsAlmost != 0 || custom.BonusPoints != 2 {
		t.Fatalf("explicit points overwritten: %+v", custom)
	}
}
