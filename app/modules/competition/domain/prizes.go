package competitiondomain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PrizeBand attaches a label to an inclusive range of ranks.
type PrizeBand struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
}

// PrizeBands is an ordered, non-overlapping set of bands.
type PrizeBands []PrizeBand

// ParsePrizeBands reads bands keyed by "N" or "N-M".
func ParsePrizeBands(raw map[string]string) (PrizeBands, error) {
	bands := make(PrizeBands, 0, len(raw))
	for key, label := range raw {
		from, to, err := parseRankRange(key)
		if err != nil {
			return nil, err
		}
		bands = append(bands, PrizeBand{From: from, To: to, Label: label})
	}

	slices.SortFunc(bands, func(a, b PrizeBand) int {
		return cmp.Compare(a.From, b.From)
	})

	if err := bands.Validate(); err != nil {
		return nil, err
	}
	return bands, nil
}

func parseRankRange(key string) (int, int, error) {
	key = strings.TrimSpace(key)
	fromStr, toStr, isRange := strings.Cut(key, "-")
	from, err := strconv.Atoi(strings.TrimSpace(fromStr))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPrizeBand, key)
	}
	to := from
	if isRange {
		to, err = strconv.Atoi(strings.TrimSpace(toStr))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPrizeBand, key)
		}
	}
	if from <= 0 || to < from {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPrizeBand, key)
	}
	return from, to, nil
}

// Validate checks that bands are well formed, sorted and disjoint.
func (b PrizeBands) Validate() error {
	for i, band := range b {
		if band.From <= 0 || band.To < band.From {
			return fmt.Errorf("%w: %d-%d", ErrInvalidPrizeBand, band.From, band.To)
		}
		if i > 0 && band.From <= b[i-1].To {
			return fmt.Errorf("%w: %d-%d and %d-%d", ErrOverlappingPrizes, b[i-1].From, b[i-1].To, band.From, band.To)
		}
	}
	return nil
}

// LabelFor returns the label of the band containing rank, or "".
func (b PrizeBands) LabelFor(rank int) string {
	for _, band := range b {
		if rank >= band.From && rank <= band.To {
			return band.Label
		}
	}
	return ""
}
