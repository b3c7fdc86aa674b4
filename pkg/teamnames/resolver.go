// Package teamnames resolves free-form team names, as typed in spreadsheets,
// to known team IDs.
package teamnames

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	ErrUnknownTeam   = errors.New("unknown team")
	ErrAmbiguousTeam = errors.New("ambiguous team name")
)

// Team is a resolution candidate. Short is optional.
type Team struct {
	ID    sharedtypes.TeamID
	Name  string
	Short string
}

// Resolver matches names exactly (case-insensitive, on name or short name)
// and falls back to a fuzzy subsequence match on the full name. A fuzzy
// input must match exactly one team.
type Resolver struct {
	exact   map[string]sharedtypes.TeamID
	byLower map[string]sharedtypes.TeamID
	names   []string
}

// NewResolver builds a resolver over teams.
func NewResolver(teams []Team) *Resolver {
	r := &Resolver{
		exact:   make(map[string]sharedtypes.TeamID, len(teams)*2),
		byLower: make(map[string]sharedtypes.TeamID, len(teams)),
		names:   make([]string, 0, len(teams)),
	}
	for _, t := range teams {
		name := normalize(t.Name)
		if name == "" {
			continue
		}
		r.exact[name] = t.ID
		r.byLower[name] = t.ID
		r.names = append(r.names, name)
		if short := normalize(t.Short); short != "" {
			if _, taken := r.exact[short]; !taken {
				r.exact[short] = t.ID
			}
		}
	}
	return r
}

// Resolve returns the ID of the team named by input.
func (r *Resolver) Resolve(input string) (sharedtypes.TeamID, error) {
	needle := normalize(input)
	if needle == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownTeam)
	}
	if id, ok := r.exact[needle]; ok {
		return id, nil
	}

	ranks := fuzzy.RankFindNormalizedFold(needle, r.names)
	if len(ranks) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTeam, input)
	}
	sort.Sort(ranks)
	if len(ranks) > 1 {
		return 0, fmt.Errorf("%w: %q matches %q and %q", ErrAmbiguousTeam, input, ranks[0].Target, ranks[1].Target)
	}
	return r.byLower[ranks[0].Target], nil
}

// ResolveAll resolves every name, joining the failures.
func (r *Resolver) ResolveAll(inputs []string) ([]sharedtypes.TeamID, error) {
	out := make([]sharedtypes.TeamID, len(inputs))
	var errs []error
	for i, in := range inputs {
		id, err := r.Resolve(in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[i] = id
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
