package parsers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingColumns = errors.New("fixture sheet needs home, away and kickoff columns")
	ErrNoFixtures     = errors.New("no fixtures found")
)

var headerAliases = map[string]string{
	"home":       "home",
	"home team":  "home",
	"away":       "away",
	"away team":  "away",
	"kickoff":    "kickoff",
	"kick-off":   "kickoff",
	"date":       "kickoff",
	"start":      "kickoff",
	"start time": "kickoff",
	"score":      "score",
	"result":     "score",
}

type columns struct {
	home, away, kickoff, score int
}

func findHeader(rows [][]string) (int, columns, error) {
	for i, row := range rows {
		cols := columns{home: -1, away: -1, kickoff: -1, score: -1}
		for j, cell := range row {
			switch headerAliases[strings.ToLower(strings.TrimSpace(cell))] {
			case "home":
				cols.home = j
			case "away":
				cols.away = j
			case "kickoff":
				cols.kickoff = j
			case "score":
				cols.score = j
			}
		}
		if cols.home >= 0 && cols.away >= 0 && cols.kickoff >= 0 {
			return i, cols, nil
		}
	}
	return 0, columns{}, ErrMissingColumns
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseScore reads "2-1" or "2:1". An empty cell means no result.
func parseScore(s string) (*int, *int, error) {
	if s == "" {
		return nil, nil, nil
	}
	sep := "-"
	if strings.Contains(s, ":") {
		sep = ":"
	}
	h, a, ok := strings.Cut(s, sep)
	if !ok {
		return nil, nil, fmt.Errorf("invalid score %q", s)
	}
	home, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || home < 0 {
		return nil, nil, fmt.Errorf("invalid score %q", s)
	}
	away, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil || away < 0 {
		return nil, nil, fmt.Errorf("invalid score %q", s)
	}
	return &home, &away, nil
}

func parseFixtureRows(rows [][]string, kp *KickoffParser) (*ParsedFixtures, error) {
	headerIdx, cols, err := findHeader(rows)
	if err != nil {
		return nil, err
	}

	out := &ParsedFixtures{}
	var errs []error
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		home, away := cell(row, cols.home), cell(row, cols.away)
		if home == "" && away == "" {
			continue
		}
		line := i + 1
		if home == "" || away == "" {
			errs = append(errs, fmt.Errorf("line %d: both teams are required", line))
			continue
		}
		kickoff, err := kp.Parse(cell(row, cols.kickoff))
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		hg, ag, err := parseScore(cell(row, cols.score))
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		out.Rows = append(out.Rows, FixtureRow{
			Line:      line,
			Home:      home,
			Away:      away,
			Kickoff:   kickoff,
			HomeGoals: hg,
			AwayGoals: ag,
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(out.Rows) == 0 {
		return nil, ErrNoFixtures
	}
	return out, nil
}
