package parsers

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingColumns = errors.New("standings sheet needs position and team columns")
	ErrNoStandings    = errors.New("no standings rows found")
	ErrUnsupported    = errors.New("standings import only reads .xlsx files")
)

// StandingRow is one table row read from a sheet.
type StandingRow struct {
	Line     int
	Position int
	Team     string
}

// ParsedStandings is the content of a standings sheet. Designations are
// collected from every non-empty cell of their columns.
type ParsedStandings struct {
	Rows        []StandingRow
	TopScorers  []string
	MostAssists []string
}

var headerAliases = map[string]string{
	"pos":          "position",
	"position":     "position",
	"#":            "position",
	"team":         "team",
	"club":         "team",
	"top scorer":   "scorers",
	"top scorers":  "scorers",
	"scorer":       "scorers",
	"most assists": "assists",
	"assists":      "assists",
}

type columns struct {
	position, team, scorers, assists int
}

// ParseXLSX reads standings from the first sheet of a workbook.
func ParseXLSX(fileData []byte, fileName string) (*ParsedStandings, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, fileName)
	}
	f, err := excelize.OpenReader(bytes.NewReader(fileData))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file %s: %w", fileName, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file %s has no sheets", fileName)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows)
}

func findHeader(rows [][]string) (int, columns, error) {
	for i, row := range rows {
		cols := columns{position: -1, team: -1, scorers: -1, assists: -1}
		for j, c := range row {
			switch headerAliases[strings.ToLower(strings.TrimSpace(c))] {
			case "position":
				cols.position = j
			case "team":
				cols.team = j
			case "scorers":
				cols.scorers = j
			case "assists":
				cols.assists = j
			}
		}
		if cols.position >= 0 && cols.team >= 0 {
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

func parseRows(rows [][]string) (*ParsedStandings, error) {
	headerIdx, cols, err := findHeader(rows)
	if err != nil {
		return nil, err
	}

	out := &ParsedStandings{}
	var errs []error
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		if v := cell(row, cols.scorers); v != "" {
			out.TopScorers = append(out.TopScorers, v)
		}
		if v := cell(row, cols.assists); v != "" {
			out.MostAssists = append(out.MostAssists, v)
		}

		posText, team := cell(row, cols.position), cell(row, cols.team)
		if posText == "" && team == "" {
			continue
		}
		pos, err := strconv.Atoi(strings.TrimSuffix(posText, "."))
		if err != nil || pos <= 0 {
			errs = append(errs, fmt.Errorf("line %d: invalid position %q", line, posText))
			continue
		}
		if team == "" {
			errs = append(errs, fmt.Errorf("line %d: team is required", line))
			continue
		}
		out.Rows = append(out.Rows, StandingRow{Line: line, Position: pos, Team: team})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(out.Rows) == 0 {
		return nil, ErrNoStandings
	}
	return out, nil
}
