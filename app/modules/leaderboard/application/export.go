package leaderboardservice

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Leaderboard"

var exportHeader = []any{
	"Rank", "Name", "Bets", "Match points", "Table points", "Bonus points",
	"Total", "Goal diff", "Goals scored diff", "Prize", "Top scorer", "Most assists",
}

// WriteLeaderboardXLSX renders a leaderboard as a single-sheet workbook.
func WriteLeaderboardXLSX(view *LeaderboardView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	title := view.Name
	if view.Season != "" {
		title += " " + view.Season
	}
	if err := f.SetCellValue(exportSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(exportSheet, "A2", "As of "+view.AsOf.UTC().Format("2006-01-02 15:04 MST")); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A4", &exportHeader); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(exportSheet, 4, 4, bold); err != nil {
		return nil, err
	}

	for i, r := range view.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+5)
		if err != nil {
			return nil, err
		}
		row := []any{
			r.Rank, r.DisplayName, r.Predictions, r.MatchPoints, r.TablePoints, r.BonusPoints,
			r.Total, r.GoalDiffError, r.GoalsScoredError, r.Prize,
			strings.Join(r.TopScorers, ", "), strings.Join(r.MostAssists, ", "),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "B", "B", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
