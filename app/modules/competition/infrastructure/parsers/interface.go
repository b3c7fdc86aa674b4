package parsers

import "time"

// Parser reads a fixture list from an uploaded file.
type Parser interface {
	// Parse reads fixture data. fileName is only used in error messages.
	Parse(fileData []byte, fileName string) (*ParsedFixtures, error)
}

// FixtureRow is one fixture as written in the file. Goals are set only when
// the row carries a score.
type FixtureRow struct {
	Line      int
	Home      string
	Away      string
	Kickoff   time.Time
	HomeGoals *int
	AwayGoals *int
}

// ParsedFixtures is the result of parsing a fixture file.
type ParsedFixtures struct {
	Rows []FixtureRow
}
