package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVParser reads fixtures from comma separated text.
type CSVParser struct {
	kickoff *KickoffParser
}

// NewCSVParser creates a new CSV parser.
func NewCSVParser(kp *KickoffParser) *CSVParser {
	return &CSVParser{kickoff: kp}
}

// Parse implements Parser.
func (p *CSVParser) Parse(fileData []byte, fileName string) (*ParsedFixtures, error) {
	r := csv.NewReader(bytes.NewReader(fileData))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", fileName, err)
	}
	return parseFixtureRows(rows, p.kickoff)
}
