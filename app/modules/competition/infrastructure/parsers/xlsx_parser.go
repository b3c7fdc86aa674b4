package parsers

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads fixtures from the first sheet of a workbook.
type XLSXParser struct {
	kickoff *KickoffParser
}

// NewXLSXParser creates a new XLSX parser.
func NewXLSXParser(kp *KickoffParser) *XLSXParser {
	return &XLSXParser{kickoff: kp}
}

// Parse implements Parser.
func (p *XLSXParser) Parse(fileData []byte, fileName string) (*ParsedFixtures, error) {
	f, err := excelize.OpenReader(bytes.NewReader(fileData))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file %s: %w", fileName, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file %s has no sheets", fileName)
	}

	// raw values keep date cells as serials instead of locale formatted text
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return parseFixtureRows(rows, p.kickoff)
}
