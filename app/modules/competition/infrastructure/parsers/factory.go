package parsers

import (
	"fmt"
	"strings"
)

// Factory creates the appropriate parser based on file extension.
type Factory struct {
	kickoff *KickoffParser
}

// NewFactory creates a parser factory whose parsers read kickoffs with kp.
func NewFactory(kp *KickoffParser) *Factory {
	return &Factory{kickoff: kp}
}

// GetParser returns a parser for the given file name.
func (f *Factory) GetParser(fileName string) (Parser, error) {
	fileName = strings.ToLower(fileName)

	if strings.HasSuffix(fileName, ".csv") {
		return NewCSVParser(f.kickoff), nil
	}

	if strings.HasSuffix(fileName, ".xlsx") {
		return NewXLSXParser(f.kickoff), nil
	}

	return nil, fmt.Errorf("unsupported file type: %s (must be .csv or .xlsx)", fileName)
}
