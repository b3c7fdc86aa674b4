package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/xuri/excelize/v2"
)

var kickoffLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02/01/2006 15:04",
	"02.01.2006 15:04",
	"2006-01-02",
}

// KickoffParser turns kickoff cells into instants. Structured layouts are
// tried first, then Excel serial dates, then natural language ("sat 3pm",
// "next friday 20:00") relative to Base.
type KickoffParser struct {
	Location *time.Location
	Base     time.Time
	when     *when.Parser
}

// NewKickoffParser creates a parser reading local times in loc.
func NewKickoffParser(loc *time.Location, base time.Time) *KickoffParser {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &KickoffParser{Location: loc, Base: base, when: w}
}

// Parse returns the kickoff in UTC.
func (p *KickoffParser) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty kickoff")
	}

	for _, layout := range kickoffLayouts {
		if t, err := time.ParseInLocation(layout, input, p.Location); err == nil {
			return t.UTC(), nil
		}
	}

	if serial, err := strconv.ParseFloat(input, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid excel date %q: %w", input, err)
		}
		// excel serials carry wall-clock time without a zone
		wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, p.Location)
		return wall.UTC(), nil
	}

	r, err := p.when.Parse(strings.ToLower(input), p.Base.In(p.Location))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse kickoff %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize kickoff %q", input)
	}
	return r.Time.UTC(), nil
}
