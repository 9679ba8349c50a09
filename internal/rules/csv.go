package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Header is the CSV header for the rule table.
const Header = "activity_type,side,effect"

const (
	numFields = 3
	colType   = 0
	colSide   = 1
	colEffect = 2
)

// ReadRules reads all rules from a rule-table CSV reader.
func ReadRules(r io.Reader) ([]Rule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rules CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	if got := strings.Join(records[0], ","); got != Header {
		return nil, fmt.Errorf("rule table header %q, want %q", got, Header)
	}

	var rr []Rule
	for i, rec := range records[1:] {
		rule, err := UnmarshalRule(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rr = append(rr, rule)
	}
	return rr, nil
}

// UnmarshalRule converts a CSV row to a Rule.
func UnmarshalRule(record []string) (Rule, error) {
	if len(record) != numFields {
		return Rule{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	effect, err := ParseEffect(record[colEffect])
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s/%s: %w", record[colType], record[colSide], err)
	}

	return Rule{
		Key:    Key{ActivityType: record[colType], Side: record[colSide]},
		Effect: effect,
	}, nil
}

// MarshalRule converts a Rule to a CSV row.
func MarshalRule(r Rule) []string {
	row := make([]string, numFields)
	row[colType] = r.Key.ActivityType
	row[colSide] = r.Key.Side
	row[colEffect] = string(r.Effect)
	return row
}

// Load reads a rule-table CSV from disk and builds the lookup table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule table: %w", err)
	}
	defer f.Close()

	rr, err := ReadRules(f)
	if err != nil {
		return nil, fmt.Errorf("reading rule table %s: %w", path, err)
	}
	table, err := NewTable(rr)
	if err != nil {
		return nil, fmt.Errorf("loading rule table %s: %w", path, err)
	}
	return table, nil
}
