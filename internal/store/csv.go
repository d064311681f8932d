package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lol-blacklist/internal/model"
)

var csvHeader = []string{"summoner_id", "summoner_name", "reason", "date_added", "tagline"}

var requiredColumns = []string{"summoner_id", "summoner_name", "reason"}

// Layouts accepted for date_added. The last three cover files written by older tools.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MissingColumnsError is returned when a CSV lacks required blacklist columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("invalid blacklist format: missing columns %s", strings.Join(e.Columns, ", "))
}

func WriteEntriesCSV(w io.Writer, entries []model.BlacklistEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		date := ""
		if !e.DateAdded.IsZero() {
			date = e.DateAdded.Format(time.RFC3339)
		}
		if err := cw.Write([]string{e.SummonerID, e.SummonerName, e.Reason, date, e.Tagline}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEntriesCSV parses blacklist rows. Columns may appear in any order; tagline and
// date_added are optional. Rows without a summoner id are skipped.
func ReadEntriesCSV(r io.Reader) ([]model.BlacklistEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.BlacklistEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	missing := []string{}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	entries := []model.BlacklistEntry{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		id := field(record, "summoner_id")
		if id == "" {
			continue
		}
		entries = append(entries, model.BlacklistEntry{
			SummonerID:   id,
			SummonerName: field(record, "summoner_name"),
			Reason:       field(record, "reason"),
			Tagline:      field(record, "tagline"),
			DateAdded:    parseDate(field(record, "date_added")),
		})
	}
	return entries, nil
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
