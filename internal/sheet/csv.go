// Package sheet reads the group's game spreadsheet, either as the CSV the
// spreadsheet exports or as the space-separated game file derived from it.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lxing/wheel/internal/wheel"
)

// ErrMalformed marks input that does not follow either sheet layout.
var ErrMalformed = errors.New("malformed sheet")

// maxCount bounds the member and game counts a sheet may declare. Records
// are still read one at a time, so a count past the real data fails on the
// missing row.
const maxCount = 1 << 16

// ParseCSV reads the spreadsheet export:
//
//	<title row>
//	<member count>,<game count>
//	Player Limit,Game,<member>,...
//	<limit>,<game>,<code>,...
//
// Extra trailing columns are ignored. A blank limit means no limit.
func ParseCSV(r io.Reader) (*wheel.Catalogue, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("%w: read title row: %v", ErrMalformed, err)
	}

	counts, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read counts row: %v", ErrMalformed, err)
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("%w: counts row needs member and game counts", ErrMalformed)
	}
	memberCount, err := parseCount(counts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: member count: %v", ErrMalformed, err)
	}
	gameCount, err := parseCount(counts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: game count: %v", ErrMalformed, err)
	}

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header row: %v", ErrMalformed, err)
	}
	if len(header) < 2+memberCount {
		return nil, fmt.Errorf("%w: header has %d member columns, want %d", ErrMalformed, len(header)-2, memberCount)
	}
	names := make([]string, memberCount)
	for i := range names {
		names[i] = strings.TrimSpace(header[2+i])
	}

	var records []wheel.ItemRecord
	for row := 0; row < gameCount; row++ {
		fields, err := cr.Read()
		if err != nil {
			return nil, fmt.Errorf("%w: read game row %d of %d: %v", ErrMalformed, row+1, gameCount, err)
		}
		rec, err := csvItem(fields, memberCount)
		if err != nil {
			return nil, fmt.Errorf("%w: game row %d: %v", ErrMalformed, row+1, err)
		}
		records = append(records, rec)
	}

	return wheel.NewCatalogue(names, records)
}

func csvItem(fields []string, memberCount int) (wheel.ItemRecord, error) {
	if len(fields) < 2+memberCount {
		return wheel.ItemRecord{}, fmt.Errorf("has %d columns, want %d", len(fields), 2+memberCount)
	}
	limit := 0
	if raw := strings.TrimSpace(fields[0]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return wheel.ItemRecord{}, fmt.Errorf("invalid player limit %q", raw)
		}
		limit = n
	}
	var codes strings.Builder
	for i := 0; i < memberCount; i++ {
		cell := strings.TrimSpace(fields[2+i])
		if cell == "" {
			return wheel.ItemRecord{}, fmt.Errorf("missing status for member %d", i+1)
		}
		codes.WriteRune([]rune(cell)[0])
	}
	return wheel.ItemRecord{
		Capacity: limit,
		Name:     strings.TrimSpace(fields[1]),
		Codes:    codes.String(),
	}, nil
}

func parseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	if n > maxCount {
		return 0, fmt.Errorf("count %d exceeds %d", n, maxCount)
	}
	return n, nil
}
