package sheet

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lxing/wheel/internal/wheel"
)

// ParseGameFile reads the whitespace-separated layout:
//
//	<member count> <game count>
//	<member> ...
//	<limit> <game> <codes>
//
// where codes has one character per member.
func ParseGameFile(r io.Reader) (*wheel.Catalogue, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("read %s: %w", what, err)
			}
			return "", fmt.Errorf("%w: missing %s", ErrMalformed, what)
		}
		return sc.Text(), nil
	}
	nextInt := func(what string) (int, error) {
		raw, err := next(what)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformed, what, raw)
		}
		return n, nil
	}
	nextCount := func(what string) (int, error) {
		raw, err := next(what)
		if err != nil {
			return 0, err
		}
		n, err := parseCount(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
		}
		return n, nil
	}

	memberCount, err := nextCount("member count")
	if err != nil {
		return nil, err
	}
	gameCount, err := nextCount("game count")
	if err != nil {
		return nil, err
	}

	var names []string
	for i := 0; i < memberCount; i++ {
		name, err := next(fmt.Sprintf("member %d", i+1))
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	var records []wheel.ItemRecord
	for i := 0; i < gameCount; i++ {
		limit, err := nextInt(fmt.Sprintf("limit for game %d", i+1))
		if err != nil {
			return nil, err
		}
		name, err := next(fmt.Sprintf("name for game %d", i+1))
		if err != nil {
			return nil, err
		}
		codes := ""
		if memberCount > 0 {
			if codes, err = next(fmt.Sprintf("codes for game %q", name)); err != nil {
				return nil, err
			}
		}
		records = append(records, wheel.ItemRecord{Capacity: limit, Name: name, Codes: codes})
	}

	return wheel.NewCatalogue(names, records)
}

// WriteGameFile writes cat in the layout ParseGameFile reads. Names must not
// contain whitespace.
func WriteGameFile(w io.Writer, cat *wheel.Catalogue) error {
	names, records := cat.Records()
	for _, name := range names {
		if strings.ContainsAny(name, " \t\r\n") {
			return fmt.Errorf("member %q: game file names cannot contain spaces", name)
		}
	}
	for _, rec := range records {
		if strings.ContainsAny(rec.Name, " \t\r\n") {
			return fmt.Errorf("game %q: game file names cannot contain spaces", rec.Name)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", len(names), len(records))
	fmt.Fprintln(bw, strings.Join(names, " "))
	for _, rec := range records {
		fmt.Fprintf(bw, "%d %s %s\n", rec.Capacity, rec.Name, rec.Codes)
	}
	return bw.Flush()
}

// Convert rewrites a CSV export as a game file.
func Convert(in io.Reader, out io.Writer) (*wheel.Catalogue, error) {
	cat, err := ParseCSV(in)
	if err != nil {
		return nil, err
	}
	if err := WriteGameFile(out, cat); err != nil {
		return nil, err
	}
	return cat, nil
}
