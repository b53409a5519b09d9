package wheel

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxMemberNameLen = 19
	MaxItemNameLen   = 24
)

// Status is one member's availability for one item.
type Status byte

const (
	StatusYes      Status = 'y'
	StatusNo       Status = 'n'
	StatusDownload Status = 'd'
)

// ParseStatus accepts the lowercase single-letter codes used by the
// spreadsheet. Anything else is malformed.
func ParseStatus(r rune) (Status, error) {
	switch r {
	case 'y':
		return StatusYes, nil
	case 'n':
		return StatusNo, nil
	case 'd':
		return StatusDownload, nil
	default:
		return 0, fmt.Errorf("%w: unknown status code %q", ErrInvalidCatalogue, r)
	}
}

func (s Status) String() string {
	switch s {
	case StatusYes:
		return "yes"
	case StatusNo:
		return "no"
	case StatusDownload:
		return "download"
	default:
		return "unknown"
	}
}

// Member is one roster slot. Whether a member is in the party is tracked by Party.
type Member struct {
	Index int
	Name  string
}

// Item is one catalogue entry. Capacity 0 means unlimited.
type Item struct {
	Name     string
	Capacity int
	// Availability is keyed by member name so status lookups cannot drift
	// from roster positions.
	Availability map[string]Status
}

// StatusFor reports the member's status for the item. Members with no
// recorded status are treated as unavailable.
func (it Item) StatusFor(m Member) Status {
	if s, ok := it.Availability[m.Name]; ok {
		return s
	}
	return StatusNo
}

// ItemRecord is the positional form handed over by data sources: Codes[i]
// belongs to roster slot i.
type ItemRecord struct {
	Capacity int    `json:"capacity"`
	Name     string `json:"name"`
	Codes    string `json:"codes"`
}

// Catalogue is the read-only roster and item list for one round.
type Catalogue struct {
	Members []Member
	Items   []Item
}

// NewCatalogue validates positional records against the roster and pairs
// every status code with its member.
func NewCatalogue(names []string, records []ItemRecord) (*Catalogue, error) {
	// Casers carry state, so each call folds with its own.
	folder := cases.Fold()
	members := make([]Member, len(names))
	seenMembers := make(map[string]bool, len(names))
	for i, raw := range names {
		name := norm.NFC.String(strings.TrimSpace(raw))
		if err := checkName("member", name, MaxMemberNameLen); err != nil {
			return nil, err
		}
		key := folder.String(name)
		if seenMembers[key] {
			return nil, fmt.Errorf("%w: duplicate member %q", ErrInvalidCatalogue, name)
		}
		seenMembers[key] = true
		members[i] = Member{Index: i, Name: name}
	}

	items := make([]Item, len(records))
	seenItems := make(map[string]bool, len(records))
	for i, rec := range records {
		name := norm.NFC.String(strings.TrimSpace(rec.Name))
		if err := checkName("item", name, MaxItemNameLen); err != nil {
			return nil, err
		}
		key := folder.String(name)
		if seenItems[key] {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalidCatalogue, name)
		}
		seenItems[key] = true
		if rec.Capacity < 0 {
			return nil, fmt.Errorf("%w: item %q has negative capacity %d", ErrInvalidCatalogue, name, rec.Capacity)
		}
		codes := []rune(strings.TrimSpace(rec.Codes))
		if len(codes) != len(members) {
			return nil, fmt.Errorf("%w: item %q has %d status codes, want %d", ErrInvalidCatalogue, name, len(codes), len(members))
		}
		availability := make(map[string]Status, len(members))
		for j, code := range codes {
			status, err := ParseStatus(code)
			if err != nil {
				return nil, fmt.Errorf("item %q member %q: %w", name, members[j].Name, err)
			}
			availability[members[j].Name] = status
		}
		items[i] = Item{Name: name, Capacity: rec.Capacity, Availability: availability}
	}

	return &Catalogue{Members: members, Items: items}, nil
}

// Records converts the catalogue back to its positional form.
func (c *Catalogue) Records() ([]string, []ItemRecord) {
	names := make([]string, len(c.Members))
	for i, m := range c.Members {
		names[i] = m.Name
	}
	records := make([]ItemRecord, len(c.Items))
	for i, it := range c.Items {
		var codes strings.Builder
		for _, m := range c.Members {
			codes.WriteByte(byte(it.StatusFor(m)))
		}
		records[i] = ItemRecord{Capacity: it.Capacity, Name: it.Name, Codes: codes.String()}
	}
	return names, records
}

func checkName(kind, name string, max int) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", ErrInvalidCatalogue, kind)
	}
	if n := len([]rune(name)); n > max {
		return fmt.Errorf("%w: %s name %q is %d characters, max %d", ErrInvalidCatalogue, kind, name, n, max)
	}
	return nil
}

