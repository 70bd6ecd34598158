package product

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the compact calendar-date form used on the command line and
// inside product identifiers.
const DateLayout = "20060102"

const day = 24 * time.Hour

// Date is a calendar day held as UTC midnight.
type Date struct {
	time.Time
}

// ParseDate parses a YYYYMMDD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q is not YYYYMMDD", ErrInvalidParameter, s)
	}
	return Date{Time: t}, nil
}

// MustDate is ParseDate for literals known to be valid.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// DaysUntil returns the whole days from d to other, negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time) / day)
}

// Pair is an interferogram's acquisition date pair.
type Pair struct {
	Start Date
	End   Date
}

// Baseline returns the temporal baseline in days.
func (p Pair) Baseline() int {
	return p.Start.DaysUntil(p.End)
}

func (p Pair) String() string {
	return p.Start.String() + "_" + p.End.String()
}

// ParsePair parses the --ifg form START_END, earlier date first.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(strings.TrimSpace(s), "_")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("%w: interferogram %q is not YYYYMMDD_YYYYMMDD", ErrInvalidParameter, s)
	}
	start, err := ParseDate(parts[0])
	if err != nil {
		return Pair{}, err
	}
	end, err := ParseDate(parts[1])
	if err != nil {
		return Pair{}, err
	}
	return Pair{Start: start, End: end}, nil
}

var identifierPair = regexp.MustCompile(`\d{8}_\d{8}`)

// ParseIdentifier extracts the date pair embedded in a product file id.
// Identifiers carry the later date first, so the match reads END_START.
func ParseIdentifier(id string) (Pair, error) {
	match := identifierPair.FindString(id)
	if match == "" {
		return Pair{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, id)
	}
	end, errEnd := time.Parse(DateLayout, match[:8])
	start, errStart := time.Parse(DateLayout, match[9:])
	if errEnd != nil || errStart != nil {
		return Pair{}, fmt.Errorf("%w: %q has an invalid calendar date", ErrMalformedIdentifier, id)
	}
	return Pair{Start: Date{Time: start}, End: Date{Time: end}}, nil
}
