// Package daterange converts natural-language date phrases into concrete
// inclusive date ranges anchored at a supplied "now". Families are tried
// in fixed priority (relative, fiscal, named); the first pattern to match
// wins
package daterange

import (
	"strconv"
	"time"

	"equilex/internal/core/rulecatalog"
	"equilex/internal/core/textnorm"
)

// Range is an inclusive calendar interval. Start and End are midnight UTC
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Match is a successful resolution with its provenance
type Match struct {
	Range  Range
	Family string
	Type   string
}

// Resolver holds the compiled pattern families
type Resolver struct {
	families rulecatalog.DateFamilies
}

// New returns a Resolver over the catalog's date families
func New(families rulecatalog.DateFamilies) *Resolver {
	return &Resolver{families: families}
}

// Resolve tries relative, fiscal then named patterns against phrase.
// Returns false when nothing matches
func (r *Resolver) Resolve(phrase string, now time.Time) (Match, bool) {
	text := textnorm.Canonical(phrase)
	if text == "" {
		return Match{}, false
	}
	today := midnight(now)

	for _, fam := range []struct {
		name     string
		patterns []rulecatalog.DatePattern
	}{
		{"relative", r.families.Relative},
		{"fiscal", r.families.Fiscal},
		{"named", r.families.Named},
	} {
		for _, p := range fam.patterns {
			groups := p.RX.FindStringSubmatch(text)
			if groups == nil {
				continue
			}
			rng, ok := eval(p, groups, today)
			if !ok {
				continue
			}
			return Match{Range: rng, Family: fam.name, Type: p.Type}, true
		}
	}
	return Match{}, false
}

func eval(p rulecatalog.DatePattern, groups []string, today time.Time) (Range, bool) {
	n := p.Value
	if len(groups) > 1 {
		if v, err := strconv.Atoi(groups[1]); err == nil {
			n = v
		}
	}

	switch p.Type {
	case "future_days":
		return Range{Start: today, End: today.AddDate(0, 0, n)}, true
	case "future_weeks":
		return Range{Start: today, End: today.AddDate(0, 0, 7*n)}, true
	case "future_months":
		return Range{Start: today, End: addMonths(today, n)}, true
	case "past_days":
		return Range{Start: today.AddDate(0, 0, -n), End: today}, true
	case "past_months":
		return Range{Start: addMonths(today, -n), End: today}, true

	case "quarter_year":
		if len(groups) < 3 {
			return Range{}, false
		}
		q, err1 := strconv.Atoi(groups[1])
		year, err2 := strconv.Atoi(groups[2])
		if err1 != nil || err2 != nil || q < 1 || q > 4 {
			return Range{}, false
		}
		return quarterRange(year, q), true
	case "fiscal_year":
		// fiscal year resolved as the calendar year
		if len(groups) < 2 {
			return Range{}, false
		}
		year, err := strconv.Atoi(groups[1])
		if err != nil {
			return Range{}, false
		}
		return yearRange(year), true

	case "this_year":
		return yearRange(today.Year()), true
	case "last_year":
		return yearRange(today.Year() - 1), true
	case "year_to_date":
		return Range{Start: date(today.Year(), time.January, 1), End: today}, true
	case "this_quarter":
		return quarterRange(today.Year(), quarterOf(today)), true
	case "last_quarter":
		q := quarterOf(today) - 1
		year := today.Year()
		if q == 0 {
			q, year = 4, year-1
		}
		return quarterRange(year, q), true
	case "this_month":
		return monthRange(today.Year(), today.Month()), true
	case "last_month":
		first := date(today.Year(), today.Month(), 1).AddDate(0, 0, -1)
		return monthRange(first.Year(), first.Month()), true
	}
	return Range{}, false
}

// addMonths shifts t by n months, clamping the day to the target month's
// length so end-of-month anchors never spill into the following month
// (Jan 31 + 1 month = Feb 28/29, not Mar 2)
func addMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	year := t.Year() + total/12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	m := time.Month(month + 1)
	day := t.Day()
	if last := daysIn(year, m); day > last {
		day = last
	}
	return date(year, m, day)
}

func quarterOf(t time.Time) int { return (int(t.Month())-1)/3 + 1 }

func quarterRange(year, q int) Range {
	startMonth := time.Month((q-1)*3 + 1)
	endMonth := time.Month(q * 3)
	return Range{
		Start: date(year, startMonth, 1),
		End:   date(year, endMonth, daysIn(year, endMonth)),
	}
}

func yearRange(year int) Range {
	return Range{Start: date(year, time.January, 1), End: date(year, time.December, 31)}
}

func monthRange(year int, m time.Month) Range {
	return Range{Start: date(year, m, 1), End: date(year, m, daysIn(year, m))}
}

func daysIn(year int, m time.Month) int {
	return date(year, m, 1).AddDate(0, 1, -1).Day()
}

func date(year int, m time.Month, day int) time.Time {
	return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	u := t.UTC()
	return date(u.Year(), u.Month(), u.Day())
}
