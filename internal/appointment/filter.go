package appointment

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turnoshq/turnos-api/internal/datekey"
)

// FilterKind tags a resolved list filter.
type FilterKind string

const (
	FilterDay   FilterKind = "day"
	FilterWeek  FilterKind = "week"
	FilterMonth FilterKind = "month"
	FilterRange FilterKind = "range"
)

// Filter is the resolved, unambiguous form of a list query. A day filter
// addresses one exact key and lists full rows; every other kind carries an
// inclusive date range and yields grouped counts. Consumers can never
// observe two filters at once: the resolver produces exactly one.
type Filter struct {
	Kind  FilterKind
	Day   string
	Start string
	End   string
}

// ListQuery carries the raw query parameters of a list request. Empty
// strings mean the parameter was not supplied.
type ListQuery struct {
	Day   string
	Week  string
	Month string
	Start string
	End   string
}

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ResolveListQuery validates the query parameters and resolves them into a
// single Filter. Exactly one filter family must be present; start and end
// count as one family and must arrive together.
func ResolveListQuery(q ListQuery) (Filter, error) {
	families := 0
	if q.Day != "" {
		families++
	}
	if q.Week != "" {
		families++
	}
	if q.Month != "" {
		families++
	}
	if q.Start != "" || q.End != "" {
		families++
	}
	if families > 1 {
		return Filter{}, ErrAmbiguousFilter
	}

	switch {
	case q.Day != "":
		if !datekey.IsValid(q.Day) {
			return Filter{}, ErrInvalidDay
		}
		return Filter{Kind: FilterDay, Day: q.Day}, nil

	case q.Week != "":
		if !datekey.IsValid(q.Week) {
			return Filter{}, ErrInvalidWeek
		}
		week, err := datekey.WorkWeek(q.Week)
		if err != nil {
			return Filter{}, ErrInvalidWeek
		}
		return Filter{Kind: FilterWeek, Start: week[0], End: week[len(week)-1]}, nil

	case q.Month != "":
		month := strings.TrimSpace(q.Month)
		if !monthPattern.MatchString(month) {
			return Filter{}, ErrInvalidMonth
		}
		year, _ := strconv.Atoi(month[:4])
		m, _ := strconv.Atoi(month[5:])
		if m < 1 || m > 12 {
			return Filter{}, ErrInvalidMonth
		}
		start, end := datekey.MonthBounds(year, time.Month(m))
		return Filter{Kind: FilterMonth, Start: start, End: end}, nil

	case q.Start != "" || q.End != "":
		if q.Start == "" || q.End == "" || !datekey.IsValid(q.Start) || !datekey.IsValid(q.End) {
			return Filter{}, ErrInvalidRange
		}
		return Filter{Kind: FilterRange, Start: q.Start, End: q.End}, nil

	default:
		return Filter{}, ErrNoFilter
	}
}
