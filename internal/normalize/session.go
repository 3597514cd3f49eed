package normalize

import (
	"sort"
	"strconv"
	"time"
)

type sessionBoundary struct {
	label string
	start time.Time
}

// SessionResolver buckets timestamps into legislative sessions that start
// on January 1 of each configured year.
type SessionResolver struct {
	loc        *time.Location
	boundaries []sessionBoundary
}

func NewSessionResolver(years []int, loc *time.Location) *SessionResolver {
	if loc == nil {
		loc = time.UTC
	}

	boundaries := make([]sessionBoundary, 0, len(years))
	for _, year := range years {
		boundaries = append(boundaries, sessionBoundary{
			label: strconv.Itoa(year),
			start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
		})
	}

	sort.Slice(boundaries, func(i, j int) bool {
		return boundaries[i].start.After(boundaries[j].start)
	})

	return &SessionResolver{loc: loc, boundaries: boundaries}
}

// Run returns the label of the latest session starting at or before t.
func (r *SessionResolver) Run(t time.Time) (string, error) {
	t = t.In(r.loc)
	for _, b := range r.boundaries {
		if !t.Before(b.start) {
			return b.label, nil
		}
	}
	return "", ErrNoSession
}
