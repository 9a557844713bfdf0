package availability

import (
	"slices"
	"time"
)

const slotKeyLayout = "2006-01-02T15:04"

// FilterBooked returns the candidates whose local date-time in p.Location
// matches none of booked, compared at minute granularity. The result is
// sorted ascending; candidates is left untouched.
func (p *Policy) FilterBooked(candidates []time.Time, booked []time.Time) []time.Time {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[p.slotKey(b)] = struct{}{}
	}

	free := make([]time.Time, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := taken[p.slotKey(c)]; ok {
			continue
		}
		free = append(free, c)
	}

	slices.SortStableFunc(free, func(a, b time.Time) int { return a.Compare(b) })
	return free
}

func (p *Policy) slotKey(t time.Time) string {
	return t.In(p.Location).Format(slotKeyLayout)
}
