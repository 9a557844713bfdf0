package availability

import (
	"slices"
	"time"

	"eclinic/cmd/internal/domain/entity"
	"github.com/labstack/gommon/log"
)

const timeOfDayLayout = "15:04"

// MalformedEntry describes a schedule value that could not be read as HH:mm.
type MalformedEntry struct {
	Weekday string
	Value   string
	Err     error
}

type Expansion struct {
	Slots   []time.Time
	Skipped []MalformedEntry
}

// Expand lists every schedule slot in the next HorizonDays calendar days,
// today included, that starts strictly after now. Slots are in p.Location,
// ascending and unique. A bad entry only drops itself.
func (p *Policy) Expand(schedule entity.WeeklySchedule, now time.Time) *Expansion {
	out := &Expansion{}
	if schedule.IsEmpty() {
		return out
	}

	now = now.In(p.Location)
	year, month, day := now.Date()

	for d := 0; d < p.HorizonDays; d++ {
		date := time.Date(year, month, day+d, 0, 0, 0, 0, p.Location)
		weekday := date.Weekday().String()

		for _, raw := range schedule.TimesFor(date.Weekday()) {
			tod, err := time.Parse(timeOfDayLayout, raw)
			if err != nil {
				log.Warnf("skipping malformed schedule entry %q on %s: %v", raw, weekday, err)
				out.Skipped = append(out.Skipped, MalformedEntry{Weekday: weekday, Value: raw, Err: err})
				continue
			}

			candidate := time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, p.Location)
			if candidate.After(now) {
				out.Slots = append(out.Slots, candidate)
			}
		}
	}

	slices.SortFunc(out.Slots, func(a, b time.Time) int { return a.Compare(b) })
	out.Slots = slices.CompactFunc(out.Slots, func(a, b time.Time) bool { return a.Equal(b) })
	return out
}

// Offers reports whether slot is one of the expanded slots.
func (e *Expansion) Offers(slot time.Time) bool {
	_, found := slices.BinarySearchFunc(e.Slots, slot, func(a, b time.Time) int { return a.Compare(b) })
	return found
}
