package availability

import (
	"fmt"
	"time"

	"eclinic/cmd/internal/domain/entity"
)

// TimeRange is the editable working window of one weekday, in HH:mm.
type TimeRange struct {
	Start string
	End   string
}

// Discretize turns per-weekday ranges into a WeeklySchedule with one entry
// every p.Step from Start while the entry is before End. Weekdays whose
// range is empty, inverted or unreadable are left out and returned in
// rejected, sorted Monday first.
func (p *Policy) Discretize(ranges map[string]TimeRange) (schedule entity.WeeklySchedule, rejected []string) {
	schedule = entity.WeeklySchedule{}
	stepMinutes := int(p.Step / time.Minute)

	for _, weekday := range entity.Weekdays {
		r, ok := ranges[weekday]
		if !ok {
			continue
		}

		start, errStart := minutesOfDay(r.Start)
		end, errEnd := minutesOfDay(r.End)
		if errStart != nil || errEnd != nil || start >= end {
			rejected = append(rejected, weekday)
			continue
		}

		var times []string
		for cur := start; cur < end; cur += stepMinutes {
			times = append(times, fmt.Sprintf("%02d:%02d", cur/60, cur%60))
		}
		schedule[weekday] = times
	}
	return schedule, rejected
}

func minutesOfDay(raw string) (int, error) {
	t, err := time.Parse(timeOfDayLayout, raw)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
