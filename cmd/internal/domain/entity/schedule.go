package entity

import "time"

// WeeklySchedule maps an English weekday name ("Monday".."Sunday") to the
// "HH:mm" start times a doctor offers on that day.
type WeeklySchedule map[string][]string

// Weekdays lists the accepted schedule keys, Monday first.
var Weekdays = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

func IsWeekday(name string) bool {
	for _, w := range Weekdays {
		if w == name {
			return true
		}
	}
	return false
}

// TimesFor returns the entries for weekday. The lookup is case-sensitive.
func (s WeeklySchedule) TimesFor(weekday time.Weekday) []string {
	if s == nil {
		return nil
	}
	return s[weekday.String()]
}

// IsEmpty reports whether no weekday offers any time.
func (s WeeklySchedule) IsEmpty() bool {
	for _, times := range s {
		if len(times) > 0 {
			return false
		}
	}
	return true
}
