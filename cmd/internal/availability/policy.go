// Package availability turns a doctor's weekly schedule into concrete,
// bookable date-times and removes the ones that are already taken.
package availability

import (
	"fmt"
	"time"
)

const (
	DefaultTimezone    = "Europe/Warsaw"
	DefaultHorizonDays = 7
	DefaultStep        = 30 * time.Minute
)

// Policy holds the scheduling rules shared by expansion, filtering and
// schedule discretization.
type Policy struct {
	Location    *time.Location
	HorizonDays int
	Step        time.Duration
}

func NewPolicy(timezone string, horizonDays int, step time.Duration) (*Policy, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if horizonDays <= 0 {
		return nil, fmt.Errorf("horizon must be at least one day, got %d", horizonDays)
	}
	if step < time.Minute || step%time.Minute != 0 {
		return nil, fmt.Errorf("slot step must be a positive whole number of minutes, got %s", step)
	}
	return &Policy{Location: loc, HorizonDays: horizonDays, Step: step}, nil
}

// DefaultPolicy is the seven day, thirty minute policy in DefaultTimezone.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultTimezone, DefaultHorizonDays, DefaultStep)
	if err != nil {
		panic(err)
	}
	return p
}
