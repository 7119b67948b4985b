// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for advancing a recurring
// schedule. Each frequency (daily, weekly, monthly, yearly) has its own
// advancer that computes the next occurrence from the current one.

package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Advancer is the strategy interface for moving a schedule forward by one
// period. Implementations must return a date strictly after d.
type Advancer interface {
	Next(d core.Date) core.Date
}

// DailyAdvancer adds one day.
type DailyAdvancer struct{}

func (DailyAdvancer) Next(d core.Date) core.Date { return d.AddDays(1) }

// WeeklyAdvancer adds seven days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(d core.Date) core.Date { return d.AddDays(7) }

// MonthlyAdvancer moves to the same day of the next month, clamped to the
// last day of that month. The clamp is computed from d, not from the day the
// schedule started on, so Jan 31 -> Feb 29 -> Mar 29.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(d core.Date) core.Date {
	year, month := d.Year(), time.Month(d.Month())+1
	if month > time.December {
		month = time.January
		year++
	}
	day := min(d.Day(), core.DaysIn(year, month))
	return core.NewDate(year, int(month), day)
}

// YearlyAdvancer keeps month and day; Feb 29 becomes Feb 28 in common years.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(d core.Date) core.Date {
	year := d.Year() + 1
	day := min(d.Day(), core.DaysIn(year, time.Month(d.Month())))
	return core.NewDate(year, d.Month(), day)
}

// advanceStrategies maps frequencies to their advancers.
var advanceStrategies = map[core.Frequency]Advancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// GetAdvancer returns the advancer registered for a frequency.
func GetAdvancer(frequency core.Frequency) (Advancer, error) {
	a, ok := advanceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, frequency)
	}
	return a, nil
}

// RegisterAdvancer allows registering custom advancers for new frequencies.
// Not safe for concurrent use with Advance; call it during initialization.
func RegisterAdvancer(frequency core.Frequency, a Advancer) {
	advanceStrategies[frequency] = a
}

// Advance returns the occurrence after d. For an unknown frequency it returns
// d unchanged together with an error wrapping core.ErrInvalidFrequency.
func Advance(d core.Date, frequency core.Frequency) (core.Date, error) {
	a, err := GetAdvancer(frequency)
	if err != nil {
		return d, err
	}
	return a.Next(d), nil
}
