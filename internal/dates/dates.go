// Package dates holds the calendar arithmetic behind birthday reminders:
// age, days until the next occurrence and days since the last one.
//
// An occurrence is the yearly recurrence of a birth date's month and day,
// independent of the birth year. A February 29 birth date observes on
// March 1 in non-leap years (time.Date normalizes the overflow).
package dates

import (
	"errors"
	"fmt"
	"time"
)

// DOBLayout is the wire format for birth dates, both in chat input
// and in the birthdays table.
const DOBLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// ParseDOB parses a YYYY-MM-DD birth date.
func ParseDOB(text string) (time.Time, error) {
	parsed, err := time.Parse(DOBLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates.ParseDOB: %q: %w", text, ErrInvalidDate)
	}

	return parsed, nil
}

// Age returns full years elapsed between dob and today, one less if
// today is still before this year's occurrence.
func Age(dob, today time.Time) int {
	age := today.Year() - dob.Year()

	if monthDayOf(today) < monthDayOf(dob) {
		age--
	}

	return age
}

// DaysUntil returns the number of days from today to the next occurrence
// of dob's month/day. Zero when today is the occurrence.
func DaysUntil(dob, today time.Time) int {
	today = midnightUTC(today)

	next := occurrenceIn(today.Year(), dob)
	if next.Before(today) {
		next = occurrenceIn(today.Year()+1, dob)
	}

	return daysBetween(today, next)
}

// DaysSince returns the number of days from the most recent occurrence
// of dob's month/day to today. Zero when today is the occurrence.
func DaysSince(dob, today time.Time) int {
	today = midnightUTC(today)

	last := occurrenceIn(today.Year(), dob)
	if last.After(today) {
		last = occurrenceIn(today.Year()-1, dob)
	}

	return daysBetween(last, today)
}

// occurrenceIn places dob's month/day into the given year. Feb 29
// overflows to Mar 1 when the year is not a leap year.
func occurrenceIn(year int, dob time.Time) time.Time {
	return time.Date(year, dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func monthDayOf(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}
