// Package msk pins every date computation of the service to Moscow time,
// the only zone the source site publishes in.
package msk

import (
	"fmt"
	"sync"
	"time"
)

const Name = "Europe/Moscow"

var (
	once     sync.Once
	loc      *time.Location
	fallback bool
)

// Location returns Europe/Moscow, or a fixed UTC+3 zone when the IANA
// database is unavailable.
func Location() *time.Location {
	once.Do(func() {
		l, err := time.LoadLocation(Name)
		if err != nil {
			l = time.FixedZone("MSK", 3*60*60)
			fallback = true
		}
		loc = l
	})
	return loc
}

// IsFallback reports whether Location had to use the fixed offset zone.
func IsFallback() bool {
	Location()
	return fallback
}

func Now() time.Time {
	return time.Now().In(Location())
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, Location())
}

// Day truncates t to midnight of its Moscow calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.In(Location()).Date()
	return Date(y, m, d)
}

// Combine places an "HH:MM" clock value on the given day.
func Combine(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, Location()), nil
}

// ParseDate reads a "2006-01-02" date in Moscow time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, Location())
}

// ParseDateTime reads a "2006-01-02" date and an "HH:MM" clock in Moscow time.
func ParseDateTime(date, clock string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return Combine(day, clock)
}
