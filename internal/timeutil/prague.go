package timeutil

import (
	"time"
)

// Prague is the organization's business timezone (CET/CEST)
var Prague *time.Location

func init() {
	var err error
	Prague, err = time.LoadLocation("Europe/Prague")
	if err != nil {
		// Fallback: fixed CET if tzdata is not available
		Prague = time.FixedZone("CET", 60*60)
	}
}

// Now returns the current time in the business timezone
func Now() time.Time {
	return time.Now().In(Prague)
}

// ToLocal converts any time to the business timezone
func ToLocal(t time.Time) time.Time {
	return t.In(Prague)
}

// ParseLocal parses a time string in the business timezone
func ParseLocal(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, Prague)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StartOfDay returns 00:00:00 of the given time's day in the business timezone
func StartOfDay(t time.Time) time.Time {
	local := t.In(Prague)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Prague)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02.01.2006 15:04"
)
