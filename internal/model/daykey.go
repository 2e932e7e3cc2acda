package model

import "time"

const dayKeyLayout = "2006-01-02"

// DayKey canonicalizes a calendar date into the history store key,
// dropping the time of day.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ParseDayKey reports the midnight instant of a day key in the local
// timezone.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, key, time.Local)
}

func IsDayKey(key string) bool {
	_, err := time.Parse(dayKeyLayout, key)
	return err == nil
}
