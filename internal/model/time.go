package model

import (
	"fmt"
	"time"
)

// LocalTime renders as "YYYY-MM-DD HH:MM:SS" in admin listings.
type LocalTime time.Time

const timeFormat = "2006-01-02 15:04:05"

func (t LocalTime) String() string {
	return time.Time(t).Format(timeFormat)
}

// MarshalJSON implements json.Marshaler.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}
