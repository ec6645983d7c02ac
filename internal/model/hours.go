package model

import (
	"strings"
)

// Weekday is a lowercase English day name.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday maps a full or abbreviated day name to a Weekday.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ".")))
	if len(s) < 3 {
		return "", false
	}
	for _, d := range Weekdays {
		if string(d) == s || (len(s) <= len(d) && strings.HasPrefix(string(d), s)) {
			return d, true
		}
	}
	return "", false
}

// DayHours describes opening hours for one day. Open and Close use 24h
// "HH:MM" notation.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
	Open24 bool   `json:"open24,omitempty"`
}

// Hours is a structured weekly schedule.
type Hours map[Weekday]DayHours

// IsEmpty reports whether no day has been recorded.
func (h *Hours) IsEmpty() bool {
	return h == nil || len(*h) == 0
}
