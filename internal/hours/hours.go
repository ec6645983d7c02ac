// Package hours parses human-readable opening-hours text into a structured
// weekly schedule.
package hours

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/directory-enrich/internal/model"
)

var (
	clockRe    = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?\s*([ap])?\.?\s*(?:m\.?)?$`)
	rangeSepRe = regexp.MustCompile(`\s*(?:–|—|‒|-|\bto\b)\s*`)
)

// ParseWeekdayDescriptions parses lines such as "Monday: 9:00 AM – 5:00 PM".
// Lines that cannot be parsed are skipped. Returns nil when nothing parsed.
func ParseWeekdayDescriptions(lines []string) *model.Hours {
	h := make(model.Hours)
	for _, line := range lines {
		day, dh, ok := ParseLine(line)
		if !ok {
			continue
		}
		h[day] = dh
	}
	if len(h) == 0 {
		return nil
	}
	return &h
}

// ParseLine splits a "Day: hours" line and parses both halves.
func ParseLine(line string) (model.Weekday, model.DayHours, bool) {
	line = normalize(line)
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", model.DayHours{}, false
	}
	day, ok := model.ParseWeekday(line[:idx])
	if !ok {
		return "", model.DayHours{}, false
	}
	dh, ok := ParseRange(line[idx+1:])
	if !ok {
		return "", model.DayHours{}, false
	}
	return day, dh, true
}

// ParseRange parses the hours half of a line: "Closed", "Open 24 hours",
// "9 AM to 6 PM", or comma-separated ranges such as "11 AM – 2 PM, 5 – 9 PM".
// Split days keep the first opening and the last closing time.
func ParseRange(s string) (model.DayHours, bool) {
	s = strings.ToLower(normalize(s))
	switch {
	case s == "":
		return model.DayHours{}, false
	case strings.Contains(s, "closed"):
		return model.DayHours{Closed: true}, true
	case strings.Contains(s, "24 hours"), strings.Contains(s, "24/7"):
		return model.DayHours{Open24: true}, true
	}

	parts := strings.Split(s, ",")
	first, ok := parseSpan(parts[0])
	if !ok {
		return model.DayHours{}, false
	}
	last := first
	if len(parts) > 1 {
		if l, ok := parseSpan(parts[len(parts)-1]); ok {
			last = l
		}
	}
	return model.DayHours{Open: first[0], Close: last[1]}, true
}

// parseSpan parses "open – close" into 24h clock strings.
func parseSpan(s string) ([2]string, bool) {
	halves := rangeSepRe.Split(strings.TrimSpace(s), 2)
	if len(halves) != 2 {
		return [2]string{}, false
	}
	open, openMer, ok := parseClock(halves[0])
	if !ok {
		return [2]string{}, false
	}
	closeT, closeMer, ok := parseClock(halves[1])
	if !ok {
		return [2]string{}, false
	}
	end := to24(closeT, closeMer)
	start := to24(open, openMer)
	// "5 – 9 PM" borrows the closing meridiem; "11 – 2 PM" cannot, since
	// 23:00 would open after it closes.
	if openMer == "" && closeMer != "" {
		if borrowed := to24(open, closeMer); borrowed < end {
			start = borrowed
		}
	}
	return [2]string{start, end}, true
}

type clock struct{ hour, min int }

func parseClock(s string) (clock, string, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "noon":
		return clock{12, 0}, "", true
	case "midnight":
		return clock{0, 0}, "", true
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return clock{}, "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 24 || minute > 59 {
		return clock{}, "", false
	}
	return clock{hour, minute}, m[3], true
}

func to24(c clock, meridiem string) string {
	h := c.hour
	switch meridiem {
	case "a":
		if h == 12 {
			h = 0
		}
	case "p":
		if h < 12 {
			h += 12
		}
	}
	if h == 24 {
		h = 0
	}
	return fmt.Sprintf("%02d:%02d", h, c.min)
}

// normalize folds the narrow and thin spaces Google inserts into plain
// spaces and trims the result.
func normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(s)
}
