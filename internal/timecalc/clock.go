package timecalc

import (
	"fmt"
	"regexp"
	"strconv"
)

// clockPattern is the only accepted shape for technician-entered times.
// AM/PM is matched case-sensitively, mirroring the validation the API has
// always applied.
var clockPattern = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5][0-9]) (AM|PM)$`)

// FormatError reports a time-of-day string that does not match "h:mm AM/PM".
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: expected format \"h:mm AM/PM\"", e.Input)
}

// TimeOfDay is a wall-clock position on a 24-hour dial.
type TimeOfDay struct {
	Hour   int // 0..23
	Minute int // 0..59
}

// Hours returns the time of day as fractional hours since midnight.
func (t TimeOfDay) Hours() float64 {
	return float64(t.Hour) + float64(t.Minute)/60
}

// ParseClock converts a 12-hour clock string into a TimeOfDay.
// 12 AM maps to hour 0 and 12 PM to hour 12. Anything that does not match
// the pattern, including 24-hour strings like "13:00", fails with a
// *FormatError.
func ParseClock(s string) (TimeOfDay, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, &FormatError{Input: s}
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	switch m[3] {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}
