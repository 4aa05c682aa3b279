package Schedule

import (
	"time"
)

// DateStatistics aggregates the calendar facts recurrence matching needs
// for a single date. All fields are derived, nothing is stored.
type DateStatistics struct {
	Weekday         int  `json:"weekday"` // ISO, 1=Mon .. 7=Sun
	IsWorkday       bool `json:"is_workday"`
	DaysInMonth     int  `json:"days_in_month"`
	WorkdaysInMonth int  `json:"workdays_in_month"`
	NthDay          int  `json:"nth_day"`     // day of month, 1-based
	NthWorkday      int  `json:"nth_workday"` // 0 when the date is a weekend
}

// ISOWeekday returns the weekday as 1=Monday .. 7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsWorkday reports whether t falls on Monday through Friday.
func IsWorkday(t time.Time) bool {
	return ISOWeekday(t) < 6
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// WorkdaysInMonth counts the Monday-Friday days in t's month.
func WorkdaysInMonth(t time.Time) int {
	year, month := t.Year(), t.Month()
	count := 0
	for day := 1; day <= DaysInMonth(t); day++ {
		if IsWorkday(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)) {
			count++
		}
	}
	return count
}

// NthWorkday returns the 1-based ordinal of t among the workdays of its
// month, or 0 when t itself falls on a weekend.
func NthWorkday(t time.Time) int {
	if !IsWorkday(t) {
		return 0
	}
	year, month, day := t.Year(), t.Month(), t.Day()
	// Complete 7-day spans before this date hold exactly 5 workdays each.
	fullWeeks := (day - 1) / 7
	n := fullWeeks * 5
	for d := fullWeeks*7 + 1; d <= day; d++ {
		if IsWorkday(time.Date(year, month, d, 0, 0, 0, 0, time.UTC)) {
			n++
		}
	}
	return n
}

// GetDateStatistics computes the full statistics bundle for a date.
func GetDateStatistics(t time.Time) DateStatistics {
	return DateStatistics{
		Weekday:         ISOWeekday(t),
		IsWorkday:       IsWorkday(t),
		DaysInMonth:     DaysInMonth(t),
		WorkdaysInMonth: WorkdaysInMonth(t),
		NthDay:          t.Day(),
		NthWorkday:      NthWorkday(t),
	}
}
