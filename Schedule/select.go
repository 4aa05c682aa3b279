package Schedule

import (
	"log"
	"time"

	"Dayboard/Models"
)

// GetWeekDaySet builds a membership set from a list of ISO weekday numbers.
func GetWeekDaySet(days []int) map[int]bool {
	set := make(map[int]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

// IsTaskDue decides whether a task definition is due on the date described
// by stats.
func IsTaskDue(task *Models.Task, stats DateStatistics) bool {
	switch task.Type {
	case Models.TaskTypeDaily:
		return stats.IsWorkday
	case Models.TaskTypeWeekly:
		return GetWeekDaySet(task.WeeklyDays)[stats.Weekday]
	case Models.TaskTypeMonthly:
		if stats.NthWorkday == 0 {
			return false
		}
		if stats.NthWorkday == task.MonthlyDay {
			return true
		}
		// Sentinel: MonthlyDay 31 means the final workday of the month,
		// even in months with fewer than 31 workdays.
		return task.MonthlyDay == Models.MonthlyLastWorkday &&
			stats.NthWorkday == stats.WorkdaysInMonth
	case Models.TaskTypeOneTime:
		// One-time tasks are never recurrence-selected. The rule for them
		// is still undecided; keeping them out of the due set is the
		// deliberate behavior, not an oversight.
		return false
	default:
		log.Printf("Task type '%s' is not supported yet", task.Type)
		return false
	}
}

// SelectDueTasks filters definitions down to the ones due on date. The date
// statistics are computed once for the whole list.
func SelectDueTasks(tasks []Models.Task, date time.Time) []Models.Task {
	stats := GetDateStatistics(date)
	due := make([]Models.Task, 0, len(tasks))
	for i := range tasks {
		if IsTaskDue(&tasks[i], stats) {
			due = append(due, tasks[i])
		}
	}
	return due
}
