package Models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type TaskType string

const (
	TaskTypeDaily   TaskType = "Daily"
	TaskTypeWeekly  TaskType = "Weekly"
	TaskTypeMonthly TaskType = "Monthly"
	TaskTypeOneTime TaskType = "One time"
)

// MonthlyLastWorkday is the sentinel MonthlyDay value meaning "the final
// workday of the month", regardless of how many workdays the month has.
const MonthlyLastWorkday = 31

// Task is a recurring task definition. Definitions are created and edited
// through the task list API and are read-only for the scheduling core.
type Task struct {
	gorm.Model
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	AssignedToID uint     `json:"assigned_to_id" validate:"required"`
	AssignedTo   *User    `json:"assigned_to" gorm:"foreignKey:AssignedToID"`
	Time         string   `json:"time" validate:"required"` // "HH:MM", compared lexically
	Type         TaskType `json:"type" validate:"required,oneof=Daily Weekly Monthly 'One time'"`

	// WeeklyDays holds ISO weekday numbers (1=Mon..7=Sun) for Weekly tasks.
	// Persisted as JSON in JSONWeeklyDays.
	WeeklyDays     []int  `json:"weekly_days" gorm:"-"`
	JSONWeeklyDays []byte `json:"-"`

	// MonthlyDay is the target nth workday for Monthly tasks.
	// MonthlyLastWorkday means the last workday of the month.
	MonthlyDay int `json:"monthly_day"`

	// Transferable tasks that were not finished on their day are carried
	// over to the next day's board.
	Transferable bool `json:"transferable"`
}

func (t *Task) BeforeSave(tx *gorm.DB) error {
	data, err := json.Marshal(t.WeeklyDays)
	if err != nil {
		return err
	}
	t.JSONWeeklyDays = data
	return nil
}

func (t *Task) AfterFind(tx *gorm.DB) error {
	if len(t.JSONWeeklyDays) == 0 {
		return nil
	}
	return json.Unmarshal(t.JSONWeeklyDays, &t.WeeklyDays)
}
