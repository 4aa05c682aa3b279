package Models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusOpen      TaskStatus = "Open"
	StatusPending   TaskStatus = "Pending"
	StatusFinished  TaskStatus = "Finished"
	StatusCancelled TaskStatus = "Cancelled"
)

// DateLayout is the calendar-date format used across the board. Task log
// dates carry no time component.
const DateLayout = "2006-01-02"

// TaskLog is one concrete, datable instance of work, materialized from a
// due task definition for a specific user and date. Logs are never deleted
// by the core; cancellation is a status.
type TaskLog struct {
	gorm.Model
	TaskID *uint `json:"task_id" gorm:"index"`
	Task   *Task `json:"task"`

	// Denormalized from the definition at creation time so the log stays
	// displayable if the definition is later deleted.
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`

	Date             string     `json:"date" gorm:"index"` // DateLayout, no time part
	Status           TaskStatus `json:"status"`
	DateTimeStarted  *time.Time `json:"date_time_started"`
	DateTimeFinished *time.Time `json:"date_time_finished"`
	PickupDate       string     `json:"pickup_date"`

	UserID uint  `json:"user_id" gorm:"index"`
	User   *User `json:"user"`

	// OriginalUserID is set once, on first reassignment, and never
	// overwritten. It preserves provenance without breaking the
	// already-materialized check, which keys on UserID.
	OriginalUserID *uint `json:"original_user_id"`
	OriginalUser   *User `json:"original_user" gorm:"foreignKey:OriginalUserID"`

	// UniqueKey prevents duplicate materialization of the same
	// (definition, user, date) triple at the store layer.
	UniqueKey string `json:"unique_key" gorm:"uniqueIndex"`

	// Completed marks a log as requiring no further attention. It defaults
	// to !Transferable so non-transferable tasks are not carried over as
	// outstanding on later days.
	Completed    bool   `json:"completed"`
	Transferable bool   `json:"transferable"`
	Remark       string `json:"remark"`
}

// LogUniqueKey builds the materialization uniqueness key for a
// (definition, user, date) triple.
func LogUniqueKey(taskID, userID uint, date string) string {
	return fmt.Sprintf("%d-%d-%s", taskID, userID, date)
}

// NewTaskLog materializes a log from a due definition for the given date.
func NewTaskLog(task *Task, date string) TaskLog {
	taskID := task.ID
	return TaskLog{
		TaskID:       &taskID,
		Title:        task.Title,
		Description:  task.Description,
		Time:         task.Time,
		Date:         date,
		Status:       StatusOpen,
		UserID:       task.AssignedToID,
		UniqueKey:    LogUniqueKey(task.ID, task.AssignedToID, date),
		Completed:    !task.Transferable,
		Transferable: task.Transferable,
	}
}
