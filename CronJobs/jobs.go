package CronJobs

import (
	"fmt"
	"log"
	"time"

	"Dayboard/Models"
	"Dayboard/Schedule"
	"Dayboard/TaskLogs"
	"Dayboard/Tasks"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Materializer represents the scheduled daily reconciliation service. It
// creates the day's task logs shortly after midnight so the first client
// that loads the board sees a fully materialized day.
type Materializer struct {
	db             *gorm.DB
	tasks          *Tasks.Service
	logs           *TaskLogs.Service
	cronScheduler  *cron.Cron
	runImmediately bool
	jobID          cron.EntryID
}

// NewMaterializer creates a new materializer with the given configuration
func NewMaterializer(db *gorm.DB, tasks *Tasks.Service, logs *TaskLogs.Service, runImmediately bool) *Materializer {
	return &Materializer{
		db:             db,
		tasks:          tasks,
		logs:           logs,
		cronScheduler:  cron.New(cron.WithSeconds()),
		runImmediately: runImmediately,
	}
}

// Start initiates the materializer cron job
func (m *Materializer) Start() error {
	var err error
	m.jobID, err = m.cronScheduler.AddFunc("0 5 0 * * *", func() {
		log.Println("Running scheduled daily task materialization")
		m.runMaterialization()
	})

	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	m.cronScheduler.Start()
	fmt.Println("Materialization scheduler started - will run daily at 00:05 AM")

	if m.runImmediately {
		fmt.Println("Running initial materialization")
		m.runMaterialization()
	}

	return nil
}

// Stop terminates the materializer
func (m *Materializer) Stop() {
	if m.cronScheduler != nil {
		m.cronScheduler.Stop()
		log.Println("Materialization scheduler stopped")
	}
}

// UpdateSchedule changes the schedule of the materializer
// Format: "0 5 0 * * *" = At 00:05:00 AM every day
func (m *Materializer) UpdateSchedule(schedule string) error {
	m.cronScheduler.Remove(m.jobID)

	var err error
	m.jobID, err = m.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled task materialization")
		m.runMaterialization()
	})
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	log.Printf("Materialization schedule updated to: %s\n", schedule)
	return nil
}

// RunManualCheck executes a manual materialization pass
func (m *Materializer) RunManualCheck() {
	log.Println("Running manual materialization")
	m.runMaterialization()
}

// runMaterialization creates today's logs for every user's due tasks
func (m *Materializer) runMaterialization() {
	today := time.Now()
	date := today.Format(Models.DateLayout)

	var users []Models.User
	if err := m.db.Find(&users).Error; err != nil {
		log.Printf("Error loading users for materialization: %v\n", err)
		return
	}

	userIDs := make([]uint, len(users))
	for i := range users {
		userIDs[i] = users[i].ID
	}

	tasks, err := m.tasks.GetTasksByUserIDs(userIDs)
	if err != nil {
		log.Printf("Error loading tasks for materialization: %v\n", err)
		return
	}
	due := Schedule.SelectDueTasks(tasks, today)

	existing, err := m.logs.GetTaskLogs(date, nil)
	if err != nil {
		log.Printf("Error loading task logs for materialization: %v\n", err)
		return
	}

	created, err := m.logs.CheckAndCreate(due, existing, date)
	if err != nil {
		log.Printf("Error in materialization: %v\n", err)
		return
	}
	log.Printf("Materialization complete: %d due, %d created\n", len(due), len(created))
}
