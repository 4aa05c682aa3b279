package TaskLogs

import (
	"errors"
	"log"
	"time"

	"Dayboard/Models"

	"gorm.io/gorm"
)

var ErrLogNotFound = errors.New("task log not found")

// Service owns every read and write against the task log collection,
// including the reconciliation pass that materializes due definitions.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) expanded() *gorm.DB {
	return s.db.Preload("Task").Preload("User").Preload("OriginalUser")
}

// GetTaskLogs returns the logs for a date, optionally scoped to a user set.
func (s *Service) GetTaskLogs(date string, userIDs []uint) ([]Models.TaskLog, error) {
	query := s.expanded().Where("date = ?", date)
	if len(userIDs) > 0 {
		query = query.Where("user_id IN ?", userIDs)
	}
	var logs []Models.TaskLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// GetOutstandingTransfers returns transferable, uncompleted logs from
// earlier days that should appear on the given day's board. The first time
// a log is carried over its pickup date is stamped.
func (s *Service) GetOutstandingTransfers(date string, userIDs []uint) ([]Models.TaskLog, error) {
	query := s.expanded().
		Where("date < ? AND transferable = ? AND completed = ?", date, true, false)
	if len(userIDs) > 0 {
		query = query.Where("user_id IN ?", userIDs)
	}
	var logs []Models.TaskLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	for i := range logs {
		if logs[i].PickupDate != "" {
			continue
		}
		logs[i].PickupDate = date
		if err := s.db.Model(&Models.TaskLog{}).
			Where("id = ?", logs[i].ID).
			Update("pickup_date", date).Error; err != nil {
			log.Printf("Failed to stamp pickup date on log %d: %v", logs[i].ID, err)
		}
	}
	return logs, nil
}

// CheckAndCreate reconciles due definitions against the logs that already
// exist for a date and materializes the missing ones. Each creation result
// is independent: a failed item is logged and skipped, and the successful
// subset is returned fully expanded. Retrying with the same due set is
// idempotent because the unique key rejects duplicate materialization.
func (s *Service) CheckAndCreate(due []Models.Task, existing []Models.TaskLog, date string) ([]Models.TaskLog, error) {
	materialized := make(map[uint]bool, len(existing))
	for i := range existing {
		if existing[i].TaskID != nil {
			materialized[*existing[i].TaskID] = true
		}
	}

	var createdIDs []uint
	for i := range due {
		task := &due[i]
		if materialized[task.ID] {
			continue
		}
		entry := Models.NewTaskLog(task, date)
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			return Models.RecordChange(tx, Models.CollectionTaskLogs, entry.ID, Models.ChangeAdd, entry.UserID, date)
		})
		if err != nil {
			log.Printf("Failed to create task log for task %d: %v", task.ID, err)
			continue
		}
		createdIDs = append(createdIDs, entry.ID)
	}

	if len(createdIDs) == 0 {
		return nil, nil
	}

	// Round trip so callers receive entries expanded with their Task and
	// User references, not bare write acknowledgements.
	var created []Models.TaskLog
	if err := s.expanded().Where("id IN ?", createdIDs).Find(&created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// CreateTaskLog is the single-item materialization path, used when an
// unmaterialized definition has to become a log before it can be
// reassigned. If the log already exists the existing row is returned.
func (s *Service) CreateTaskLog(task *Models.Task, date string) (*Models.TaskLog, error) {
	entry := Models.NewTaskLog(task, date)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return Models.RecordChange(tx, Models.CollectionTaskLogs, entry.ID, Models.ChangeAdd, entry.UserID, date)
	})
	if err != nil {
		// Likely a unique key conflict from a concurrent materialization;
		// the existing row wins either way.
		var existing Models.TaskLog
		findErr := s.expanded().
			Where("unique_key = ?", Models.LogUniqueKey(task.ID, task.AssignedToID, date)).
			First(&existing).Error
		if findErr != nil {
			return nil, err
		}
		return &existing, nil
	}
	return s.getByID(entry.ID)
}

// Get returns a single log expanded with its references.
func (s *Service) Get(id uint) (*Models.TaskLog, error) {
	return s.getByID(id)
}

func (s *Service) getByID(id uint) (*Models.TaskLog, error) {
	var entry Models.TaskLog
	err := s.expanded().First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateStatus applies a status transition. Lifecycle timestamps are
// stamped once and never overwritten; Finished and Cancelled mark the log
// completed, reopening a transferable log makes it outstanding again.
func (s *Service) UpdateStatus(id uint, status Models.TaskStatus) (*Models.TaskLog, error) {
	entry, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	updates := map[string]interface{}{"status": status}
	switch status {
	case Models.StatusPending:
		if entry.DateTimeStarted == nil {
			updates["date_time_started"] = now
		}
	case Models.StatusFinished:
		if entry.DateTimeFinished == nil {
			updates["date_time_finished"] = now
		}
	}
	switch status {
	case Models.StatusFinished, Models.StatusCancelled:
		updates["completed"] = true
	default:
		updates["completed"] = !entry.Transferable
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Models.TaskLog{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return Models.RecordChange(tx, Models.CollectionTaskLogs, entry.ID, Models.ChangeUpdate, entry.UserID, entry.Date)
	})
	if err != nil {
		return nil, err
	}
	return s.getByID(id)
}

// SetRemark stores the free-text remark on a log.
func (s *Service) SetRemark(id uint, remark string) (*Models.TaskLog, error) {
	entry, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Models.TaskLog{}).Where("id = ?", id).Update("remark", remark).Error; err != nil {
			return err
		}
		return Models.RecordChange(tx, Models.CollectionTaskLogs, entry.ID, Models.ChangeUpdate, entry.UserID, entry.Date)
	})
	if err != nil {
		return nil, err
	}
	return s.getByID(id)
}

// Reassign moves a log to another user. The original user is recorded the
// first time a log leaves its assignee and never overwritten afterwards.
func (s *Service) Reassign(id uint, toUserID uint) (*Models.TaskLog, error) {
	entry, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if entry.UserID == toUserID {
		return entry, nil
	}
	updates := map[string]interface{}{"user_id": toUserID}
	if entry.OriginalUserID == nil {
		updates["original_user_id"] = entry.UserID
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Models.TaskLog{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return Models.RecordChange(tx, Models.CollectionTaskLogs, entry.ID, Models.ChangeUpdate, toUserID, entry.Date)
	})
	if err != nil {
		return nil, err
	}
	return s.getByID(id)
}
