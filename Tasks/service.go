package Tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"Dayboard/Models"
	"Dayboard/Sync"

	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

// Service owns the task definition collection. Reads go through the shared
// cache under the TASKS tag; the sync monitor invalidates that tag when the
// collection changes, so a poll cycle always precedes a stale read.
type Service struct {
	db    *gorm.DB
	cache *Sync.Cache
}

func NewService(db *gorm.DB, cache *Sync.Cache) *Service {
	return &Service{db: db, cache: cache}
}

func cacheKey(userIDs []uint) string {
	ids := make([]string, len(userIDs))
	sorted := append([]uint(nil), userIDs...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })
	for i, id := range sorted {
		ids[i] = fmt.Sprint(id)
	}
	return Sync.TasksCacheTag + "|" + strings.Join(ids, ",")
}

// GetTasksByUserIDs returns the definitions assigned to the given users,
// ordered by time of day.
func (s *Service) GetTasksByUserIDs(userIDs []uint) ([]Models.Task, error) {
	key := cacheKey(userIDs)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]Models.Task), nil
	}
	var tasks []Models.Task
	err := s.db.Preload("AssignedTo").
		Where("assigned_to_id IN ?", userIDs).
		Order("time asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, tasks)
	return tasks, nil
}

func (s *Service) GetTask(id uint) (*Models.Task, error) {
	var task Models.Task
	err := s.db.Preload("AssignedTo").First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Create stores a new definition and appends its change marker in the same
// transaction.
func (s *Service) Create(task *Models.Task) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		return Models.RecordChange(tx, Models.CollectionTasks, task.ID, Models.ChangeAdd, task.AssignedToID, "")
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(Sync.TasksCacheTag)
	return nil
}

func (s *Service) Update(id uint, updated *Models.Task) (*Models.Task, error) {
	if _, err := s.GetTask(id); err != nil {
		return nil, err
	}
	data, err := json.Marshal(updated.WeeklyDays)
	if err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":            updated.Title,
			"description":      updated.Description,
			"assigned_to_id":   updated.AssignedToID,
			"time":             updated.Time,
			"type":             updated.Type,
			"json_weekly_days": data,
			"monthly_day":      updated.MonthlyDay,
			"transferable":     updated.Transferable,
		}
		if err := tx.Model(&Models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return Models.RecordChange(tx, Models.CollectionTasks, id, Models.ChangeUpdate, updated.AssignedToID, "")
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(Sync.TasksCacheTag)
	return s.GetTask(id)
}

func (s *Service) Delete(id uint) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Models.Task{}, id).Error; err != nil {
			return err
		}
		return Models.RecordChange(tx, Models.CollectionTasks, id, Models.ChangeDelete, task.AssignedToID, "")
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(Sync.TasksCacheTag)
	return nil
}
