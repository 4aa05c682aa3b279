package Tasks

import (
	"fmt"
	"testing"

	"Dayboard/Models"
	"Dayboard/Sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Models.User{},
		&Models.ChangeEntry{},
		&Models.Task{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) Models.User {
	t.Helper()
	user := Models.User{Name: name, Permission: Models.PermissionEditor}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newTask(userID uint, title, timeOfDay string) *Models.Task {
	return &Models.Task{
		Title:        title,
		AssignedToID: userID,
		Time:         timeOfDay,
		Type:         Models.TaskTypeDaily,
	}
}

func TestGetTasksOrderedByTime(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	service := NewService(db, Sync.NewCache())

	require.NoError(t, service.Create(newTask(user.ID, "Late", "16:00")))
	require.NoError(t, service.Create(newTask(user.ID, "Early", "07:30")))

	tasks, err := service.GetTasksByUserIDs([]uint{user.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Early", tasks[0].Title)
	assert.Equal(t, "Late", tasks[1].Title)
	require.NotNil(t, tasks[0].AssignedTo)
	assert.Equal(t, user.ID, tasks[0].AssignedTo.ID)
}

func TestGetTasksServedFromCacheUntilInvalidated(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	cache := Sync.NewCache()
	service := NewService(db, cache)

	require.NoError(t, service.Create(newTask(user.ID, "Only", "08:00")))

	first, err := service.GetTasksByUserIDs([]uint{user.ID})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A write behind the service's back stays invisible until the cache
	// tag is invalidated.
	require.NoError(t, db.Create(newTask(user.ID, "Hidden", "09:00")).Error)

	cached, err := service.GetTasksByUserIDs([]uint{user.ID})
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	cache.Invalidate(Sync.TasksCacheTag)
	fresh, err := service.GetTasksByUserIDs([]uint{user.ID})
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestCreateRecordsChangeMarkerAndDropsCache(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	service := NewService(db, Sync.NewCache())

	tasks, err := service.GetTasksByUserIDs([]uint{user.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, service.Create(newTask(user.ID, "New", "10:00")))

	// The creating write invalidates its own cache entry.
	tasks, err = service.GetTasksByUserIDs([]uint{user.ID})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	var count int64
	require.NoError(t, db.Model(&Models.ChangeEntry{}).
		Where("collection = ?", Models.CollectionTasks).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdatePersistsWeeklyDays(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	service := NewService(db, Sync.NewCache())

	task := newTask(user.ID, "Weekly review", "11:00")
	require.NoError(t, service.Create(task))

	task.Type = Models.TaskTypeWeekly
	task.WeeklyDays = []int{1, 3, 5}
	updated, err := service.Update(task.ID, task)
	require.NoError(t, err)
	assert.Equal(t, Models.TaskTypeWeekly, updated.Type)
	assert.Equal(t, []int{1, 3, 5}, updated.WeeklyDays)
}

func TestUpdateUnknownTask(t *testing.T) {
	db := setupDB(t)
	service := NewService(db, Sync.NewCache())
	_, err := service.Update(999, newTask(1, "Ghost", "12:00"))
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteRecordsChangeMarker(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	service := NewService(db, Sync.NewCache())

	task := newTask(user.ID, "Short lived", "13:00")
	require.NoError(t, service.Create(task))
	require.NoError(t, service.Delete(task.ID))

	_, err := service.GetTask(task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	var count int64
	require.NoError(t, db.Model(&Models.ChangeEntry{}).
		Where("collection = ? AND change_type = ?", Models.CollectionTasks, Models.ChangeDelete).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
