package TaskLogs

import (
	"fmt"
	"testing"

	"Dayboard/Models"

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
		&Models.Preference{},
		&Models.TaskLog{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) Models.User {
	t.Helper()
	user := Models.User{Name: name, Permission: Models.PermissionEditor}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTask(t *testing.T, db *gorm.DB, userID uint, transferable bool) Models.Task {
	t.Helper()
	task := Models.Task{
		Title:        "Morning checklist",
		Description:  "Walk the floor",
		AssignedToID: userID,
		Time:         "07:00",
		Type:         Models.TaskTypeDaily,
		Transferable: transferable,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func TestCheckAndCreateMaterializesMissingLogs(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	task := seedTask(t, db, user.ID, false)
	service := NewService(db)

	created, err := service.CheckAndCreate([]Models.Task{task}, nil, "2022-03-01")
	require.NoError(t, err)
	require.Len(t, created, 1)

	entry := created[0]
	assert.Equal(t, fmt.Sprintf("%d-%d-2022-03-01", task.ID, user.ID), entry.UniqueKey)
	assert.Equal(t, Models.StatusOpen, entry.Status)
	assert.Equal(t, "2022-03-01", entry.Date)
	assert.True(t, entry.Completed) // non-transferable defaults to completed
	assert.Equal(t, task.Title, entry.Title)
	require.NotNil(t, entry.Task)
	require.NotNil(t, entry.User)
	assert.Equal(t, user.ID, entry.User.ID)
}

func TestCheckAndCreateIsIdempotent(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	task := seedTask(t, db, user.ID, true)
	service := NewService(db)

	first, err := service.CheckAndCreate([]Models.Task{task}, nil, "2022-03-01")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, first[0].Completed) // transferable stays outstanding

	second, err := service.CheckAndCreate([]Models.Task{task}, first, "2022-03-01")
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestCheckAndCreateSkipsDuplicatesPerItem(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	taskA := seedTask(t, db, user.ID, false)
	taskB := seedTask(t, db, user.ID, false)
	service := NewService(db)

	// taskA already materialized, but the caller passes a stale existing
	// set. The unique key rejects the duplicate, taskB still succeeds.
	_, err := service.CheckAndCreate([]Models.Task{taskA}, nil, "2022-03-01")
	require.NoError(t, err)

	created, err := service.CheckAndCreate([]Models.Task{taskA, taskB}, nil, "2022-03-01")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, taskB.ID, *created[0].TaskID)
}

func TestCreateTaskLogReturnsExistingOnConflict(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	task := seedTask(t, db, user.ID, false)
	service := NewService(db)

	first, err := service.CreateTaskLog(&task, "2022-03-01")
	require.NoError(t, err)

	second, err := service.CreateTaskLog(&task, "2022-03-01")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestUpdateStatusStampsTimestampsOnce(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	task := seedTask(t, db, user.ID, true)
	service := NewService(db)

	entry, err := service.CreateTaskLog(&task, "2022-03-01")
	require.NoError(t, err)

	pending, err := service.UpdateStatus(entry.ID, Models.StatusPending)
	require.NoError(t, err)
	require.NotNil(t, pending.DateTimeStarted)
	started := *pending.DateTimeStarted

	finished, err := service.UpdateStatus(entry.ID, Models.StatusFinished)
	require.NoError(t, err)
	require.NotNil(t, finished.DateTimeFinished)
	assert.True(t, finished.Completed)

	// Reopen and restart: the original started timestamp survives.
	reopened, err := service.UpdateStatus(entry.ID, Models.StatusOpen)
	require.NoError(t, err)
	assert.False(t, reopened.Completed) // transferable goes back to outstanding

	pendingAgain, err := service.UpdateStatus(entry.ID, Models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, started.Unix(), pendingAgain.DateTimeStarted.Unix())
}

func TestUpdateStatusUnknownLog(t *testing.T) {
	db := setupDB(t)
	service := NewService(db)
	_, err := service.UpdateStatus(999, Models.StatusFinished)
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestReassignSetsOriginalUserOnce(t *testing.T) {
	db := setupDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	task := seedTask(t, db, alice.ID, false)
	service := NewService(db)

	entry, err := service.CreateTaskLog(&task, "2022-03-01")
	require.NoError(t, err)
	assert.Nil(t, entry.OriginalUserID)

	moved, err := service.Reassign(entry.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, moved.UserID)
	require.NotNil(t, moved.OriginalUserID)
	assert.Equal(t, alice.ID, *moved.OriginalUserID)

	// A second reassignment keeps the first provenance.
	movedAgain, err := service.Reassign(entry.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, movedAgain.UserID)
	require.NotNil(t, movedAgain.OriginalUserID)
	assert.Equal(t, alice.ID, *movedAgain.OriginalUserID)
}

func TestOutstandingTransfersCarryOver(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	transferable := seedTask(t, db, user.ID, true)
	oneShot := seedTask(t, db, user.ID, false)
	service := NewService(db)

	_, err := service.CheckAndCreate([]Models.Task{transferable, oneShot}, nil, "2022-03-01")
	require.NoError(t, err)

	carried, err := service.GetOutstandingTransfers("2022-03-02", []uint{user.ID})
	require.NoError(t, err)
	require.Len(t, carried, 1)
	assert.Equal(t, transferable.ID, *carried[0].TaskID)
	assert.Equal(t, "2022-03-02", carried[0].PickupDate)

	// Pickup date is stamped once and survives later carry-overs.
	carriedAgain, err := service.GetOutstandingTransfers("2022-03-03", []uint{user.ID})
	require.NoError(t, err)
	require.Len(t, carriedAgain, 1)
	assert.Equal(t, "2022-03-02", carriedAgain[0].PickupDate)

	// Finishing the log ends the carry-over.
	_, err = service.UpdateStatus(carried[0].ID, Models.StatusFinished)
	require.NoError(t, err)
	done, err := service.GetOutstandingTransfers("2022-03-04", []uint{user.ID})
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestCheckAndCreateRecordsChangeMarkers(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	task := seedTask(t, db, user.ID, false)
	service := NewService(db)

	_, err := service.CheckAndCreate([]Models.Task{task}, nil, "2022-03-01")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&Models.ChangeEntry{}).
		Where("collection = ?", Models.CollectionTaskLogs).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
