package Board

import (
	"testing"

	"Dayboard/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id uint, userID uint, timeOfDay string) Models.Task {
	t := Models.Task{AssignedToID: userID, Time: timeOfDay, Type: Models.TaskTypeDaily}
	t.ID = id
	return t
}

func logFor(id uint, taskID uint, userID uint, timeOfDay string) Models.TaskLog {
	l := Models.TaskLog{TaskID: &taskID, UserID: userID, Time: timeOfDay, Date: "2022-03-01", Status: Models.StatusOpen}
	l.ID = id
	return l
}

func TestBuildOrderedListMergesAndDeduplicates(t *testing.T) {
	tasks := []Models.Task{
		task(1, 7, "09:00"),
		task(2, 7, "07:00"), // materialized below, must not appear twice
		task(3, 8, "08:00"), // other user
	}
	logs := []Models.TaskLog{
		logFor(10, 2, 7, "07:00"),
	}

	items := BuildOrderedList(tasks, logs, 7, nil)
	require.Len(t, items, 2)
	assert.Equal(t, "L-10", items[0].UniqueID())
	assert.Equal(t, "T-1", items[1].UniqueID())
}

func TestBuildOrderedListDefaultOrderIsByTime(t *testing.T) {
	tasks := []Models.Task{
		task(1, 7, "15:30"),
		task(2, 7, "06:15"),
		task(3, 7, "11:00"),
	}
	items := BuildOrderedList(tasks, nil, 7, nil)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"T-2", "T-3", "T-1"}, OrderIDs(items))
}

func TestBuildOrderedListAppliesCustomSorting(t *testing.T) {
	tasks := []Models.Task{
		task(1, 7, "06:00"),
		task(2, 7, "07:00"),
		task(3, 7, "08:00"),
	}
	sorting := CustomSorting{"7": {"T-3", "T-1", "T-2"}}
	items := BuildOrderedList(tasks, nil, 7, sorting)
	assert.Equal(t, []string{"T-3", "T-1", "T-2"}, OrderIDs(items))
}

func TestCustomSortingIgnoresUnknownIDs(t *testing.T) {
	tasks := []Models.Task{
		task(1, 7, "06:00"),
		task(2, 7, "07:00"),
		task(3, 7, "08:00"),
	}
	// Stale ids are harmless; unmapped items keep their time order.
	sorting := CustomSorting{"7": {"T-2", "L-999"}}
	items := BuildOrderedList(tasks, nil, 7, sorting)
	require.Len(t, items, 3)
	assert.Equal(t, "T-2", items[0].UniqueID())
}

func TestCustomSortingForOtherUserDoesNotApply(t *testing.T) {
	tasks := []Models.Task{
		task(1, 7, "06:00"),
		task(2, 7, "07:00"),
	}
	sorting := CustomSorting{"8": {"T-2", "T-1"}}
	items := BuildOrderedList(tasks, nil, 7, sorting)
	assert.Equal(t, []string{"T-1", "T-2"}, OrderIDs(items))
}

func TestReorderAndInverseRestoresOrder(t *testing.T) {
	tasks := []Models.Task{
		task(1, 7, "06:00"),
		task(2, 7, "07:00"),
		task(3, 7, "08:00"),
		task(4, 7, "09:00"),
	}
	items := BuildOrderedList(tasks, nil, 7, nil)
	original := OrderIDs(items)

	moved, err := Reorder(items, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"T-2", "T-3", "T-4", "T-1"}, OrderIDs(moved))

	back, err := Reorder(moved, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, original, OrderIDs(back))
}

func TestReorderOutOfRange(t *testing.T) {
	items := BuildOrderedList([]Models.Task{task(1, 7, "06:00")}, nil, 7, nil)
	_, err := Reorder(items, 0, 5)
	assert.Error(t, err)
	_, err = Reorder(items, -1, 0)
	assert.Error(t, err)
}

func TestMoveConservesItemCount(t *testing.T) {
	fromItems := BuildOrderedList([]Models.Task{
		task(1, 7, "06:00"),
		task(2, 7, "07:00"),
	}, nil, 7, nil)
	toItems := BuildOrderedList([]Models.Task{
		task(3, 8, "08:00"),
	}, nil, 8, nil)

	from, to, moved, err := Move(fromItems, toItems, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "T-2", moved.UniqueID())
	assert.Len(t, from, 1)
	assert.Len(t, to, 2)
	assert.Equal(t, len(fromItems)+len(toItems), len(from)+len(to))
	assert.Equal(t, "T-2", to[0].UniqueID())
}

func TestMoveIntoEmptyList(t *testing.T) {
	fromItems := BuildOrderedList([]Models.Task{task(1, 7, "06:00")}, nil, 7, nil)

	from, to, moved, err := Move(fromItems, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, from)
	require.Len(t, to, 1)
	assert.Equal(t, moved.UniqueID(), to[0].UniqueID())
}

func TestPerUser(t *testing.T) {
	tasks := []Models.Task{
		task(1, 7, "06:00"),
		task(2, 8, "07:00"),
	}
	logs := []Models.TaskLog{
		logFor(10, 1, 7, "06:00"),
	}
	perUser := PerUser(tasks, logs, []uint{7, 8}, nil)
	require.Len(t, perUser, 2)
	assert.Equal(t, []string{"L-10"}, OrderIDs(perUser[7]))
	assert.Equal(t, []string{"T-2"}, OrderIDs(perUser[8]))
}
