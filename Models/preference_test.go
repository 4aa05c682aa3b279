package Models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceRoundTrip(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, SetPreference(db, 7, PrefSelectedUsers, "[1,2,3]", 0))
	value, err := GetPreference(db, 7, PrefSelectedUsers)
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", value)

	// Upsert overwrites.
	require.NoError(t, SetPreference(db, 7, PrefSelectedUsers, "[4]", 0))
	value, err = GetPreference(db, 7, PrefSelectedUsers)
	require.NoError(t, err)
	assert.Equal(t, "[4]", value)
}

func TestPreferenceMissing(t *testing.T) {
	db := setupDB(t)
	_, err := GetPreference(db, 7, PrefSelectedDate)
	assert.ErrorIs(t, err, ErrPrefNotFound)
}

func TestPreferenceExpiry(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, SetPreference(db, 7, PrefSelectedDate, "2022-03-01", -time.Minute))
	_, err := GetPreference(db, 7, PrefSelectedDate)
	assert.ErrorIs(t, err, ErrPrefNotFound)

	require.NoError(t, SetPreference(db, 7, PrefSelectedDate, "2022-03-01", SelectedDateTTL))
	value, err := GetPreference(db, 7, PrefSelectedDate)
	require.NoError(t, err)
	assert.Equal(t, "2022-03-01", value)
}

func TestPreferenceScopedPerUser(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, SetPreference(db, 7, PrefCustomTaskSorting, `{"7":["L-1"]}`, 0))
	_, err := GetPreference(db, 8, PrefCustomTaskSorting)
	assert.ErrorIs(t, err, ErrPrefNotFound)
}

func TestTaskWeeklyDaysRoundTrip(t *testing.T) {
	db := setupDB(t)
	user := User{Name: "alice"}
	require.NoError(t, db.Create(&user).Error)

	task := Task{
		Title:        "Weekly sweep",
		AssignedToID: user.ID,
		Time:         "09:00",
		Type:         TaskTypeWeekly,
		WeeklyDays:   []int{1, 3, 5},
	}
	require.NoError(t, db.Create(&task).Error)

	var loaded Task
	require.NoError(t, db.First(&loaded, task.ID).Error)
	assert.Equal(t, []int{1, 3, 5}, loaded.WeeklyDays)
}
