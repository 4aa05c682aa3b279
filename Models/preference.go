package Models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Well-known preference keys.
const (
	PrefSelectedDate      = "selectedDate"
	PrefSelectedUsers     = "selectedUsers"
	PrefCustomTaskSorting = "customTaskSorting"
)

// SelectedDateTTL bounds how long a picked board date survives before the
// board falls back to today.
const SelectedDateTTL = 8 * time.Hour

var ErrPrefNotFound = errors.New("preference not found")

// Preference is a per-user key/value row with optional expiry. It backs the
// client-local persisted state: selected date (expiring), selected users and
// custom task sorting (durable).
type Preference struct {
	gorm.Model
	UserID    uint   `gorm:"index:idx_pref_user_key,unique"`
	Key       string `gorm:"index:idx_pref_user_key,unique"`
	Value     string
	ExpiresAt *time.Time
}

// GetPreference returns the stored value, treating expired rows as missing.
func GetPreference(db *gorm.DB, userID uint, key string) (string, error) {
	var pref Preference
	err := db.Where("user_id = ? AND key = ?", userID, key).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrPrefNotFound
	}
	if err != nil {
		return "", err
	}
	if pref.ExpiresAt != nil && time.Now().After(*pref.ExpiresAt) {
		return "", ErrPrefNotFound
	}
	return pref.Value, nil
}

// SetPreference upserts a value; a zero ttl stores it without expiry.
func SetPreference(db *gorm.DB, userID uint, key, value string, ttl time.Duration) error {
	var expires *time.Time
	if ttl != 0 {
		t := time.Now().Add(ttl)
		expires = &t
	}
	var pref Preference
	err := db.Where("user_id = ? AND key = ?", userID, key).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = Preference{UserID: userID, Key: key, Value: value, ExpiresAt: expires}
		return db.Create(&pref).Error
	}
	if err != nil {
		return err
	}
	pref.Value = value
	pref.ExpiresAt = expires
	return db.Save(&pref).Error
}
