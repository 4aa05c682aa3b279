package Models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Monitored collections.
const (
	CollectionTasks    = "Tasks"
	CollectionTaskLogs = "TaskLogs"
)

// Change types recorded in the change log.
const (
	ChangeAdd    = "Add"
	ChangeUpdate = "Update"
	ChangeDelete = "Delete"
)

// ChangeEntry is an append-only record of a mutation against a monitored
// collection. Its auto-increment ID doubles as the change-token sequence.
type ChangeEntry struct {
	ID         uint   `gorm:"primarykey"`
	Collection string `gorm:"index"`
	ItemID     uint
	ChangeType string
	UserID     uint
	Date       string
}

// RecordChange appends a change entry. Mutating operations call this in the
// same transaction as the write so pollers never see a write without its
// change marker.
func RecordChange(db *gorm.DB, collection string, itemID uint, changeType string, userID uint, date string) error {
	entry := ChangeEntry{
		Collection: collection,
		ItemID:     itemID,
		ChangeType: changeType,
		UserID:     userID,
		Date:       date,
	}
	return db.Create(&entry).Error
}

// ChangeFilter scopes a change feed request the way the board scopes its
// queries: by assigned users and, for task logs, by date.
type ChangeFilter struct {
	UserIDs []uint
	Date    string
}

// ChangesSince renders the change feed for a collection as the raw
// vendor-style payload: a LastChangeToken header followed by one row marker
// per change and an explicit marker per deletion. The Sync package extracts
// the token and detects row markers with its own parsing rules; this
// function only promises the raw format, not a parsed structure.
func ChangesSince(db *gorm.DB, collection string, filter ChangeFilter, token string) (string, error) {
	var last uint
	row := db.Model(&ChangeEntry{}).Select("COALESCE(MAX(id), 0)").Row()
	if err := row.Scan(&last); err != nil {
		return "", err
	}

	var since uint
	if token != "" {
		if _, err := fmt.Sscanf(token, "1;3;%d", &since); err != nil {
			return "", fmt.Errorf("malformed change token %q: %w", token, err)
		}
	}

	query := db.Where("collection = ? AND id > ?", collection, since)
	if len(filter.UserIDs) > 0 {
		query = query.Where("user_id IN ?", filter.UserIDs)
	}
	if filter.Date != "" {
		query = query.Where("date = '' OR date = ?", filter.Date)
	}

	var entries []ChangeEntry
	if err := query.Find(&entries).Error; err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<Changes LastChangeToken='1;3;%d'>", last)
	for _, e := range entries {
		if e.ChangeType == ChangeDelete {
			fmt.Fprintf(&sb, "<Id ChangeType=\"Delete\">%d</Id>", e.ItemID)
			continue
		}
		fmt.Fprintf(&sb, "<z:row ows_ID='%d' ows_ChangeType='%s' />", e.ItemID, e.ChangeType)
	}
	sb.WriteString("</Changes>")
	return sb.String(), nil
}
