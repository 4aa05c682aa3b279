package Board

import (
	"fmt"
	"sort"
	"strconv"

	"Dayboard/Models"
)

type ItemKind string

const (
	// KindTask marks a definition that is due today but has no
	// materialized log yet.
	KindTask ItemKind = "task"
	// KindLog marks a materialized task log.
	KindLog ItemKind = "log"
)

// Item is one display entry on a user's board: either a bare task
// definition or a task log. Logs take precedence over definitions that are
// already materialized.
type Item struct {
	Kind ItemKind        `json:"kind"`
	Task *Models.Task    `json:"task,omitempty"`
	Log  *Models.TaskLog `json:"log,omitempty"`
}

// UniqueID tags the item with its kind. Tasks and logs draw their numeric
// ids from independent sequences, so the prefix keeps them from colliding
// in ordering structures.
func (i Item) UniqueID() string {
	if i.Kind == KindLog {
		return "L-" + strconv.FormatUint(uint64(i.Log.ID), 10)
	}
	return "T-" + strconv.FormatUint(uint64(i.Task.ID), 10)
}

// TimeOfDay returns the scheduled "HH:MM" time used for the default sort.
func (i Item) TimeOfDay() string {
	if i.Kind == KindLog {
		return i.Log.Time
	}
	return i.Task.Time
}

// UserID returns the assignee of the underlying task or log.
func (i Item) UserID() uint {
	if i.Kind == KindLog {
		return i.Log.UserID
	}
	return i.Task.AssignedToID
}

// CustomSorting maps a user id (as a string key) to the manually chosen
// order of item unique-ids. Ids that no longer appear on the board are
// ignored; stale entries are harmless and never pruned.
type CustomSorting map[string][]string

// BuildOrderedList merges a user's task logs with their due-but-unmaterialized
// definitions and orders the result: ascending by time of day, then
// repositioned by the user's custom sorting where one exists.
func BuildOrderedList(tasks []Models.Task, logs []Models.TaskLog, userID uint, sorting CustomSorting) []Item {
	materialized := make(map[uint]bool, len(logs))
	for i := range logs {
		if logs[i].TaskID != nil {
			materialized[*logs[i].TaskID] = true
		}
	}

	var items []Item
	for i := range logs {
		if logs[i].UserID == userID {
			items = append(items, Item{Kind: KindLog, Log: &logs[i]})
		}
	}
	for i := range tasks {
		if tasks[i].AssignedToID == userID && !materialized[tasks[i].ID] {
			items = append(items, Item{Kind: KindTask, Task: &tasks[i]})
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].TimeOfDay() < items[b].TimeOfDay()
	})

	order, ok := sorting[strconv.FormatUint(uint64(userID), 10)]
	if !ok || len(order) == 0 {
		return items
	}
	position := make(map[string]int, len(order))
	for idx, id := range order {
		position[id] = idx
	}
	sort.SliceStable(items, func(a, b int) bool {
		pa, okA := position[items[a].UniqueID()]
		pb, okB := position[items[b].UniqueID()]
		if !okA || !okB {
			// Unmapped items keep their relative order from the
			// default sort.
			return false
		}
		return pa < pb
	})
	return items
}

// Reorder moves the item at from to position to within a single list and
// returns the new order. The caller persists the resulting id order as the
// user's custom sorting.
func Reorder(items []Item, from, to int) ([]Item, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, fmt.Errorf("reorder out of range: from %d to %d with %d items", from, to, len(items))
	}
	result := make([]Item, 0, len(items))
	result = append(result, items[:from]...)
	result = append(result, items[from+1:]...)
	result = append(result[:to], append([]Item{items[from]}, result[to:]...)...)
	return result, nil
}

// Move takes the item at fromIndex out of one user's list and inserts it
// into another user's list at toIndex. Both resulting lists are returned so
// the caller can persist both sort orders before issuing the reassignment
// write.
func Move(fromItems, toItems []Item, fromIndex, toIndex int) (from, to []Item, moved Item, err error) {
	if fromIndex < 0 || fromIndex >= len(fromItems) {
		return nil, nil, Item{}, fmt.Errorf("move source index %d out of range (%d items)", fromIndex, len(fromItems))
	}
	if toIndex < 0 || toIndex > len(toItems) {
		return nil, nil, Item{}, fmt.Errorf("move target index %d out of range (%d items)", toIndex, len(toItems))
	}
	moved = fromItems[fromIndex]
	from = make([]Item, 0, len(fromItems)-1)
	from = append(from, fromItems[:fromIndex]...)
	from = append(from, fromItems[fromIndex+1:]...)
	to = make([]Item, 0, len(toItems)+1)
	to = append(to, toItems[:toIndex]...)
	to = append(to, moved)
	to = append(to, toItems[toIndex:]...)
	return from, to, moved, nil
}

// OrderIDs flattens a list into the id order persisted as custom sorting.
func OrderIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.UniqueID()
	}
	return ids
}

// PerUser builds every selected user's ordered list in one pass.
func PerUser(tasks []Models.Task, logs []Models.TaskLog, userIDs []uint, sorting CustomSorting) map[uint][]Item {
	result := make(map[uint][]Item, len(userIDs))
	for _, id := range userIDs {
		result[id] = BuildOrderedList(tasks, logs, id, sorting)
	}
	return result
}
