package Controllers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"Dayboard/Board"
	"Dayboard/Models"
	"Dayboard/Schedule"
	"Dayboard/TaskLogs"
	"Dayboard/Tasks"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BoardController serves the per-user daily board and its drag-and-drop
// mutations.
type BoardController struct {
	DB    *gorm.DB
	Tasks *Tasks.Service
	Logs  *TaskLogs.Service
}

func NewBoardController(db *gorm.DB, tasks *Tasks.Service, logs *TaskLogs.Service) *BoardController {
	return &BoardController{DB: db, Tasks: tasks, Logs: logs}
}

type boardColumn struct {
	User  Models.UserRef `json:"user"`
	Items []Board.Item   `json:"items"`
}

// buildBoard assembles the reconciled, ordered board for a date and user
// set. Materialization only happens for today's board: past days are a
// record, future days a preview.
func (c *BoardController) buildBoard(date string, userIDs []uint, sorting Board.CustomSorting) (map[uint][]Board.Item, error) {
	tasks, err := c.Tasks.GetTasksByUserIDs(userIDs)
	if err != nil {
		return nil, err
	}
	day, err := time.Parse(Models.DateLayout, date)
	if err != nil {
		return nil, err
	}
	due := Schedule.SelectDueTasks(tasks, day)

	logs, err := c.Logs.GetTaskLogs(date, userIDs)
	if err != nil {
		return nil, err
	}
	if date == time.Now().Format(Models.DateLayout) {
		created, err := c.Logs.CheckAndCreate(due, logs, date)
		if err != nil {
			return nil, err
		}
		logs = append(logs, created...)

		carried, err := c.Logs.GetOutstandingTransfers(date, userIDs)
		if err != nil {
			return nil, err
		}
		logs = append(logs, carried...)
	}

	return Board.PerUser(due, logs, userIDs, sorting), nil
}

func (c *BoardController) loadSorting(userID uint) Board.CustomSorting {
	raw, err := Models.GetPreference(c.DB, userID, Models.PrefCustomTaskSorting)
	if err != nil {
		return nil
	}
	var sorting Board.CustomSorting
	if err := json.Unmarshal([]byte(raw), &sorting); err != nil {
		return nil
	}
	return sorting
}

func (c *BoardController) saveSorting(userID uint, sorting Board.CustomSorting) error {
	data, err := json.Marshal(sorting)
	if err != nil {
		return err
	}
	return Models.SetPreference(c.DB, userID, Models.PrefCustomTaskSorting, string(data), 0)
}

// GetBoard returns every selected user's ordered column for a date
func (c *BoardController) GetBoard(ctx *fiber.Ctx) error {
	date, err := parseDate(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date"})
	}
	userIDs, err := parseUserIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid users parameter"})
	}

	sorting := c.loadSorting(CurrentUser(ctx).ID)
	perUser, err := c.buildBoard(date, userIDs, sorting)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var users []Models.User
	if err := c.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	refs := make(map[uint]Models.UserRef, len(users))
	for i := range users {
		refs[users[i].ID] = users[i].Ref()
	}

	board := make(map[uint]boardColumn, len(userIDs))
	for _, id := range userIDs {
		board[id] = boardColumn{User: refs[id], Items: perUser[id]}
	}
	return ctx.JSON(fiber.Map{"date": date, "board": board})
}

// Reorder moves an item within a single user's column and persists the
// resulting order as the caller's custom sorting
func (c *BoardController) Reorder(ctx *fiber.Ctx) error {
	var input struct {
		UserID uint   `json:"user_id"`
		Date   string `json:"date"`
		From   int    `json:"from"`
		To     int    `json:"to"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	current := CurrentUser(ctx)
	if !mayActOn(current, input.UserID) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You may not reorder another user's tasks"})
	}
	date := input.Date
	if date == "" {
		date = time.Now().Format(Models.DateLayout)
	}

	sorting := c.loadSorting(current.ID)
	perUser, err := c.buildBoard(date, []uint{input.UserID}, sorting)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	reordered, err := Board.Reorder(perUser[input.UserID], input.From, input.To)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	if sorting == nil {
		sorting = Board.CustomSorting{}
	}
	sorting[strconv.FormatUint(uint64(input.UserID), 10)] = Board.OrderIDs(reordered)
	if err := c.saveSorting(current.ID, sorting); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"items": reordered, "order": Board.OrderIDs(reordered)})
}

// Move transfers an item between two users' columns, materializing bare
// definitions into logs before the reassignment write. Nothing is
// persisted when the reassignment fails, so the client can roll the item
// back to its source position.
func (c *BoardController) Move(ctx *fiber.Ctx) error {
	var input struct {
		FromUserID uint   `json:"from_user_id"`
		ToUserID   uint   `json:"to_user_id"`
		Date       string `json:"date"`
		FromIndex  int    `json:"from_index"`
		ToIndex    int    `json:"to_index"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	current := CurrentUser(ctx)
	if input.FromUserID == input.ToUserID {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Use reorder for moves within one column"})
	}
	date := input.Date
	if date == "" {
		date = time.Now().Format(Models.DateLayout)
	}

	sorting := c.loadSorting(current.ID)
	perUser, err := c.buildBoard(date, []uint{input.FromUserID, input.ToUserID}, sorting)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	fromItems, toItems, moved, err := Board.Move(perUser[input.FromUserID], perUser[input.ToUserID], input.FromIndex, input.ToIndex)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	// Assignees may hand their own items to a colleague; taking an item
	// out of someone else's column needs the edit-others permission.
	if !mayActOn(current, moved.UserID()) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You may not reassign another user's tasks"})
	}

	// Only logs carry a mutable assignee: a bare definition is
	// materialized through the single-item path first.
	var entry *Models.TaskLog
	if moved.Kind == Board.KindTask {
		entry, err = c.Logs.CreateTaskLog(moved.Task, date)
	} else {
		entry, err = c.Logs.Get(moved.Log.ID)
	}
	if errors.Is(err, TaskLogs.ErrLogNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task log no longer exists"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	reassigned, err := c.Logs.Reassign(entry.ID, input.ToUserID)
	if errors.Is(err, TaskLogs.ErrLogNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task log no longer exists"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	// Materialization may have retagged the moved item's unique id.
	toOrder := Board.OrderIDs(toItems)
	movedID := moved.UniqueID()
	newID := Board.Item{Kind: Board.KindLog, Log: reassigned}.UniqueID()
	for i, id := range toOrder {
		if id == movedID {
			toOrder[i] = newID
		}
	}

	if sorting == nil {
		sorting = Board.CustomSorting{}
	}
	sorting[strconv.FormatUint(uint64(input.FromUserID), 10)] = Board.OrderIDs(fromItems)
	sorting[strconv.FormatUint(uint64(input.ToUserID), 10)] = toOrder
	if err := c.saveSorting(current.ID, sorting); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	refreshed, err := c.buildBoard(date, []uint{input.FromUserID, input.ToUserID}, sorting)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"moved": reassigned,
		"from":  refreshed[input.FromUserID],
		"to":    refreshed[input.ToUserID],
	})
}

// UpdateStatus applies a task log status transition
func (c *BoardController) UpdateStatus(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task log ID"})
	}
	var input struct {
		Status Models.TaskStatus `json:"status"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	switch input.Status {
	case Models.StatusOpen, Models.StatusPending, Models.StatusFinished, Models.StatusCancelled:
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown status"})
	}

	entry, err := c.Logs.Get(uint(id))
	if errors.Is(err, TaskLogs.ErrLogNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task log not found"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	current := CurrentUser(ctx)
	if !mayActOn(current, entry.UserID) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You may not update another user's tasks"})
	}

	updated, err := c.Logs.UpdateStatus(uint(id), input.Status)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(updated)
}

// SetRemark stores the free-text remark on a task log
func (c *BoardController) SetRemark(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task log ID"})
	}
	var input struct {
		Remark string `json:"remark"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entry, err := c.Logs.Get(uint(id))
	if errors.Is(err, TaskLogs.ErrLogNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task log not found"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	current := CurrentUser(ctx)
	if !mayActOn(current, entry.UserID) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You may not update another user's tasks"})
	}

	updated, err := c.Logs.SetRemark(uint(id), input.Remark)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(updated)
}
