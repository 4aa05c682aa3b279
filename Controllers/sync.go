package Controllers

import (
	"strconv"

	"Dayboard/Sync"

	"github.com/gofiber/fiber/v2"
)

// SyncController exposes the change detection polling endpoints. The board
// client hits GetSync on its poll cadence and mirrors tab visibility
// through Suspend and Resume. Every endpoint operates on the calling
// user's own session, so concurrent clients never consume each other's
// change reports.
type SyncController struct {
	Service *Sync.Service
}

func NewSyncController(service *Sync.Service) *SyncController {
	return &SyncController{Service: service}
}

func sessionID(ctx *fiber.Ctx) string {
	return strconv.FormatUint(uint64(CurrentUser(ctx).ID), 10)
}

// GetSync reports whether the task or task log collections changed since
// this session's previous poll. The first poll only establishes a baseline.
func (c *SyncController) GetSync(ctx *fiber.Ctx) error {
	date, err := parseDate(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date"})
	}
	userIDs, err := parseUserIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid users parameter"})
	}

	session := sessionID(ctx)
	tasksChanged := c.Service.DidTasksChange(session, userIDs)
	logsChanged := c.Service.DidTaskLogsChange(session, date, userIDs)

	return ctx.JSON(fiber.Map{
		"tasks_changed": tasksChanged,
		"logs_changed":  logsChanged,
		"changed":       tasksChanged || logsChanged,
	})
}

// Suspend pauses this session's polling while the client tab is hidden
func (c *SyncController) Suspend(ctx *fiber.Ctx) error {
	c.Service.Suspend(sessionID(ctx))
	return ctx.JSON(fiber.Map{"suspended": true})
}

// Resume restarts this session's polling. After a long absence the
// catch-up check results ride along so the client can re-fetch immediately.
func (c *SyncController) Resume(ctx *fiber.Ctx) error {
	tasksChanged, logsChanged := c.Service.Resume(sessionID(ctx))
	return ctx.JSON(fiber.Map{
		"suspended":     false,
		"tasks_changed": tasksChanged,
		"logs_changed":  logsChanged,
		"changed":       tasksChanged || logsChanged,
	})
}
