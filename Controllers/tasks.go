package Controllers

import (
	"errors"
	"strconv"

	"Dayboard/Models"
	"Dayboard/Tasks"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TaskController handles the task definition list API
type TaskController struct {
	Service  *Tasks.Service
	Validate *validator.Validate
}

func NewTaskController(service *Tasks.Service) *TaskController {
	return &TaskController{
		Service:  service,
		Validate: validator.New(),
	}
}

// GetTasks retrieves the definitions assigned to a set of users
func (c *TaskController) GetTasks(ctx *fiber.Ctx) error {
	userIDs, err := parseUserIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid users parameter"})
	}
	tasks, err := c.Service.GetTasksByUserIDs(userIDs)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(tasks)
}

// CreateTask creates a new task definition
func (c *TaskController) CreateTask(ctx *fiber.Ctx) error {
	var task Models.Task
	if err := ctx.BodyParser(&task); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.Validate.Struct(&task); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validateRecurrence(&task); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.Service.Create(&task); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask updates a task definition
func (c *TaskController) UpdateTask(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}
	var task Models.Task
	if err := ctx.BodyParser(&task); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.Validate.Struct(&task); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validateRecurrence(&task); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	updated, err := c.Service.Update(uint(id), &task)
	if errors.Is(err, Tasks.ErrTaskNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(updated)
}

// DeleteTask removes a task definition. Existing logs keep their
// denormalized copy and stay displayable.
func (c *TaskController) DeleteTask(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}
	err = c.Service.Delete(uint(id))
	if errors.Is(err, Tasks.ErrTaskNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Task deleted successfully"})
}

func validateRecurrence(task *Models.Task) error {
	switch task.Type {
	case Models.TaskTypeWeekly:
		if len(task.WeeklyDays) == 0 {
			return errors.New("weekly tasks need at least one weekday")
		}
		for _, d := range task.WeeklyDays {
			if d < 1 || d > 7 {
				return errors.New("weekdays must be between 1 and 7")
			}
		}
	case Models.TaskTypeMonthly:
		if task.MonthlyDay < 1 || task.MonthlyDay > Models.MonthlyLastWorkday {
			return errors.New("monthly day must be between 1 and 31")
		}
	}
	return nil
}
