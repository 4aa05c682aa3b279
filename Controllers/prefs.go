package Controllers

import (
	"errors"
	"time"

	"Dayboard/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PrefController stores the client-local persisted state server side: the
// selected board date (short lived), the selected user set and the custom
// task sorting (durable).
type PrefController struct {
	DB *gorm.DB
}

func NewPrefController(db *gorm.DB) *PrefController {
	return &PrefController{DB: db}
}

func prefTTL(key string) (time.Duration, bool) {
	switch key {
	case Models.PrefSelectedDate:
		return Models.SelectedDateTTL, true
	case Models.PrefSelectedUsers, Models.PrefCustomTaskSorting:
		return 0, true
	default:
		return 0, false
	}
}

// GetPref returns one preference value for the current user
func (c *PrefController) GetPref(ctx *fiber.Ctx) error {
	key := ctx.Params("key")
	if _, ok := prefTTL(key); !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown preference"})
	}
	value, err := Models.GetPreference(c.DB, CurrentUser(ctx).ID, key)
	if errors.Is(err, Models.ErrPrefNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Preference not set"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"key": key, "value": value})
}

// SetPref stores one preference value for the current user
func (c *PrefController) SetPref(ctx *fiber.Ctx) error {
	key := ctx.Params("key")
	ttl, ok := prefTTL(key)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown preference"})
	}
	var input struct {
		Value string `json:"value"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := Models.SetPreference(c.DB, CurrentUser(ctx).ID, key, input.Value, ttl); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"key": key, "value": input.Value})
}
