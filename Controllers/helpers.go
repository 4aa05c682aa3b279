package Controllers

import (
	"strconv"
	"strings"
	"time"

	"Dayboard/Models"

	"github.com/gofiber/fiber/v2"
)

// CurrentUser returns the user stored by the Verify middleware.
func CurrentUser(ctx *fiber.Ctx) Models.User {
	user, _ := ctx.Locals("user").(Models.User)
	return user
}

// parseUserIDs parses a comma separated "users" query parameter. An empty
// parameter falls back to the current user.
func parseUserIDs(ctx *fiber.Ctx) ([]uint, error) {
	raw := strings.TrimSpace(ctx.Query("users"))
	if raw == "" {
		return []uint{CurrentUser(ctx).ID}, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// mayActOn reports whether current may mutate an item assigned to
// assigneeID. Assignees always control their own items; acting on someone
// else's requires the edit-others permission.
func mayActOn(current Models.User, assigneeID uint) bool {
	return assigneeID == current.ID || current.CanEditOthersTasks()
}

// parseDate parses the "date" query parameter, defaulting to today.
func parseDate(ctx *fiber.Ctx) (string, error) {
	raw := strings.TrimSpace(ctx.Query("date"))
	if raw == "" {
		return time.Now().Format(Models.DateLayout), nil
	}
	if _, err := time.Parse(Models.DateLayout, raw); err != nil {
		return "", err
	}
	return raw, nil
}
