package middleware

import (
	"fmt"
	"log"
	"time"

	"Dayboard/Models"

	"github.com/gofiber/fiber/v2"
)

// SimpleLogger logs one line per request with latency and the acting user.
func SimpleLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		latency := time.Since(start)

		var userStr string
		if user := c.Locals("user"); user != nil {
			if userStruct, ok := user.(Models.User); ok {
				userStr = fmt.Sprintf(" user:%v(%s)", userStruct.ID, userStruct.Name)
			}
		}

		log.Printf(
			"%s %s %d %s %s%s",
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			latency,
			c.IP(),
			userStr,
		)

		return err
	}
}
