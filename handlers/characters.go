// handlers/characters.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetCharacters serves the catalog. The roster comes from the sheet feed when
// one is configured (cached five minutes), otherwise from the bundled data.
// GET /api/characters
func GetCharacters(c *fiber.Ctx) error {
	characters := catalog.Characters()
	return c.JSON(fiber.Map{
		"success":    true,
		"characters": characters,
		"count":      len(characters),
	})
}
