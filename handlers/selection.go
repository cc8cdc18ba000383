// handlers/selection.go - character selection HTTP handlers
package handlers

import (
	"errors"

	"emberfest/database"
	"emberfest/middleware"
	"emberfest/selection"
	"emberfest/services"

	"github.com/gofiber/fiber/v2"
)

// GetSelection returns the machine position for the viewer's current team:
// the slot awaiting a pick and which characters are already taken.
// GET /api/selection
func GetSelection(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	team, err := services.CurrentTeamForUser(database.GetDB(), userID)
	if errors.Is(err, services.ErrTeamNotFound) {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "No team registered",
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load team"})
	}

	state := selectionService.State(team)

	resp := fiber.Map{
		"success": true,
		"team":    team,
		"phase":   state.Phase(),
		"done":    state.Done(),
		"taken":   state.Taken(),
	}
	if current, ok := state.Current(); ok {
		resp["current_slot"] = current.Index
		resp["current_player"] = current.Name
	}

	return c.JSON(resp)
}

// AssignCharacter commits the current slot's pick.
// POST /api/selection/assign
func AssignCharacter(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req struct {
		CharacterKey string `json:"character_key"`
		Level        int    `json:"level"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.CharacterKey == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "character_key is required",
		})
	}

	team, err := services.CurrentTeamForUser(database.GetDB(), userID)
	if errors.Is(err, services.ErrTeamNotFound) {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "No team registered",
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load team"})
	}

	snapshot, err := selectionService.Assign(team.ID, userID, req.CharacterKey, req.Level)
	if err != nil {
		return selectionError(c, err)
	}

	state := selectionService.State(snapshot)
	return c.JSON(fiber.Map{
		"success": true,
		"team":    snapshot,
		"phase":   state.Phase(),
		"done":    state.Done(),
	})
}

// selectionError maps state machine rejections onto the API's error taxonomy.
// 409s signal a retriable conflict: the server state did not change.
func selectionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, selection.ErrCharacterTaken):
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"code":    "character_taken",
			"error":   "That character is already claimed by a teammate",
		})
	case errors.Is(err, selection.ErrSlotFilled):
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"code":    "slot_filled",
			"error":   "This slot was already assigned from another session",
		})
	case errors.Is(err, selection.ErrAlreadyCompleted):
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"code":    "already_completed",
			"error":   "Selection is already complete",
		})
	case errors.Is(err, services.ErrUnknownCharacter):
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"code":    "unknown_character",
			"error":   "Unknown character",
		})
	case errors.Is(err, services.ErrNotTeamOwner):
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"error":   "Not your team",
		})
	case errors.Is(err, services.ErrTeamNotFound):
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Team not found",
		})
	default:
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save selection. Please try again.",
		})
	}
}
