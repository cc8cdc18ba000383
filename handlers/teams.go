// handlers/teams.go - Team registration and status HTTP handlers
package handlers

import (
	"errors"

	"emberfest/database"
	"emberfest/middleware"
	"emberfest/selection"
	"emberfest/services"

	"github.com/gofiber/fiber/v2"
)

var (
	registrationService *services.RegistrationService
	selectionService    *services.SelectionService
	catalog             *services.Catalog
)

// InitTeamHandlers wires the team services. The broker and catalog are
// constructed once in main and injected here.
func InitTeamHandlers(broker *services.Broker, cat *services.Catalog) {
	db := database.GetDB()
	registrationService = services.NewRegistrationService(db, broker)
	selectionService = services.NewSelectionService(db, broker, cat)
	catalog = cat
}

// RegisterTeam creates a team with its three player slots
// POST /api/teams
func RegisterTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req struct {
		Name    string   `json:"name"`
		Players []string `json:"players"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if len(req.Players) != selection.SlotCount {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Exactly 3 player names are required",
		})
	}

	var names [selection.SlotCount]string
	copy(names[:], req.Players)

	team, err := registrationService.Register(userID, req.Name, names)
	if err != nil {
		status := 500
		if errors.Is(err, services.ErrTeamNameRequired) || errors.Is(err, services.ErrPlayerNameRequired) {
			status = 400
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"team":    team,
	})
}

// GetCurrentTeam returns the viewer's most recent team plus its phase, so the
// client can route: no team -> registration, not completed -> selection.
// GET /api/teams/current
func GetCurrentTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	team, err := services.CurrentTeamForUser(database.GetDB(), userID)
	if errors.Is(err, services.ErrTeamNotFound) {
		return c.JSON(fiber.Map{
			"success": true,
			"team":    nil,
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load team",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"team":    team,
		"phase":   selectionService.State(team).Phase(),
	})
}
