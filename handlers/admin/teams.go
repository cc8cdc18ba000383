package admin

import (
	"errors"
	"time"

	"emberfest/database"
	"emberfest/models"
	"emberfest/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var broker *services.Broker

// InitAdminHandlers wires the change broker so grid edits fan out to viewers.
func InitAdminHandlers(b *services.Broker) {
	broker = b
}

// GetTeams returns all teams with their slots, paginated
// GET /api/admin/teams
func GetTeams(c *fiber.Ctx) error {
	db := database.GetDB()

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	search := c.Query("search", "")

	offset := (page - 1) * limit

	var teams []models.Team
	var total int64

	query := db.Model(&models.Team{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	query.Count(&total)

	err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Preload("Slots", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("slot_index ASC")
		}).
		Find(&teams).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch teams",
		})
	}

	return c.JSON(fiber.Map{
		"teams": teams,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetTeam returns a single team by ID
// GET /api/admin/teams/:id
func GetTeam(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var team models.Team
	err := db.Preload("Slots", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("slot_index ASC")
	}).First(&team, id).Error
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	return c.JSON(team)
}

type slotUpdate struct {
	SlotIndex    int     `json:"slot_index"`
	Name         *string `json:"name"`
	CharacterKey *string `json:"character_key"`
	Level        *int    `json:"level"`
}

// UpdateTeam edits a team record inline. Only the editable columns are
// writable: name, status, and per-slot name/character_key/level. Identifier
// and timestamp columns are never touched. The updated record is returned
// immediately and the change event fans out to other viewers.
// PUT /api/admin/teams/:id
func UpdateTeam(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var team models.Team
	if err := db.First(&team, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	var updateData struct {
		Name   string            `json:"name"`
		Status models.TeamStatus `json:"status"`
		Slots  []slotUpdate      `json:"slots"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if updateData.Status != "" && !validStatus(updateData.Status) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid status",
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"updated_at": time.Now()}
		if updateData.Name != "" {
			updates["name"] = updateData.Name
		}
		if updateData.Status != "" {
			updates["status"] = updateData.Status
		}
		if err := tx.Model(&models.Team{}).Where("id = ?", team.ID).Updates(updates).Error; err != nil {
			return err
		}

		for _, slot := range updateData.Slots {
			slotUpdates := map[string]interface{}{}
			if slot.Name != nil {
				slotUpdates["name"] = *slot.Name
			}
			if slot.CharacterKey != nil {
				// Empty string clears the assignment.
				if *slot.CharacterKey == "" {
					slotUpdates["character_key"] = nil
				} else {
					slotUpdates["character_key"] = *slot.CharacterKey
				}
			}
			if slot.Level != nil {
				slotUpdates["level"] = *slot.Level
			}
			if len(slotUpdates) == 0 {
				continue
			}
			if err := tx.Model(&models.PlayerSlot{}).
				Where("team_id = ? AND slot_index = ?", team.ID, slot.SlotIndex).
				Updates(slotUpdates).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		// The character uniqueness index also binds admin edits.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{
				"error": "Character already assigned on this team",
			})
		}
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to update team",
		})
	}

	snapshot, err := services.TeamSnapshot(db, team.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to reload team",
		})
	}

	broker.Publish(services.ChangeEvent{
		Table: "teams",
		Type:  services.EventUpdate,
		RowID: snapshot.ID,
		New:   snapshot,
		Old:   team,
	})

	return c.JSON(snapshot)
}

// DeleteTeam removes a team and its slots
// DELETE /api/admin/teams/:id
func DeleteTeam(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var team models.Team
	if err := db.First(&team, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.PlayerSlot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to delete team",
		})
	}

	broker.Publish(services.ChangeEvent{
		Table: "teams",
		Type:  services.EventDelete,
		RowID: team.ID,
		Old:   team,
	})

	return c.JSON(fiber.Map{
		"message": "Team deleted",
	})
}

func validStatus(s models.TeamStatus) bool {
	switch s {
	case models.TeamStatusRegistering, models.TeamStatusSelecting, models.TeamStatusCompleted:
		return true
	}
	return false
}
