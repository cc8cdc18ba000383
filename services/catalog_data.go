// services/catalog_data.go - built-in character roster
package services

import "emberfest/models"

// builtinCharacters is the bundled roster used when no sheet feed is
// configured or the feed has never succeeded.
var builtinCharacters = []models.Character{
	{
		ID:               "knight",
		Name:             "Knight",
		Class:            "Knight",
		HP:               125,
		Atk:              15,
		Mana:             40,
		Speed:            20,
		StrengthUtility:  "Defensive Tank",
		ShortDescription: "Heavy armor specialist focusing on defense and protecting allies.",
		PrimaryStatBuff:  "+5 Defense Boost",
		Skills: []models.Skill{
			{Name: "Shield Bash", Description: "20 Mana. Roll 9+ → moderate damage + stun 1 turn"},
			{Name: "Fortified Strike", Description: "16 Mana. Deals moderate damage and the Knight takes 20% less damage."},
			{Name: "Ultimate — Iron Fortress", Description: "60 Mana. Roll 14+ → -75% damage taken for one turn + taunt all enemies"},
		},
		SpriteURL: "/assets/knight.png",
	},
	{
		ID:               "archer",
		Name:             "Archer",
		Class:            "Archer",
		HP:               105,
		Atk:              22,
		Mana:             50,
		Speed:            26,
		StrengthUtility:  "Mobile Ranged DPS",
		ShortDescription: "Swift marksman with deadly accuracy. Rain arrows from a distance.",
		PrimaryStatBuff:  "+10 Speed Boost",
		Skills: []models.Skill{
			{Name: "Rapid Fire", Description: "20 Mana. Roll 8+ → two light hits"},
			{Name: "Pinning Arrow", Description: "25 Mana. Roll 10+ → moderate damage + −5 speed"},
			{Name: "Ultimate — Tempest Volley", Description: "60 Mana. Roll 11+ → damage all enemies + −3 speed"},
		},
		SpriteURL: "/assets/archer.png",
	},
	{
		ID:               "wizard",
		Name:             "Wizard",
		Class:            "Wizard",
		HP:               110,
		Atk:              20,
		Mana:             70,
		Speed:            22,
		StrengthUtility:  "AoE Controller",
		ShortDescription: "Master of arcane arts dealing massive area damage and controlling the battlefield.",
		PrimaryStatBuff:  "+8 Magic Boost",
		Skills: []models.Skill{
			{Name: "Fireball", Description: "20 Mana. Roll 7+ → moderate damage, Roll 15+ hits all enemies"},
			{Name: "Arcane Barrier", Description: "35 Mana. Auto → −30% damage taken by party for 2 turns"},
			{Name: "Ultimate — Falling Star Cataclysm", Description: "80 Mana. 1-turn channel, then Roll 14+ → very high AoE damage"},
		},
		SpriteURL: "/assets/wizard.png",
	},
	{
		ID:               "assassin",
		Name:             "Assassin",
		Class:            "Assassin",
		HP:               100,
		Atk:              25,
		Mana:             40,
		Speed:            24,
		StrengthUtility:  "Burst Risk Dealer",
		ShortDescription: "Strikes from the shadows with lethal precision and high risk.",
		PrimaryStatBuff:  "+12 Crit Boost",
		Skills: []models.Skill{
			{Name: "Shadow Strike", Description: "25 Mana. Roll 10+ → high damage + poison (5 dmg ×2 turns)"},
			{Name: "Backstab", Description: "35 Mana. Roll 13+ → very high damage if target does not attack Assassin"},
			{Name: "Ultimate — Execution Mark", Description: "60 Mana. Roll 16+ → deal 45% of target's max HP as true damage"},
		},
		SpriteURL: "/assets/assassin.png",
	},
	{
		ID:               "bard",
		Name:             "Bard",
		Class:            "Bard",
		HP:               110,
		Atk:              18,
		Mana:             60,
		Speed:            22,
		StrengthUtility:  "Support & Control",
		ShortDescription: "Enhances allies with melodies and disrupts enemies with discordant notes.",
		PrimaryStatBuff:  "+10 Support Boost",
		Skills: []models.Skill{
			{Name: "Healing Melody", Description: "25 Mana. Roll 7+ → heal ally or self for 25% HP"},
			{Name: "Harmonic Shield", Description: "25 Mana. Auto → block next damage instance"},
			{Name: "Ultimate — Requiem of Return", Description: "60 Mana. Roll 14+ → revive ally at 30% HP"},
		},
		SpriteURL: "/assets/bard.png",
		LevelStats: []models.LevelStats{
			{Level: 1, HP: 110, Atk: 18, Speed: 22, Mana: 60},
			{Level: 2, HP: 123, Atk: 20, Speed: 24, Mana: 70},
			{Level: 3, HP: 136, Atk: 22, Speed: 26, Mana: 80},
			{Level: 4, HP: 149, Atk: 24, Speed: 28, Mana: 90},
			{Level: 5, HP: 162, Atk: 26, Speed: 30, Mana: 105},
			{Level: 6, HP: 175, Atk: 28, Speed: 32, Mana: 120},
		},
	},
}
