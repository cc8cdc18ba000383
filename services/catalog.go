// services/catalog.go - character catalog with optional spreadsheet feed
package services

import (
	"encoding/csv"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"emberfest/models"
)

const catalogCacheTTL = 5 * time.Minute

// Catalog serves the character roster. Without a sheet URL it serves the
// bundled data; with one it fetches the CSV export and caches it for five
// minutes so operators can edit the roster without a redeploy. Read by many
// goroutines, written only by the refresh path.
type Catalog struct {
	sheetURL string
	client   *http.Client
	now      func() time.Time

	mu        sync.RWMutex
	cached    []models.Character
	fetchedAt time.Time
}

func NewCatalog(sheetURL string) *Catalog {
	return &Catalog{
		sheetURL: sheetURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
	}
}

// Characters returns the current roster. Feed failures fall back to the last
// good fetch, then to the bundled roster; callers always get a usable set.
func (c *Catalog) Characters() []models.Character {
	if c.sheetURL == "" {
		return builtinCharacters
	}

	c.mu.RLock()
	if c.cached != nil && c.now().Sub(c.fetchedAt) < catalogCacheTTL {
		chars := c.cached
		c.mu.RUnlock()
		return chars
	}
	c.mu.RUnlock()

	chars, err := c.fetch()
	if err != nil {
		log.Printf("catalog: sheet fetch failed: %v", err)
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.cached != nil {
			return c.cached
		}
		return builtinCharacters
	}

	c.mu.Lock()
	c.cached = chars
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return chars
}

// Lookup finds a character by its key.
func (c *Catalog) Lookup(key string) (models.Character, bool) {
	for _, ch := range c.Characters() {
		if ch.ID == key {
			return ch, true
		}
	}
	return models.Character{}, false
}

// Invalidate drops the cached roster so the next read re-fetches.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Catalog) fetch() ([]models.Character, error) {
	resp, err := c.client.Get(c.sheetURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("sheet returned " + resp.Status)
	}

	return ParseRoster(resp.Body)
}

// ParseRoster reads a roster CSV export. The header row names the columns;
// rows that are malformed or carry an unknown class are dropped silently and
// the valid subset is returned.
func ParseRoster(r io.Reader) ([]models.Character, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var characters []models.Character
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Bad row, keep the rest of the feed usable.
			continue
		}

		char, ok := parseRosterRow(row, field)
		if !ok {
			continue
		}
		characters = append(characters, char)
	}

	return characters, nil
}

func parseRosterRow(row []string, field func([]string, string) string) (models.Character, bool) {
	id := field(row, "id")
	name := field(row, "name")
	class := field(row, "class")

	if id == "" || name == "" || !models.ValidCharacterClass(class) {
		return models.Character{}, false
	}

	return models.Character{
		ID:               id,
		Name:             name,
		Class:            class,
		HP:               atoiOrZero(field(row, "hp")),
		Mana:             atoiOrZero(field(row, "mana")),
		Speed:            atoiOrZero(field(row, "speed")),
		StrengthUtility:  field(row, "strengthUtility"),
		Skills:           parseSkills(field(row, "skills")),
		SpriteURL:        field(row, "spriteUrl"),
		ShortDescription: field(row, "shortDescription"),
		PrimaryStatBuff:  field(row, "primaryStatBuff"),
	}, true
}

// parseSkills splits "Skill1|Description1,Skill2|Description2".
func parseSkills(s string) []models.Skill {
	if s == "" {
		return nil
	}

	var skills []models.Skill
	for _, pair := range strings.Split(s, ",") {
		name, description, _ := strings.Cut(pair, "|")
		skills = append(skills, models.Skill{
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(description),
		})
	}
	return skills
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
