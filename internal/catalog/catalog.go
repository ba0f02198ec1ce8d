package catalog

import (
	"shelfpick/backend/internal/models"

	"gorm.io/gorm"
)

// ResolvedGame is the display metadata for one game, resolved fresh from
// the catalog on every read. Stored session results never carry these
// fields, so renaming or re-imaging a game updates historical results too.
type ResolvedGame struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Image  *string  `json:"image"`
	Rating *float64 `json:"rating"`
}

// Catalog resolves BGG game ids to display metadata.
type Catalog struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// ResolveGames returns metadata for the given ids, in input order. Ids with
// no catalog row resolve to an "Unknown Game" placeholder rather than
// failing the read.
func (c *Catalog) ResolveGames(ids []string) ([]ResolvedGame, error) {
	if len(ids) == 0 {
		return []ResolvedGame{}, nil
	}

	var games []models.Game
	if err := c.db.Where("bgg_id IN ?", ids).Find(&games).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Game, len(games))
	for _, g := range games {
		byID[g.BGGID] = g
	}

	resolved := make([]ResolvedGame, 0, len(ids))
	for _, id := range ids {
		g, ok := byID[id]
		if !ok {
			resolved = append(resolved, ResolvedGame{ID: id, Name: "Unknown Game"})
			continue
		}
		entry := ResolvedGame{ID: id, Name: g.Name}
		if g.Image != "" {
			image := g.Image
			entry.Image = &image
		}
		if g.Rating > 0 {
			rating := g.Rating
			entry.Rating = &rating
		}
		resolved = append(resolved, entry)
	}
	return resolved, nil
}
