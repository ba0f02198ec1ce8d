package bgg

import (
	"context"
	"errors"
	"sync"
	"time"

	"shelfpick/backend/internal/logging"
	"shelfpick/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const thingBatchSize = 20

// ErrImportBusy means an import is already queued or running.
var ErrImportBusy = errors.New("an import is already in progress")

// ImportStatus is a snapshot of the importer's state.
type ImportStatus struct {
	State      string     `json:"state"` // idle | running | failed
	Username   string     `json:"username,omitempty"`
	Imported   int        `json:"imported"`
	Total      int        `json:"total"`
	Error      string     `json:"error,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Importer runs BGG collection imports one at a time on a background
// goroutine, upserting games and categories into the catalog.
type Importer struct {
	db     *gorm.DB
	client *Client
	jobs   chan string

	mu     sync.Mutex
	status ImportStatus
}

func NewImporter(db *gorm.DB, client *Client) *Importer {
	return &Importer{
		db:     db,
		client: client,
		jobs:   make(chan string, 1),
		status: ImportStatus{State: "idle"},
	}
}

// Start launches the worker goroutine. It runs until stop is closed.
func (i *Importer) Start(stop <-chan struct{}) {
	go func() {
		for {
			select {
			case username := <-i.jobs:
				i.run(username)
			case <-stop:
				return
			}
		}
	}()
}

// Enqueue schedules an import for the given BGG username. Only one import
// may be queued or running at a time.
func (i *Importer) Enqueue(username string) error {
	i.mu.Lock()
	if i.status.State == "running" {
		i.mu.Unlock()
		return ErrImportBusy
	}
	i.mu.Unlock()

	select {
	case i.jobs <- username:
		return nil
	default:
		return ErrImportBusy
	}
}

// Status returns the current import status.
func (i *Importer) Status() ImportStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

func (i *Importer) setStatus(update func(*ImportStatus)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	update(&i.status)
}

func (i *Importer) run(username string) {
	i.setStatus(func(s *ImportStatus) {
		*s = ImportStatus{State: "running", Username: username}
	})
	logging.Log.Infof("bgg: starting collection import for %s", username)

	ctx := context.Background()
	items, err := i.client.Collection(ctx, username)
	if err != nil {
		i.fail(username, err)
		return
	}

	i.setStatus(func(s *ImportStatus) { s.Total = len(items) })

	byID := make(map[string]CollectionItem, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		byID[item.BGGID] = item
		ids = append(ids, item.BGGID)
	}

	for start := 0; start < len(ids); start += thingBatchSize {
		end := start + thingBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		things, err := i.client.Things(ctx, ids[start:end])
		if err != nil {
			i.fail(username, err)
			return
		}

		for _, thing := range things {
			if err := i.upsertGame(byID[thing.BGGID], thing); err != nil {
				i.fail(username, err)
				return
			}
			i.setStatus(func(s *ImportStatus) { s.Imported++ })
		}
	}

	now := time.Now()
	i.setStatus(func(s *ImportStatus) {
		s.State = "idle"
		s.FinishedAt = &now
	})
	logging.Log.Infof("bgg: imported %d games for %s", len(ids), username)
}

func (i *Importer) fail(username string, err error) {
	logging.Log.Errorf("bgg: import for %s failed: %v", username, err)
	i.setStatus(func(s *ImportStatus) {
		s.State = "failed"
		s.Error = err.Error()
	})
}

// upsertGame writes one game and its categories, updating an existing row
// in place so re-imports refresh metadata without duplicating games.
func (i *Importer) upsertGame(item CollectionItem, thing Thing) error {
	game := models.Game{
		BGGID:           item.BGGID,
		Name:            item.Name,
		Description:     thing.Description,
		Image:           item.Image,
		Thumbnail:       item.Thumbnail,
		YearPublished:   item.Year,
		MinPlayers:      thing.MinPlayers,
		MaxPlayers:      thing.MaxPlayers,
		PlayTimeMinutes: thing.PlayTimeMinutes,
		Rating:          thing.Rating,
		Weight:          thing.Weight,
		KidFriendly:     thing.MinAge > 0 && thing.MinAge <= 8,
		IsExpansion:     item.IsExpansion,
		Owned:           true,
	}

	return i.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "bgg_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "image", "thumbnail", "year_published",
				"min_players", "max_players", "play_time_minutes", "rating",
				"weight", "kid_friendly", "is_expansion", "owned", "updated_at",
			}),
		}).Create(&game).Error
		if err != nil {
			return err
		}

		if len(thing.Categories) == 0 {
			return nil
		}

		categories := make([]*models.Category, 0, len(thing.Categories))
		for _, name := range thing.Categories {
			category := models.Category{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
				return err
			}
			categories = append(categories, &category)
		}

		var persisted models.Game
		if err := tx.Where("bgg_id = ?", item.BGGID).First(&persisted).Error; err != nil {
			return err
		}
		return tx.Model(&persisted).Association("Categories").Replace(categories)
	})
}
