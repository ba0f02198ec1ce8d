package catalog

import (
	"testing"

	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestCatalog(t *testing.T) (*Catalog, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return New(db), db
}

func TestResolveGamesPreservesInputOrder(t *testing.T) {
	c, db := newTestCatalog(t)

	require.NoError(t, db.Create(&models.Game{BGGID: "13", Name: "Catan", Image: "catan.jpg", Rating: 7.1}).Error)
	require.NoError(t, db.Create(&models.Game{BGGID: "9209", Name: "Ticket to Ride", Rating: 7.4}).Error)

	resolved, err := c.ResolveGames([]string{"9209", "13"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, "Ticket to Ride", resolved[0].Name)
	assert.Equal(t, "Catan", resolved[1].Name)
	require.NotNil(t, resolved[1].Image)
	assert.Equal(t, "catan.jpg", *resolved[1].Image)
}

func TestResolveGamesUnknownIDPlaceholder(t *testing.T) {
	c, db := newTestCatalog(t)

	require.NoError(t, db.Create(&models.Game{BGGID: "13", Name: "Catan"}).Error)

	resolved, err := c.ResolveGames([]string{"13", "999999"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, "Unknown Game", resolved[1].Name)
	assert.Nil(t, resolved[1].Image)
	assert.Nil(t, resolved[1].Rating)
}

func TestResolveGamesEmptyInput(t *testing.T) {
	c, _ := newTestCatalog(t)

	resolved, err := c.ResolveGames(nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}
