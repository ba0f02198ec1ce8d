package bgg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const collectionBody = `<?xml version="1.0" encoding="utf-8"?>
<items totalitems="3">
  <item objecttype="thing" objectid="230802" subtype="boardgame">
    <name sortindex="1">Azul</name>
    <yearpublished>2017</yearpublished>
    <image>https://example.invalid/azul.jpg</image>
    <thumbnail>https://example.invalid/azul_t.jpg</thumbnail>
    <status own="1"/>
  </item>
  <item objecttype="thing" objectid="266810" subtype="boardgameexpansion">
    <name sortindex="1">Wingspan: European Expansion</name>
    <yearpublished>2019</yearpublished>
    <image></image>
    <thumbnail></thumbnail>
    <status own="1"/>
  </item>
  <item objecttype="thing" objectid="174430" subtype="boardgame">
    <name sortindex="1">Gloomhaven</name>
    <yearpublished>2017</yearpublished>
    <image></image>
    <thumbnail></thumbnail>
    <status own="0" wishlist="1"/>
  </item>
</items>`

const thingBody = `<?xml version="1.0" encoding="utf-8"?>
<items>
  <item type="boardgame" id="230802">
    <description>Tile drafting.</description>
    <minplayers value="2"/>
    <maxplayers value="4"/>
    <playingtime value="45"/>
    <minage value="8"/>
    <link type="boardgamecategory" id="1009" value="Abstract Strategy"/>
    <link type="boardgamemechanic" id="2984" value="Drafting"/>
    <statistics>
      <ratings>
        <average value="7.8"/>
        <averageweight value="1.76"/>
      </ratings>
    </statistics>
  </item>
</items>`

func newTestClient(baseURL string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		baseURL:    baseURL,
	}
}

func TestCollectionKeepsOnlyOwnedGames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		w.Write([]byte(collectionBody))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).Collection(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "230802", items[0].BGGID)
	assert.Equal(t, "Azul", items[0].Name)
	assert.Equal(t, 2017, items[0].Year)
	assert.Equal(t, "https://example.invalid/azul.jpg", items[0].Image)
	assert.False(t, items[0].IsExpansion)

	assert.Equal(t, "266810", items[1].BGGID)
	assert.True(t, items[1].IsExpansion)
}

func TestCollectionWaitsOutQueuedExport(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Write([]byte(collectionBody))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).Collection(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCollectionQueuedExportHonorsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).Collection(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThingsParsesStatsAndCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "230802", r.URL.Query().Get("id"))
		assert.Equal(t, "1", r.URL.Query().Get("stats"))
		w.Write([]byte(thingBody))
	}))
	defer srv.Close()

	things, err := newTestClient(srv.URL).Things(context.Background(), []string{"230802"})
	require.NoError(t, err)
	require.Len(t, things, 1)

	thing := things[0]
	assert.Equal(t, "230802", thing.BGGID)
	assert.Equal(t, 2, thing.MinPlayers)
	assert.Equal(t, 4, thing.MaxPlayers)
	assert.Equal(t, 45, thing.PlayTimeMinutes)
	assert.Equal(t, 8, thing.MinAge)
	assert.InDelta(t, 7.8, thing.Rating, 0.001)
	assert.InDelta(t, 1.76, thing.Weight, 0.001)
	assert.Equal(t, []string{"Abstract Strategy"}, thing.Categories)
}

func TestThingsRejectsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Things(context.Background(), []string{"1"})
	assert.Error(t, err)
}
