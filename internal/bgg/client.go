// Package bgg speaks the BoardGameGeek XMLAPI2 and feeds the local games
// catalog. The pick-session core never touches BGG directly; it only reads
// the rows the importer writes.
package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://boardgamegeek.com/xmlapi2"

// BGG queues collection exports and answers 202 until the export is ready.
const (
	acceptedRetryWait = 2 * time.Second
	acceptedRetryMax  = 10
)

// Client is a rate-limited BGG XMLAPI2 client. BGG throttles aggressively,
// so requests are spaced out regardless of caller behavior.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		baseURL:    defaultBaseURL,
	}
}

// CollectionItem is one owned game from a user's collection export.
type CollectionItem struct {
	BGGID       string
	Name        string
	Year        int
	Image       string
	Thumbnail   string
	IsExpansion bool
}

// Thing is the detail record for one game.
type Thing struct {
	BGGID           string
	Description     string
	MinPlayers      int
	MaxPlayers      int
	PlayTimeMinutes int
	MinAge          int
	Rating          float64
	Weight          float64
	Categories      []string
}

type collectionXML struct {
	Items []struct {
		ObjectID string `xml:"objectid,attr"`
		Subtype  string `xml:"subtype,attr"`
		Name     string `xml:"name"`
		Year     int    `xml:"yearpublished"`
		Image    string `xml:"image"`
		Thumb    string `xml:"thumbnail"`
		Status   struct {
			Own string `xml:"own,attr"`
		} `xml:"status"`
	} `xml:"item"`
}

type thingsXML struct {
	Items []struct {
		ID          string `xml:"id,attr"`
		Description string `xml:"description"`
		MinPlayers  struct {
			Value int `xml:"value,attr"`
		} `xml:"minplayers"`
		MaxPlayers struct {
			Value int `xml:"value,attr"`
		} `xml:"maxplayers"`
		PlayingTime struct {
			Value int `xml:"value,attr"`
		} `xml:"playingtime"`
		MinAge struct {
			Value int `xml:"value,attr"`
		} `xml:"minage"`
		Links []struct {
			Type  string `xml:"type,attr"`
			Value string `xml:"value,attr"`
		} `xml:"link"`
		Statistics struct {
			Ratings struct {
				Average struct {
					Value float64 `xml:"value,attr"`
				} `xml:"average"`
				AverageWeight struct {
					Value float64 `xml:"value,attr"`
				} `xml:"averageweight"`
			} `xml:"ratings"`
		} `xml:"statistics"`
	} `xml:"item"`
}

// Collection fetches the owned games of a BGG user, waiting out the queued
// 202 responses BGG returns while it prepares the export.
func (c *Client) Collection(ctx context.Context, username string) ([]CollectionItem, error) {
	endpoint := fmt.Sprintf("%s/collection?username=%s&stats=0", c.baseURL, url.QueryEscape(username))

	var body []byte
	for attempt := 0; ; attempt++ {
		data, status, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		if status == http.StatusAccepted {
			if attempt >= acceptedRetryMax {
				return nil, fmt.Errorf("bgg: collection export for %q still queued after %d attempts", username, attempt)
			}
			select {
			case <-time.After(acceptedRetryWait):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("bgg: collection request returned status %d", status)
		}
		body = data
		break
	}

	var parsed collectionXML
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("bgg: failed to parse collection: %w", err)
	}

	items := make([]CollectionItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Status.Own != "1" {
			continue
		}
		items = append(items, CollectionItem{
			BGGID:       item.ObjectID,
			Name:        item.Name,
			Year:        item.Year,
			Image:       item.Image,
			Thumbnail:   item.Thumb,
			IsExpansion: item.Subtype == "boardgameexpansion",
		})
	}
	return items, nil
}

// Things fetches detail records for up to 20 games per call (the API's
// documented batch limit).
func (c *Client) Things(ctx context.Context, ids []string) ([]Thing, error) {
	endpoint := fmt.Sprintf("%s/thing?id=%s&stats=1", c.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	data, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("bgg: thing request returned status %d", status)
	}

	var parsed thingsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("bgg: failed to parse things: %w", err)
	}

	things := make([]Thing, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		thing := Thing{
			BGGID:           item.ID,
			Description:     item.Description,
			MinPlayers:      item.MinPlayers.Value,
			MaxPlayers:      item.MaxPlayers.Value,
			PlayTimeMinutes: item.PlayingTime.Value,
			MinAge:          item.MinAge.Value,
			Rating:          item.Statistics.Ratings.Average.Value,
			Weight:          item.Statistics.Ratings.AverageWeight.Value,
		}
		for _, link := range item.Links {
			if link.Type == "boardgamecategory" {
				thing.Categories = append(thing.Categories, link.Value)
			}
		}
		things = append(things, thing)
	}
	return things, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return data, resp.StatusCode, nil
}
