package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// renditionPreference lists image sizes from most to least preferred.
var renditionPreference = []string{"originals", "1200x", "600x", "400x300", "150x150"}

// Client calls a Pinterest-style partner pin search endpoint.
type Client struct {
	baseURL    string
	token      string
	limit      int
	httpClient *http.Client
}

type Rendition struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Pin struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Media       struct {
		Images map[string]Rendition `json:"images"`
	} `json:"media"`
}

type SearchResponse struct {
	Items    []Pin  `json:"items"`
	Bookmark string `json:"bookmark"`
}

func NewClient(baseURL, token string, limit int) *Client {
	if limit <= 0 {
		limit = 25
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		limit:   limit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Search(ctx context.Context, query string) ([]Image, error) {
	raw, err := c.searchPins(ctx, query)
	if err != nil {
		return nil, err
	}
	return Normalize(raw.Items), nil
}

func (c *Client) searchPins(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("term", query)
	params.Set("limit", strconv.Itoa(c.limit))

	reqURL := c.baseURL + "/v5/search/partner/pins?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to search pins: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Normalize keeps pins that carry at least one image and picks the largest
// known rendition for each. Input order is preserved.
func Normalize(pins []Pin) []Image {
	images := make([]Image, 0, len(pins))
	for _, pin := range pins {
		rendition, ok := bestRendition(pin.Media.Images)
		if !ok {
			continue
		}
		images = append(images, Image{
			ID:          pin.ID,
			Title:       pin.Title,
			Description: pin.Description,
			Link:        pin.Link,
			URL:         rendition.URL,
			Width:       rendition.Width,
			Height:      rendition.Height,
		})
	}
	return images
}

func bestRendition(renditions map[string]Rendition) (Rendition, bool) {
	for _, size := range renditionPreference {
		if r, ok := renditions[size]; ok && r.URL != "" {
			return r, true
		}
	}
	// Unknown size keys: fall back to the widest one.
	var best Rendition
	for _, r := range renditions {
		if r.URL != "" && r.Width >= best.Width {
			best = r
		}
	}
	return best, best.URL != ""
}
