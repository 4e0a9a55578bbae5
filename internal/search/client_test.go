package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"art-assistant-backend/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pinsResponse = `{
	"items": [
		{"id": "1", "title": "Cat", "link": "https://example.com/1", "media": {"images": {
			"150x150": {"url": "https://i.example.com/150/1.jpg", "width": 150, "height": 150},
			"600x": {"url": "https://i.example.com/600/1.jpg", "width": 600, "height": 800}
		}}},
		{"id": "2", "title": "Video pin without images", "media": {"images": {}}},
		{"id": "3", "description": "Kitten", "media": {"images": {
			"originals": {"url": "https://i.example.com/orig/3.jpg", "width": 2000, "height": 1500},
			"1200x": {"url": "https://i.example.com/1200/3.jpg", "width": 1200, "height": 900}
		}}}
	],
	"bookmark": "next"
}`

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/search/partner/pins", r.URL.Path)
		assert.Equal(t, "cats", r.URL.Query().Get("term"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(pinsResponse))
	}))
	defer server.Close()

	client := search.NewClient(server.URL, "token-123", 10)
	images, err := client.Search(context.Background(), "cats")
	require.NoError(t, err)

	require.Len(t, images, 2)
	assert.Equal(t, "1", images[0].ID)
	assert.Equal(t, "https://i.example.com/600/1.jpg", images[0].URL)
	assert.Equal(t, 600, images[0].Width)
	assert.Equal(t, "3", images[1].ID)
	assert.Equal(t, "https://i.example.com/orig/3.jpg", images[1].URL)
	assert.Equal(t, "Kitten", images[1].Description)
}

func TestClient_SearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := search.NewClient(server.URL, "", 0).Search(context.Background(), "cats")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestNormalize_UnknownRenditionKeys(t *testing.T) {
	var pin search.Pin
	pin.ID = "9"
	pin.Media.Images = map[string]search.Rendition{
		"236x":  {URL: "https://i.example.com/236/9.jpg", Width: 236},
		"736x":  {URL: "https://i.example.com/736/9.jpg", Width: 736},
		"empty": {Width: 5000},
	}

	images := search.Normalize([]search.Pin{pin})
	require.Len(t, images, 1)
	assert.Equal(t, "https://i.example.com/736/9.jpg", images[0].URL)
}

func TestNormalize_Empty(t *testing.T) {
	images := search.Normalize(nil)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}
