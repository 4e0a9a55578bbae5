// Package search queries the external image-search provider and normalises
// its results into image descriptors.
package search

import "context"

// Image is the normalised descriptor returned to clients.
type Image struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// Searcher finds images for a keyword query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Image, error)
}
