// Package caption turns an image into a short text description used as a
// search query.
package caption

import (
	"context"
	"errors"
)

// ErrEmptyCaption is returned when the provider answers without any text.
var ErrEmptyCaption = errors.New("caption: provider returned an empty caption")

// Captioner describes an image in a few words.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}
