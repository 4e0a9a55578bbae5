// Package imaging decodes user supplied images and re-encodes them as PNG
// for the generation backbone.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrInvalidImage = errors.New("imaging: data is not a supported image")

// MaxDimension bounds the width and height of any decoded image.
const MaxDimension = 4096

// ToPNG decodes PNG, JPEG, GIF, BMP or WebP data and returns PNG bytes
// together with the image bounds.
// Dimensions are checked from the header before the pixels are decoded.
func ToPNG(data []byte) ([]byte, image.Rectangle, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, image.Rectangle{}, fmt.Errorf("%w: %dx%d exceeds %dx%d",
			ErrInvalidImage, cfg.Width, cfg.Height, MaxDimension, MaxDimension)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if format == "png" {
		return data, img.Bounds(), nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), img.Bounds(), nil
}

// DecodeBase64 accepts raw base64 or a data URL ("data:image/png;base64,...").
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		s = s[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}
