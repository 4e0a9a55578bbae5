package imaging_test

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"art-assistant-backend/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 1, color.RGBA{R: 255, A: 255})
	}
	return img
}

func TestToPNG_FromJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))

	out, bounds, err := imaging.ToPNG(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), bounds)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestToPNG_PassesPNGThrough(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	out, _, err := imaging.ToPNG(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), out)
}

func TestToPNG_Invalid(t *testing.T) {
	_, _, err := imaging.ToPNG([]byte("definitely not an image"))
	assert.ErrorIs(t, err, imaging.ErrInvalidImage)
}

func TestDecodeBase64(t *testing.T) {
	raw := []byte("hello")
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name  string
		input string
	}{
		{"plain", encoded},
		{"data url", "data:image/png;base64," + encoded},
		{"unpadded", base64.RawStdEncoding.EncodeToString(raw)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := imaging.DecodeBase64(tt.input)
			require.NoError(t, err)
			assert.Equal(t, raw, out)
		})
	}

	_, err := imaging.DecodeBase64("data:image/png;base64")
	assert.ErrorIs(t, err, imaging.ErrInvalidImage)

	_, err = imaging.DecodeBase64("***")
	assert.ErrorIs(t, err, imaging.ErrInvalidImage)
}

// pngHeader returns a PNG signature and IHDR chunk claiming w x h RGBA
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestToPNG_RejectsOversizedDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h uint32
	}{
		{"too wide", 20000, 16},
		{"too tall", 16, imaging.MaxDimension + 1},
		{"both", 65535, 65535},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := imaging.ToPNG(pngHeader(tt.w, tt.h))
			require.Error(t, err)
			assert.ErrorIs(t, err, imaging.ErrInvalidImage)
			assert.Contains(t, err.Error(), "exceeds")
		})
	}
}

func TestToPNG_AcceptsMaxDimension(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, imaging.MaxDimension, 1))))

	_, bounds, err := imaging.ToPNG(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, imaging.MaxDimension, bounds.Dx())
}
