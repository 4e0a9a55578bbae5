package handlers_test

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"art-assistant-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_PromptOnly(t *testing.T) {
	env := newTestEnv(t)

	w := env.doMultipart("/upload", map[string]string{"text": "a red fox"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]string
	decode(t, w, &body)
	require.Len(t, body, 2)
	assert.Regexp(t, `^\d{8}_\d{6}_\d{6}_[0-9a-f]{8}_a_red_fox_0\.png$`, body["0"])
	assert.Regexp(t, `_a_red_fox_1\.png$`, body["1"])

	for _, name := range body {
		_, err := os.Stat(filepath.Join(env.folder, name))
		assert.True(t, os.IsNotExist(err), "%s should be removed after the response", name)
	}

	req, ok := env.backbone.request("a red fox")
	require.True(t, ok)
	assert.Empty(t, req.Units)
	assert.False(t, req.IsInpaint())
}

func TestUpload_ControlUnitsStopAtFirstGap(t *testing.T) {
	env := newTestEnv(t)
	first := pngOfSize(2, 2)

	w := env.doMultipart("/upload",
		map[string]string{"text": "gap", "option0": "canny", "weight0": "0.6", "option2": "depth_midas"},
		[]formFile{{"image0", first}, {"image2", pngOfSize(3, 3)}},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req, ok := env.backbone.request("gap")
	require.True(t, ok)
	require.Len(t, req.Units, 1)
	assert.Equal(t, "canny", req.Units[0].Module)
	assert.Equal(t, 0.6, req.Units[0].Weight)
	assert.Equal(t, first, req.Units[0].Image)
}

func TestUpload_ImageWithoutOptionEndsScan(t *testing.T) {
	env := newTestEnv(t)

	w := env.doMultipart("/upload",
		map[string]string{"text": "half pair", "option1": "canny"},
		[]formFile{{"image0", pngOfSize(2, 2)}, {"image1", pngOfSize(2, 2)}},
	)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ := env.backbone.request("half pair")
	assert.Empty(t, req.Units)
}

func TestUpload_Inpainting(t *testing.T) {
	env := newTestEnv(t)

	w := env.doMultipart("/upload",
		map[string]string{"text": "fill the sky", "keepAspectRatio": "true"},
		[]formFile{{"canvasImage", pngOfSize(4, 4)}, {"canvasMask", pngOfSize(4, 4)}},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req, _ := env.backbone.request("fill the sky")
	assert.True(t, req.IsInpaint())
	assert.True(t, req.KeepAspectRatio)
}

func TestUpload_CanvasWithoutMaskIsTextToImage(t *testing.T) {
	env := newTestEnv(t)

	w := env.doMultipart("/upload", map[string]string{"text": "canvas only"},
		[]formFile{{"canvasImage", pngOfSize(4, 4)}})
	require.Equal(t, http.StatusOK, w.Code)

	req, _ := env.backbone.request("canvas only")
	assert.False(t, req.IsInpaint())
}

func TestUpload_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
	}{
		{"missing prompt", map[string]string{}, nil},
		{"blank prompt", map[string]string{"text": "   "}, nil},
		{"unknown module", map[string]string{"text": "x", "option0": "hologram"}, []formFile{{"image0", pngOfSize(2, 2)}}},
		{"undecodable control image", map[string]string{"text": "x", "option0": "canny"}, []formFile{{"image0", []byte("not an image")}}},
		{"bad weight", map[string]string{"text": "x", "option0": "canny", "weight0": "heavy"}, []formFile{{"image0", pngOfSize(2, 2)}}},
		{"bad keepAspectRatio", map[string]string{"text": "x", "keepAspectRatio": "sometimes"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.doMultipart("/upload", tt.fields, tt.files)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body models.ErrorResponse
			decode(t, w, &body)
			assert.Equal(t, "validation_failed", body.Error)
			assert.Empty(t, env.backbone.requests)
		})
	}
}

func TestUpload_NotMultipart(t *testing.T) {
	env := newTestEnv(t)
	w := env.doJSON(http.MethodPost, "/upload", map[string]string{"text": "json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_BackboneFailure(t *testing.T) {
	env := newTestEnv(t)
	env.backbone.err = errors.New("connection refused")

	w := env.doMultipart("/upload", map[string]string{"text": "x"}, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body models.ErrorResponse
	decode(t, w, &body)
	assert.Equal(t, "adapter_failed", body.Error)

	entries, err := os.ReadDir(env.folder)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_ConcurrentRequestsKeepOwnUnits(t *testing.T) {
	env := newTestEnv(t)
	env.backbone.delay = 20 * time.Millisecond

	alpha := [][]byte{pngOfSize(2, 2), pngOfSize(3, 3)}
	beta := [][]byte{pngOfSize(5, 5)}

	var wg sync.WaitGroup
	send := func(prompt string, images [][]byte, modules []string) {
		defer wg.Done()
		fields := map[string]string{"text": prompt}
		var files []formFile
		for i, img := range images {
			key := strconv.Itoa(i)
			fields["option"+key] = modules[i]
			files = append(files, formFile{"image" + key, img})
		}
		w := env.doMultipart("/upload", fields, files)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	wg.Add(2)
	go send("alpha", alpha, []string{"canny", "openpose"})
	go send("beta", beta, []string{"depth_midas"})
	wg.Wait()

	a, ok := env.backbone.request("alpha")
	require.True(t, ok)
	require.Len(t, a.Units, 2)
	assert.Equal(t, alpha[0], a.Units[0].Image)
	assert.Equal(t, "canny", a.Units[0].Module)
	assert.Equal(t, alpha[1], a.Units[1].Image)
	assert.Equal(t, "openpose", a.Units[1].Module)

	b, ok := env.backbone.request("beta")
	require.True(t, ok)
	require.Len(t, b.Units, 1)
	assert.Equal(t, beta[0], b.Units[0].Image)
	assert.Equal(t, "depth_midas", b.Units[0].Module)

	entries, err := os.ReadDir(env.folder)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
