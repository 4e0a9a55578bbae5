package handlers_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"art-assistant-backend/internal/config"
	"art-assistant-backend/internal/database"
	"art-assistant-backend/internal/handlers"
	"art-assistant-backend/internal/search"
	"art-assistant-backend/internal/services"
	"art-assistant-backend/internal/webui"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type fakeCaptioner struct {
	caption string
	err     error
	calls   int
}

func (f *fakeCaptioner) Caption(ctx context.Context, img []byte) (string, error) {
	f.calls++
	return f.caption, f.err
}

type fakeSearcher struct {
	results []search.Image
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]search.Image, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

// fakeBackbone records each request by prompt and returns one PNG per call.
type fakeBackbone struct {
	mu       sync.Mutex
	requests map[string]webui.GenerationRequest
	outputs  int
	err      error
	delay    time.Duration
}

func (f *fakeBackbone) Generate(ctx context.Context, req webui.GenerationRequest) ([][]byte, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.requests[req.Prompt] = req
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	images := make([][]byte, f.outputs)
	for i := range images {
		images[i] = pngOfSize(1, 1)
	}
	return images, nil
}

func (f *fakeBackbone) request(prompt string) (webui.GenerationRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[prompt]
	return req, ok
}

type fakeImageStore struct {
	uploaded map[string][]byte
	deleted  []string
	err      error
}

func (f *fakeImageStore) UploadSavedImage(userID int64, data []byte, contentType string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	path := fmt.Sprintf("users/%d/saved/fixed.png", userID)
	f.uploaded[path] = data
	return path, "https://cdn.example.com/" + path, nil
}

func (f *fakeImageStore) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

type unreachable struct{}

func (unreachable) Ping(ctx context.Context) error { return errors.New("connection refused") }

type testEnv struct {
	router    *gin.Engine
	db        *database.DatabaseClient
	captioner *fakeCaptioner
	searcher  *fakeSearcher
	backbone  *fakeBackbone
	images    *fakeImageStore
	folder    string
	logs      *test.Hook
}

type envOption func(*handlers.Dependencies)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	db, err := database.NewDatabaseClient(database.DriverSQLite, filepath.Join(t.TempDir(), "art.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(log))

	env := &testEnv{
		db:        db,
		captioner: &fakeCaptioner{caption: "a cat on a sofa"},
		searcher:  &fakeSearcher{},
		backbone:  &fakeBackbone{requests: map[string]webui.GenerationRequest{}, outputs: 2},
		images:    &fakeImageStore{uploaded: map[string][]byte{}},
		folder:    filepath.Join(t.TempDir(), "generations"),
		logs:      hook,
	}

	generator, err := services.NewGenerationService(env.backbone, env.folder, log)
	require.NoError(t, err)

	deps := handlers.Dependencies{
		Config: &config.Config{
			JWTSecret:          testSecret,
			TokenTTL:           time.Hour,
			MaxUploadMB:        8,
			CORSAllowedOrigins: []string{"*"},
		},
		Log:       log,
		Store:     db,
		Database:  db,
		Captioner: env.captioner,
		Searcher:  env.searcher,
		Generator: generator,
		Images:    env.images,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	env.router = handlers.NewRouter(deps)
	return env
}

func (e *testEnv) doJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// formFile is one multipart file part.
type formFile struct {
	field string
	data  []byte
}

func (e *testEnv) doMultipart(path string, fields map[string]string, files []formFile) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	for _, f := range files {
		part, _ := writer.CreateFormFile(f.field, f.field+".png")
		part.Write(f.data)
	}
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func pngOfSize(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
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

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func httptestRecorder(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) *bytes.Buffer {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(v)
	return &buf
}
