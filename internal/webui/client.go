// Package webui talks to a Stable Diffusion WebUI instance with the
// ControlNet extension enabled.
package webui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

var ErrBusy = errors.New("webui: no generation slot available")

// StatusError is returned when the WebUI answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webui returned status %d, body: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	slots      *semaphore.Weighted
	backoffs   []time.Duration
}

// NewClient returns a client that allows at most maxConcurrent generations
// in flight against the WebUI at baseURL.
func NewClient(baseURL string, maxConcurrent int, timeout time.Duration) *Client {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		slots:    semaphore.NewWeighted(int64(maxConcurrent)),
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// Generate runs txt2img, or img2img inpainting when req carries both an
// inpaint image and mask. It returns at most Params.BatchSize PNG images.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) ([][]byte, error) {
	if req.Params.BatchSize <= 0 {
		req.Params = DefaultParams()
	}

	base, err := c.basePayload(req)
	if err != nil {
		return nil, err
	}

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBusy, err)
	}
	defer c.slots.Release(1)

	var result *generationResponse
	if req.IsInpaint() {
		payload := img2imgPayload{
			txt2imgPayload:    base,
			InitImages:        []string{base64.StdEncoding.EncodeToString(req.InpaintImage)},
			Mask:              base64.StdEncoding.EncodeToString(req.InpaintMask),
			DenoisingStrength: req.Params.DenoisingStrength,
			InpaintingFill:    1,
			InpaintFullRes:    false,
			ResizeMode:        resizeModeIndex(req.KeepAspectRatio),
		}
		result, err = c.post(ctx, "/sdapi/v1/img2img", payload)
	} else {
		result, err = c.post(ctx, "/sdapi/v1/txt2img", base)
	}
	if err != nil {
		return nil, err
	}

	// ControlNet appends its detected maps after the generated images.
	images := result.Images
	if len(images) > req.Params.BatchSize {
		images = images[:req.Params.BatchSize]
	}

	decoded := make([][]byte, 0, len(images))
	for i, img := range images {
		data, err := base64.StdEncoding.DecodeString(img)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %d: %w", i, err)
		}
		decoded = append(decoded, data)
	}
	return decoded, nil
}

// Ping checks that the WebUI API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sdapi/v1/sd-models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) basePayload(req GenerationRequest) (txt2imgPayload, error) {
	args := make([]controlNetArg, 0, len(req.Units))
	for _, unit := range req.Units {
		model, err := ModelFor(unit.Module)
		if err != nil {
			return txt2imgPayload{}, err
		}
		weight := unit.Weight
		if weight <= 0 {
			weight = 1
		}
		args = append(args, controlNetArg{
			Enabled:      true,
			Image:        base64.StdEncoding.EncodeToString(unit.Image),
			Module:       unit.Module,
			Model:        model,
			Weight:       weight,
			ResizeMode:   resizeModeName(req.KeepAspectRatio),
			PixelPerfect: true,
			ControlMode:  "Balanced",
		})
	}

	p := req.Params
	payload := txt2imgPayload{
		Prompt:         req.Prompt,
		NegativePrompt: p.NegativePrompt,
		Steps:          p.Steps,
		CFGScale:       p.CFGScale,
		Width:          p.Width,
		Height:         p.Height,
		BatchSize:      p.BatchSize,
		SamplerName:    p.SamplerName,
	}
	if len(args) > 0 {
		payload.AlwaysOnScripts = map[string]alwaysOnScript{
			"controlnet": {Args: args},
		}
	}
	return payload, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*generationResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp *http.Response
	err = c.retryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result generationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Images) == 0 {
		return nil, fmt.Errorf("webui returned no images")
	}
	return &result, nil
}

// retryWithBackoff retries fn only while the WebUI cannot be dialled.
// Anything else, timeouts included, may have started a generation and is
// returned as is.
func (c *Client) retryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i <= len(c.backoffs); i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isDialError(lastErr) {
			return lastErr
		}
		if i == len(c.backoffs) {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-time.After(c.backoffs[i]):
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", len(c.backoffs)+1, lastErr)
}

// isDialError reports whether err happened before a connection existed,
// so the request body never reached the server.
func isDialError(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	return opErr.Op == "dial" && !opErr.Timeout()
}

func resizeModeName(keepAspectRatio bool) string {
	if keepAspectRatio {
		return "Resize and Fill"
	}
	return "Just Resize"
}

func resizeModeIndex(keepAspectRatio bool) int {
	if keepAspectRatio {
		return 2
	}
	return 0
}
