package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"art-assistant-backend/internal/webui"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxPromptInName = 48

// Backbone produces PNG images for a generation request.
type Backbone interface {
	Generate(ctx context.Context, req webui.GenerationRequest) ([][]byte, error)
}

// GenerationService runs generations and owns the files they leave in the
// generation folder.
type GenerationService struct {
	backbone Backbone
	folder   string
	log      logrus.FieldLogger
	now      func() time.Time
	batchID  func() string
}

func NewGenerationService(backbone Backbone, folder string, log logrus.FieldLogger) (*GenerationService, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create generation folder: %w", err)
	}
	return &GenerationService{
		backbone: backbone,
		folder:   folder,
		log:      log,
		now:      time.Now,
		batchID:  newBatchID,
	}, nil
}

// newBatchID tells apart generations that share a timestamp and prompt.
func newBatchID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *GenerationService) Folder() string {
	return s.folder
}

// Generate runs req against the backbone and writes every output image to
// the generation folder. It returns the file names in output order. If any
// write fails, files already written for this call are removed.
func (s *GenerationService) Generate(ctx context.Context, req webui.GenerationRequest) ([]string, error) {
	images, err := s.backbone.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	now, batch := s.now(), s.batchID()
	names := make([]string, 0, len(images))
	for i, data := range images {
		name := FileName(now, batch, req.Prompt, i)
		if err := writeNew(filepath.Join(s.folder, name), data); err != nil {
			s.Discard(names)
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		names = append(names, name)
	}

	s.log.WithFields(logrus.Fields{
		"images":  len(names),
		"units":   len(req.Units),
		"inpaint": req.IsInpaint(),
	}).Info("generation completed")

	return names, nil
}

// Discard removes generated files. Failures are logged and otherwise ignored.
func (s *GenerationService) Discard(names []string) {
	for _, name := range names {
		path := filepath.Join(s.folder, filepath.Base(name))
		if err := os.Remove(path); err != nil {
			s.log.WithError(err).WithField("file", name).Warn("failed to remove generated file")
		}
	}
}

// writeNew writes data to path, failing if the file already exists so one
// generation never overwrites another's output.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// FileName builds "<YYYYmmdd_HHMMSS_micro>_<batch>_<prompt>_<idx>.png".
func FileName(now time.Time, batch, prompt string, idx int) string {
	stamp := now.Format("20060102_150405") + fmt.Sprintf("_%06d", now.Nanosecond()/1000)
	return fmt.Sprintf("%s_%s_%s_%d.png", stamp, batch, SanitizePrompt(prompt), idx)
}

// SanitizePrompt reduces a prompt to a short, filesystem safe token.
func SanitizePrompt(prompt string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(prompt) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
		if b.Len() >= maxPromptInName {
			break
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "image"
	}
	return name
}
