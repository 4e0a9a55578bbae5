package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically deletes generation outputs that outlived their
// response, e.g. after a crash between write and cleanup.
type Sweeper struct {
	folder string
	maxAge time.Duration
	log    logrus.FieldLogger
	now    func() time.Time
	cron   *cron.Cron
}

func NewSweeper(folder, schedule string, maxAge time.Duration, log logrus.FieldLogger) (*Sweeper, error) {
	s := &Sweeper{
		folder: folder,
		maxAge: maxAge,
		log:    log,
		now:    time.Now,
		cron:   cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once a running
// sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep removes regular files older than maxAge and returns how many were removed.
func (s *Sweeper) Sweep() int {
	entries, err := os.ReadDir(s.folder)
	if err != nil {
		s.log.WithError(err).Warn("failed to read generation folder")
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.folder, entry.Name())
		if err := os.Remove(path); err != nil {
			s.log.WithError(err).WithField("file", entry.Name()).Warn("failed to sweep generated file")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.WithField("removed", removed).Info("swept stale generated files")
	}
	return removed
}
