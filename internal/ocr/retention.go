package ocr

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/comunavision/backend/internal/logger"
)

// Sweeper deletes stored scan images once they age past the retention
// window. Images are transient input; nothing references them after the
// scan response is returned.
type Sweeper struct {
	StorageDir string
	Retention  time.Duration
	cron       *cron.Cron
	now        func() time.Time
}

func NewSweeper(storageDir string, retention time.Duration) *Sweeper {
	return &Sweeper{
		StorageDir: storageDir,
		Retention:  retention,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start schedules an hourly sweep. Call Stop on shutdown.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@hourly", func() {
		if n, err := s.Sweep(); err != nil {
			logger.Log().WithError(err).Warn("image retention sweep failed")
		} else if n > 0 {
			logger.WithFields(map[string]interface{}{"removed": n}).Info("swept expired scan images")
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep removes files older than the retention window and reports how many
// were deleted.
func (s *Sweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.StorageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := s.now().Add(-s.Retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.StorageDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
