package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Cleaner periodically deletes upload and output files older than MaxAge.
// Stored images are transient working copies; the operation log in SQLite is
// the durable record.
type Cleaner struct {
	Dirs     []string
	Interval time.Duration
	MaxAge   time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func (c *Cleaner) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.loop(ctx)
	slog.Info("cleanup scheduler started", "interval", c.Interval, "max_age", c.MaxAge)
}

func (c *Cleaner) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	slog.Info("cleanup scheduler stopped")
}

func (c *Cleaner) loop(ctx context.Context) {
	defer close(c.done)

	c.runOnce()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runOnce()
		}
	}
}

func (c *Cleaner) runOnce() {
	cutoff := time.Now().Add(-c.MaxAge)
	for _, dir := range c.Dirs {
		removed, err := pruneDir(dir, cutoff)
		if err != nil {
			slog.Error("cleanup: prune dir", "dir", dir, "error", err)
			continue
		}
		if removed > 0 {
			slog.Info("cleanup: removed aged files", "dir", dir, "count", removed)
		}
	}
}

// pruneDir removes regular files under dir whose mtime predates cutoff.
// Subdirectories are left alone.
func pruneDir(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("cleanup: remove file", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
