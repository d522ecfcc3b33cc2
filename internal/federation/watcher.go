package federation

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

const pollInterval = time.Second

// Watcher polls a schema file's contents on a fixed interval and installs a
// freshly-loaded Bundle through swap whenever the contents change and the
// new content parses and validates. A reload failure logs and leaves the
// previously installed schema in place; the watcher never tears down the
// server on a bad reload.
type Watcher struct {
	path   string
	logger *zap.Logger
	swap   func(*Bundle)
	last   string
}

// NewWatcher creates a watcher for path. initial is the content already
// loaded at startup, used to avoid a spurious reload on the first tick.
func NewWatcher(path string, initial string, swap func(*Bundle), logger *zap.Logger) *Watcher {
	return &Watcher{path: path, logger: logger, swap: swap, last: initial}
}

// Run blocks, polling until ctx is canceled. Its lifetime is meant to equal
// the server state's lifetime: the caller cancels ctx on shutdown.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	content, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("schema watcher could not read file", zap.String("path", w.path), zap.Error(err))
		return
	}
	current := string(content)
	if current == w.last {
		return
	}

	bundle, err := Load(current, w.logger)
	if err != nil {
		w.logger.Error("schema hot-reload failed, keeping previous schema",
			zap.String("path", w.path), zap.Error(err))
		// Do not update w.last: a transiently broken write (e.g. a partial
		// save) should be retried on the next tick rather than permanently
		// adopted as the new baseline.
		return
	}

	w.last = current
	w.swap(bundle)
	w.logger.Info("schema hot-reloaded", zap.String("path", w.path))
}
