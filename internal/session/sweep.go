package session

// sweep.go implements TTL-based expiry for both registries.
//
// The sweep runs on a fixed ticker, concurrently with request handling. Its
// eviction decision is made against the last-activity time visible when the
// tick fires; a session refreshed after that decision may still be evicted.
// That eventual consistency is acceptable: the TTLs are hours and the
// sweep interval minutes.
//
// Disk deletion failures are logged but never block removal of the registry
// entry: a leaked file is preferable to unbounded registry growth.

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// StartSweeper runs the expiry sweep every interval until ctx is cancelled.
// Call it in its own goroutine.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("session sweeper started",
		"interval", interval,
		"file_ttl", m.cfg.FileTTL,
		"upload_ttl", m.cfg.UploadTTL,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

// sweep evicts every session idle past its TTL as of now.
func (m *Manager) sweep(now time.Time) {
	type doomedFile struct {
		id   string
		path string
	}
	type doomedUpload struct {
		id       string
		chunkDir string
	}

	var files []doomedFile
	var uploads []doomedUpload

	m.mu.Lock()
	for id, fs := range m.files {
		if now.Sub(fs.lastActivity) > m.cfg.FileTTL {
			files = append(files, doomedFile{id: id, path: fs.Path})
			delete(m.files, id)
		}
	}
	for id, up := range m.uploads {
		if now.Sub(up.lastActivity) > m.cfg.UploadTTL {
			uploads = append(uploads, doomedUpload{id: id, chunkDir: up.chunkDir})
			delete(m.uploads, id)
		}
	}
	m.mu.Unlock()

	for _, f := range files {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to delete expired session file", "session_id", f.id, "path", f.path, "error", err)
		} else {
			slog.Info("expired file session removed", "session_id", f.id)
		}
	}
	for _, u := range uploads {
		if err := os.RemoveAll(u.chunkDir); err != nil {
			slog.Warn("failed to delete expired chunk dir", "upload_id", u.id, "error", err)
		} else {
			slog.Info("expired chunked upload removed", "upload_id", u.id)
		}
	}
}
