// Package session tracks the server's two kinds of short-lived state:
// in-flight chunked uploads and completed-file sessions.
//
// A Manager owns both registries plus the on-disk layout beneath them:
//
//	<dir>/<uploadID>-<name>      assembled or whole-shot upload files
//	<dir>/chunks/<uploadID>/     per-upload chunk directories, <index>.part files
//
// Registry entries and their disk resources are created and destroyed
// together. Expiry is TTL-based and enforced by a periodic sweep; see
// sweep.go. All exported methods are safe for concurrent use.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a file session ID is unknown, expired,
// or its backing file has disappeared.
var ErrSessionNotFound = errors.New("session not found or expired")

// ErrUploadNotFound is returned when a chunked-upload ID is unknown or expired.
var ErrUploadNotFound = errors.New("upload session not found or expired")

// ErrInvalidFilename is returned by InitUpload and SaveFile when the target
// filename sanitizes to nothing usable.
var ErrInvalidFilename = errors.New("invalid filename")

// MaxFilenameLength bounds sanitized filenames, preserving the extension.
const MaxFilenameLength = 100

// FileSession associates an opaque token with a durable uploaded file.
type FileSession struct {
	ID           string
	Path         string
	Filename     string // original display name
	lastActivity time.Time
}

// uploadSession tracks one in-flight chunked upload.
type uploadSession struct {
	id           string
	filename     string // sanitized target name
	displayName  string // name as declared by the client
	declaredSize int64
	totalChunks  int // 0 until declared at init or adopted from the first chunk
	chunkDir     string
	lastActivity time.Time
}

// Config holds the Manager's directory layout and TTLs.
type Config struct {
	// Dir is where assembled files land. Chunks live under Dir/chunks.
	Dir string

	// FileTTL is the idle lifetime of a completed-file session.
	FileTTL time.Duration

	// UploadTTL is the idle lifetime of an in-progress chunked upload.
	UploadTTL time.Duration
}

// Manager owns the upload registry, the file-session cache, and their
// on-disk resources.
type Manager struct {
	cfg       Config
	chunksDir string

	mu      sync.RWMutex
	uploads map[string]*uploadSession
	files   map[string]*FileSession
}

// NewManager creates the upload directories and returns an empty Manager.
func NewManager(cfg Config) (*Manager, error) {
	chunksDir := filepath.Join(cfg.Dir, "chunks")
	if err := os.MkdirAll(chunksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dirs: %w", err)
	}
	return &Manager{
		cfg:       cfg,
		chunksDir: chunksDir,
		uploads:   make(map[string]*uploadSession),
		files:     make(map[string]*FileSession),
	}, nil
}

// SaveFile streams r to a new durable file in the uploads directory and
// registers a file session for it. Used by whole-file uploads and remote
// fetches; chunked uploads reach the same place via CompleteUpload.
func (m *Manager) SaveFile(filename string, r io.Reader) (*FileSession, error) {
	safe, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	path := filepath.Join(m.cfg.Dir, token+"-"+safe)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close upload file: %w", err)
	}

	return m.registerFile(path, filename), nil
}

// registerFile creates a file session pointing at an existing durable file.
func (m *Manager) registerFile(path, displayName string) *FileSession {
	fs := &FileSession{
		ID:           uuid.NewString(),
		Path:         path,
		Filename:     displayName,
		lastActivity: time.Now(),
	}

	m.mu.Lock()
	m.files[fs.ID] = fs
	m.mu.Unlock()

	return fs
}

// ResolveFile looks up a file session and refreshes its activity timestamp.
// A session whose backing file no longer exists is purged and reported as
// not found, since it can never become usable again.
func (m *Manager) ResolveFile(sessionID string) (*FileSession, error) {
	m.mu.Lock()
	fs, ok := m.files[sessionID]
	if ok {
		fs.lastActivity = time.Now()
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	if _, err := os.Stat(fs.Path); err != nil {
		m.ClearFile(sessionID)
		return nil, ErrSessionNotFound
	}

	return fs, nil
}

// ClearFile removes a file session and deletes its backing file.
// Returns false if the session was not present. Deletion failures are
// ignored here; the sweep will not see the entry again either way.
func (m *Manager) ClearFile(sessionID string) bool {
	m.mu.Lock()
	fs, ok := m.files[sessionID]
	delete(m.files, sessionID)
	m.mu.Unlock()

	if !ok {
		return false
	}
	os.Remove(fs.Path)
	return true
}

// Counts reports the number of live file sessions and chunked uploads.
func (m *Manager) Counts() (files, uploads int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files), len(m.uploads)
}

// sanitizeFilename strips path-unsafe characters and bounds the length.
// Path separators and anything outside [A-Za-z0-9._-] become underscores;
// leading dots are dropped so a name can never be hidden or traverse up.
func sanitizeFilename(name string) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	safe := strings.TrimLeft(b.String(), ".")
	if safe == "" || strings.Trim(safe, "._-") == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	if len(safe) > MaxFilenameLength {
		ext := filepath.Ext(safe)
		if len(ext) >= MaxFilenameLength {
			ext = ""
		}
		safe = safe[:MaxFilenameLength-len(ext)] + ext
	}

	return safe, nil
}
