package core

// service.go orchestrates the upload lifecycle and the parsing pipeline:
// session manager in, table reader + validators out. Handlers talk to this
// type only; they never touch the reader or the registries directly.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rmachado/welldata/internal/config"
	"github.com/rmachado/welldata/internal/reader"
	"github.com/rmachado/welldata/internal/session"
)

// downloadTimeout bounds remote-fetch imports independently of the
// requesting client's patience.
const downloadTimeout = 5 * time.Minute

// Service wires the session manager, the parse limiter, and the reader
// into the operations the HTTP surface exposes.
type Service struct {
	cfg      *config.Config
	sessions *session.Manager
	limiter  *ParseLimiter
	client   *http.Client
}

// ImportResult is the response of every operation that lands a file on
// disk: the new session plus the tables found inside the file.
type ImportResult struct {
	SessionID string            `json:"sessionId"`
	Tables    []TableDescriptor `json:"tables"`
}

// NewService creates a Service with a parse limiter sized from config.
func NewService(cfg *config.Config, sessions *session.Manager) *Service {
	return &Service{
		cfg:      cfg,
		sessions: sessions,
		limiter:  NewParseLimiter(cfg.Upload.MaxConcurrentParses, cfg.Upload.ParseWaitTime),
		client:   &http.Client{Timeout: downloadTimeout},
	}
}

// ChunkSize returns the chunk size clients should use.
func (s *Service) ChunkSize() int64 {
	return s.cfg.Upload.ChunkSize
}

// MaxFileSize returns the whole-file upload limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.cfg.Upload.MaxFileSize
}

// Limiter exposes the parse limiter for shutdown draining.
func (s *Service) Limiter() *ParseLimiter {
	return s.limiter
}

// SessionCounts reports live file sessions and chunked uploads for /health.
func (s *Service) SessionCounts() (files, uploads int) {
	return s.sessions.Counts()
}

// InitChunkedUpload starts a chunked upload session.
func (s *Service) InitChunkedUpload(filename string, size int64, totalChunks int) (string, error) {
	return s.sessions.InitUpload(filename, size, totalChunks)
}

// AcceptChunk stores one chunk of an in-flight upload.
func (s *Service) AcceptChunk(uploadID string, index, totalChunks int, chunk io.Reader) error {
	return s.sessions.AcceptChunk(uploadID, index, totalChunks, chunk)
}

// ChunkedUploadStatus reports received chunks for client-side resume.
func (s *Service) ChunkedUploadStatus(uploadID string) (session.UploadStatus, error) {
	return s.sessions.UploadStatus(uploadID)
}

// AbortChunkedUpload discards an upload and its chunks. Idempotent.
func (s *Service) AbortChunkedUpload(uploadID string) {
	s.sessions.AbortUpload(uploadID)
}

// CompleteChunkedUpload assembles the chunks into a durable file, registers
// a file session, and enumerates the tables inside. If the assembled file
// turns out not to be a readable database, the session is cleared since it
// could never be used.
func (s *Service) CompleteChunkedUpload(uploadID string) (*ImportResult, error) {
	fs, err := s.sessions.CompleteUpload(uploadID)
	if err != nil {
		return nil, err
	}
	return s.describe(fs)
}

// ImportFile stores a whole-shot upload and enumerates its tables.
func (s *Service) ImportFile(filename string, r io.Reader) (*ImportResult, error) {
	fs, err := s.sessions.SaveFile(filename, r)
	if err != nil {
		return nil, err
	}
	return s.describe(fs)
}

// ImportFromURL downloads a remote file, registers a session for it, and
// enumerates its tables. Non-2xx responses and transport failures are
// reported as download failures; the caller gets a 400, not a 500, since
// the URL is client input.
func (s *Service) ImportFromURL(ctx context.Context, fileURL, filename string) (*ImportResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailure, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: remote returned status %d", ErrDownloadFailure, resp.StatusCode)
	}

	if filename == "" {
		filename = filenameFromURL(fileURL)
	}

	// One byte past the limit is enough to tell "at the limit" from "over it".
	limited := io.LimitReader(resp.Body, s.cfg.Upload.MaxFileSize+1)
	fs, err := s.sessions.SaveFile(filename, limited)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(fs.Path); err == nil && info.Size() > s.cfg.Upload.MaxFileSize {
		s.sessions.ClearFile(fs.ID)
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrDownloadFailure, s.cfg.Upload.MaxFileSize)
	}

	return s.describe(fs)
}

// ParseTableBatch returns one validated page of a session's table.
func (s *Service) ParseTableBatch(ctx context.Context, sessionID, table string, offset, limit int) (*Page, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	fs, err := s.sessions.ResolveFile(sessionID)
	if err != nil {
		return nil, err
	}

	h, err := reader.Open(fs.Path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	return FetchPage(h, table, offset, limit)
}

// ParseSessionTable validates a whole table from an existing session.
func (s *Service) ParseSessionTable(ctx context.Context, sessionID, table string) (*TableParse, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	fs, err := s.sessions.ResolveFile(sessionID)
	if err != nil {
		return nil, err
	}

	h, err := reader.Open(fs.Path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	return ParseTable(h, table)
}

// ParseFileTable validates a whole table from a file sent with the request
// itself. The file is staged to a temp path for the duration of the parse
// and removed afterwards; no session is created.
func (s *Service) ParseFileTable(ctx context.Context, r io.Reader, table string) (*TableParse, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	tmp, err := os.CreateTemp(s.cfg.Upload.Dir, "parse-*.db")
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	h, err := reader.Open(tmpPath)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	return ParseTable(h, table)
}

// ClearSession removes a file session and deletes its backing file.
func (s *Service) ClearSession(sessionID string) bool {
	return s.sessions.ClearFile(sessionID)
}

// describe opens a freshly registered session's file and lists its tables.
// A file that cannot be opened invalidates the session on the spot.
func (s *Service) describe(fs *session.FileSession) (*ImportResult, error) {
	h, err := reader.Open(fs.Path)
	if err != nil {
		s.sessions.ClearFile(fs.ID)
		return nil, err
	}
	defer h.Close()

	tables, err := DescribeTables(h)
	if err != nil {
		s.sessions.ClearFile(fs.ID)
		return nil, err
	}

	return &ImportResult{SessionID: fs.ID, Tables: tables}, nil
}

// filenameFromURL derives a display filename from the URL path.
func filenameFromURL(fileURL string) string {
	if u, err := url.Parse(fileURL); err == nil {
		if name := filepath.Base(path.Clean(u.Path)); name != "." && name != "/" && name != "" {
			return name
		}
	}
	return "download.db"
}
