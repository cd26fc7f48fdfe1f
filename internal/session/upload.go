package session

// upload.go implements the chunked-upload state machine:
//
//	INITIATED -> RECEIVING -> ASSEMBLING -> COMPLETED (replaced by a file session)
//	any non-terminal state -> ABORTED / EXPIRED
//
// Chunk writes are idempotent (an existing <index>.part is never rewritten)
// so client retries and out-of-order submission are safe without locking at
// the chunk level. Ordering is only enforced at assembly time.

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrIncompleteUpload is the match target for IncompleteUploadError.
var ErrIncompleteUpload = errors.New("upload incomplete")

// ErrTotalChunksUnknown is returned by CompleteUpload when no chunk ever
// declared the total count.
var ErrTotalChunksUnknown = errors.New("total chunk count was never declared")

// IncompleteUploadError reports the lowest missing chunk index.
type IncompleteUploadError struct {
	MissingIndex int
	TotalChunks  int
}

func (e *IncompleteUploadError) Error() string {
	return fmt.Sprintf("upload incomplete: missing chunk %d of %d", e.MissingIndex, e.TotalChunks)
}

func (e *IncompleteUploadError) Unwrap() error { return ErrIncompleteUpload }

// UploadStatus is a snapshot used by clients to resume after interruption.
type UploadStatus struct {
	TotalChunks     int   `json:"totalChunks"`
	Received        int   `json:"received"`
	ReceivedIndices []int `json:"receivedIndices"`
}

// InitUpload registers a new chunked upload and creates its chunk directory.
// totalChunks and size are advisory at this point; totalChunks may instead be
// declared by the first accepted chunk. Fails only on a malformed filename.
func (m *Manager) InitUpload(filename string, size int64, totalChunks int) (string, error) {
	safe, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	chunkDir := filepath.Join(m.chunksDir, id)
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return "", fmt.Errorf("create chunk dir: %w", err)
	}

	up := &uploadSession{
		id:           id,
		filename:     safe,
		displayName:  filename,
		declaredSize: size,
		totalChunks:  totalChunks,
		chunkDir:     chunkDir,
		lastActivity: time.Now(),
	}

	m.mu.Lock()
	m.uploads[id] = up
	m.mu.Unlock()

	return id, nil
}

// AcceptChunk stores one chunk. If totalChunks was not declared at init, the
// value from this call is adopted; once set it is immutable. The write is
// idempotent: an already-present chunk index succeeds without rewriting.
func (m *Manager) AcceptChunk(uploadID string, index, totalChunks int, chunk io.Reader) error {
	if index < 0 {
		return fmt.Errorf("chunk index must be >= 0, got %d", index)
	}

	m.mu.Lock()
	up, ok := m.uploads[uploadID]
	if ok {
		up.lastActivity = time.Now()
		if up.totalChunks == 0 && totalChunks > 0 {
			up.totalChunks = totalChunks
		}
	}
	m.mu.Unlock()

	if !ok {
		return ErrUploadNotFound
	}

	path := chunkPath(up.chunkDir, index)
	if _, err := os.Stat(path); err == nil {
		return nil // retry of a chunk we already have
	}

	// Write via a temp name so a half-written chunk never counts as received.
	tmp := path + ".tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create chunk file: %w", err)
	}
	if _, err := io.Copy(dst, chunk); err != nil {
		dst.Close()
		os.Remove(tmp)
		return fmt.Errorf("write chunk: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close chunk: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize chunk: %w", err)
	}

	return nil
}

// UploadStatus reports which chunks have arrived for an upload.
func (m *Manager) UploadStatus(uploadID string) (UploadStatus, error) {
	m.mu.RLock()
	up, ok := m.uploads[uploadID]
	m.mu.RUnlock()

	if !ok {
		return UploadStatus{}, ErrUploadNotFound
	}

	indices, err := receivedIndices(up.chunkDir)
	if err != nil {
		return UploadStatus{}, err
	}

	return UploadStatus{
		TotalChunks:     up.totalChunks,
		Received:        len(indices),
		ReceivedIndices: indices,
	}, nil
}

// CompleteUpload assembles all chunks, in ascending index order, into one
// durable file and replaces the upload session with a file session.
//
// The upload is claimed (removed from the registry) under the lock before
// any disk work, so a duplicate complete request gets ErrUploadNotFound
// instead of racing the assembly and truncating the winner's output. Every
// failure path restores the claim: if a chunk is missing the call fails
// with an IncompleteUploadError naming the lowest missing index and the
// upload stays alive so the client can fill the gap. If assembly itself
// fails partway, the partial output is removed and nothing is registered.
func (m *Manager) CompleteUpload(uploadID string) (*FileSession, error) {
	m.mu.Lock()
	up, ok := m.uploads[uploadID]
	if ok {
		up.lastActivity = time.Now()
		delete(m.uploads, uploadID)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrUploadNotFound
	}

	restore := func() {
		m.mu.Lock()
		m.uploads[uploadID] = up
		m.mu.Unlock()
	}

	if up.totalChunks <= 0 {
		restore()
		return nil, ErrTotalChunksUnknown
	}

	indices, err := receivedIndices(up.chunkDir)
	if err != nil {
		restore()
		return nil, err
	}
	have := make(map[int]bool, len(indices))
	for _, idx := range indices {
		have[idx] = true
	}
	for i := 0; i < up.totalChunks; i++ {
		if !have[i] {
			restore()
			return nil, &IncompleteUploadError{MissingIndex: i, TotalChunks: up.totalChunks}
		}
	}

	outPath := filepath.Join(m.cfg.Dir, uploadID+"-"+up.filename)
	if err := assemble(outPath, up.chunkDir, up.totalChunks); err != nil {
		os.Remove(outPath)
		restore()
		return nil, err
	}

	if err := os.RemoveAll(up.chunkDir); err != nil {
		// The assembled file is good; a leaked chunk dir only costs disk.
		slog.Warn("failed to remove chunk dir after assembly", "upload_id", uploadID, "error", err)
	}

	return m.registerFile(outPath, up.displayName), nil
}

// AbortUpload removes an upload's registry entry and chunk directory.
// Idempotent: aborting an unknown or already-gone upload is a no-op.
func (m *Manager) AbortUpload(uploadID string) {
	m.mu.Lock()
	up, ok := m.uploads[uploadID]
	delete(m.uploads, uploadID)
	m.mu.Unlock()

	if ok {
		os.RemoveAll(up.chunkDir)
	}
}

// assemble concatenates chunks 0..total-1 into outPath.
func assemble(outPath, chunkDir string, total int) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create assembled file: %w", err)
	}
	defer out.Close()

	for i := 0; i < total; i++ {
		src, err := os.Open(chunkPath(chunkDir, i))
		if err != nil {
			return fmt.Errorf("open chunk %d: %w", i, err)
		}
		_, err = io.Copy(out, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("append chunk %d: %w", i, err)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close assembled file: %w", err)
	}
	return nil
}

// receivedIndices scans a chunk directory and returns the sorted indices of
// fully written chunks.
func receivedIndices(chunkDir string) ([]int, error) {
	entries, err := os.ReadDir(chunkDir)
	if err != nil {
		return nil, fmt.Errorf("read chunk dir: %w", err)
	}

	indices := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".part") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(name, ".part"))
		if err != nil || idx < 0 {
			continue
		}
		indices = append(indices, idx)
	}

	sort.Ints(indices)
	return indices, nil
}

func chunkPath(chunkDir string, index int) string {
	return filepath.Join(chunkDir, strconv.Itoa(index)+".part")
}
