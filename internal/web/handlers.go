package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rmachado/welldata/internal/core"
	"github.com/rmachado/welldata/internal/logging"
	"github.com/rmachado/welldata/internal/session"
)

// maxJSONBody bounds JSON request bodies. File payloads travel as
// multipart, never JSON, so this can stay small.
const maxJSONBody = 1 << 20

// handleHealth reports service liveness plus registry and limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	files, uploads := s.service.SessionCounts()

	writeJSON(w, map[string]any{
		"status":             "ok",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"activeSessions":     files,
		"activeChunkUploads": uploads,
		"chunkSizeBytes":     s.service.ChunkSize(),
		"parser":             s.service.Limiter().Status(),
	})
}

// handleUploadInit starts a chunked upload session.
func (s *Server) handleUploadInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename    string `json:"filename"`
		Size        int64  `json:"size"`
		TotalChunks int    `json:"totalChunks"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}
	if req.Filename == "" {
		s.badRequest(w, r, "filename is required")
		return
	}

	uploadID, err := s.service.InitChunkedUpload(req.Filename, req.Size, req.TotalChunks)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("chunked upload initiated",
		"upload_id", uploadID,
		"filename", req.Filename,
		"declared_size", req.Size,
		"declared_total_chunks", req.TotalChunks,
	)

	writeJSON(w, map[string]any{
		"uploadId":  uploadID,
		"chunkSize": s.service.ChunkSize(),
	})
}

// handleUploadStatus reports received chunk indices for client-side resume.
// Unknown upload IDs are a 404: the client diffs against what it sent, and
// "gone" must be distinguishable from "empty".
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	uploadID := r.URL.Query().Get("uploadId")
	if uploadID == "" {
		s.badRequest(w, r, "uploadId is required")
		return
	}

	status, err := s.service.ChunkedUploadStatus(uploadID)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, session.ErrUploadNotFound) {
			code = http.StatusNotFound
		}
		s.respondError(w, r, err, code)
		return
	}

	writeJSON(w, status)
}

// handleUploadChunk accepts one chunk as multipart form data with fields
// uploadId, index, totalChunks and a binary part named chunk.
func (s *Server) handleUploadChunk(w http.ResponseWriter, r *http.Request) {
	// Chunks plus form overhead; anything bigger is a protocol violation.
	r.Body = http.MaxBytesReader(w, r.Body, s.service.ChunkSize()*2)

	if err := r.ParseMultipartForm(s.service.ChunkSize()); err != nil {
		s.badRequest(w, r, "invalid multipart form or chunk too large")
		return
	}

	uploadID := r.FormValue("uploadId")
	if uploadID == "" {
		s.badRequest(w, r, "uploadId is required")
		return
	}

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil || index < 0 {
		s.badRequest(w, r, "index must be a non-negative integer")
		return
	}

	totalChunks, err := strconv.Atoi(r.FormValue("totalChunks"))
	if err != nil || totalChunks <= 0 {
		s.badRequest(w, r, "totalChunks must be a positive integer")
		return
	}

	chunk, _, err := r.FormFile("chunk")
	if err != nil {
		s.badRequest(w, r, "chunk file part is required")
		return
	}
	defer chunk.Close()

	if err := s.service.AcceptChunk(uploadID, index, totalChunks, chunk); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

// handleUploadComplete assembles the chunks and lists the tables inside.
func (s *Server) handleUploadComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UploadID string `json:"uploadId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}
	if req.UploadID == "" {
		s.badRequest(w, r, "uploadId is required")
		return
	}

	result, err := s.service.CompleteChunkedUpload(req.UploadID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("chunked upload completed",
		"upload_id", req.UploadID,
		"session_id", result.SessionID,
		"tables", len(result.Tables),
	)

	writeJSON(w, result)
}

// handleUploadAbort discards an upload. Always succeeds.
func (s *Server) handleUploadAbort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UploadID string `json:"uploadId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}

	s.service.AbortChunkedUpload(req.UploadID)
	writeJSON(w, map[string]bool{"success": true})
}

// handleListTables accepts a whole database file in one request and returns
// its tables plus a session for follow-up parsing.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.service.MaxFileSize())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.badRequest(w, r, "file too large or invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, r, "file part is required")
		return
	}
	defer file.Close()

	result, err := s.service.ImportFile(header.Filename, file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("file imported",
		"session_id", result.SessionID,
		"filename", header.Filename,
		"tables", len(result.Tables),
	)

	writeJSON(w, result)
}

// handleListTablesFromURL downloads a remote file and imports it.
func (s *Server) handleListTablesFromURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileURL  string `json:"fileUrl"`
		Filename string `json:"filename"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}
	if req.FileURL == "" {
		s.badRequest(w, r, "fileUrl is required")
		return
	}

	result, err := s.service.ImportFromURL(r.Context(), req.FileURL, req.Filename)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("remote file imported",
		"session_id", result.SessionID,
		"url", req.FileURL,
		"tables", len(result.Tables),
	)

	writeJSON(w, result)
}

// handleParseTableBatch returns one validated page of a table.
func (s *Server) handleParseTableBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		TableName string `json:"tableName"`
		Offset    int    `json:"offset"`
		Limit     int    `json:"limit"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}
	if req.SessionID == "" || req.TableName == "" {
		s.badRequest(w, r, "sessionId and tableName are required")
		return
	}

	page, err := s.service.ParseTableBatch(r.Context(), req.SessionID, req.TableName, req.Offset, req.Limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, page)
}

// handleParseTable validates a whole table in one pass. The file comes
// either from an existing session (JSON body) or attached to this request
// (multipart form with file + tableName).
func (s *Server) handleParseTable(w http.ResponseWriter, r *http.Request) {
	var (
		parse *core.TableParse
		err   error
	)

	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, s.service.MaxFileSize())

		if ferr := r.ParseMultipartForm(32 << 20); ferr != nil {
			s.badRequest(w, r, "file too large or invalid multipart form")
			return
		}

		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			s.badRequest(w, r, "file part is required")
			return
		}
		defer file.Close()

		tableName := r.FormValue("tableName")
		if tableName == "" {
			s.badRequest(w, r, "tableName is required")
			return
		}
		parse, err = s.service.ParseFileTable(r.Context(), file, tableName)
	} else {
		var req struct {
			SessionID string `json:"sessionId"`
			TableName string `json:"tableName"`
		}
		if derr := decodeJSON(w, r, &req); derr != nil {
			s.badRequest(w, r, derr.Error())
			return
		}
		if req.SessionID == "" || req.TableName == "" {
			s.badRequest(w, r, "sessionId and tableName are required")
			return
		}
		parse, err = s.service.ParseSessionTable(r.Context(), req.SessionID, req.TableName)
	}

	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, map[string]any{
		"parseResult": map[string]any{
			"success":   parse.Success,
			"failed":    parse.Failed,
			"totalRows": parse.TotalRows,
		},
		"dataType": parse.DataType,
	})
}

// handleClearSession removes a file session and its backing file.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}

	cleared := s.service.ClearSession(req.SessionID)
	writeJSON(w, map[string]bool{"success": cleared})
}

// badRequest writes a 400 envelope for request-shape errors that never
// reached the service layer.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	logging.FromContext(r.Context()).Warn("bad request", "path", r.URL.Path, "error", msg)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: msg})
}

// decodeJSON decodes a JSON request body with a size cap.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
