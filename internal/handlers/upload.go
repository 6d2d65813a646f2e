package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sweepos-backend/internal/ctxkeys"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/storage"
)

// UploadHandler manages client attachments (contracts, invoices, intake
// forms).
type UploadHandler struct {
	db        database.Service
	store     storage.Store
	uploadDir string
}

// NewUploadHandler creates a new UploadHandler. uploadDir is only used to
// serve local files; R2-backed stores serve from their public URL.
func NewUploadHandler(db database.Service, store storage.Store, uploadDir string) *UploadHandler {
	return &UploadHandler{db: db, store: store, uploadDir: uploadDir}
}

const maxUploadSize = 10 << 20 // 10 MB

var allowedUploadTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"text/csv":        ".csv",
}

// Upload handles POST /api/clients/{id}/attachments
// Accepts a multipart form with a "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	if !checkClientAccess(ctx, pool, clientID) {
		JSONError(w, http.StatusForbidden, "Access denied to this client")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		JSONError(w, http.StatusRequestEntityTooLarge, "File exceeds the 10 MB limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		JSONError(w, http.StatusBadRequest, "A 'file' form field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		JSONError(w, http.StatusUnsupportedMediaType, "Only PDF, JPEG, PNG, and CSV files are accepted")
		return
	}

	path := fmt.Sprintf("clients/%s/%s%s", clientID, uuid.NewString(), ext)

	info, err := h.store.Save(ctx, path, file, contentType)
	if err != nil {
		log.Printf("Error saving attachment: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}
	info.FileName = header.Filename

	_, err = pool.Exec(ctx, `
		INSERT INTO client_attachments (client_id, path, file_name, file_size, file_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, clientID, path, info.FileName, info.FileSize, info.FileType,
		nilIfEmptyStr(ctxkeys.GetUserID(r.Context())))
	if err != nil {
		log.Printf("Error recording attachment: %v", err)
		// Roll back the stored file so we never leak orphans
		if delErr := h.store.Delete(ctx, path); delErr != nil {
			log.Printf("Error cleaning up attachment %s: %v", path, delErr)
		}
		JSONError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	go logActivity(pool, ctxkeys.GetUserID(r.Context()), "uploaded_attachment", "client", clientID, map[string]interface{}{
		"file_name": info.FileName,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    info,
		"message": "File uploaded successfully",
	})
}

// ServeFile handles GET /uploads/*
// Serves locally stored attachments; path traversal is rejected.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if rel == "" || strings.Contains(rel, "..") {
		JSONError(w, http.StatusBadRequest, "Invalid file path")
		return
	}

	full := filepath.Join(h.uploadDir, filepath.Clean(rel))
	if _, err := os.Stat(full); err != nil {
		JSONError(w, http.StatusNotFound, "File not found")
		return
	}

	http.ServeFile(w, r, full)
}
