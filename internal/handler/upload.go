package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/storage"
)

// maxUploadBytes caps uploads at 5MB.
const maxUploadBytes = 5 << 20

// UploadHandler accepts image uploads and stores them in the object store.
type UploadHandler struct {
	store storage.ObjectStore
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(store storage.ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload handles POST /uploads: multipart form with a "file" field. Only
// image MIME types are accepted. The stored key is timestamp plus random,
// which makes collisions unlikely rather than impossible.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		RespondError(w, domain.ErrValidation("file exceeds the 5MB upload limit or the form is malformed"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondError(w, domain.ErrValidation("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		RespondError(w, domain.ErrValidation("only image uploads are accepted"))
		return
	}

	key := uploadKey(header.Filename)
	url, err := h.store.Put(r.Context(), key, contentType, file)
	if err != nil {
		RespondError(w, domain.ErrInternal("store upload", err))
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]string{
		"filename": key,
		"url":      url,
	})
}

// uploadKey builds a timestamp-plus-random object key, keeping the original
// extension when one exists.
func uploadKey(original string) string {
	ext := ""
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = strings.ToLower(original[i:])
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], ext)
}
