package media

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"gocatalog/internal/common"
)

const maxUploadBytes = 50 << 20

// UploadHandler accepts a single multipart "file" and stores it.
type UploadHandler struct {
	storage  FileStore
	resolver *Resolver
}

func NewUploadHandler(storage FileStore, resolver *Resolver) *UploadHandler {
	return &UploadHandler{storage: storage, resolver: resolver}
}

func (h *UploadHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/media", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/media/{fileId}", h.Delete).Methods(http.MethodDelete)
}

type uploadResult struct {
	Path      string `json:"path"`
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: expected a multipart upload up to 50MB", common.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: file is required", common.ErrInvalidInput))
		return
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		sniff, _ := reader.Peek(512)
		mimeType = http.DetectContentType(sniff)
	}

	stored, err := h.storage.UploadFile(r.Context(), filepath.Base(header.Filename), mimeType, reader)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}

	common.WriteJSON(w, http.StatusCreated, common.Envelope{Data: uploadResult{
		Path:      stored.ID,
		URL:       h.resolver.PublicURL(stored.ID),
		MediaType: stored.MediaType.String(),
		Size:      stored.Size,
	}})
}

// Delete removes a stored file. A file that is already gone counts as deleted.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.storage.DeleteFile(r.Context(), mux.Vars(r)["fileId"])
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: map[string]bool{"deleted": true}})
}
