package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"gocatalog/internal/common"
	"gocatalog/internal/dbmongo"
)

// FileStore is the GridFS-backed storage the media endpoints use.
type FileStore interface {
	UploadFile(ctx context.Context, filename, mimeType string, content io.Reader) (*dbmongo.MediaFile, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// HTTPServer streams stored media at /media/{fileId}.
type HTTPServer struct {
	storage FileStore
	router  *mux.Router
}

func NewHTTPServer(storage FileStore) *HTTPServer {
	s := &HTTPServer{storage: storage}

	router := mux.NewRouter()
	router.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router = router

	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	fileReader, mediaFile, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrInvalidInput) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		logrus.WithField("file_id", fileID).WithError(err).Error("media download failed")
		http.Error(w, "File unavailable", http.StatusInternalServerError)
		return
	}
	defer fileReader.Close()

	w.Header().Set("Content-Type", contentType(mediaFile))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", mediaFile.Size))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, fileReader); err != nil {
		logrus.WithField("file_id", fileID).WithError(err).Warn("error streaming file")
	}
}

// contentType prefers the MIME type recorded at upload and falls back to the
// file extension.
func contentType(file *dbmongo.MediaFile) string {
	if file.MimeType != "" {
		return file.MimeType
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("media server is healthy"))
}
