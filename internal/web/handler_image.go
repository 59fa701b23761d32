package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/TheSylus/Hmmm/internal/store"
)

const maxImageSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readUploadedImage extracts and sniffs the "image" part of a multipart form.
func (s *Server) readUploadedImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to parse form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "image file required")
		return nil, "", false
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read file")
		return nil, "", false
	}

	mimeType, ok := allowedImageMIME(data)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unsupported image format")
		return nil, "", false
	}
	return data, mimeType, true
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	data, mimeType, ok := s.readUploadedImage(w, r)
	if !ok {
		return
	}

	item, err := s.service.AttachImage(r.Context(), id, mimeType, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("attach image failed", "item_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	reader, mimeType, err := s.service.GetImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("get image failed", "item_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write image failed", "item_id", id, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
