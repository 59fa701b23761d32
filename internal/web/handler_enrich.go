package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/TheSylus/Hmmm/internal/enrich"
)

// handleEnrich runs the enrichment pipeline over a multipart form. Parts:
//
//	draft    optional JSON-encoded draft to seed the run
//	touched  optional comma-separated field names the user edited by hand
//	barcode  optional scanned barcode
//	lang     optional translation target language
//	image    optional photo to analyze
//
// The response is the merged draft plus warnings from any failed stage.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	req := enrich.Request{
		Barcode:    strings.TrimSpace(r.FormValue("barcode")),
		TargetLang: strings.TrimSpace(r.FormValue("lang")),
	}

	if raw := r.FormValue("draft"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Draft); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid draft")
			return
		}
	}
	req.Touched = parseTouched(r.FormValue("touched"))

	if file, _, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(file)
		closeWithLog(file, "enrich image", s.logger)
		if readErr != nil {
			s.logger.Error("read enrich image failed", "error", readErr)
			s.writeError(w, http.StatusInternalServerError, "failed to read file")
			return
		}
		mimeType, ok := allowedImageMIME(data)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unsupported image format")
			return
		}
		req.Image = data
		req.ImageMIME = mimeType
	}

	result := s.service.EnrichDraft(r.Context(), req, nil)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"draft":       result.Draft,
		"boundingBox": result.BoundingBox,
		"warnings":    result.Warnings,
	})
}

func parseTouched(raw string) domain.FieldSet {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	set := domain.NewFieldSet()
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			set.Add(domain.Field(name))
		}
	}
	return set
}
