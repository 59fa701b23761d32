package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/TheSylus/Hmmm/internal/store"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ListFilter{
		Type:   domain.ItemType(q.Get("type")),
		Rating: domain.RatingFilter(q.Get("rating")),
		Search: q.Get("q"),
	}

	items, err := s.service.ListItems(r.Context(), filter)
	if err != nil {
		s.logger.Error("list items failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var draft domain.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, pending, err := s.service.CreateItem(r.Context(), draft)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			s.writeValidationError(w, verr)
			return
		}
		s.logger.Error("create item failed", "name", draft.Name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	if pending != nil {
		token := uuid.NewString()
		s.pending.Store(token, pending)
		s.writeJSON(w, http.StatusConflict, map[string]any{
			"token":      token,
			"duplicates": pending.Duplicates,
		})
		return
	}

	s.writeJSON(w, http.StatusCreated, item)
}

// handleConfirmCreate resolves a create suspended on duplicates. The body
// carries the token from the 409 response and whether to commit anyway.
func (s *Server) handleConfirmCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token   string `json:"token"`
		Confirm bool   `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	val, ok := s.pending.LoadAndDelete(body.Token)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown confirmation token")
		return
	}
	pending := val.(*store.PendingCreate)

	if !body.Confirm {
		pending.Cancel()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	item, err := s.service.ConfirmCreate(r.Context(), pending)
	if err != nil {
		s.logger.Error("confirm create failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("get item failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var draft domain.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.service.UpdateItem(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		var verr *store.ValidationError
		switch {
		case errors.As(err, &verr):
			s.writeValidationError(w, verr)
		case errors.Is(err, store.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "item not found")
		default:
			s.logger.Error("update item failed", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to update item")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
		s.logger.Error("delete item failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShareItem(w http.ResponseWriter, r *http.Request) {
	code, err := s.service.ShareItem(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("share item failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to share item")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (s *Server) handleImportShare(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		s.writeError(w, http.StatusBadRequest, "code required")
		return
	}

	draft, err := s.service.ImportShare(code)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid share code")
		return
	}
	s.writeJSON(w, http.StatusOK, draft)
}
