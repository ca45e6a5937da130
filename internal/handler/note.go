package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diarynotes/diary-go/internal/middleware"
	"github.com/diarynotes/diary-go/internal/model"
	"github.com/diarynotes/diary-go/internal/service"
	"github.com/go-chi/chi/v5"
)

// NoteHandler handles HTTP requests for diary notes of a medical profile.
type NoteHandler struct {
	service *service.NoteService
	auth    *service.AuthService
}

// NewNoteHandler creates a new NoteHandler. Accounts are looked up through auth.
func NewNoteHandler(svc *service.NoteService, auth *service.AuthService) *NoteHandler {
	return &NoteHandler{service: svc, auth: auth}
}

// profileID returns the profile in the path once it matches the authenticated token
// and still belongs to an account.
func (h *NoteHandler) profileID(w http.ResponseWriter, r *http.Request) (string, bool) {
	tokenProfile, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}

	profileID := chi.URLParam(r, "profileId")
	if profileID != tokenProfile {
		writeError(w, http.StatusForbidden, "access to this medical profile is not allowed")
		return "", false
	}

	if _, err := h.auth.GetUser(r.Context(), profileID); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return "", false
		}
		h.internalError(w, "look up account", err)
		return "", false
	}
	return profileID, true
}

func noteID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "noteId")
	if id == "" || len(id) > 36 {
		writeError(w, http.StatusNotFound, service.ErrNoteNotFound.Error())
		return "", false
	}
	return id, true
}

// HandleList handles GET /v1/medical-profiles/{profileId}/notes requests.
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "limit must be a number")
		return
	}
	start, err := queryInt(r, "start")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "start must be a number")
		return
	}

	data, err := h.service.List(r.Context(), profileID, limit, start)
	if err != nil {
		h.internalError(w, "list notes", err)
		return
	}

	writeData(w, http.StatusOK, data)
}

// HandleCreate handles POST /v1/medical-profiles/{profileId}/notes requests.
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}

	var req model.NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := h.service.Create(r.Context(), profileID, req)
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.internalError(w, "create note", err)
		return
	}

	writeData(w, http.StatusCreated, note)
}

// HandleGet handles GET /v1/medical-profiles/{profileId}/notes/{noteId} requests.
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.service.Get(r.Context(), profileID, id)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, "get note", err)
		return
	}

	writeData(w, http.StatusOK, note)
}

// HandleUpdate handles PUT /v1/medical-profiles/{profileId}/notes/{noteId} requests.
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req model.NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := h.service.Update(r.Context(), profileID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrNoteNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			h.internalError(w, "update note", err)
		}
		return
	}

	writeData(w, http.StatusOK, note)
}

// HandleDelete handles DELETE /v1/medical-profiles/{profileId}/notes/{noteId} requests.
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), profileID, id); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, "delete note", err)
		return
	}

	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Message: "Note deleted"})
}

func (h *NoteHandler) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
