package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/ihadi/timetrack-be/internal/auth"
	"github.com/ihadi/timetrack-be/internal/http/respond"
	"github.com/ihadi/timetrack-be/internal/middleware"
	"github.com/ihadi/timetrack-be/internal/models/dto"
	"github.com/ihadi/timetrack-be/internal/storage"
)

// EntryHandler owns the time-entry CRUD and reporting endpoints.
type EntryHandler struct {
	store  storage.EntryStore
	tokens *auth.TokenManager
}

// NewEntryHandler constructs the handler.
func NewEntryHandler(store storage.EntryStore, tokens *auth.TokenManager) *EntryHandler {
	return &EntryHandler{store: store, tokens: tokens}
}

// Register attaches the entry routes to the mux. Every route requires a
// valid token.
func (h *EntryHandler) Register(mux *http.ServeMux) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h.tokens, fn)
	}
	mux.Handle("POST /api/timeentries", authed(h.handleCreate))
	mux.Handle("GET /api/timeentries", authed(h.handleList))
	mux.Handle("GET /api/timeentries/filter", authed(h.handleFilter))
	mux.Handle("GET /api/timeentries/{id}", authed(h.handleGet))
	mux.Handle("PUT /api/timeentries/{id}", authed(h.handleUpdate))
	mux.Handle("DELETE /api/timeentries/{id}", authed(h.handleDelete))
}

func (h *EntryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	var req dto.TimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	entry, err := req.ToEntry()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	entry.UserID = uid

	created, err := h.store.CreateEntry(r.Context(), entry)
	if err != nil {
		log.Printf("create entry: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusCreated, "entry created successfully", created)
}

func (h *EntryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListEntries(r.Context())
	if err != nil {
		log.Printf("list entries: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, "entries retrieved successfully", entries)
}

func (h *EntryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := h.store.GetEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		log.Printf("get entry: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, "entry retrieved successfully", entry)
}

func (h *EntryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req dto.TimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	entry, err := req.ToEntry()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.store.GetEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		log.Printf("get entry: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	// only the owner may change an entry; answer 404 to hide existence
	if existing.UserID != uid {
		respond.Error(w, http.StatusNotFound, "entry not found")
		return
	}

	entry.ID = existing.ID
	entry.UserID = existing.UserID

	updated, err := h.store.UpdateEntry(r.Context(), entry)
	if err != nil {
		log.Printf("update entry: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, "entry updated successfully", updated)
}

func (h *EntryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	existing, err := h.store.GetEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		log.Printf("get entry: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing.UserID != uid {
		respond.Error(w, http.StatusNotFound, "entry not found")
		return
	}

	if err := h.store.DeleteEntry(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		log.Printf("delete entry: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, "entry deleted successfully", nil)
}

func (h *EntryHandler) handleFilter(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseEntryFilter(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := h.store.FilterEntries(r.Context(), filter)
	if err != nil {
		log.Printf("filter entries: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	results := make([]dto.FilteredEntry, 0, len(matches))
	for _, item := range matches {
		enriched, err := dto.NewFilteredEntry(item)
		if err != nil {
			log.Printf("enrich entry %d: %v", item.ID, err)
			respond.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		results = append(results, enriched)
	}

	respond.JSON(w, http.StatusOK, "entries filtered successfully", results)
}
