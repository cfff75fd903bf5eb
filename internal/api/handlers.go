package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/bundleservice"
	"github.com/starford/raido/internal/models"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *bundleservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *bundleservice.Service) *Handler {
	return &Handler{svc: svc}
}

func datasetID(r *http.Request) string {
	return chi.URLParam(r, "ds")
}

// bundleID parses the {id} route parameter. A second return of false means
// the response has already been written.
func bundleID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{ Validate() error }) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := dst.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// ListDatasets handles GET /api/datasets.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"datasets": h.svc.Datasets(r.Context()),
	})
}

// ListBundles handles GET /api/datasets/{ds}/bundles.
func (h *Handler) ListBundles(w http.ResponseWriter, r *http.Request) {
	ds := datasetID(r)
	items, err := h.svc.ListBundles(r.Context(), ds, r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown dataset"))
			return
		}
		slog.Error("list bundles failed", slog.String("dataset", ds), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bundles": items,
		"total":   len(items),
	})
}

// GetBundle handles GET /api/datasets/{ds}/bundles/{id}.
func (h *Handler) GetBundle(w http.ResponseWriter, r *http.Request) {
	id, ok := bundleID(w, r)
	if !ok {
		return
	}
	ds := datasetID(r)
	b, err := h.svc.GetBundle(r.Context(), ds, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get bundle failed", slog.String("dataset", ds), slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("ETag", fmt.Sprintf("%q", b.Revision))
	writeJSON(w, http.StatusOK, b)
}

// CreateBundle handles POST /api/datasets/{ds}/bundles.
func (h *Handler) CreateBundle(w http.ResponseWriter, r *http.Request) {
	var req BundleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ds := datasetID(r)
	b, err := h.svc.CreateBundle(r.Context(), ds, req.input())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown dataset"))
		} else {
			slog.Error("create bundle failed", slog.String("dataset", ds), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// UpdateBundle handles PUT /api/datasets/{ds}/bundles/{id} with optimistic
// concurrency via If-Match.
func (h *Handler) UpdateBundle(w http.ResponseWriter, r *http.Request) {
	id, ok := bundleID(w, r)
	if !ok {
		return
	}
	var req BundleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	ds := datasetID(r)
	b, err := h.svc.UpdateBundle(r.Context(), ds, id, req.input(), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("revision mismatch"))
		default:
			slog.Error("update bundle failed", slog.String("dataset", ds), slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("ETag", fmt.Sprintf("%q", b.Revision))
	writeJSON(w, http.StatusOK, b)
}

// DeleteBundle handles DELETE /api/datasets/{ds}/bundles/{id}.
func (h *Handler) DeleteBundle(w http.ResponseWriter, r *http.Request) {
	id, ok := bundleID(w, r)
	if !ok {
		return
	}
	ds := datasetID(r)
	if err := h.svc.DeleteBundle(r.Context(), ds, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete bundle failed", slog.String("dataset", ds), slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMemos handles PUT /api/datasets/{ds}/bundles/{id}/memos.
func (h *Handler) UpdateMemos(w http.ResponseWriter, r *http.Request) {
	id, ok := bundleID(w, r)
	if !ok {
		return
	}
	var req MemoUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ds := datasetID(r)
	b, err := h.svc.UpdateMemoNotes(r.Context(), ds, id, req.updates())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update memos failed", slog.String("dataset", ds), slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Keywords handles GET /api/datasets/{ds}/keywords.
func (h *Handler) Keywords(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ds := datasetID(r)
	keywords, err := h.svc.KeywordCandidates(r.Context(), ds, limit)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown dataset"))
			return
		}
		slog.Error("keywords failed", slog.String("dataset", ds), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"keywords": keywords,
	})
}

// ListLinks handles GET /api/datasets/{ds}/links.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ds := datasetID(r)
	links, err := h.svc.ListLinks(r.Context(), ds)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown dataset"))
			return
		}
		slog.Error("list links failed", slog.String("dataset", ds), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"links": links,
	})
}

// CreateLink handles POST /api/datasets/{ds}/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ds := datasetID(r)
	link, err := h.svc.CreateLink(r.Context(), ds, bundleservice.LinkInput{
		BundleID:     req.BundleID,
		CommandOrder: req.CommandOrder,
		URL:          req.URL,
		Description:  req.Description,
		Tag:          req.Tag,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown dataset"))
		} else {
			slog.Error("create link failed", slog.String("dataset", ds), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// DeleteLink handles DELETE /api/datasets/{ds}/links/{id}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := bundleID(w, r)
	if !ok {
		return
	}
	ds := datasetID(r)
	if err := h.svc.DeleteLink(r.Context(), ds, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete link failed", slog.String("dataset", ds), slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportBundles handles GET /api/datasets/{ds}/export/bundles.csv.
func (h *Handler) ExportBundles(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "bundles.csv", h.svc.ExportBundles)
}

// ExportMemos handles GET /api/datasets/{ds}/export/memos.csv.
func (h *Handler) ExportMemos(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "memos.csv", h.svc.ExportMemos)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, ds string, w io.Writer) error) {
	ds := datasetID(r)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ds+"_"+name))
	if err := fn(r.Context(), ds, w); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			w.Header().Del("Content-Disposition")
			writeJSON(w, http.StatusNotFound, errorBody("unknown dataset"))
			return
		}
		slog.Error("export failed", slog.String("dataset", ds), slog.String("file", name), slog.String("error", err.Error()))
	}
}

// Tree handles GET /api/tree.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tree": h.svc.Tree(r.Context()),
	})
}

// ProceduresByKeyword handles GET /api/procedures with a keyword parameter.
func (h *Handler) ProceduresByKeyword(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'keyword' is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"procedures": h.svc.ProceduresByKeyword(r.Context(), keyword),
	})
}

// SearchProcedures handles GET /api/procedures/search.
func (h *Handler) SearchProcedures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"procedures": h.svc.SearchProcedures(r.Context(), r.URL.Query().Get("q")),
	})
}

// CreateProcedure handles POST /api/procedures.
func (h *Handler) CreateProcedure(w http.ResponseWriter, r *http.Request) {
	var req ProcedureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := h.svc.AddProcedure(r.Context(), models.TaggedRecord{
		Code: req.Code, Title: req.Title, Link: req.Link, Tag: req.Tag,
	})
	if err != nil {
		slog.Error("create procedure failed", slog.String("code", req.Code), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
