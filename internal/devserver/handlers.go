package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/five82/linkboard/internal/api"
)

var (
	ErrJSONUnmarshal = errors.New("json unmarshal error")
	ErrReadReqBody   = errors.New("read request body error")
	ErrBadID         = errors.New("id must be a positive integer")
)

// maxBodyBytes bounds create/update payloads; links are short.
const maxBodyBytes = 64 << 10

// Handler serves the posts/comments REST contract from a Store.
type Handler struct {
	Store  *Store
	Logger *zap.SugaredLogger
}

// ListPosts handles GET posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Store.List())
}

// AddPost handles POST posts.
func (h *Handler) AddPost(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readLink(w, r)
	if !ok {
		return
	}
	post, err := h.Store.AddPost(payload.Link)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.Logger.Infow("post created", "id", post.ID)
	h.writeJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	payload, ok := h.readLink(w, r)
	if !ok {
		return
	}
	post, err := h.Store.UpdatePost(id, payload.Link)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeletePost(id); err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.Logger.Infow("post deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// AddComment handles POST posts/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	payload, ok := h.readLink(w, r)
	if !ok {
		return
	}
	comment, err := h.Store.AddComment(postID, payload.Link)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.Logger.Infow("comment created", "id", comment.ID, "post_id", postID)
	h.writeJSON(w, http.StatusCreated, comment)
}

// UpdateComment handles PUT comments/{id}.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	payload, ok := h.readLink(w, r)
	if !ok {
		return
	}
	comment, err := h.Store.UpdateComment(id, payload.Link)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comment)
}

// DeleteComment handles DELETE comments/{id}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteComment(id); err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.Logger.Infow("comment deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, ErrBadID)
		return 0, false
	}
	return id, true
}

func (h *Handler) readLink(w http.ResponseWriter, r *http.Request) (api.LinkPayload, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.Logger.Errorw("read body", "error", err)
		h.writeError(w, http.StatusBadRequest, ErrReadReqBody)
		return api.LinkPayload{}, false
	}
	var payload api.LinkPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, http.StatusBadRequest, ErrJSONUnmarshal)
		return api.LinkPayload{}, false
	}
	return payload, true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrBlankLink):
		h.writeError(w, http.StatusBadRequest, err)
	default:
		h.Logger.Errorw("store failure", "error", err)
		h.writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, err error) {
	h.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		h.Logger.Errorw("json marshal", "error", err)
		http.Error(w, "json marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(resp); err != nil {
		h.Logger.Warnw("write response", "error", err)
	}
}
