package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"inkwell/internal/api/middleware"
	"inkwell/internal/app/service"
	"inkwell/internal/common"
)

type CommentHandler struct {
	commentService *service.CommentService
	auth           *middleware.Auth
	logger         zerolog.Logger
}

func NewCommentHandler(commentService *service.CommentService, auth *middleware.Auth, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{commentService: commentService, auth: auth, logger: logger}
}

// RegisterPostRoutes mounts the per-post comment routes under /posts.
func (h *CommentHandler) RegisterPostRoutes(r chi.Router) {
	r.Get("/{postID}/comments", h.listComments)
	r.Group(func(protected chi.Router) {
		protected.Use(h.auth.Authenticate)
		protected.Post("/{postID}/comments", h.createComment)
	})
}

// RegisterRoutes mounts the top-level /comments routes.
func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(protected chi.Router) {
		protected.Use(h.auth.Authenticate)
		protected.Delete("/{commentID}", h.deleteComment)
	})
}

func (h *CommentHandler) createComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	var req service.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	comment, err := h.commentService.Create(r.Context(), middleware.CurrentUser(r.Context()), postID, req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) listComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	if err := h.commentService.Delete(r.Context(), middleware.CurrentUser(r.Context()), commentID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
