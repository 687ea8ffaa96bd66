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

type PostHandler struct {
	postService *service.PostService
	auth        *middleware.Auth
	logger      zerolog.Logger
}

func NewPostHandler(postService *service.PostService, auth *middleware.Auth, logger zerolog.Logger) *PostHandler {
	return &PostHandler{postService: postService, auth: auth, logger: logger}
}

func (h *PostHandler) RegisterRoutes(r chi.Router) {
	// Reads are public but identity-aware: a valid token lets an AUTHOR see
	// unpublished posts.
	r.Group(func(public chi.Router) {
		public.Use(h.auth.ResolveIdentity)
		public.Get("/", h.listPosts)
		public.Get("/{postID}", h.getPost)
	})

	r.Group(func(protected chi.Router) {
		protected.Use(h.auth.Authenticate)
		protected.Post("/", h.createPost)
		protected.Put("/{postID}", h.updatePost)
		protected.Delete("/{postID}", h.deletePost)
	})
}

func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	post, err := h.postService.Create(r.Context(), middleware.CurrentUser(r.Context()), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) getPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	post, err := h.postService.Get(r.Context(), middleware.CurrentUser(r.Context()), postID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	var req service.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	post, err := h.postService.Update(r.Context(), middleware.CurrentUser(r.Context()), postID, req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if err := h.postService.Delete(r.Context(), middleware.CurrentUser(r.Context()), postID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
