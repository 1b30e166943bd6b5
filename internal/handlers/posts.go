package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/inkwell-sh/inkwell/internal/blog"
)

type PostsHandler struct {
	svc    *blog.Service
	logger *slog.Logger
}

func NewPostsHandler(svc *blog.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
	}
}

type CreatePostRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Published   bool     `json:"published"`
	AuthorID    string   `json:"author_id"`
	Author      string   `json:"author"`
	CategoryIDs []string `json:"category_ids"`
}

type UpdatePostRequest struct {
	Title       *string   `json:"title"`
	Slug        *string   `json:"slug"`
	Content     *string   `json:"content"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Published   *bool     `json:"published"`
	CategoryIDs *[]string `json:"category_ids"`
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := blog.ListFilter{
			AuthorID:      r.URL.Query().Get("author_id"),
			PublishedOnly: true,
		}
		if raw := r.URL.Query().Get("published_only"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", "published_only must be a boolean", nil)
				return
			}
			filter.PublishedOnly = v
		}

		posts, err := h.svc.ListPosts(r.Context(), filter)
		if err != nil {
			writeBlogError(w, h.logger, "list posts", err)
			return
		}
		if posts == nil {
			posts = []*blog.Post{}
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

func (h *PostsHandler) GetBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if slug == "" {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "slug is required", nil)
			return
		}

		post, err := h.svc.GetPostBySlug(r.Context(), slug)
		if err != nil {
			writeBlogError(w, h.logger, "get post", err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) ListByAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID := r.PathValue("author_id")
		if authorID == "" {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "author_id is required", nil)
			return
		}

		posts, err := h.svc.GetPostsByAuthor(r.Context(), authorID)
		if err != nil {
			writeBlogError(w, h.logger, "list posts by author", err)
			return
		}
		if posts == nil {
			posts = []*blog.Post{}
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}

		// Slug generation is the caller's job; fill it in here when the
		// client leaves it out.
		if req.Slug == "" && req.Title != "" {
			req.Slug = blog.Slugify(req.Title)
		}

		categoryIDs, derr := parseCategoryIDs(req.CategoryIDs)
		if derr != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", derr)
			return
		}

		post, err := h.svc.CreatePost(r.Context(), blog.CreatePost{
			Title:       req.Title,
			Slug:        req.Slug,
			Content:     req.Content,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Published:   req.Published,
			AuthorID:    req.AuthorID,
			Author:      req.Author,
			CategoryIDs: categoryIDs,
		})
		if err != nil {
			writeBlogError(w, h.logger, "create post", err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

func (h *PostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
			return
		}

		var req UpdatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}

		patch := blog.UpdatePost{
			Title:       req.Title,
			Slug:        req.Slug,
			Content:     req.Content,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Published:   req.Published,
		}
		if req.CategoryIDs != nil {
			categoryIDs, derr := parseCategoryIDs(*req.CategoryIDs)
			if derr != nil {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", derr)
				return
			}
			if categoryIDs == nil {
				categoryIDs = []uuid.UUID{}
			}
			patch.CategoryIDs = &categoryIDs
		}

		post, err := h.svc.UpdatePost(r.Context(), id, patch)
		if err != nil {
			writeBlogError(w, h.logger, "update post", err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
			return
		}

		post, err := h.svc.DeletePost(r.Context(), id)
		if err != nil {
			writeBlogError(w, h.logger, "delete post", err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func parseCategoryIDs(raw []string) ([]uuid.UUID, map[string]string) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, map[string]string{"category_ids": "invalid category id: " + s}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
