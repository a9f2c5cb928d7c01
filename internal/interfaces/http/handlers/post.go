// internal/interfaces/http/handlers/post.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/post"
	"github.com/eltech/store-backend/internal/interfaces/http/middleware"
	"github.com/eltech/store-backend/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

// PostHandler handles blog post and comment endpoints
type PostHandler struct {
	postService *post.Service
	files       *storage.Local
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *post.Service, files *storage.Local) *PostHandler {
	return &PostHandler{postService: postService, files: files}
}

func actorFrom(c *gin.Context) (post.Actor, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return post.Actor{}, false
	}
	return post.Actor{UserID: userID, IsAdmin: middleware.IsAdminFromContext(c)}, true
}

// GetPosts handles GET /posts
func (h *PostHandler) GetPosts(c *gin.Context) {
	var req post.PostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	posts, meta, err := h.postService.ListPosts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Posts retrieved successfully", posts, meta)
}

// GetPost handles GET /posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c, "id", "post")
	if !ok {
		return
	}

	p, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Post retrieved successfully", p)
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req post.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.postService.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Post created successfully", p)
}

// UpdatePost handles PUT /posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "post")
	if !ok {
		return
	}

	var req post.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.postService.UpdatePost(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Post updated successfully", p)
}

// UploadPostImage handles POST /posts/:id/image
func (h *PostHandler) UploadPostImage(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "post")
	if !ok {
		return
	}

	header, _ := c.FormFile("image")
	path, err := h.files.SaveImage(header, storage.KindPost)
	if err != nil {
		respondError(c, err)
		return
	}

	p, previous, err := h.postService.SetPostImage(c.Request.Context(), actor, id, path)
	if err != nil {
		h.files.Delete(path)
		respondError(c, err)
		return
	}
	h.files.Delete(previous)
	respondOK(c, "Post image updated successfully", p)
}

// DeletePost handles DELETE /posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "post")
	if !ok {
		return
	}

	image, err := h.postService.DeletePost(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.files.Delete(image)
	respondOK(c, "Post deleted successfully", nil)
}
