package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// BlogHandler 博客模块 HTTP 处理器
type BlogHandler struct {
	blogSvc service.BlogService
}

// NewBlogHandler 创建 BlogHandler
func NewBlogHandler(blogSvc service.BlogService) *BlogHandler {
	return &BlogHandler{blogSvc: blogSvc}
}

// ListPublished 公开文章分页列表（按展示日期倒序）
// GET /api/v1/blog/posts?page=1&page_size=20
func (h *BlogHandler) ListPublished(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "invalid pagination parameters")
		return
	}

	posts, total, err := h.blogSvc.ListPublished(c.Request.Context(), &page)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OKPage(c, posts, total, page.GetPage(), page.GetPageSize())
}

// GetBySlug 文章详情；草稿仅作者和员工可见
// GET /api/v1/blog/posts/:slug
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "post slug is required")
		return
	}
	caller := CallerFrom(c)

	post, err := h.blogSvc.GetBySlug(c.Request.Context(), caller, slug)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OK(c, post)
}

// MyPosts 本人文章（草稿与已发布分列）
// GET /api/v1/blog/posts/my
func (h *BlogHandler) MyPosts(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	posts, err := h.blogSvc.MyPosts(c.Request.Context(), caller)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OK(c, posts)
}

// Create 创建文章草稿
// POST /api/v1/blog/posts
func (h *BlogHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	post, err := h.blogSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.Created(c, post)
}

// Update 更新文章；非员工仅限本人未发布的草稿
// PUT /api/v1/blog/posts/:slug
func (h *BlogHandler) Update(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "post slug is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	post, err := h.blogSvc.Update(c.Request.Context(), caller, slug, &req)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OK(c, post)
}

// Publish 发布文章（员工）
// POST /api/v1/blog/posts/:slug/publish
func (h *BlogHandler) Publish(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "post slug is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	post, err := h.blogSvc.Publish(c.Request.Context(), caller, slug)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OK(c, post)
}

// Delete 删除文章；非员工仅限本人未发布的草稿
// DELETE /api/v1/blog/posts/:slug
func (h *BlogHandler) Delete(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "post slug is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.blogSvc.Delete(c.Request.Context(), caller, slug); err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreatePhoto 登记博客图片
// POST /api/v1/blog/photos
func (h *BlogHandler) CreatePhoto(c *gin.Context) {
	var req dto.CreatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	photo, err := h.blogSvc.CreatePhoto(c.Request.Context(), &req)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.Created(c, photo)
}

// ListPhotos 博客图片列表
// GET /api/v1/blog/photos
func (h *BlogHandler) ListPhotos(c *gin.Context) {
	photos, err := h.blogSvc.ListPhotos(c.Request.Context())
	if err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": photos})
}

// DeletePhoto 删除博客图片
// DELETE /api/v1/blog/photos/:id
func (h *BlogHandler) DeletePhoto(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "photo id is required")
		return
	}

	if err := h.blogSvc.DeletePhoto(c.Request.Context(), id); err != nil {
		h.handleBlogError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *BlogHandler) handleBlogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, 19001, "blog post not found")
	case errors.Is(err, service.ErrPostSlugTaken):
		response.BadRequest(c, 19002, "blog post slug already exists")
	case errors.Is(err, service.ErrDraftLimitReached):
		response.BadRequest(c, 19003, "you already have 3 pending posts")
	case errors.Is(err, service.ErrPhotoNotFound):
		response.NotFound(c, 19004, "photo not found")
	case errors.Is(err, service.ErrInvalidDisplayDate):
		response.BadRequest(c, 19005, "display_date must be in YYYY-MM-DD format")
	default:
		response.InternalError(c)
	}
}
