package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// SiteContentHandler 站点内容模块（历史页面与申请题集）HTTP 处理器
type SiteContentHandler struct {
	contentSvc service.SiteContentService
}

// NewSiteContentHandler 创建 SiteContentHandler
func NewSiteContentHandler(contentSvc service.SiteContentService) *SiteContentHandler {
	return &SiteContentHandler{contentSvc: contentSvc}
}

// ── 历史页面 ──

// ListHistory 历史条目列表；员工可见隐藏条目
// GET /api/v1/history
func (h *SiteContentHandler) ListHistory(c *gin.Context) {
	caller := CallerFrom(c)

	entries, err := h.contentSvc.ListHistory(c.Request.Context(), caller)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// GetHistoryEntry 历史条目详情；隐藏条目仅员工可见
// GET /api/v1/history/:slug
func (h *SiteContentHandler) GetHistoryEntry(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "history slug is required")
		return
	}
	caller := CallerFrom(c)

	entry, err := h.contentSvc.GetHistoryEntry(c.Request.Context(), caller, slug)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, entry)
}

// CreateHistoryEntry 创建历史条目
// POST /api/v1/history
func (h *SiteContentHandler) CreateHistoryEntry(c *gin.Context) {
	var req dto.CreateHistoryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	entry, err := h.contentSvc.CreateHistoryEntry(c.Request.Context(), &req)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.Created(c, entry)
}

// UpdateHistoryEntry 更新历史条目
// PUT /api/v1/history/:id
func (h *SiteContentHandler) UpdateHistoryEntry(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "history entry id is required")
		return
	}

	var req dto.UpdateHistoryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	entry, err := h.contentSvc.UpdateHistoryEntry(c.Request.Context(), id, &req)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, entry)
}

// DeleteHistoryEntry 删除历史条目
// DELETE /api/v1/history/:id
func (h *SiteContentHandler) DeleteHistoryEntry(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "history entry id is required")
		return
	}

	if err := h.contentSvc.DeleteHistoryEntry(c.Request.Context(), id); err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 申请题集 ──

// ApplyPage 申请页：开放时列出 active 题集，关闭时给出最近一期的关闭提示
// GET /api/v1/apply
func (h *SiteContentHandler) ApplyPage(c *gin.Context) {
	page, err := h.contentSvc.ApplyPage(c.Request.Context())
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, page)
}

// PastProblemSets 已完成题集（按截止时间倒序）
// GET /api/v1/apply/past
func (h *SiteContentHandler) PastProblemSets(c *gin.Context) {
	sets, err := h.contentSvc.PastProblemSets(c.Request.Context())
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sets})
}

// ListProblemSets 全部题集（管理端）
// GET /api/v1/problem-sets
func (h *SiteContentHandler) ListProblemSets(c *gin.Context) {
	sets, err := h.contentSvc.ListProblemSets(c.Request.Context())
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sets})
}

// CreateProblemSet 创建题集
// POST /api/v1/problem-sets
func (h *SiteContentHandler) CreateProblemSet(c *gin.Context) {
	var req dto.CreateProblemSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	set, err := h.contentSvc.CreateProblemSet(c.Request.Context(), &req)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.Created(c, set)
}

// UpdateProblemSet 更新题集
// PUT /api/v1/problem-sets/:id
func (h *SiteContentHandler) UpdateProblemSet(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "problem set id is required")
		return
	}

	var req dto.UpdateProblemSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	set, err := h.contentSvc.UpdateProblemSet(c.Request.Context(), id, &req)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, set)
}

// DeleteProblemSet 删除题集
// DELETE /api/v1/problem-sets/:id
func (h *SiteContentHandler) DeleteProblemSet(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "problem set id is required")
		return
	}

	if err := h.contentSvc.DeleteProblemSet(c.Request.Context(), id); err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SiteContentHandler) handleContentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHistoryEntryNotFound):
		response.NotFound(c, 23001, "history entry not found")
	case errors.Is(err, service.ErrHistorySlugTaken):
		response.BadRequest(c, 23002, "a history entry with this slug already exists")
	case errors.Is(err, service.ErrProblemSetNotFound):
		response.NotFound(c, 23003, "problem set not found")
	case errors.Is(err, service.ErrInvalidPSetStatus):
		response.BadRequest(c, 23004, "invalid problem set status")
	case errors.Is(err, service.ErrInvalidPSetDeadline):
		response.BadRequest(c, 23005, "deadline must be in RFC 3339 format")
	default:
		response.InternalError(c)
	}
}
