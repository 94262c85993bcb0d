package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	pkgerrors "github.com/vEnhance/atheweb/pkg/errors"
	"github.com/vEnhance/atheweb/pkg/response"
)

// YearbookHandler 纪念册模块 HTTP 处理器
type YearbookHandler struct {
	yearbookSvc service.YearbookService
}

// NewYearbookHandler 创建 YearbookHandler
func NewYearbookHandler(yearbookSvc service.YearbookService) *YearbookHandler {
	return &YearbookHandler{yearbookSvc: yearbookSvc}
}

// Latest 调用者可访问的最新学期纪念册
// GET /api/v1/yearbook
func (h *YearbookHandler) Latest(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	yearbook, err := h.yearbookSvc.BySemester(c.Request.Context(), caller, "")
	if err != nil {
		h.handleYearbookError(c, err)
		return
	}

	response.OK(c, yearbook)
}

// BySemester 指定学期的纪念册；员工可看任意学期
// GET /api/v1/yearbook/:slug
func (h *YearbookHandler) BySemester(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "semester slug is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	yearbook, err := h.yearbookSvc.BySemester(c.Request.Context(), caller, slug)
	if err != nil {
		h.handleYearbookError(c, err)
		return
	}

	response.OK(c, yearbook)
}

// MyEntry 本人在该学期的条目
// GET /api/v1/yearbook/:slug/me
func (h *YearbookHandler) MyEntry(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "semester slug is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	entry, err := h.yearbookSvc.MyEntry(c.Request.Context(), caller, slug)
	if err != nil {
		h.handleYearbookError(c, err)
		return
	}

	response.OK(c, entry)
}

// Upsert 创建或更新本人条目；学期结束后不可编辑
// PUT /api/v1/yearbook/:slug/me
func (h *YearbookHandler) Upsert(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "semester slug is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpsertYearbookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	entry, err := h.yearbookSvc.Upsert(c.Request.Context(), caller, slug, &req)
	if err != nil {
		h.handleYearbookError(c, err)
		return
	}

	response.OK(c, entry)
}

func (h *YearbookHandler) handleYearbookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrYearbookEntryNotFound):
		response.NotFound(c, 20001, "yearbook entry not found")
	case errors.Is(err, service.ErrSemesterEnded):
		response.BadRequest(c, 20002, "this semester has ended")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 20003, "semester not found")
	case errors.Is(err, pkgerrors.ErrPermissionDenied):
		response.Forbidden(c, 10003, "permission denied")
	default:
		response.InternalError(c)
	}
}
