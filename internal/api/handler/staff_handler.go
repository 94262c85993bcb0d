package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// StaffHandler 员工目录模块 HTTP 处理器
type StaffHandler struct {
	staffSvc service.StaffService
}

// NewStaffHandler 创建 StaffHandler
func NewStaffHandler(staffSvc service.StaffService) *StaffHandler {
	return &StaffHandler{staffSvc: staffSvc}
}

// Directory 公开员工目录（board / instructor / ta 分组）
// GET /api/v1/staff
func (h *StaffHandler) Directory(c *gin.Context) {
	directory, err := h.staffSvc.Directory(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, directory)
}

// PastStaff 往届员工
// GET /api/v1/staff/past
func (h *StaffHandler) PastStaff(c *gin.Context) {
	group, err := h.staffSvc.PastStaff(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, group)
}

// GetBySlug 目录条目详情（含任教课程）
// GET /api/v1/staff/:slug
func (h *StaffHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "staff slug is required")
		return
	}

	listing, err := h.staffSvc.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, listing)
}

// UpdateOwn 员工编辑本人目录条目
// PUT /api/v1/staff/me
func (h *StaffHandler) UpdateOwn(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateOwnListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	listing, err := h.staffSvc.UpdateOwn(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, listing)
}

// Create 创建目录条目（管理员）
// POST /api/v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	listing, err := h.staffSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.Created(c, listing)
}

// Update 更新目录条目（管理员）
// PUT /api/v1/staff/:id
func (h *StaffHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "staff listing id is required")
		return
	}

	var req dto.UpdateStaffListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	listing, err := h.staffSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, listing)
}

// Delete 删除目录条目（管理员）
// DELETE /api/v1/staff/:id
func (h *StaffHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "staff listing id is required")
		return
	}

	if err := h.staffSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *StaffHandler) handleStaffError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStaffListingNotFound):
		response.NotFound(c, 17001, "staff listing not found")
	case errors.Is(err, service.ErrStaffSlugTaken):
		response.BadRequest(c, 17002, "staff listing slug already exists")
	case errors.Is(err, service.ErrStaffCategoryInvalid):
		response.BadRequest(c, 17003, "invalid staff category")
	default:
		response.InternalError(c)
	}
}
