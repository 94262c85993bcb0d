package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// InviteHandler 注册邀请模块 HTTP 处理器
type InviteHandler struct {
	inviteSvc service.InviteService
}

// NewInviteHandler 创建 InviteHandler
func NewInviteHandler(inviteSvc service.InviteService) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

// CreateStudentInvite 签发学生邀请
// POST /api/v1/invites/students
func (h *InviteHandler) CreateStudentInvite(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateStudentInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	invite, err := h.inviteSvc.CreateStudentInvite(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.Created(c, invite)
}

// CreateStaffInvite 签发员工邀请
// POST /api/v1/invites/staff
func (h *InviteHandler) CreateStaffInvite(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateStaffInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	invite, err := h.inviteSvc.CreateStaffInvite(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.Created(c, invite)
}

// Validate 注册页预检：邀请是否仍然可用（公开）
// GET /api/v1/auth/invites/:kind/:token
func (h *InviteHandler) Validate(c *gin.Context) {
	kind := c.Param("kind")
	token := c.Param("token")
	if kind == "" || token == "" {
		response.BadRequest(c, 10001, "invite kind and token are required")
		return
	}

	result, err := h.inviteSvc.Validate(c.Request.Context(), kind, token)
	if err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.OK(c, result)
}

// ListStudentInvites 学期学生邀请列表
// GET /api/v1/invites/students?semester_id=xxx
func (h *InviteHandler) ListStudentInvites(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semester_id is required")
		return
	}

	invites, err := h.inviteSvc.ListStudentInvites(c.Request.Context(), semesterID)
	if err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.OK(c, gin.H{"list": invites})
}

// ListStaffInvites 员工邀请列表
// GET /api/v1/invites/staff
func (h *InviteHandler) ListStaffInvites(c *gin.Context) {
	invites, err := h.inviteSvc.ListStaffInvites(c.Request.Context())
	if err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.OK(c, gin.H{"list": invites})
}

// DeleteStudentInvite 撤销学生邀请
// DELETE /api/v1/invites/students/:token
func (h *InviteHandler) DeleteStudentInvite(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, 10001, "invite token is required")
		return
	}

	if err := h.inviteSvc.DeleteStudentInvite(c.Request.Context(), token); err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteStaffInvite 撤销员工邀请
// DELETE /api/v1/invites/staff/:token
func (h *InviteHandler) DeleteStaffInvite(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, 10001, "invite token is required")
		return
	}

	if err := h.inviteSvc.DeleteStaffInvite(c.Request.Context(), token); err != nil {
		h.handleInviteError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *InviteHandler) handleInviteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInviteInvalid):
		response.NotFound(c, 18001, "invite not found")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 18002, "semester not found")
	default:
		response.InternalError(c)
	}
}
