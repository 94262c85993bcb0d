package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	pkgerrors "github.com/vEnhance/atheweb/pkg/errors"
	"github.com/vEnhance/atheweb/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// Catalog 最新可见学期的课程目录（班级/社团分列）
// GET /api/v1/catalog
func (h *CourseHandler) Catalog(c *gin.Context) {
	caller := CallerFrom(c)

	catalog, err := h.courseSvc.Catalog(c.Request.Context(), "", caller)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, catalog)
}

// CatalogBySemester 指定学期的课程目录
// GET /api/v1/catalog/:slug
func (h *CourseHandler) CatalogBySemester(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "semester slug is required")
		return
	}
	caller := CallerFrom(c)

	catalog, err := h.courseSvc.Catalog(c.Request.Context(), slug, caller)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, catalog)
}

// GetDetail 课程详情（按访问权限裁剪字段）
// GET /api/v1/courses/:id
func (h *CourseHandler) GetDetail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "course id is required")
		return
	}
	caller := CallerFrom(c)

	course, err := h.courseSvc.GetDetail(c.Request.Context(), id, caller)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// Create 创建课程
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// Update 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "course id is required")
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// Delete 删除课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "course id is required")
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// JoinClub 加入社团（活跃学期内自动建立学生记录）
// POST /api/v1/courses/:id/join
func (h *CourseHandler) JoinClub(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "course id is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.courseSvc.JoinClub(c.Request.Context(), id, caller); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// DropClub 退出社团
// POST /api/v1/courses/:id/drop
func (h *CourseHandler) DropClub(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "course id is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.courseSvc.DropClub(c.Request.Context(), id, caller); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// MyClubs 本人各活跃学期的社团概览（已加入与可加入）
// GET /api/v1/clubs/mine
func (h *CourseHandler) MyClubs(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	clubs, err := h.courseSvc.MyClubs(c.Request.Context(), caller)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": clubs})
}

// PastClubs 已结束可见学期的社团记录
// GET /api/v1/clubs/past
func (h *CourseHandler) PastClubs(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	clubs, err := h.courseSvc.PastClubs(c.Request.Context(), caller)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": clubs})
}

// CreateMeeting 创建课程场次
// POST /api/v1/courses/:id/meetings
func (h *CourseHandler) CreateMeeting(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "course id is required")
		return
	}

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	meeting, err := h.courseSvc.CreateMeeting(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, meeting)
}

// UpdateMeeting 更新课程场次
// PUT /api/v1/meetings/:id
func (h *CourseHandler) UpdateMeeting(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "meeting id is required")
		return
	}

	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	meeting, err := h.courseSvc.UpdateMeeting(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, meeting)
}

// DeleteMeeting 删除课程场次
// DELETE /api/v1/meetings/:id
func (h *CourseHandler) DeleteMeeting(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "meeting id is required")
		return
	}

	if err := h.courseSvc.DeleteMeeting(c.Request.Context(), id); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "course not found")
	case errors.Is(err, service.ErrMeetingNotFound):
		response.NotFound(c, 13002, "meeting not found")
	case errors.Is(err, service.ErrNotAClub):
		response.BadRequest(c, 13003, "this course is not a club")
	case errors.Is(err, service.ErrSemesterNotActive):
		response.BadRequest(c, 13004, "this semester is not active")
	case errors.Is(err, service.ErrNotEnrolled):
		response.BadRequest(c, 13005, "you are not enrolled in this club")
	case errors.Is(err, service.ErrInvalidStartTime):
		response.BadRequest(c, 13006, "start_time must be in RFC 3339 format")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 13007, "semester not found")
	case errors.Is(err, service.ErrStaffListingNotFound):
		response.BadRequest(c, 13008, "instructor listing not found")
	case errors.Is(err, pkgerrors.ErrPermissionDenied):
		response.Forbidden(c, 10003, "permission denied")
	default:
		response.InternalError(c)
	}
}
