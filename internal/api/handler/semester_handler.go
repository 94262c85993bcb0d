package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// List 学期列表；员工可见隐藏学期
// GET /api/v1/semesters
func (h *SemesterHandler) List(c *gin.Context) {
	caller := CallerFrom(c)

	semesters, err := h.semesterSvc.List(c.Request.Context(), caller.IsStaff())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": semesters})
}

// GetCurrent 当前学期（今天落在起止日期内的唯一学期）
// GET /api/v1/semesters/current
func (h *SemesterHandler) GetCurrent(c *gin.Context) {
	semester, err := h.semesterSvc.GetCurrent(c.Request.Context())
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// GetByID 学期详情
// GET /api/v1/semesters/:id
func (h *SemesterHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "semester id is required")
		return
	}

	semester, err := h.semesterSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// GetBySlug 按 slug 查学期
// GET /api/v1/semesters/slug/:slug
func (h *SemesterHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, 10001, "semester slug is required")
		return
	}

	semester, err := h.semesterSvc.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// Create 创建学期
// POST /api/v1/semesters
func (h *SemesterHandler) Create(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, semester)
}

// Update 更新学期
// PUT /api/v1/semesters/:id
func (h *SemesterHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "semester id is required")
		return
	}

	var req dto.UpdateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	semester, err := h.semesterSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// Delete 删除学期
// DELETE /api/v1/semesters/:id
func (h *SemesterHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "semester id is required")
		return
	}

	if err := h.semesterSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "semester not found")
	case errors.Is(err, service.ErrSemesterDateInvalid):
		response.BadRequest(c, 14002, "semester end date must not be before start date")
	case errors.Is(err, service.ErrSemesterSlugTaken):
		response.BadRequest(c, 14003, "a semester with this slug already exists")
	case errors.Is(err, service.ErrNoActiveSemester):
		response.NotFound(c, 14004, "no active semester found")
	case errors.Is(err, service.ErrMultipleActiveSemesters):
		// 学期窗口重叠是数据完整性问题，不做静默裁决
		response.Error(c, http.StatusInternalServerError, 14005, "multiple active semesters found")
	default:
		response.InternalError(c)
	}
}
