package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// StudentHandler 学生名册模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// List 学期名册
// GET /api/v1/students?semester_id=xxx
func (h *StudentHandler) List(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semester_id is required")
		return
	}

	students, err := h.studentSvc.List(c.Request.Context(), semesterID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// Get 名册行详情
// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "student id is required")
		return
	}

	student, err := h.studentSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// Create 创建名册行（未认领，注册时按 airtable_name 认领）
// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// Update 更新名册行
// PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "student id is required")
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// Delete 删除名册行
// DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "student id is required")
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// SortingHat 按名单批量分院
// POST /api/v1/students/sorting-hat
func (h *StudentHandler) SortingHat(c *gin.Context) {
	var req dto.SortingHatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.studentSvc.SortingHat(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// AutoSort 将未分院学生随机均衡分配
// POST /api/v1/students/auto-sort?semester_id=xxx
func (h *StudentHandler) AutoSort(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semester_id is required")
		return
	}

	result, err := h.studentSvc.AutoSort(c.Request.Context(), semesterID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "student not found")
	case errors.Is(err, service.ErrAirtableNameTaken):
		response.BadRequest(c, 12002, "airtable name already exists in this semester")
	case errors.Is(err, service.ErrNoUnsortedStudents):
		response.BadRequest(c, 12003, "no unsorted students in this semester")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12004, "semester not found")
	default:
		response.InternalError(c)
	}
}
