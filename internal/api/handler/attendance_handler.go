package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// AttendanceHandler 助教出勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Log 记录本人在某社团某天的出勤
// POST /api/v1/attendance
func (h *AttendanceHandler) Log(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.LogAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	record, err := h.attendanceSvc.Log(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, record)
}

// MyRecords 本人出勤记录（按日期倒序）
// GET /api/v1/attendance/my
func (h *AttendanceHandler) MyRecords(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	records, err := h.attendanceSvc.MyRecords(c.Request.Context(), caller)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// AllRecords 全部出勤记录（管理端）
// GET /api/v1/attendance
func (h *AttendanceHandler) AllRecords(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	records, err := h.attendanceSvc.AllRecords(c.Request.Context(), caller)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// BulkClassAttendance 按到课名单批量发放 class_attendance 学院分
// POST /api/v1/attendance/class
func (h *AttendanceHandler) BulkClassAttendance(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.BulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.attendanceSvc.BulkClassAttendance(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceExists):
		response.BadRequest(c, 21001, "you already have an attendance record for this club on this date")
	case errors.Is(err, service.ErrInvalidAttendanceDate):
		response.BadRequest(c, 21002, "date must be in YYYY-MM-DD format")
	case errors.Is(err, service.ErrNotAClass):
		response.BadRequest(c, 21003, "this course is not a class")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 21004, "course not found")
	case errors.Is(err, service.ErrNotAClub):
		response.BadRequest(c, 21005, "this course is not a club")
	case errors.Is(err, service.ErrSemesterEnded):
		response.BadRequest(c, 21006, "this semester has ended")
	default:
		response.InternalError(c)
	}
}
