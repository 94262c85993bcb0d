package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// EventHandler 全局活动模块 HTTP 处理器
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// ListBySemester 学期活动列表（按开始时间排序）
// GET /api/v1/events?semester_id=xxx
func (h *EventHandler) ListBySemester(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semester_id is required")
		return
	}

	events, err := h.eventSvc.ListBySemester(c.Request.Context(), semesterID)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// GetByID 活动详情
// GET /api/v1/events/:id
func (h *EventHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "event id is required")
		return
	}

	event, err := h.eventSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, event)
}

// Create 创建活动
// POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	event, err := h.eventSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.Created(c, event)
}

// Update 更新活动
// PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "event id is required")
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	event, err := h.eventSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, event)
}

// Delete 删除活动
// DELETE /api/v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "event id is required")
		return
	}

	if err := h.eventSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleEventError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *EventHandler) handleEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 22001, "event not found")
	case errors.Is(err, service.ErrInvalidStartTime):
		response.BadRequest(c, 22002, "start_time must be in RFC 3339 format")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 22003, "semester not found")
	default:
		response.InternalError(c)
	}
}
