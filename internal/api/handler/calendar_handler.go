package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

// CalendarHandler 日历模块 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// MonthView 月视图；缺省为当前月
// GET /api/v1/calendar?year=2026&month=3
func (h *CalendarHandler) MonthView(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	year, okYear := parseIntQuery(c, "year")
	month, okMonth := parseIntQuery(c, "month")
	if !okYear || !okMonth {
		response.BadRequest(c, 10001, "year and month must be integers")
		return
	}
	if month < 0 || month > 12 {
		response.BadRequest(c, 10001, "month must be between 1 and 12")
		return
	}

	view, err := h.calendarSvc.MonthView(c.Request.Context(), caller, year, month)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, view)
}

// Upcoming 即将到来的场次与活动
// GET /api/v1/calendar/upcoming?limit=10
func (h *CalendarHandler) Upcoming(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	limit, okLimit := parseIntQuery(c, "limit")
	if !okLimit || limit < 0 {
		response.BadRequest(c, 10001, "limit must be a non-negative integer")
		return
	}

	upcoming, err := h.calendarSvc.Upcoming(c.Request.Context(), caller, limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, upcoming)
}

// ICSFeed iCalendar 订阅；日历客户端通过 ?token= 认证
// GET /api/v1/calendar/feed.ics?token=xxx
func (h *CalendarHandler) ICSFeed(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.ICSFeed(c.Request.Context(), caller)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `inline; filename="athemath.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// parseIntQuery 解析整数查询参数；缺省时返回 0
func parseIntQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
