package dto

// ── 全局活动 DTO ──

// CreateEventRequest 创建全局活动请求
type CreateEventRequest struct {
	SemesterID  string `json:"semester_id" binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,min=2,max=200"`
	StartTime   string `json:"start_time"  binding:"required"` // RFC 3339
	Description string `json:"description"`
	Link        string `json:"link" binding:"omitempty,url"`
}

// UpdateEventRequest 更新全局活动请求
type UpdateEventRequest struct {
	Title       *string `json:"title"      binding:"omitempty,min=2,max=200"`
	StartTime   *string `json:"start_time"`
	Description *string `json:"description"`
	Link        *string `json:"link" binding:"omitempty,url"`
}

// EventResponse 全局活动响应
type EventResponse struct {
	ID          string `json:"id"`
	SemesterID  string `json:"semester_id"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// ── 日历 DTO ──

// CalendarItemResponse 日历条目（课程场次或全局活动）
type CalendarItemResponse struct {
	Kind       string `json:"kind"` // meeting | event
	ID         string `json:"id"`
	Title      string `json:"title"`
	StartTime  string `json:"start_time"`
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`
	Link       string `json:"link,omitempty"`
}

// CalendarDayResponse 月视图中的一天
type CalendarDayResponse struct {
	Date  string                 `json:"date"` // "2026-03-14"
	Items []CalendarItemResponse `json:"items"`
}

// CalendarMonthResponse 月视图响应
type CalendarMonthResponse struct {
	Year  int                   `json:"year"`
	Month int                   `json:"month"`
	Days  []CalendarDayResponse `json:"days"`
}

// UpcomingResponse 即将到来的日程响应
type UpcomingResponse struct {
	Items []CalendarItemResponse `json:"items"`
}
