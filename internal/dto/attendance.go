package dto

// ── 助教出勤 DTO ──

// LogAttendanceRequest 记录本人出勤请求
type LogAttendanceRequest struct {
	ClubID string `json:"club_id" binding:"required,uuid"`
	Date   string `json:"date"    binding:"required"` // "2026-03-14"
}

// AttendanceResponse 出勤记录响应
type AttendanceResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	ClubID   string `json:"club_id"`
	ClubName string `json:"club_name,omitempty"`
	Date     string `json:"date"`
}

// BulkAttendanceRequest 班级出勤批量加分请求：一行一个学生名
type BulkAttendanceRequest struct {
	CourseID    string `json:"course_id"   binding:"required,uuid"`
	Names       string `json:"names"       binding:"required"`
	Description string `json:"description" binding:"max=500"`
}

// BulkAttendanceResponse 班级出勤批量加分结果
type BulkAttendanceResponse struct {
	Awarded []string `json:"awarded"`
	Errors  []string `json:"errors"`
}
