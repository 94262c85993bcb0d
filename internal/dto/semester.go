package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
type CreateSemesterRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	Slug      string `json:"slug"       binding:"required,min=2,max=50"`
	StartDate string `json:"start_date" binding:"required"` // "2026-01-20"
	EndDate   string `json:"end_date"   binding:"required"` // "2026-05-20"
	Visible   *bool  `json:"visible"`
	// RFC 3339；设置后榜单只统计此前的奖励
	HousePointsFreezeDate     *string `json:"house_points_freeze_date"`
	HousePointsClassThreshold *int    `json:"house_points_class_threshold" binding:"omitempty,min=0"`
}

// UpdateSemesterRequest 更新学期请求
type UpdateSemesterRequest struct {
	Name                      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Slug                      *string `json:"slug"       binding:"omitempty,min=2,max=50"`
	StartDate                 *string `json:"start_date"`
	EndDate                   *string `json:"end_date"`
	Visible                   *bool   `json:"visible"`
	HousePointsFreezeDate     *string `json:"house_points_freeze_date"`
	ClearFreezeDate           bool    `json:"clear_freeze_date"`
	HousePointsClassThreshold *int    `json:"house_points_class_threshold" binding:"omitempty,min=0"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID                        string  `json:"id"`
	Name                      string  `json:"name"`
	Slug                      string  `json:"slug"`
	StartDate                 string  `json:"start_date"`
	EndDate                   string  `json:"end_date"`
	Visible                   bool    `json:"visible"`
	HousePointsFreezeDate     *string `json:"house_points_freeze_date,omitempty"`
	HousePointsClassThreshold int     `json:"house_points_class_threshold"`
	IsActive                  bool    `json:"is_active"` // 今天落在 [start, end] 内
	HasEnded                  bool    `json:"has_ended"`
	CreatedAt                 string  `json:"created_at"`
	UpdatedAt                 string  `json:"updated_at"`
}
