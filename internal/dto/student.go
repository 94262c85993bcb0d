package dto

// ── 学生名册 DTO ──

// CreateStudentRequest 创建名册行请求（未认领，user 为空）
type CreateStudentRequest struct {
	SemesterID   string `json:"semester_id"   binding:"required,uuid"`
	AirtableName string `json:"airtable_name" binding:"required,min=2,max=200"`
	House        string `json:"house"         binding:"omitempty,oneof=blob cat owl red_panda bunny"`
}

// UpdateStudentRequest 更新名册行请求
type UpdateStudentRequest struct {
	AirtableName *string `json:"airtable_name" binding:"omitempty,min=2,max=200"`
	House        *string `json:"house"         binding:"omitempty,oneof=blob cat owl red_panda bunny"`
	ClearHouse   bool    `json:"clear_house"`
}

// StudentResponse 学生响应
type StudentResponse struct {
	ID           string `json:"id"`
	SemesterID   string `json:"semester_id"`
	AirtableName string `json:"airtable_name"`
	House        string `json:"house"`
	HouseLabel   string `json:"house_label,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Username     string `json:"username,omitempty"`
	Claimed      bool   `json:"claimed"`
}

// ── 分院帽 DTO ──

// SortingHatRequest 批量分院请求：每个学院一段名单，一行一个名册名
type SortingHatRequest struct {
	SemesterID string `json:"semester_id" binding:"required,uuid"`
	Blob       string `json:"blob"`
	Cat        string `json:"cat"`
	Owl        string `json:"owl"`
	RedPanda   string `json:"red_panda"`
	Bunny      string `json:"bunny"`
}

// SortingHatResponse 批量分院结果
type SortingHatResponse struct {
	Assigned []string `json:"assigned"`
	NotFound []string `json:"not_found"`
}

// AutoSortResponse 自动分院结果：未分院学生的随机均衡分配
type AutoSortResponse struct {
	Assigned map[string][]string `json:"assigned"` // house -> 名册名列表
	Total    int                 `json:"total"`
}
