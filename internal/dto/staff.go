package dto

// ── 员工目录 DTO ──

// CreateStaffListingRequest 创建目录条目请求（管理员）
type CreateStaffListingRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=2,max=100"`
	Slug        string `json:"slug"         binding:"required,min=2,max=100"`
	Role        string `json:"role"         binding:"max=100"`
	Category    string `json:"category"     binding:"required,oneof=board instructor ta xstaff"`
	Biography   string `json:"biography"`
	PhotoURL    string `json:"photo_url" binding:"omitempty,url"`
	Website     string `json:"website"   binding:"omitempty,url"`
	Ordering    int    `json:"ordering"`
}

// UpdateStaffListingRequest 更新目录条目请求（管理员）
type UpdateStaffListingRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=2,max=100"`
	Slug        *string `json:"slug"         binding:"omitempty,min=2,max=100"`
	Role        *string `json:"role"         binding:"omitempty,max=100"`
	Category    *string `json:"category"     binding:"omitempty,oneof=board instructor ta xstaff"`
	Biography   *string `json:"biography"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,url"`
	Website     *string `json:"website"   binding:"omitempty,url"`
	Ordering    *int    `json:"ordering"`
}

// UpdateOwnListingRequest 员工自助编辑请求（不含 slug/category/ordering）
type UpdateOwnListingRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=2,max=100"`
	Biography   *string `json:"biography"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,url"`
	Website     *string `json:"website"   binding:"omitempty,url"`
}

// StaffListingResponse 目录条目响应
type StaffListingResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Slug        string `json:"slug"`
	Role        string `json:"role,omitempty"`
	Category    string `json:"category"`
	Biography   string `json:"biography,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Website     string `json:"website,omitempty"`
	Ordering    int    `json:"ordering"`
	Claimed     bool   `json:"claimed"`
}

// StaffGroupResponse 目录分组
type StaffGroupResponse struct {
	Category string                 `json:"category"`
	Label    string                 `json:"label"`
	Listings []StaffListingResponse `json:"listings"`
}

// StaffDirectoryResponse 员工目录（按分类分组）
type StaffDirectoryResponse struct {
	Groups []StaffGroupResponse `json:"groups"`
}

// StaffDetailResponse 目录条目详情（含任教课程）
type StaffDetailResponse struct {
	StaffListingResponse
	Courses []CourseResponse `json:"courses"`
}
