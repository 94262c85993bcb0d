package dto

// ── 邀请模块 DTO ──

// CreateStudentInviteRequest 签发学生邀请请求
type CreateStudentInviteRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	SemesterID  string `json:"semester_id" binding:"required,uuid"`
	ExpiresDays int    `json:"expires_days" binding:"omitempty,min=1,max=365"` // 默认 30 天
	// 可选：同时给该邮箱发送邀请邮件
	SendToEmail string `json:"send_to_email" binding:"omitempty,email"`
}

// CreateStaffInviteRequest 签发员工邀请请求
type CreateStaffInviteRequest struct {
	Name        string `json:"name"         binding:"required,min=2,max=100"`
	ExpiresDays int    `json:"expires_days" binding:"omitempty,min=1,max=365"`
	SendToEmail string `json:"send_to_email" binding:"omitempty,email"`
}

// InviteResponse 邀请签发响应
type InviteResponse struct {
	Token        string `json:"token"`
	Kind         string `json:"kind"` // student | staff
	Name         string `json:"name"`
	SemesterID   string `json:"semester_id,omitempty"`
	SemesterName string `json:"semester_name,omitempty"`
	ExpiresAt    string `json:"expires_at"`
	MailSent     bool   `json:"mail_sent"`
}

// InviteValidateResponse 邀请校验响应（注册页预检）
type InviteValidateResponse struct {
	Valid        bool   `json:"valid"`
	Kind         string `json:"kind,omitempty"`
	Name         string `json:"name,omitempty"`
	SemesterName string `json:"semester_name,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}
