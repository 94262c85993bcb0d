package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 邀请注册请求
// 注册是封闭的：必须携带有效的学生或员工邀请 token
type RegisterRequest struct {
	InviteToken string `json:"invite_token" binding:"required,uuid"`
	InviteKind  string `json:"invite_kind"  binding:"required,oneof=student staff"`
	Username    string `json:"username"     binding:"required,min=3,max=150"`
	Email       string `json:"email"        binding:"required,email"`
	Password    string `json:"password"     binding:"required,min=8,max=72"`
	FirstName   string `json:"first_name"   binding:"required,max=150"`
	LastName    string `json:"last_name"    binding:"max=150"`
	// 学生注册时用于认领名册行；留空则用 "FirstName LastName"
	AirtableName string `json:"airtable_name" binding:"max=200"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=150"`
	Email     *string `json:"email"      binding:"omitempty,email"`
}
