package dto

// ── 纪念册模块 DTO ──

// UpsertYearbookEntryRequest 创建或更新本人纪念册条目请求
type UpsertYearbookEntryRequest struct {
	DisplayName       string `json:"display_name" binding:"required,min=2,max=100"`
	Bio               string `json:"bio"          binding:"max=1000"`
	DiscordUsername   string `json:"discord_username"   binding:"max=100"`
	InstagramUsername string `json:"instagram_username" binding:"max=100"`
	GithubUsername    string `json:"github_username"    binding:"max=100"`
	WebsiteURL        string `json:"website_url" binding:"omitempty,url"`
}

// YearbookEntryResponse 纪念册条目响应
type YearbookEntryResponse struct {
	ID                string `json:"id"`
	StudentID         string `json:"student_id"`
	DisplayName       string `json:"display_name"`
	House             string `json:"house,omitempty"`
	Bio               string `json:"bio,omitempty"`
	DiscordUsername   string `json:"discord_username,omitempty"`
	InstagramUsername string `json:"instagram_username,omitempty"`
	GithubUsername    string `json:"github_username,omitempty"`
	WebsiteURL        string `json:"website_url,omitempty"`
}

// YearbookResponse 学期纪念册响应
type YearbookResponse struct {
	Semester SemesterResponse        `json:"semester"`
	Entries  []YearbookEntryResponse `json:"entries"`
	CanEdit  bool                    `json:"can_edit"` // 学期未结束且调用者是该学期学生
}
