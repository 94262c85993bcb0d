package dto

// ── 历史页面 DTO ──

// CreateHistoryEntryRequest 创建历史条目请求
type CreateHistoryEntryRequest struct {
	Title   string `json:"title"   binding:"required,min=2,max=200"`
	Slug    string `json:"slug"    binding:"required,min=2,max=100"`
	Content string `json:"content"`
	Visible *bool  `json:"visible"`
}

// UpdateHistoryEntryRequest 更新历史条目请求
type UpdateHistoryEntryRequest struct {
	Title   *string `json:"title"   binding:"omitempty,min=2,max=200"`
	Slug    *string `json:"slug"    binding:"omitempty,min=2,max=100"`
	Content *string `json:"content"`
	Visible *bool   `json:"visible"`
}

// HistoryEntryResponse 历史条目响应
type HistoryEntryResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content,omitempty"`
	Visible bool   `json:"visible"`
}

// ── 申请题集 DTO ──

// CreateProblemSetRequest 创建题集请求
type CreateProblemSetRequest struct {
	Name          string `json:"name"     binding:"required,min=2,max=200"`
	Deadline      string `json:"deadline" binding:"required"` // RFC 3339
	Status        string `json:"status"   binding:"omitempty,oneof=draft active completed"`
	FileURL       string `json:"file_url" binding:"omitempty,url"`
	Instructions  string `json:"instructions"`
	ClosedMessage string `json:"closed_message"`
}

// UpdateProblemSetRequest 更新题集请求
type UpdateProblemSetRequest struct {
	Name          *string `json:"name"     binding:"omitempty,min=2,max=200"`
	Deadline      *string `json:"deadline"`
	Status        *string `json:"status"   binding:"omitempty,oneof=draft active completed"`
	FileURL       *string `json:"file_url" binding:"omitempty,url"`
	Instructions  *string `json:"instructions"`
	ClosedMessage *string `json:"closed_message"`
}

// ProblemSetResponse 题集响应
type ProblemSetResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Deadline      string `json:"deadline"`
	Status        string `json:"status"`
	FileURL       string `json:"file_url,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	ClosedMessage string `json:"closed_message,omitempty"`
}

// ApplyPageResponse 申请页响应：开放时列出 active 题集，关闭时给出最近一期的关闭提示
type ApplyPageResponse struct {
	Open          bool                 `json:"open"`
	Active        []ProblemSetResponse `json:"active,omitempty"`
	ClosedMessage string               `json:"closed_message,omitempty"`
}
