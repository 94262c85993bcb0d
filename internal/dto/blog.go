package dto

// ── 博客模块 DTO ──

// CreatePostRequest 创建文章请求（初始为草稿）
type CreatePostRequest struct {
	Title         string `json:"title"    binding:"required,min=2,max=200"`
	Subtitle      string `json:"subtitle" binding:"max=200"`
	Slug          string `json:"slug"     binding:"required,min=2,max=100"`
	DisplayAuthor string `json:"display_author" binding:"max=100"`
	Content       string `json:"content"`
}

// UpdatePostRequest 更新文章请求
type UpdatePostRequest struct {
	Title         *string `json:"title"    binding:"omitempty,min=2,max=200"`
	Subtitle      *string `json:"subtitle" binding:"omitempty,max=200"`
	Slug          *string `json:"slug"     binding:"omitempty,min=2,max=100"`
	DisplayAuthor *string `json:"display_author" binding:"omitempty,max=100"`
	Content       *string `json:"content"`
	DisplayDate   *string `json:"display_date"` // "2026-03-14"，仅员工发布时调整
}

// PostResponse 文章响应
type PostResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle,omitempty"`
	Slug          string `json:"slug"`
	DisplayAuthor string `json:"display_author"`
	Content       string `json:"content,omitempty"`
	Published     bool   `json:"published"`
	DisplayDate   string `json:"display_date"`
}

// MyPostsResponse 我的文章（草稿与已发布分列）
type MyPostsResponse struct {
	Pending   []PostResponse `json:"pending"`
	Published []PostResponse `json:"published"`
	CanCreate bool           `json:"can_create"` // 草稿数未到上限
}

// CreatePhotoRequest 登记博客图片请求
type CreatePhotoRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	URL  string `json:"url"  binding:"required,url"`
}

// PhotoResponse 博客图片响应
type PhotoResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}
