package model

import "time"

// BlogPost 博客文章表 — 对应 blog_posts
// published 为 false 的文章是草稿：仅作者和员工可见，
// 每位作者最多同时持有 3 篇草稿
type BlogPost struct {
	PostID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"post_id"`
	Title         string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Subtitle      string    `gorm:"type:varchar(200);not null;default:''"          json:"subtitle"`
	Slug          string    `gorm:"type:varchar(100);not null;uniqueIndex"         json:"slug"`
	DisplayAuthor string    `gorm:"type:varchar(100);not null;default:''"          json:"display_author"`
	CreatorID     string    `gorm:"type:uuid;not null;index"                       json:"creator_id"`
	Content       string    `gorm:"type:text;not null;default:''"                  json:"content"` // Markdown
	Published     bool      `gorm:"not null;default:false"                         json:"published"`
	DisplayDate   time.Time `gorm:"type:date;not null;default:CURRENT_DATE"        json:"display_date"`
	BaseModel

	// 关联
	Creator *User `gorm:"foreignKey:CreatorID;references:UserID" json:"creator,omitempty"`
}

// TableName 指定表名
func (BlogPost) TableName() string { return "blog_posts" }

// BlogPhoto 博客图片表 — 对应 blog_photos
// 上传后通过 URL 嵌入 Markdown 正文
type BlogPhoto struct {
	PhotoID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"photo_id"`
	Name       string    `gorm:"type:varchar(100);not null"                     json:"name"`
	URL        string    `gorm:"type:varchar(500);not null"                     json:"url"`
	UploadedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"uploaded_at"`
	BaseModel
}

// TableName 指定表名
func (BlogPhoto) TableName() string { return "blog_photos" }
