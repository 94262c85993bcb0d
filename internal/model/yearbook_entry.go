package model

// YearbookEntry 纪念册条目表 — 对应 yearbook_entries
// 每个学生一条；学期结束后不可再编辑
type YearbookEntry struct {
	EntryID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	StudentID         string `gorm:"type:uuid;not null;uniqueIndex"                 json:"student_id"`
	DisplayName       string `gorm:"type:varchar(100);not null"                     json:"display_name"`
	Bio               string `gorm:"type:varchar(1000);not null;default:''"         json:"bio"`
	DiscordUsername   string `gorm:"type:varchar(100);not null;default:''"          json:"discord_username"`
	InstagramUsername string `gorm:"type:varchar(100);not null;default:''"          json:"instagram_username"`
	GithubUsername    string `gorm:"type:varchar(100);not null;default:''"          json:"github_username"`
	WebsiteURL        string `gorm:"type:varchar(500);not null;default:''"          json:"website_url"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (YearbookEntry) TableName() string { return "yearbook_entries" }
