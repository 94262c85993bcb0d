package model

// HistoryEntry 组织历史页条目表 — 对应 history_entries
type HistoryEntry struct {
	EntryID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	Title   string `gorm:"type:varchar(200);not null"                     json:"title"`
	Slug    string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"slug"`
	Content string `gorm:"type:text;not null;default:''"                  json:"content"` // Markdown
	Visible bool   `gorm:"not null;default:true"                          json:"visible"`
	BaseModel
}

// TableName 指定表名
func (HistoryEntry) TableName() string { return "history_entries" }
