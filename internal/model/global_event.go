package model

import "time"

// GlobalEvent 全局活动表 — 对应 global_events
// 面向整个学期的活动（讲座、晚会等），与具体课程无关
type GlobalEvent struct {
	EventID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	SemesterID  string    `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	StartTime   time.Time `gorm:"not null;index"                                 json:"start_time"`
	Description string    `gorm:"type:text;not null;default:''"                  json:"description"`
	Link        string    `gorm:"type:varchar(500);not null;default:''"          json:"link"`
	BaseModel

	// 关联
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
}

// TableName 指定表名
func (GlobalEvent) TableName() string { return "global_events" }
