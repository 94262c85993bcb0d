package model

import "time"

// ── 申请题集状态枚举 ──

const (
	PSetStatusDraft     = "draft"
	PSetStatusActive    = "active"
	PSetStatusCompleted = "completed"
)

// IsValidPSetStatus 是否为合法状态值
func IsValidPSetStatus(status string) bool {
	return status == PSetStatusDraft || status == PSetStatusActive || status == PSetStatusCompleted
}

// ProblemSet 申请题集表 — 对应 problem_sets
// 新成员通过完成申请题集加入组织；active 状态的题集展示在申请页
type ProblemSet struct {
	PSetID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pset_id"`
	Name          string    `gorm:"type:varchar(200);not null"                     json:"name"`
	Deadline      time.Time `gorm:"not null"                                       json:"deadline"`
	Status        string    `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | active | completed
	FileURL       string    `gorm:"type:varchar(500);not null;default:''"          json:"file_url"`
	Instructions  string    `gorm:"type:text;not null;default:''"                  json:"instructions"`   // Markdown，active 时展示
	ClosedMessage string    `gorm:"type:text;not null;default:''"                  json:"closed_message"` // Markdown，无 active 题集时展示
	BaseModel
}

// TableName 指定表名
func (ProblemSet) TableName() string { return "problem_sets" }
