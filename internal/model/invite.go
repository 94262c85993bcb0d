package model

import "time"

// 邀请链接：注册是封闭的，唯一入口是员工签发的邀请链接。
// UUID 主键本身就是邀请 token。

// StudentInvite 学生邀请链接表 — 对应 student_invites
type StudentInvite struct {
	InviteID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_id"`
	Name        string    `gorm:"type:varchar(100);not null"                     json:"name"` // 描述用途，如 "Spring 2025 Students"
	SemesterID  string    `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	ExpiresAt   time.Time `gorm:"not null"                                       json:"expires_at"`
	CreatedByID *string   `gorm:"type:uuid"                                      json:"created_by_id,omitempty"`
	BaseModel

	// 关联
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
}

// TableName 指定表名
func (StudentInvite) TableName() string { return "student_invites" }

// IsExpired 邀请是否已过期
func (i *StudentInvite) IsExpired(t time.Time) bool {
	return t.After(i.ExpiresAt)
}

// StaffInvite 员工邀请链接表 — 对应 staff_invites
type StaffInvite struct {
	InviteID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_id"`
	Name        string    `gorm:"type:varchar(100);not null"                     json:"name"`
	ExpiresAt   time.Time `gorm:"not null"                                       json:"expires_at"`
	CreatedByID *string   `gorm:"type:uuid"                                      json:"created_by_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (StaffInvite) TableName() string { return "staff_invites" }

// IsExpired 邀请是否已过期
func (i *StaffInvite) IsExpired(t time.Time) bool {
	return t.After(i.ExpiresAt)
}
