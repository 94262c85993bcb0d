package model

import "time"

// Attendance 助教出勤记录表 — 对应 ta_attendance
// 员工记录自己在某个社团某天的值班出勤；(user, club, date) 唯一
type Attendance struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	UserID       string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	ClubID       string    `gorm:"type:uuid;not null;index"                       json:"club_id"`
	Date         time.Time `gorm:"type:date;not null"                             json:"date"`
	BaseModel

	// 关联
	User *User   `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
	Club *Course `gorm:"foreignKey:ClubID;references:CourseID" json:"club,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "ta_attendance" }
