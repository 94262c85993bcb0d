package model

import "time"

// CourseMeeting 课程场次表 — 对应 course_meetings
type CourseMeeting struct {
	MeetingID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"meeting_id"`
	CourseID     string    `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Title        string    `gorm:"type:varchar(200);not null;default:''"          json:"title"`
	StartTime    time.Time `gorm:"not null;index"                                 json:"start_time"`
	ReminderSent bool      `gorm:"not null;default:false"                         json:"reminder_sent"`
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (CourseMeeting) TableName() string { return "course_meetings" }
