package model

import (
	"time"

	"github.com/jinzhu/now"
)

// Semester 学期表 — 对应 semesters
// 课程、学生、积分都以学期为时间分区
type Semester struct {
	SemesterID            string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	Name                  string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Slug                  string     `gorm:"type:varchar(50);not null;uniqueIndex"          json:"slug"`
	StartDate             time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate               time.Time  `gorm:"type:date;not null"                             json:"end_date"`
	Visible               bool       `gorm:"not null;default:true"                          json:"visible"`
	HousePointsFreezeDate *time.Time `json:"house_points_freeze_date,omitempty"`
	// 班级出勤积分衰减阈值：学生 class_attendance 累计达到 5*threshold 分后，
	// 每次出勤从 5 分降为 3 分
	HousePointsClassThreshold int `gorm:"not null;default:14" json:"house_points_class_threshold"`
	BaseModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }

// ContainsDate 日期是否落在 [StartDate, EndDate] 区间内（按日比较）
func (s *Semester) ContainsDate(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(dateOnly(s.StartDate)) && !d.After(dateOnly(s.EndDate))
}

// HasEnded 学期是否已结束（结束日之后）
func (s *Semester) HasEnded(t time.Time) bool {
	return dateOnly(t).After(dateOnly(s.EndDate))
}

func dateOnly(t time.Time) time.Time {
	return now.New(t).BeginningOfDay()
}
