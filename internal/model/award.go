package model

import "time"

// ── 积分类型枚举 ──

const (
	AwardIntroPost       = "intro_post"
	AwardClassAttendance = "class_attendance"
	AwardHomework        = "homework"
	AwardEvent           = "event"
	AwardOfficeHours     = "office_hours"
	AwardPOTD            = "potd"
	AwardStaffBonus      = "staff_bonus"
	AwardHouseActivity   = "house_activity"
	AwardOther           = "other"
)

// DefaultAwardPoints 各积分类型的默认分值
var DefaultAwardPoints = map[string]int{
	AwardIntroPost:       1,
	AwardClassAttendance: 5,
	AwardHomework:        5,
	AwardEvent:           3,
	AwardOfficeHours:     2,
	AwardPOTD:            10,
	AwardStaffBonus:      2,
	AwardHouseActivity:   50,
	AwardOther:           0,
}

// AwardTypeLabels 积分类型显示名（矩阵视图与导出表头使用）
var AwardTypeLabels = map[string]string{
	AwardIntroPost:       "Introduction Post",
	AwardClassAttendance: "Class Attendance",
	AwardHomework:        "Homework Submission",
	AwardEvent:           "Club/Seminar/Event Attendance",
	AwardOfficeHours:     "Office Hours",
	AwardPOTD:            "Problem of the Day",
	AwardStaffBonus:      "Staff Bonus",
	AwardHouseActivity:   "House Activity Bonus",
	AwardOther:           "Other",
}

// AllAwardTypes 积分类型的固定展示顺序
var AllAwardTypes = []string{
	AwardIntroPost,
	AwardClassAttendance,
	AwardHomework,
	AwardEvent,
	AwardOfficeHours,
	AwardPOTD,
	AwardStaffBonus,
	AwardHouseActivity,
	AwardOther,
}

// IsValidAwardType 是否为合法积分类型
func IsValidAwardType(awardType string) bool {
	_, ok := DefaultAwardPoints[awardType]
	return ok
}

// Award 积分流水表 — 对应 awards
// student 为空时是学院级奖励（house 必填）；
// student 非空时 house 必须等于学生所在学院
type Award struct {
	AwardID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"award_id"`
	SemesterID  string    `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	StudentID   *string   `gorm:"type:uuid;index"                                json:"student_id,omitempty"`
	House       string    `gorm:"type:varchar(20);not null;default:'';index"     json:"house"`
	AwardType   string    `gorm:"type:varchar(30);not null"                      json:"award_type"`
	Points      int       `gorm:"not null"                                       json:"points"`
	Description string    `gorm:"type:text;not null;default:''"                  json:"description"`
	AwardedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"awarded_at"`
	AwardedByID *string   `gorm:"type:uuid"                                      json:"awarded_by_id,omitempty"`
	BaseModel

	// 关联
	Semester  *Semester `gorm:"foreignKey:SemesterID;references:SemesterID"  json:"semester,omitempty"`
	Student   *Student  `gorm:"foreignKey:StudentID;references:StudentID"    json:"student,omitempty"`
	AwardedBy *User     `gorm:"foreignKey:AwardedByID;references:UserID"     json:"awarded_by,omitempty"`
}

// TableName 指定表名
func (Award) TableName() string { return "awards" }
