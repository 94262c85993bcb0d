package model

// Course 课程表 — 对应 courses
// is_club 为 true 的课程是社团：学生可在活跃学期内自由加入/退出；
// 普通班级的名单由员工管理
type Course struct {
	CourseID                string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	SemesterID              string  `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	Name                    string  `gorm:"type:varchar(200);not null"                     json:"name"`
	IsClub                  bool    `gorm:"not null;default:false"                         json:"is_club"`
	Description             string  `gorm:"type:text;not null;default:''"                  json:"description"`
	Difficulty              string  `gorm:"type:varchar(100);not null;default:''"          json:"difficulty"`
	LessonPlan              string  `gorm:"type:text;not null;default:''"                  json:"lesson_plan"`
	RegularMeetingTime      string  `gorm:"type:varchar(200);not null;default:''"          json:"regular_meeting_time"`
	InstructorID            *string `gorm:"type:uuid"                                      json:"instructor_id,omitempty"`
	ClassroomDirectLink     string  `gorm:"type:varchar(500);not null;default:''"          json:"classroom_direct_link"`
	ClassroomJoinLink       string  `gorm:"type:varchar(500);not null;default:''"          json:"classroom_join_link"`
	ZoomMeetingLink         string  `gorm:"type:varchar(500);not null;default:''"          json:"zoom_meeting_link"`
	DiscordWebhook          string  `gorm:"type:varchar(500);not null;default:''"          json:"-"`
	DiscordRoleID           string  `gorm:"type:varchar(50);not null;default:''"           json:"-"`
	DiscordRemindersEnabled bool    `gorm:"not null;default:true"                          json:"discord_reminders_enabled"`
	BaseModel

	// 关联
	Semester   *Semester     `gorm:"foreignKey:SemesterID;references:SemesterID"   json:"semester,omitempty"`
	Instructor *StaffListing `gorm:"foreignKey:InstructorID;references:ListingID"  json:"instructor,omitempty"`
	Leaders    []User        `gorm:"many2many:course_leaders;foreignKey:CourseID;joinForeignKey:CourseID;references:UserID;joinReferences:UserID" json:"leaders,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
