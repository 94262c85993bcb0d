package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	SemesterID              string  `json:"semester_id"          binding:"required,uuid"`
	Name                    string  `json:"name"                 binding:"required,min=2,max=200"`
	IsClub                  bool    `json:"is_club"`
	Description             string  `json:"description"`
	Difficulty              string  `json:"difficulty"           binding:"max=100"`
	LessonPlan              string  `json:"lesson_plan"          binding:"omitempty,url"`
	RegularMeetingTime      string  `json:"regular_meeting_time" binding:"max=200"`
	InstructorID            *string `json:"instructor_id"        binding:"omitempty,uuid"`
	ClassroomDirectLink     string  `json:"classroom_direct_link"     binding:"omitempty,url"`
	ClassroomJoinLink       string  `json:"classroom_join_link"       binding:"omitempty,url"`
	ZoomMeetingLink         string  `json:"zoom_meeting_link"         binding:"omitempty,url"`
	DiscordWebhook          string  `json:"discord_webhook"           binding:"omitempty,url"`
	DiscordRoleID           string  `json:"discord_role_id"           binding:"max=50"`
	DiscordRemindersEnabled *bool   `json:"discord_reminders_enabled"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name                    *string `json:"name"                 binding:"omitempty,min=2,max=200"`
	Description             *string `json:"description"`
	Difficulty              *string `json:"difficulty"           binding:"omitempty,max=100"`
	LessonPlan              *string `json:"lesson_plan"          binding:"omitempty,url"`
	RegularMeetingTime      *string `json:"regular_meeting_time" binding:"omitempty,max=200"`
	InstructorID            *string `json:"instructor_id"        binding:"omitempty,uuid"`
	ClearInstructor         bool    `json:"clear_instructor"`
	ClassroomDirectLink     *string `json:"classroom_direct_link"     binding:"omitempty,url"`
	ClassroomJoinLink       *string `json:"classroom_join_link"       binding:"omitempty,url"`
	ZoomMeetingLink         *string `json:"zoom_meeting_link"         binding:"omitempty,url"`
	DiscordWebhook          *string `json:"discord_webhook"           binding:"omitempty,url"`
	DiscordRoleID           *string `json:"discord_role_id"           binding:"omitempty,max=50"`
	DiscordRemindersEnabled *bool   `json:"discord_reminders_enabled"`
}

// CourseResponse 课程列表项响应
type CourseResponse struct {
	ID                 string  `json:"id"`
	SemesterID         string  `json:"semester_id"`
	Name               string  `json:"name"`
	IsClub             bool    `json:"is_club"`
	Description        string  `json:"description"`
	Difficulty         string  `json:"difficulty"`
	RegularMeetingTime string  `json:"regular_meeting_time"`
	InstructorName     string  `json:"instructor_name,omitempty"`
	InstructorSlug     string  `json:"instructor_slug,omitempty"`
	LeaderNames        []string `json:"leader_names,omitempty"`
}

// CourseDetailResponse 课程详情响应（含访问控制后的扩展信息）
type CourseDetailResponse struct {
	CourseResponse
	LessonPlan          string            `json:"lesson_plan,omitempty"`
	ClassroomDirectLink string            `json:"classroom_direct_link,omitempty"`
	ClassroomJoinLink   string            `json:"classroom_join_link,omitempty"`
	ZoomMeetingLink     string            `json:"zoom_meeting_link,omitempty"`
	Semester            SemesterResponse  `json:"semester"`
	Meetings            []MeetingResponse `json:"meetings"`
	NextMeeting         *MeetingResponse  `json:"next_meeting,omitempty"`
	Members             []MemberResponse  `json:"members"`
	IsLeader            bool              `json:"is_leader"`
	IsEnrolled          bool              `json:"is_enrolled"`
	CanJoinDrop         bool              `json:"can_join_drop"`
}

// MemberResponse 课程成员响应
type MemberResponse struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	House     string `json:"house,omitempty"`
}

// CatalogResponse 学期课程目录响应（班级与社团分列）
type CatalogResponse struct {
	Semester SemesterResponse `json:"semester"`
	Classes  []CourseResponse `json:"classes"`
	Clubs    []CourseResponse `json:"clubs"`
}

// MyClubsResponse 当前用户的社团概览
type MyClubsResponse struct {
	Semester  SemesterResponse `json:"semester"`
	Enrolled  []CourseResponse `json:"enrolled"`
	Available []CourseResponse `json:"available"`
}

// ── 课程场次 DTO ──

// CreateMeetingRequest 创建场次请求
type CreateMeetingRequest struct {
	Title     string `json:"title"      binding:"max=200"`
	StartTime string `json:"start_time" binding:"required"` // RFC 3339
}

// UpdateMeetingRequest 更新场次请求
type UpdateMeetingRequest struct {
	Title     *string `json:"title"      binding:"omitempty,max=200"`
	StartTime *string `json:"start_time"`
}

// MeetingResponse 场次响应
type MeetingResponse struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name,omitempty"`
	Title      string `json:"title"`
	StartTime  string `json:"start_time"`
}
