package handler

import (
	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Semester    *SemesterHandler
	Course      *CourseHandler
	Student     *StudentHandler
	Award       *AwardHandler
	Staff       *StaffHandler
	Invite      *InviteHandler
	Blog        *BlogHandler
	Yearbook    *YearbookHandler
	Attendance  *AttendanceHandler
	Event       *EventHandler
	Calendar    *CalendarHandler
	SiteContent *SiteContentHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	var authCfg *config.AuthConfig
	if cfg != nil {
		authCfg = &cfg.Auth
	}
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth, authCfg),
		Semester:    NewSemesterHandler(svc.Semester),
		Course:      NewCourseHandler(svc.Course),
		Student:     NewStudentHandler(svc.Student),
		Award:       NewAwardHandler(svc.Award),
		Staff:       NewStaffHandler(svc.Staff),
		Invite:      NewInviteHandler(svc.Invite),
		Blog:        NewBlogHandler(svc.Blog),
		Yearbook:    NewYearbookHandler(svc.Yearbook),
		Attendance:  NewAttendanceHandler(svc.Attendance),
		Event:       NewEventHandler(svc.Event),
		Calendar:    NewCalendarHandler(svc.Calendar),
		SiteContent: NewSiteContentHandler(svc.SiteContent),
		Export:      NewExportHandler(svc.Export),
	}
}
