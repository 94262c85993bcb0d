package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	"github.com/vEnhance/atheweb/pkg/discord"
	"github.com/vEnhance/atheweb/pkg/jwt"
	"github.com/vEnhance/atheweb/pkg/mailer"
	"github.com/vEnhance/atheweb/pkg/redis"
)

// Caller 当前请求的调用者身份（JWT 中间件解出后由 handler 传入）
type Caller struct {
	UserID string
	Role   string
}

// IsStaff 员工及以上（staff 或 admin）；匿名调用者（nil）返回 false
func (c *Caller) IsStaff() bool {
	return c != nil && (c.Role == model.RoleStaff || c.Role == model.RoleAdmin)
}

// IsAdmin 管理员
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

// splitNames 把一行一个的名单拆成去掉空白的名字列表
func splitNames(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Semester    SemesterService
	Course      CourseService
	Event       EventService
	Calendar    CalendarService
	Award       AwardService
	Student     StudentService
	Staff       StaffService
	Invite      InviteService
	Blog        BlogService
	Yearbook    YearbookService
	Attendance  AttendanceService
	SiteContent SiteContentService
	Export      ExportService
	Import      ImportService
	Notify      NotifyService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	redisClient *redis.Client,
	mail mailer.Mailer,
	webhook *discord.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, redisClient, logger),
		Semester:    NewSemesterService(repo, logger),
		Course:      NewCourseService(repo, logger),
		Event:       NewEventService(repo, logger),
		Calendar:    NewCalendarService(repo, logger),
		Award:       NewAwardService(repo, logger),
		Student:     NewStudentService(repo, logger),
		Staff:       NewStaffService(repo, logger),
		Invite:      NewInviteService(cfg, repo, mail, logger),
		Blog:        NewBlogService(repo, logger),
		Yearbook:    NewYearbookService(repo, logger),
		Attendance:  NewAttendanceService(repo, logger),
		SiteContent: NewSiteContentService(repo, logger),
		Export:      NewExportService(repo, logger),
		Import:      NewImportService(repo, logger),
		Notify:      NewNotifyService(cfg, repo, webhook, logger),
	}
}
