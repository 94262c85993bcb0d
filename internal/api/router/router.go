package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/api/handler"
	"github.com/vEnhance/atheweb/internal/api/middleware"
	"github.com/vEnhance/atheweb/pkg/jwt"
	"github.com/vEnhance/atheweb/pkg/redis"
)

// 请求体上限与认证接口速率限制
const (
	maxBodyBytes   = 1 << 20 // 1MB
	authRateLimit  = 20
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	optionalAuth := middleware.OptionalAuth(jwtMgr, rdb)
	staffOnly := middleware.RoleAuth("staff", "admin")
	adminOnly := middleware.RoleAuth("admin")

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，限速防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, authRateLimit, authRateWindow))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.GET("/invites/:kind/:token", h.Invite.Validate)
		}

		// 公开站点内容
		public := v1.Group("")
		{
			// 课程目录与学期（匿名可见；员工登录后可见隐藏学期）
			public.GET("/catalog", optionalAuth, h.Course.Catalog)
			public.GET("/catalog/:slug", optionalAuth, h.Course.CatalogBySemester)
			public.GET("/courses/:id", optionalAuth, h.Course.GetDetail)
			public.GET("/semesters", optionalAuth, h.Semester.List)
			public.GET("/semesters/current", h.Semester.GetCurrent)
			public.GET("/semesters/slug/:slug", h.Semester.GetBySlug)
			public.GET("/semesters/:id", h.Semester.GetByID)

			// 博客（草稿仅作者与员工可见）
			public.GET("/blog/posts", h.Blog.ListPublished)
			public.GET("/blog/posts/:slug", optionalAuth, h.Blog.GetBySlug)

			// 员工目录
			public.GET("/staff", h.Staff.Directory)
			public.GET("/staff/past", h.Staff.PastStaff)
			public.GET("/staff/:slug", h.Staff.GetBySlug)

			// 历史与申请页
			public.GET("/history", optionalAuth, h.SiteContent.ListHistory)
			public.GET("/history/:slug", optionalAuth, h.SiteContent.GetHistoryEntry)
			public.GET("/apply", h.SiteContent.ApplyPage)
			public.GET("/apply/past", h.SiteContent.PastProblemSets)
		}

		// 日历订阅：日历客户端不带 Authorization 头，走 ?token= 认证
		v1.GET("/calendar/feed.ics", middleware.QueryTokenAuth(jwtMgr, rdb), h.Calendar.ICSFeed)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.PUT("/auth/profile", h.Auth.UpdateProfile)

			// 社团加退
			authorized.POST("/courses/:id/join", h.Course.JoinClub)
			authorized.POST("/courses/:id/drop", h.Course.DropClub)
			clubs := authorized.Group("/clubs")
			{
				clubs.GET("/mine", h.Course.MyClubs)
				clubs.GET("/past", h.Course.PastClubs)
			}

			// 课程与场次管理
			authorized.POST("/courses", adminOnly, h.Course.Create)
			authorized.PUT("/courses/:id", adminOnly, h.Course.Update)
			authorized.DELETE("/courses/:id", adminOnly, h.Course.Delete)
			authorized.POST("/courses/:id/meetings", adminOnly, h.Course.CreateMeeting)
			authorized.PUT("/meetings/:id", adminOnly, h.Course.UpdateMeeting)
			authorized.DELETE("/meetings/:id", adminOnly, h.Course.DeleteMeeting)

			// 学期管理
			authorized.POST("/semesters", adminOnly, h.Semester.Create)
			authorized.PUT("/semesters/:id", adminOnly, h.Semester.Update)
			authorized.DELETE("/semesters/:id", adminOnly, h.Semester.Delete)

			// 学院积分模块
			housePoints := authorized.Group("/house-points")
			{
				housePoints.GET("/leaderboard", h.Award.Leaderboard)
				housePoints.GET("/houses/:house", h.Award.HouseDetail) // 非员工仅限本人学院（Service 层鉴权）
				housePoints.GET("/houses/:house/matrix", staffOnly, h.Award.HouseMatrix)
				housePoints.GET("/awards/my", h.Award.MyAwards)
				housePoints.GET("/awards", staffOnly, h.Award.List)
				housePoints.POST("/awards", staffOnly, h.Award.Create)
				housePoints.PUT("/awards/:id", staffOnly, h.Award.Update)
				housePoints.DELETE("/awards/:id", staffOnly, h.Award.Delete)
				housePoints.POST("/awards/bulk", staffOnly, h.Award.BulkAward)
			}

			// 学生名册模块
			students := authorized.Group("/students")
			{
				students.GET("", staffOnly, h.Student.List)
				students.GET("/:id", staffOnly, h.Student.Get)
				students.POST("", adminOnly, h.Student.Create)
				students.PUT("/:id", adminOnly, h.Student.Update)
				students.DELETE("/:id", adminOnly, h.Student.Delete)
				students.POST("/sorting-hat", adminOnly, h.Student.SortingHat)
				students.POST("/auto-sort", adminOnly, h.Student.AutoSort)
			}

			// 员工目录管理
			authorized.PUT("/staff/me", staffOnly, h.Staff.UpdateOwn)
			authorized.POST("/staff", adminOnly, h.Staff.Create)
			authorized.PUT("/staff/:id", adminOnly, h.Staff.Update)
			authorized.DELETE("/staff/:id", adminOnly, h.Staff.Delete)

			// 邀请模块
			invites := authorized.Group("/invites")
			{
				invites.POST("/students", staffOnly, h.Invite.CreateStudentInvite)
				invites.GET("/students", staffOnly, h.Invite.ListStudentInvites)
				invites.DELETE("/students/:token", staffOnly, h.Invite.DeleteStudentInvite)
				invites.POST("/staff", adminOnly, h.Invite.CreateStaffInvite)
				invites.GET("/staff", adminOnly, h.Invite.ListStaffInvites)
				invites.DELETE("/staff/:token", adminOnly, h.Invite.DeleteStaffInvite)
			}

			// 博客（创建与编辑限本人草稿，Service 层鉴权；发布与图片为员工操作）
			blog := authorized.Group("/blog")
			{
				blog.GET("/posts/my", h.Blog.MyPosts)
				blog.POST("/posts", h.Blog.Create)
				blog.PUT("/posts/:slug", h.Blog.Update)
				blog.DELETE("/posts/:slug", h.Blog.Delete)
				blog.POST("/posts/:slug/publish", staffOnly, h.Blog.Publish)
				blog.POST("/photos", staffOnly, h.Blog.CreatePhoto)
				blog.GET("/photos", staffOnly, h.Blog.ListPhotos)
				blog.DELETE("/photos/:id", staffOnly, h.Blog.DeletePhoto)
			}

			// 纪念册模块（访问范围 Service 层鉴权）
			yearbook := authorized.Group("/yearbook")
			{
				yearbook.GET("", h.Yearbook.Latest)
				yearbook.GET("/:slug", h.Yearbook.BySemester)
				yearbook.GET("/:slug/me", h.Yearbook.MyEntry)
				yearbook.PUT("/:slug/me", h.Yearbook.Upsert)
			}

			// 出勤模块（助教记录本人出勤；管理端查看全部）
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("", staffOnly, h.Attendance.Log)
				attendance.GET("/my", staffOnly, h.Attendance.MyRecords)
				attendance.GET("", staffOnly, h.Attendance.AllRecords)
				attendance.POST("/class", staffOnly, h.Attendance.BulkClassAttendance)
			}

			// 活动模块
			events := authorized.Group("/events")
			{
				events.GET("", h.Event.ListBySemester)
				events.GET("/:id", h.Event.GetByID)
				events.POST("", adminOnly, h.Event.Create)
				events.PUT("/:id", adminOnly, h.Event.Update)
				events.DELETE("/:id", adminOnly, h.Event.Delete)
			}

			// 成员日历
			authorized.GET("/calendar", h.Calendar.MonthView)
			authorized.GET("/calendar/upcoming", h.Calendar.Upcoming)

			// 历史与题集管理
			authorized.POST("/history", adminOnly, h.SiteContent.CreateHistoryEntry)
			authorized.PUT("/history/:id", adminOnly, h.SiteContent.UpdateHistoryEntry)
			authorized.DELETE("/history/:id", adminOnly, h.SiteContent.DeleteHistoryEntry)
			problemSets := authorized.Group("/problem-sets")
			{
				problemSets.GET("", adminOnly, h.SiteContent.ListProblemSets)
				problemSets.POST("", adminOnly, h.SiteContent.CreateProblemSet)
				problemSets.PUT("/:id", adminOnly, h.SiteContent.UpdateProblemSet)
				problemSets.DELETE("/:id", adminOnly, h.SiteContent.DeleteProblemSet)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/standings", staffOnly, h.Export.ExportStandings)
				export.GET("/roster", staffOnly, h.Export.ExportRoster)
			}
		}
	}

	return r
}
