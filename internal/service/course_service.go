package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	pkgerrors "github.com/vEnhance/atheweb/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrNotAClub          = errors.New("this course is not a club")
	ErrSemesterNotActive = errors.New("this semester is not active")
	ErrNotEnrolled       = errors.New("you are not enrolled in this club")
	ErrInvalidStartTime  = errors.New("start_time must be in RFC 3339 format")
)

// CourseService 课程业务接口
type CourseService interface {
	// ── 目录与详情 ──
	Catalog(ctx context.Context, semesterSlug string, caller *Caller) (*dto.CatalogResponse, error)
	GetDetail(ctx context.Context, courseID string, caller *Caller) (*dto.CourseDetailResponse, error)

	// ── 管理 ──
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string) error

	// ── 社团加退 ──
	JoinClub(ctx context.Context, courseID string, caller *Caller) error
	DropClub(ctx context.Context, courseID string, caller *Caller) error
	MyClubs(ctx context.Context, caller *Caller) ([]dto.MyClubsResponse, error)
	PastClubs(ctx context.Context, caller *Caller) ([]dto.MyClubsResponse, error)

	// ── 场次管理 ──
	CreateMeeting(ctx context.Context, courseID string, req *dto.CreateMeetingRequest) (*dto.MeetingResponse, error)
	UpdateMeeting(ctx context.Context, meetingID string, req *dto.UpdateMeetingRequest) (*dto.MeetingResponse, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Catalog ──────────────────────

// Catalog 学期课程目录。slug 为空时落到最新可见学期；
// 非员工访问隐藏学期一律拒绝
func (s *courseService) Catalog(ctx context.Context, semesterSlug string, caller *Caller) (*dto.CatalogResponse, error) {
	var semester *model.Semester
	var err error
	if semesterSlug == "" {
		semester, err = latestVisibleSemester(ctx, s.repo, caller.IsStaff())
	} else {
		semester, err = s.repo.Semester.GetBySlug(ctx, semesterSlug)
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
	}
	if err != nil {
		if errors.Is(err, ErrSemesterNotFound) {
			return nil, err
		}
		s.logger.Error("解析目录学期失败", zap.Error(err))
		return nil, err
	}

	if !semester.Visible && !caller.IsStaff() {
		return nil, ErrSemesterNotFound
	}

	courses, err := s.repo.Course.ListBySemester(ctx, semester.SemesterID)
	if err != nil {
		s.logger.Error("列出学期课程失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.CatalogResponse{
		Semester: semesterToResponse(semester),
		Classes:  make([]dto.CourseResponse, 0),
		Clubs:    make([]dto.CourseResponse, 0),
	}
	for i := range courses {
		cr := courseToResponse(&courses[i])
		if courses[i].IsClub {
			resp.Clubs = append(resp.Clubs, cr)
		} else {
			resp.Classes = append(resp.Classes, cr)
		}
	}
	return resp, nil
}

// ────────────────────── GetDetail ──────────────────────

// GetDetail 课程详情。访问规则：
// 员工永远可见；隐藏学期对其他人关闭；领队可见；
// 社团对本学期的任何学生开放；班级仅限已选课学生
func (s *courseService) GetDetail(ctx context.Context, courseID string, caller *Caller) (*dto.CourseDetailResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}
	semester := course.Semester

	isLeader, err := s.repo.Course.IsLeader(ctx, course.CourseID, caller.UserID)
	if err != nil {
		s.logger.Error("查询领队身份失败", zap.Error(err))
		return nil, err
	}

	var student *model.Student
	st, err := s.repo.Student.GetByUserAndSemester(ctx, caller.UserID, course.SemesterID)
	if err == nil {
		student = st
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生行失败", zap.Error(err))
		return nil, err
	}

	isEnrolled := false
	if student != nil {
		isEnrolled, err = s.repo.Student.IsEnrolled(ctx, student.StudentID, course.CourseID)
		if err != nil {
			s.logger.Error("查询选课状态失败", zap.Error(err))
			return nil, err
		}
	}

	if !s.canViewCourse(caller, course, semester, isLeader, student, isEnrolled) {
		return nil, pkgerrors.ErrPermissionDenied
	}

	meetings, err := s.repo.Course.ListMeetingsByCourse(ctx, course.CourseID)
	if err != nil {
		s.logger.Error("列出课程场次失败", zap.Error(err))
		return nil, err
	}
	members, err := s.repo.Student.ListEnrolledStudents(ctx, course.CourseID)
	if err != nil {
		s.logger.Error("列出课程成员失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.CourseDetailResponse{
		CourseResponse:      courseToResponse(course),
		LessonPlan:          course.LessonPlan,
		ClassroomDirectLink: course.ClassroomDirectLink,
		ClassroomJoinLink:   course.ClassroomJoinLink,
		ZoomMeetingLink:     course.ZoomMeetingLink,
		Semester:            semesterToResponse(semester),
		Meetings:            make([]dto.MeetingResponse, 0, len(meetings)),
		Members:             make([]dto.MemberResponse, 0, len(members)),
		IsLeader:            isLeader,
		IsEnrolled:          isEnrolled,
		CanJoinDrop:         course.IsClub && semester.ContainsDate(time.Now()),
	}

	// 下一场：开始时间晚于一小时前的最早场次（刚开始的场次仍算"当前"）
	cutoff := time.Now().Add(-time.Hour)
	for i := range meetings {
		mr := meetingToResponse(&meetings[i])
		resp.Meetings = append(resp.Meetings, mr)
		if resp.NextMeeting == nil && meetings[i].StartTime.After(cutoff) {
			next := mr
			resp.NextMeeting = &next
		}
	}
	for i := range members {
		m := dto.MemberResponse{
			StudentID: members[i].StudentID,
			Name:      members[i].AirtableName,
			House:     members[i].House,
		}
		if members[i].User != nil {
			m.Name = members[i].User.FullName()
		}
		resp.Members = append(resp.Members, m)
	}
	return resp, nil
}

func (s *courseService) canViewCourse(caller *Caller, course *model.Course, semester *model.Semester, isLeader bool, student *model.Student, isEnrolled bool) bool {
	if caller.IsStaff() {
		return true
	}
	if semester == nil || !semester.Visible {
		return false
	}
	if isLeader {
		return true
	}
	if course.IsClub {
		return student != nil
	}
	return isEnrolled
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		SemesterID:              req.SemesterID,
		Name:                    req.Name,
		IsClub:                  req.IsClub,
		Description:             req.Description,
		Difficulty:              req.Difficulty,
		LessonPlan:              req.LessonPlan,
		RegularMeetingTime:      req.RegularMeetingTime,
		InstructorID:            req.InstructorID,
		ClassroomDirectLink:     req.ClassroomDirectLink,
		ClassroomJoinLink:       req.ClassroomJoinLink,
		ZoomMeetingLink:         req.ZoomMeetingLink,
		DiscordWebhook:          req.DiscordWebhook,
		DiscordRoleID:           req.DiscordRoleID,
		DiscordRemindersEnabled: true,
	}
	if req.DiscordRemindersEnabled != nil {
		course.DiscordRemindersEnabled = *req.DiscordRemindersEnabled
	}

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	if err := s.syncInstructorLeader(ctx, course); err != nil {
		return nil, err
	}

	resp := courseToResponse(course)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Difficulty != nil {
		course.Difficulty = *req.Difficulty
	}
	if req.LessonPlan != nil {
		course.LessonPlan = *req.LessonPlan
	}
	if req.RegularMeetingTime != nil {
		course.RegularMeetingTime = *req.RegularMeetingTime
	}
	if req.ClearInstructor {
		course.InstructorID = nil
	} else if req.InstructorID != nil {
		course.InstructorID = req.InstructorID
	}
	if req.ClassroomDirectLink != nil {
		course.ClassroomDirectLink = *req.ClassroomDirectLink
	}
	if req.ClassroomJoinLink != nil {
		course.ClassroomJoinLink = *req.ClassroomJoinLink
	}
	if req.ZoomMeetingLink != nil {
		course.ZoomMeetingLink = *req.ZoomMeetingLink
	}
	if req.DiscordWebhook != nil {
		course.DiscordWebhook = *req.DiscordWebhook
	}
	if req.DiscordRoleID != nil {
		course.DiscordRoleID = *req.DiscordRoleID
	}
	if req.DiscordRemindersEnabled != nil {
		course.DiscordRemindersEnabled = *req.DiscordRemindersEnabled
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.syncInstructorLeader(ctx, course); err != nil {
		return nil, err
	}

	resp := courseToResponse(course)
	return &resp, nil
}

// syncInstructorLeader 保存后同步领队：讲师目录条目已被用户认领时，
// 把该用户加为课程领队。幂等；既有领队（含前任讲师）保持不动
func (s *courseService) syncInstructorLeader(ctx context.Context, course *model.Course) error {
	if course.InstructorID == nil {
		return nil
	}
	listing, err := s.repo.Staff.GetByID(ctx, *course.InstructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffListingNotFound
		}
		s.logger.Error("查询讲师目录条目失败", zap.Error(err))
		return err
	}
	if listing.UserID == nil {
		return nil
	}
	if err := s.repo.Course.AddLeader(ctx, course.CourseID, *listing.UserID); err != nil {
		s.logger.Error("同步讲师领队失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Course.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── JoinClub ──────────────────────

// JoinClub 加入社团。仅限活跃学期；调用者在该学期还没有学生行时
// 自动建一行（get-or-create），建行与选课在同一事务内
func (s *courseService) JoinClub(ctx context.Context, courseID string, caller *Caller) error {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return err
	}
	if !course.IsClub {
		return ErrNotAClub
	}
	if course.Semester == nil || !course.Semester.ContainsDate(time.Now()) {
		return ErrSemesterNotActive
	}

	user, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	student, err := txRepo.Student.GetByUserAndSemester(ctx, caller.UserID, course.SemesterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		student = &model.Student{
			UserID:       &user.UserID,
			SemesterID:   course.SemesterID,
			AirtableName: user.FullName(),
		}
		if err := txRepo.Student.Create(ctx, student); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("创建学生行失败", zap.Error(err))
			return err
		}
	} else if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询学生行失败", zap.Error(err))
		return err
	}

	if err := txRepo.Student.EnrollCourse(ctx, student, course); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("加入社团失败", zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

// ────────────────────── DropClub ──────────────────────

func (s *courseService) DropClub(ctx context.Context, courseID string, caller *Caller) error {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return err
	}
	if !course.IsClub {
		return ErrNotAClub
	}
	if course.Semester == nil || !course.Semester.ContainsDate(time.Now()) {
		return ErrSemesterNotActive
	}

	student, err := s.repo.Student.GetByUserAndSemester(ctx, caller.UserID, course.SemesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		s.logger.Error("查询学生行失败", zap.Error(err))
		return err
	}

	enrolled, err := s.repo.Student.IsEnrolled(ctx, student.StudentID, course.CourseID)
	if err != nil {
		s.logger.Error("查询选课状态失败", zap.Error(err))
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	if err := s.repo.Student.UnenrollCourse(ctx, student, course); err != nil {
		s.logger.Error("退出社团失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── MyClubs ──────────────────────

// MyClubs 按调用者的每个活跃学期给出已加入（含领队）与可加入的社团
func (s *courseService) MyClubs(ctx context.Context, caller *Caller) ([]dto.MyClubsResponse, error) {
	students, err := s.repo.Student.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("列出学生行失败", zap.Error(err))
		return nil, err
	}
	ledCourses, err := s.repo.Course.ListLedByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("列出领队课程失败", zap.Error(err))
		return nil, err
	}
	ledIDs := make(map[string]bool, len(ledCourses))
	for _, c := range ledCourses {
		ledIDs[c.CourseID] = true
	}

	now := time.Now()
	result := make([]dto.MyClubsResponse, 0)
	for i := range students {
		student := &students[i]
		if student.Semester == nil || !student.Semester.ContainsDate(now) {
			continue
		}

		clubs, err := s.repo.Course.ListClubsBySemester(ctx, student.SemesterID)
		if err != nil {
			s.logger.Error("列出学期社团失败", zap.Error(err))
			return nil, err
		}
		enrolledCourses, err := s.repo.Student.ListEnrolledCourses(ctx, student.StudentID)
		if err != nil {
			s.logger.Error("列出已选课程失败", zap.Error(err))
			return nil, err
		}
		enrolledIDs := make(map[string]bool, len(enrolledCourses))
		for _, c := range enrolledCourses {
			enrolledIDs[c.CourseID] = true
		}

		entry := dto.MyClubsResponse{
			Semester:  semesterToResponse(student.Semester),
			Enrolled:  make([]dto.CourseResponse, 0),
			Available: make([]dto.CourseResponse, 0),
		}
		for j := range clubs {
			cr := courseToResponse(&clubs[j])
			if enrolledIDs[clubs[j].CourseID] || ledIDs[clubs[j].CourseID] {
				entry.Enrolled = append(entry.Enrolled, cr)
			} else {
				entry.Available = append(entry.Available, cr)
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// ────────────────────── PastClubs ──────────────────────

// PastClubs 已结束可见学期中加入过的社团
func (s *courseService) PastClubs(ctx context.Context, caller *Caller) ([]dto.MyClubsResponse, error) {
	students, err := s.repo.Student.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("列出学生行失败", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	result := make([]dto.MyClubsResponse, 0)
	for i := range students {
		student := &students[i]
		if student.Semester == nil || !student.Semester.HasEnded(now) || !student.Semester.Visible {
			continue
		}

		enrolledCourses, err := s.repo.Student.ListEnrolledCourses(ctx, student.StudentID)
		if err != nil {
			s.logger.Error("列出已选课程失败", zap.Error(err))
			return nil, err
		}

		entry := dto.MyClubsResponse{
			Semester:  semesterToResponse(student.Semester),
			Enrolled:  make([]dto.CourseResponse, 0),
			Available: make([]dto.CourseResponse, 0),
		}
		for j := range enrolledCourses {
			if !enrolledCourses[j].IsClub {
				continue
			}
			entry.Enrolled = append(entry.Enrolled, courseToResponse(&enrolledCourses[j]))
		}
		if len(entry.Enrolled) > 0 {
			result = append(result, entry)
		}
	}
	return result, nil
}

// ────────────────────── CreateMeeting ──────────────────────

func (s *courseService) CreateMeeting(ctx context.Context, courseID string, req *dto.CreateMeetingRequest) (*dto.MeetingResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidStartTime
	}

	meeting := &model.CourseMeeting{
		CourseID:  course.CourseID,
		Title:     req.Title,
		StartTime: startTime,
	}
	if err := s.repo.Course.CreateMeeting(ctx, meeting); err != nil {
		s.logger.Error("创建场次失败", zap.Error(err))
		return nil, err
	}

	meeting.Course = course
	resp := meetingToResponse(meeting)
	return &resp, nil
}

// ────────────────────── UpdateMeeting ──────────────────────

func (s *courseService) UpdateMeeting(ctx context.Context, meetingID string, req *dto.UpdateMeetingRequest) (*dto.MeetingResponse, error) {
	meeting, err := s.repo.Course.GetMeetingByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		s.logger.Error("查询场次失败", zap.String("id", meetingID), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		meeting.Title = *req.Title
	}
	if req.StartTime != nil {
		startTime, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return nil, ErrInvalidStartTime
		}
		// 改期后提醒重新生效
		if !startTime.Equal(meeting.StartTime) {
			meeting.StartTime = startTime
			meeting.ReminderSent = false
		}
	}

	if err := s.repo.Course.UpdateMeeting(ctx, meeting); err != nil {
		s.logger.Error("更新场次失败", zap.String("id", meetingID), zap.Error(err))
		return nil, err
	}

	resp := meetingToResponse(meeting)
	return &resp, nil
}

// ────────────────────── DeleteMeeting ──────────────────────

func (s *courseService) DeleteMeeting(ctx context.Context, meetingID string) error {
	if _, err := s.repo.Course.GetMeetingByID(ctx, meetingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMeetingNotFound
		}
		s.logger.Error("查询场次失败", zap.String("id", meetingID), zap.Error(err))
		return err
	}

	if err := s.repo.Course.DeleteMeeting(ctx, meetingID); err != nil {
		s.logger.Error("删除场次失败", zap.String("id", meetingID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// courseToResponse 课程响应转换，目录/社团/员工模块复用
func courseToResponse(course *model.Course) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:                 course.CourseID,
		SemesterID:         course.SemesterID,
		Name:               course.Name,
		IsClub:             course.IsClub,
		Description:        course.Description,
		Difficulty:         course.Difficulty,
		RegularMeetingTime: course.RegularMeetingTime,
	}
	if course.Instructor != nil {
		resp.InstructorName = course.Instructor.DisplayName
		resp.InstructorSlug = course.Instructor.Slug
	}
	for i := range course.Leaders {
		resp.LeaderNames = append(resp.LeaderNames, course.Leaders[i].FullName())
	}
	return resp
}

func meetingToResponse(meeting *model.CourseMeeting) dto.MeetingResponse {
	resp := dto.MeetingResponse{
		ID:        meeting.MeetingID,
		CourseID:  meeting.CourseID,
		Title:     meeting.Title,
		StartTime: meeting.StartTime.Format(time.RFC3339),
	}
	if meeting.Course != nil {
		resp.CourseName = meeting.Course.Name
	}
	return resp
}
