package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// CourseRepository 课程与场次数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListBySemester(ctx context.Context, semesterID string) ([]model.Course, error)
	ListClubsBySemester(ctx context.Context, semesterID string) ([]model.Course, error)
	ListByInstructor(ctx context.Context, listingID string) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error

	// ── 领队 ──
	AddLeader(ctx context.Context, courseID, userID string) error
	IsLeader(ctx context.Context, courseID, userID string) (bool, error)
	ListLedByUser(ctx context.Context, userID string) ([]model.Course, error)

	// ── 场次 ──
	CreateMeeting(ctx context.Context, meeting *model.CourseMeeting) error
	GetMeetingByID(ctx context.Context, id string) (*model.CourseMeeting, error)
	ListMeetingsByCourse(ctx context.Context, courseID string) ([]model.CourseMeeting, error)
	ListMeetingsForCourses(ctx context.Context, courseIDs []string, from, to time.Time) ([]model.CourseMeeting, error)
	// ListPendingReminders 返回 [from, to) 窗口内未发提醒且课程开启了提醒的场次
	ListPendingReminders(ctx context.Context, from, to time.Time) ([]model.CourseMeeting, error)
	UpdateMeeting(ctx context.Context, meeting *model.CourseMeeting) error
	MarkReminderSent(ctx context.Context, meetingID string) error
	DeleteMeeting(ctx context.Context, id string) error
}

// courseRepo CourseRepository 的 GORM 实现
type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Preload("Instructor").
		Preload("Leaders").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListBySemester(ctx context.Context, semesterID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", semesterID).
		Order("name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListClubsBySemester(ctx context.Context, semesterID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("semester_id = ? AND is_club = ?", semesterID, true).
		Order("name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListByInstructor(ctx context.Context, listingID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("instructor_id = ?", listingID).
		Order("name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&model.Course{}).Error
}

// ── 领队 ──

// AddLeader 将用户加入课程领队（已是领队时幂等）
func (r *courseRepo) AddLeader(ctx context.Context, courseID, userID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO course_leaders (course_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			courseID, userID).Error
}

func (r *courseRepo) IsLeader(ctx context.Context, courseID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("course_leaders").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *courseRepo) ListLedByUser(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Joins("JOIN course_leaders cl ON cl.course_id = courses.course_id").
		Where("cl.user_id = ?", userID).
		Order("courses.name ASC").
		Find(&courses).Error
	return courses, err
}

// ── 场次 ──

func (r *courseRepo) CreateMeeting(ctx context.Context, meeting *model.CourseMeeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *courseRepo) GetMeetingByID(ctx context.Context, id string) (*model.CourseMeeting, error) {
	var meeting model.CourseMeeting
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("meeting_id = ?", id).
		First(&meeting).Error
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *courseRepo) ListMeetingsByCourse(ctx context.Context, courseID string) ([]model.CourseMeeting, error) {
	var meetings []model.CourseMeeting
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("start_time ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *courseRepo) ListMeetingsForCourses(ctx context.Context, courseIDs []string, from, to time.Time) ([]model.CourseMeeting, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var meetings []model.CourseMeeting
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ? AND start_time >= ? AND start_time < ?", courseIDs, from, to).
		Order("start_time ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *courseRepo) ListPendingReminders(ctx context.Context, from, to time.Time) ([]model.CourseMeeting, error) {
	var meetings []model.CourseMeeting
	err := r.db.WithContext(ctx).
		Preload("Course").
		Joins("JOIN courses ON courses.course_id = course_meetings.course_id").
		Where("course_meetings.start_time >= ? AND course_meetings.start_time <= ?", from, to).
		Where("course_meetings.reminder_sent = ?", false).
		Where("courses.discord_reminders_enabled = ?", true).
		Order("course_meetings.start_time ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *courseRepo) UpdateMeeting(ctx context.Context, meeting *model.CourseMeeting) error {
	return r.db.WithContext(ctx).Save(meeting).Error
}

func (r *courseRepo) MarkReminderSent(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).
		Model(&model.CourseMeeting{}).
		Where("meeting_id = ?", meetingID).
		Update("reminder_sent", true).Error
}

func (r *courseRepo) DeleteMeeting(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("meeting_id = ?", id).
		Delete(&model.CourseMeeting{}).Error
}
