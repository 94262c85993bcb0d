package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// ── 出勤模块业务错误 ──

var (
	ErrAttendanceExists      = errors.New("you already have an attendance record for this club on this date")
	ErrInvalidAttendanceDate = errors.New("invalid attendance date")
	ErrNotAClass             = errors.New("this course is not a class")
)

// AttendanceService 助教出勤业务接口
type AttendanceService interface {
	// Log 记录本人在某社团某天的出勤；(user, club, date) 唯一
	Log(ctx context.Context, caller *Caller, req *dto.LogAttendanceRequest) (*dto.AttendanceResponse, error)
	// MyRecords 本人出勤记录，按日期倒序
	MyRecords(ctx context.Context, caller *Caller) ([]dto.AttendanceResponse, error)
	// AllRecords 全部出勤记录（管理端）
	AllRecords(ctx context.Context, caller *Caller) ([]dto.AttendanceResponse, error)
	// BulkClassAttendance 按到课名单给学生批量发放 class_attendance 学院分。
	// 学生累计分低于 5×学期阈值时每次 5 分，达到后降为 3 分
	BulkClassAttendance(ctx context.Context, caller *Caller, req *dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ────────────────────── Log ──────────────────────

func (s *attendanceService) Log(ctx context.Context, caller *Caller, req *dto.LogAttendanceRequest) (*dto.AttendanceResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidAttendanceDate
	}

	club, err := s.repo.Course.GetByID(ctx, req.ClubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询社团失败", zap.Error(err))
		return nil, err
	}
	if !club.IsClub {
		return nil, ErrNotAClub
	}
	if club.Semester != nil && club.Semester.HasEnded(time.Now()) {
		return nil, ErrSemesterEnded
	}

	exists, err := s.repo.Attendance.Exists(ctx, caller.UserID, club.CourseID, date)
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrAttendanceExists
	}

	record := &model.Attendance{
		UserID: caller.UserID,
		ClubID: club.CourseID,
		Date:   date,
	}
	if err := s.repo.Attendance.Create(ctx, record); err != nil {
		s.logger.Error("创建出勤记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("出勤已记录",
		zap.String("user_id", caller.UserID),
		zap.String("club_id", club.CourseID),
		zap.String("date", req.Date))

	record.Club = club
	resp := attendanceToResponse(record)
	return &resp, nil
}

// ────────────────────── MyRecords ──────────────────────

func (s *attendanceService) MyRecords(ctx context.Context, caller *Caller) ([]dto.AttendanceResponse, error) {
	records, err := s.repo.Attendance.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.Error(err))
		return nil, err
	}
	return attendanceListToResponse(records), nil
}

// ────────────────────── AllRecords ──────────────────────

func (s *attendanceService) AllRecords(ctx context.Context, caller *Caller) ([]dto.AttendanceResponse, error) {
	records, err := s.repo.Attendance.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.Error(err))
		return nil, err
	}
	return attendanceListToResponse(records), nil
}

// ────────────────────── BulkClassAttendance ──────────────────────

func (s *attendanceService) BulkClassAttendance(ctx context.Context, caller *Caller, req *dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if course.IsClub {
		return nil, ErrNotAClass
	}
	if course.Semester == nil {
		s.logger.Error("课程缺少学期信息", zap.String("course_id", course.CourseID))
		return nil, ErrSemesterNotFound
	}
	if course.Semester.HasEnded(time.Now()) {
		return nil, ErrSemesterEnded
	}

	// 学生累计 class_attendance 分达到该阈值后，单次加分从 5 降为 3
	threshold := 5 * course.Semester.HousePointsClassThreshold

	now := time.Now()
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Attendance on %s for %s", now.Format("2006-01-02"), course.Name)
	}

	names := splitNames(req.Names)
	result := &dto.BulkAttendanceResponse{
		Awarded: make([]string, 0, len(names)),
		Errors:  make([]string, 0),
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
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

	var batch []model.Award
	for _, name := range names {
		students, err := txRepo.Student.ListByNameAndSemester(ctx, course.SemesterID, name)
		if err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("匹配学生失败", zap.String("name", name), zap.Error(err))
			return nil, err
		}
		if len(students) > 1 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: multiple students found with this name", name))
			continue
		}
		if len(students) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: not enrolled in %s", name, course.Semester.Name))
			continue
		}
		student := students[0]

		enrolled, err := txRepo.Student.IsEnrolled(ctx, student.StudentID, course.CourseID)
		if err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("查询选课状态失败", zap.String("name", name), zap.Error(err))
			return nil, err
		}
		if !enrolled {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: not enrolled in %s", name, course.Name))
			continue
		}
		if student.House == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: no house assigned", name))
			continue
		}

		total, err := txRepo.Award.SumByStudentAndType(ctx, student.StudentID, model.AwardClassAttendance)
		if err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("统计出勤分失败", zap.String("name", name), zap.Error(err))
			return nil, err
		}
		points := model.DefaultAwardPoints[model.AwardClassAttendance]
		if total >= threshold {
			points = 3
		}

		batch = append(batch, model.Award{
			SemesterID:  course.SemesterID,
			StudentID:   &student.StudentID,
			House:       student.House,
			AwardType:   model.AwardClassAttendance,
			Points:      points,
			Description: description,
			AwardedAt:   now,
			AwardedByID: &caller.UserID,
		})
		result.Awarded = append(result.Awarded,
			fmt.Sprintf("%s: +%d pts (%s)", name, points, model.HouseLabels[student.House]))
	}

	if err := txRepo.Award.CreateBatch(ctx, batch); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("批量创建奖励失败", zap.Error(err))
		return nil, err
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("班级出勤加分完成",
		zap.String("course_id", course.CourseID),
		zap.Int("awarded", len(result.Awarded)),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// ── 内部辅助方法 ──

func attendanceToResponse(record *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:     record.AttendanceID,
		UserID: record.UserID,
		ClubID: record.ClubID,
		Date:   record.Date.Format("2006-01-02"),
	}
	if record.User != nil {
		resp.UserName = record.User.FullName()
	}
	if record.Club != nil {
		resp.ClubName = record.Club.Name
	}
	return resp
}

func attendanceListToResponse(records []model.Attendance) []dto.AttendanceResponse {
	out := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		out = append(out, attendanceToResponse(&records[i]))
	}
	return out
}
