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

// ── 纪念册模块业务错误 ──

var (
	ErrYearbookEntryNotFound = errors.New("yearbook entry not found")
	ErrSemesterEnded         = errors.New("semester has ended")
)

// YearbookService 纪念册业务接口
type YearbookService interface {
	// BySemester 学期纪念册；slug 为空时取调用者可访问的最新学期。
	// 员工可看任意学期，其他人只能看自己有学生记录的学期
	BySemester(ctx context.Context, caller *Caller, semesterSlug string) (*dto.YearbookResponse, error)
	// MyEntry 本人在该学期的条目
	MyEntry(ctx context.Context, caller *Caller, semesterSlug string) (*dto.YearbookEntryResponse, error)
	// Upsert 创建或更新本人条目；学期结束后不可编辑
	Upsert(ctx context.Context, caller *Caller, semesterSlug string, req *dto.UpsertYearbookEntryRequest) (*dto.YearbookEntryResponse, error)
}

type yearbookService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewYearbookService 创建 YearbookService 实例
func NewYearbookService(repo *repository.Repository, logger *zap.Logger) YearbookService {
	return &yearbookService{repo: repo, logger: logger}
}

// ────────────────────── BySemester ──────────────────────

func (s *yearbookService) BySemester(ctx context.Context, caller *Caller, semesterSlug string) (*dto.YearbookResponse, error) {
	semester, err := s.accessibleSemester(ctx, caller, semesterSlug)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.Yearbook.ListBySemester(ctx, semester.SemesterID)
	if err != nil {
		s.logger.Error("查询纪念册失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.YearbookResponse{
		Semester: semesterToResponse(semester),
		Entries:  make([]dto.YearbookEntryResponse, 0, len(entries)),
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, yearbookEntryToResponse(&entries[i]))
	}

	student, err := s.ownStudent(ctx, caller, semester.SemesterID)
	if err != nil {
		return nil, err
	}
	resp.CanEdit = student != nil && !semester.HasEnded(time.Now())
	return resp, nil
}

// ────────────────────── MyEntry ──────────────────────

func (s *yearbookService) MyEntry(ctx context.Context, caller *Caller, semesterSlug string) (*dto.YearbookEntryResponse, error) {
	semester, err := s.getSemesterBySlug(ctx, semesterSlug)
	if err != nil {
		return nil, err
	}
	student, err := s.ownStudent(ctx, caller, semester.SemesterID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrYearbookEntryNotFound
	}

	entry, err := s.repo.Yearbook.GetByStudent(ctx, student.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrYearbookEntryNotFound
		}
		s.logger.Error("查询纪念册条目失败", zap.Error(err))
		return nil, err
	}
	entry.Student = student
	resp := yearbookEntryToResponse(entry)
	return &resp, nil
}

// ────────────────────── Upsert ──────────────────────

func (s *yearbookService) Upsert(ctx context.Context, caller *Caller, semesterSlug string, req *dto.UpsertYearbookEntryRequest) (*dto.YearbookEntryResponse, error) {
	semester, err := s.getSemesterBySlug(ctx, semesterSlug)
	if err != nil {
		return nil, err
	}
	if semester.HasEnded(time.Now()) {
		return nil, ErrSemesterEnded
	}
	student, err := s.ownStudent(ctx, caller, semester.SemesterID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, pkgerrors.ErrPermissionDenied
	}

	entry, err := s.repo.Yearbook.GetByStudent(ctx, student.StudentID)
	switch {
	case err == nil:
		entry.DisplayName = req.DisplayName
		entry.Bio = req.Bio
		entry.DiscordUsername = req.DiscordUsername
		entry.InstagramUsername = req.InstagramUsername
		entry.GithubUsername = req.GithubUsername
		entry.WebsiteURL = req.WebsiteURL
		if err := s.repo.Yearbook.Update(ctx, entry); err != nil {
			s.logger.Error("更新纪念册条目失败", zap.Error(err))
			return nil, err
		}
		s.logger.Info("纪念册条目已更新",
			zap.String("entry_id", entry.EntryID),
			zap.String("student_id", student.StudentID))
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = &model.YearbookEntry{
			StudentID:         student.StudentID,
			DisplayName:       req.DisplayName,
			Bio:               req.Bio,
			DiscordUsername:   req.DiscordUsername,
			InstagramUsername: req.InstagramUsername,
			GithubUsername:    req.GithubUsername,
			WebsiteURL:        req.WebsiteURL,
		}
		if err := s.repo.Yearbook.Create(ctx, entry); err != nil {
			s.logger.Error("创建纪念册条目失败", zap.Error(err))
			return nil, err
		}
		s.logger.Info("纪念册条目已创建",
			zap.String("entry_id", entry.EntryID),
			zap.String("student_id", student.StudentID))
	default:
		s.logger.Error("查询纪念册条目失败", zap.Error(err))
		return nil, err
	}

	entry.Student = student
	resp := yearbookEntryToResponse(entry)
	return &resp, nil
}

// ── 内部辅助方法 ──

func (s *yearbookService) getSemesterBySlug(ctx context.Context, slug string) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}
	return semester, nil
}

// ownStudent 调用者在该学期的学生记录；没有时返回 nil（不报错）
func (s *yearbookService) ownStudent(ctx context.Context, caller *Caller, semesterID string) (*model.Student, error) {
	student, err := s.repo.Student.GetByUserAndSemester(ctx, caller.UserID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	return student, nil
}

// accessibleSemester 解析目标学期并校验访问权；
// slug 为空时取调用者可访问的、结束日期最晚的学期
func (s *yearbookService) accessibleSemester(ctx context.Context, caller *Caller, slug string) (*model.Semester, error) {
	if slug != "" {
		semester, err := s.getSemesterBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if caller.IsStaff() {
			return semester, nil
		}
		student, err := s.ownStudent(ctx, caller, semester.SemesterID)
		if err != nil {
			return nil, err
		}
		if student == nil {
			return nil, pkgerrors.ErrPermissionDenied
		}
		return semester, nil
	}

	if caller.IsStaff() {
		semesters, err := s.repo.Semester.List(ctx, false)
		if err != nil {
			s.logger.Error("查询学期列表失败", zap.Error(err))
			return nil, err
		}
		return latestByEndDate(semesters)
	}

	students, err := s.repo.Student.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("查询学生记录失败", zap.Error(err))
		return nil, err
	}
	semesters := make([]model.Semester, 0, len(students))
	for i := range students {
		if students[i].Semester != nil {
			semesters = append(semesters, *students[i].Semester)
		}
	}
	return latestByEndDate(semesters)
}

func latestByEndDate(semesters []model.Semester) (*model.Semester, error) {
	if len(semesters) == 0 {
		return nil, ErrSemesterNotFound
	}
	latest := &semesters[0]
	for i := range semesters {
		if semesters[i].EndDate.After(latest.EndDate) {
			latest = &semesters[i]
		}
	}
	return latest, nil
}

func yearbookEntryToResponse(entry *model.YearbookEntry) dto.YearbookEntryResponse {
	resp := dto.YearbookEntryResponse{
		ID:                entry.EntryID,
		StudentID:         entry.StudentID,
		DisplayName:       entry.DisplayName,
		Bio:               entry.Bio,
		DiscordUsername:   entry.DiscordUsername,
		InstagramUsername: entry.InstagramUsername,
		GithubUsername:    entry.GithubUsername,
		WebsiteURL:        entry.WebsiteURL,
	}
	if entry.Student != nil {
		resp.House = entry.Student.House
	}
	return resp
}
