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
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterNotFound        = errors.New("semester not found")
	ErrSemesterDateInvalid     = errors.New("semester end date must not be before start date")
	ErrSemesterSlugTaken       = errors.New("a semester with this slug already exists")
	ErrNoActiveSemester        = errors.New("no active semester found")
	ErrMultipleActiveSemesters = errors.New("multiple active semesters found")
)

// SemesterService 学期业务接口
type SemesterService interface {
	Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.SemesterResponse, error)
	GetCurrent(ctx context.Context) (*dto.SemesterResponse, error)
	List(ctx context.Context, includeHidden bool) ([]dto.SemesterResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest) (*dto.SemesterResponse, error)
	Delete(ctx context.Context, id string) error
}

type semesterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, logger: logger}
}

// currentSemester 解析包含今天的唯一学期。
// 0 个或多个匹配都是错误：学期日期重叠属于数据完整性问题，不做隐式裁决。
// 社团加退、学生邀请、纪念册编辑、出勤打卡都经过这条路径。
func currentSemester(ctx context.Context, repo *repository.Repository) (*model.Semester, error) {
	semesters, err := repo.Semester.ListContaining(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	switch len(semesters) {
	case 0:
		return nil, ErrNoActiveSemester
	case 1:
		return &semesters[0], nil
	default:
		return nil, ErrMultipleActiveSemesters
	}
}

// latestVisibleSemester 目录首页的默认学期：可见学期中开始日期最新的一个；
// 员工可以看到隐藏学期
func latestVisibleSemester(ctx context.Context, repo *repository.Repository, includeHidden bool) (*model.Semester, error) {
	semesters, err := repo.Semester.List(ctx, !includeHidden)
	if err != nil {
		return nil, err
	}
	if len(semesters) == 0 {
		return nil, ErrSemesterNotFound
	}
	// List 已按 start_date 降序排列
	return &semesters[0], nil
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	if endDate.Before(startDate) {
		return nil, ErrSemesterDateInvalid
	}

	if _, err := s.repo.Semester.GetBySlug(ctx, req.Slug); err == nil {
		return nil, ErrSemesterSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学期 slug 失败", zap.Error(err))
		return nil, err
	}

	semester := &model.Semester{
		Name:                      req.Name,
		Slug:                      req.Slug,
		StartDate:                 startDate,
		EndDate:                   endDate,
		Visible:                   true,
		HousePointsClassThreshold: 14,
	}
	if req.Visible != nil {
		semester.Visible = *req.Visible
	}
	if req.HousePointsClassThreshold != nil {
		semester.HousePointsClassThreshold = *req.HousePointsClassThreshold
	}
	if req.HousePointsFreezeDate != nil {
		freeze, err := time.Parse(time.RFC3339, *req.HousePointsFreezeDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.HousePointsFreezeDate = &freeze
	}

	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	resp := semesterToResponse(semester)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *semesterService) GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := semesterToResponse(semester)
	return &resp, nil
}

// ────────────────────── GetBySlug ──────────────────────

func (s *semesterService) GetBySlug(ctx context.Context, slug string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	resp := semesterToResponse(semester)
	return &resp, nil
}

// ────────────────────── GetCurrent ──────────────────────

func (s *semesterService) GetCurrent(ctx context.Context) (*dto.SemesterResponse, error) {
	semester, err := currentSemester(ctx, s.repo)
	if err != nil {
		if !errors.Is(err, ErrNoActiveSemester) && !errors.Is(err, ErrMultipleActiveSemesters) {
			s.logger.Error("解析当前学期失败", zap.Error(err))
		}
		return nil, err
	}

	resp := semesterToResponse(semester)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context, includeHidden bool) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx, !includeHidden)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, semesterToResponse(&semesters[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *semesterService) Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		semester.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != semester.Slug {
		if _, err := s.repo.Semester.GetBySlug(ctx, *req.Slug); err == nil {
			return nil, ErrSemesterSlugTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学期 slug 失败", zap.Error(err))
			return nil, err
		}
		semester.Slug = *req.Slug
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.EndDate = endDate
	}
	if semester.EndDate.Before(semester.StartDate) {
		return nil, ErrSemesterDateInvalid
	}
	if req.Visible != nil {
		semester.Visible = *req.Visible
	}
	if req.ClearFreezeDate {
		semester.HousePointsFreezeDate = nil
	} else if req.HousePointsFreezeDate != nil {
		freeze, err := time.Parse(time.RFC3339, *req.HousePointsFreezeDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.HousePointsFreezeDate = &freeze
	}
	if req.HousePointsClassThreshold != nil {
		semester.HousePointsClassThreshold = *req.HousePointsClassThreshold
	}

	if err := s.repo.Semester.Update(ctx, semester); err != nil {
		s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := semesterToResponse(semester)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Semester.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Semester.Delete(ctx, id); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// semesterToResponse 学期响应转换；课程、积分、纪念册模块复用
func semesterToResponse(semester *model.Semester) dto.SemesterResponse {
	now := time.Now()
	resp := dto.SemesterResponse{
		ID:                        semester.SemesterID,
		Name:                      semester.Name,
		Slug:                      semester.Slug,
		StartDate:                 semester.StartDate.Format("2006-01-02"),
		EndDate:                   semester.EndDate.Format("2006-01-02"),
		Visible:                   semester.Visible,
		HousePointsClassThreshold: semester.HousePointsClassThreshold,
		IsActive:                  semester.ContainsDate(now),
		HasEnded:                  semester.HasEnded(now),
		CreatedAt:                 semester.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                 semester.UpdatedAt.Format(time.RFC3339),
	}
	if semester.HousePointsFreezeDate != nil {
		freeze := semester.HousePointsFreezeDate.Format(time.RFC3339)
		resp.HousePointsFreezeDate = &freeze
	}
	return resp
}
