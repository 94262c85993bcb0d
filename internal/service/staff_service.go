package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// ── 员工目录模块业务错误 ──

var (
	ErrStaffListingNotFound = errors.New("staff listing not found")
	ErrStaffSlugTaken       = errors.New("staff listing slug already exists")
	ErrStaffCategoryInvalid = errors.New("invalid staff category")
)

// StaffService 员工目录业务接口
type StaffService interface {
	// Directory 公开目录：board / instructor / ta 三个分组
	Directory(ctx context.Context) (*dto.StaffDirectoryResponse, error)
	// PastStaff 往届员工（xstaff）
	PastStaff(ctx context.Context) (*dto.StaffGroupResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.StaffDetailResponse, error)
	// UpdateOwn 员工编辑本人条目
	UpdateOwn(ctx context.Context, caller *Caller, req *dto.UpdateOwnListingRequest) (*dto.StaffListingResponse, error)

	// ── 管理员操作 ──
	Create(ctx context.Context, req *dto.CreateStaffListingRequest) (*dto.StaffListingResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStaffListingRequest) (*dto.StaffListingResponse, error)
	Delete(ctx context.Context, id string) error
}

type staffService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStaffService 创建 StaffService 实例
func NewStaffService(repo *repository.Repository, logger *zap.Logger) StaffService {
	return &staffService{repo: repo, logger: logger}
}

// ────────────────────── Directory ──────────────────────

func (s *staffService) Directory(ctx context.Context) (*dto.StaffDirectoryResponse, error) {
	resp := &dto.StaffDirectoryResponse{Groups: make([]dto.StaffGroupResponse, 0, 3)}
	for _, category := range model.StaffCategoryOrder {
		if category == model.StaffCategoryPast {
			continue
		}
		group, err := s.categoryGroup(ctx, category)
		if err != nil {
			return nil, err
		}
		resp.Groups = append(resp.Groups, *group)
	}
	return resp, nil
}

// ────────────────────── PastStaff ──────────────────────

func (s *staffService) PastStaff(ctx context.Context) (*dto.StaffGroupResponse, error) {
	return s.categoryGroup(ctx, model.StaffCategoryPast)
}

// ────────────────────── GetBySlug ──────────────────────

func (s *staffService) GetBySlug(ctx context.Context, slug string) (*dto.StaffDetailResponse, error) {
	listing, err := s.repo.Staff.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffListingNotFound
		}
		s.logger.Error("查询目录条目失败", zap.Error(err))
		return nil, err
	}

	courses, err := s.repo.Course.ListByInstructor(ctx, listing.ListingID)
	if err != nil {
		s.logger.Error("查询任教课程失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.StaffDetailResponse{
		StaffListingResponse: staffListingToResponse(listing),
		Courses:              make([]dto.CourseResponse, 0, len(courses)),
	}
	for i := range courses {
		resp.Courses = append(resp.Courses, courseToResponse(&courses[i]))
	}
	return resp, nil
}

// ────────────────────── UpdateOwn ──────────────────────

func (s *staffService) UpdateOwn(ctx context.Context, caller *Caller, req *dto.UpdateOwnListingRequest) (*dto.StaffListingResponse, error) {
	listing, err := s.repo.Staff.GetByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffListingNotFound
		}
		s.logger.Error("查询目录条目失败", zap.Error(err))
		return nil, err
	}

	if req.DisplayName != nil {
		listing.DisplayName = *req.DisplayName
	}
	if req.Biography != nil {
		listing.Biography = *req.Biography
	}
	if req.PhotoURL != nil {
		listing.PhotoURL = *req.PhotoURL
	}
	if req.Website != nil {
		listing.Website = *req.Website
	}

	if err := s.repo.Staff.Update(ctx, listing); err != nil {
		s.logger.Error("更新目录条目失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("员工更新了本人条目",
		zap.String("listing_id", listing.ListingID),
		zap.String("user_id", caller.UserID))
	resp := staffListingToResponse(listing)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *staffService) Create(ctx context.Context, req *dto.CreateStaffListingRequest) (*dto.StaffListingResponse, error) {
	if !model.IsValidStaffCategory(req.Category) {
		return nil, ErrStaffCategoryInvalid
	}
	if _, err := s.repo.Staff.GetBySlug(ctx, req.Slug); err == nil {
		return nil, ErrStaffSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询目录条目失败", zap.Error(err))
		return nil, err
	}

	listing := &model.StaffListing{
		DisplayName: req.DisplayName,
		Slug:        req.Slug,
		Role:        req.Role,
		Category:    req.Category,
		Biography:   req.Biography,
		PhotoURL:    req.PhotoURL,
		Website:     req.Website,
		Ordering:    req.Ordering,
	}
	if err := s.repo.Staff.Create(ctx, listing); err != nil {
		s.logger.Error("创建目录条目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("目录条目已创建",
		zap.String("listing_id", listing.ListingID),
		zap.String("slug", listing.Slug))
	resp := staffListingToResponse(listing)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *staffService) Update(ctx context.Context, id string, req *dto.UpdateStaffListingRequest) (*dto.StaffListingResponse, error) {
	listing, err := s.repo.Staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffListingNotFound
		}
		s.logger.Error("查询目录条目失败", zap.Error(err))
		return nil, err
	}

	if req.Slug != nil && *req.Slug != listing.Slug {
		if _, err := s.repo.Staff.GetBySlug(ctx, *req.Slug); err == nil {
			return nil, ErrStaffSlugTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询目录条目失败", zap.Error(err))
			return nil, err
		}
		listing.Slug = *req.Slug
	}
	if req.Category != nil {
		if !model.IsValidStaffCategory(*req.Category) {
			return nil, ErrStaffCategoryInvalid
		}
		listing.Category = *req.Category
	}
	if req.DisplayName != nil {
		listing.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		listing.Role = *req.Role
	}
	if req.Biography != nil {
		listing.Biography = *req.Biography
	}
	if req.PhotoURL != nil {
		listing.PhotoURL = *req.PhotoURL
	}
	if req.Website != nil {
		listing.Website = *req.Website
	}
	if req.Ordering != nil {
		listing.Ordering = *req.Ordering
	}

	if err := s.repo.Staff.Update(ctx, listing); err != nil {
		s.logger.Error("更新目录条目失败", zap.Error(err))
		return nil, err
	}
	resp := staffListingToResponse(listing)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *staffService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Staff.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffListingNotFound
		}
		s.logger.Error("查询目录条目失败", zap.Error(err))
		return err
	}
	if err := s.repo.Staff.Delete(ctx, id); err != nil {
		s.logger.Error("删除目录条目失败", zap.Error(err))
		return err
	}
	s.logger.Info("目录条目已删除", zap.String("listing_id", id))
	return nil
}

// ── 内部辅助方法 ──

func (s *staffService) categoryGroup(ctx context.Context, category string) (*dto.StaffGroupResponse, error) {
	listings, err := s.repo.Staff.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Error("查询目录分组失败", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	group := &dto.StaffGroupResponse{
		Category: category,
		Label:    model.StaffCategoryLabels[category],
		Listings: make([]dto.StaffListingResponse, 0, len(listings)),
	}
	for i := range listings {
		group.Listings = append(group.Listings, staffListingToResponse(&listings[i]))
	}
	return group, nil
}

func staffListingToResponse(listing *model.StaffListing) dto.StaffListingResponse {
	return dto.StaffListingResponse{
		ID:          listing.ListingID,
		DisplayName: listing.DisplayName,
		Slug:        listing.Slug,
		Role:        listing.Role,
		Category:    listing.Category,
		Biography:   listing.Biography,
		PhotoURL:    listing.PhotoURL,
		Website:     listing.Website,
		Ordering:    listing.Ordering,
		Claimed:     listing.UserID != nil,
	}
}
