package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// StaffRepository 员工名录数据访问接口
type StaffRepository interface {
	Create(ctx context.Context, listing *model.StaffListing) error
	GetByID(ctx context.Context, id string) (*model.StaffListing, error)
	GetBySlug(ctx context.Context, slug string) (*model.StaffListing, error)
	GetByUser(ctx context.Context, userID string) (*model.StaffListing, error)
	List(ctx context.Context) ([]model.StaffListing, error)
	ListByCategory(ctx context.Context, category string) ([]model.StaffListing, error)
	Update(ctx context.Context, listing *model.StaffListing) error
	Delete(ctx context.Context, id string) error
}

// staffRepo StaffRepository 的 GORM 实现
type staffRepo struct {
	db *gorm.DB
}

// NewStaffRepo 创建 StaffRepository 实例
func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, listing *model.StaffListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *staffRepo) GetByID(ctx context.Context, id string) (*model.StaffListing, error) {
	var listing model.StaffListing
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("listing_id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *staffRepo) GetBySlug(ctx context.Context, slug string) (*model.StaffListing, error) {
	var listing model.StaffListing
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("slug = ?", slug).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *staffRepo) GetByUser(ctx context.Context, userID string) (*model.StaffListing, error) {
	var listing model.StaffListing
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *staffRepo) List(ctx context.Context) ([]model.StaffListing, error) {
	var listings []model.StaffListing
	err := r.db.WithContext(ctx).
		Order("ordering DESC, display_name ASC").
		Find(&listings).Error
	return listings, err
}

func (r *staffRepo) ListByCategory(ctx context.Context, category string) ([]model.StaffListing, error) {
	var listings []model.StaffListing
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("ordering DESC, display_name ASC").
		Find(&listings).Error
	return listings, err
}

func (r *staffRepo) Update(ctx context.Context, listing *model.StaffListing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *staffRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("listing_id = ?", id).
		Delete(&model.StaffListing{}).Error
}
