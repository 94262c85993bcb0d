package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// SemesterRepository 学期数据访问接口
type SemesterRepository interface {
	Create(ctx context.Context, semester *model.Semester) error
	GetByID(ctx context.Context, id string) (*model.Semester, error)
	GetBySlug(ctx context.Context, slug string) (*model.Semester, error)
	// ListContaining 返回日期落在 [start_date, end_date] 内的全部学期
	// （正常情况下最多一个；调用方负责 0 个 / 多个的业务判定）
	ListContaining(ctx context.Context, date time.Time) ([]model.Semester, error)
	List(ctx context.Context, visibleOnly bool) ([]model.Semester, error)
	Update(ctx context.Context, semester *model.Semester) error
	Delete(ctx context.Context, id string) error
}

// semesterRepo SemesterRepository 的 GORM 实现
type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) Create(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

func (r *semesterRepo) GetByID(ctx context.Context, id string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) GetBySlug(ctx context.Context, slug string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) ListContaining(ctx context.Context, date time.Time) ([]model.Semester, error) {
	var semesters []model.Semester
	day := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) List(ctx context.Context, visibleOnly bool) ([]model.Semester, error) {
	var semesters []model.Semester
	db := r.db.WithContext(ctx)
	if visibleOnly {
		db = db.Where("visible = ?", true)
	}
	err := db.Order("start_date DESC").Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) Update(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Save(semester).Error
}

func (r *semesterRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		Delete(&model.Semester{}).Error
}
