package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// YearbookRepository 毕业册数据访问接口
type YearbookRepository interface {
	Create(ctx context.Context, entry *model.YearbookEntry) error
	GetByID(ctx context.Context, id string) (*model.YearbookEntry, error)
	GetByStudent(ctx context.Context, studentID string) (*model.YearbookEntry, error)
	ListBySemester(ctx context.Context, semesterID string) ([]model.YearbookEntry, error)
	Update(ctx context.Context, entry *model.YearbookEntry) error
	Delete(ctx context.Context, id string) error
}

// yearbookRepo YearbookRepository 的 GORM 实现
type yearbookRepo struct {
	db *gorm.DB
}

// NewYearbookRepo 创建 YearbookRepository 实例
func NewYearbookRepo(db *gorm.DB) YearbookRepository {
	return &yearbookRepo{db: db}
}

func (r *yearbookRepo) Create(ctx context.Context, entry *model.YearbookEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *yearbookRepo) GetByID(ctx context.Context, id string) (*model.YearbookEntry, error) {
	var entry model.YearbookEntry
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *yearbookRepo) GetByStudent(ctx context.Context, studentID string) (*model.YearbookEntry, error) {
	var entry model.YearbookEntry
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *yearbookRepo) ListBySemester(ctx context.Context, semesterID string) ([]model.YearbookEntry, error) {
	var entries []model.YearbookEntry
	err := r.db.WithContext(ctx).
		Preload("Student").
		Joins("JOIN students ON students.student_id = yearbook_entries.student_id").
		Where("students.semester_id = ?", semesterID).
		Order("students.house ASC, yearbook_entries.display_name ASC").
		Find(&entries).Error
	return entries, err
}

func (r *yearbookRepo) Update(ctx context.Context, entry *model.YearbookEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *yearbookRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ?", id).
		Delete(&model.YearbookEntry{}).Error
}
