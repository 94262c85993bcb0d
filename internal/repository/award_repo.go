package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// HouseTotal 学院总分统计行
type HouseTotal struct {
	House  string
	Points int
}

// StudentTotal 学生总分统计行
type StudentTotal struct {
	StudentID    string
	AirtableName string
	House        string
	Points       int
}

// MatrixCell 类别×学院积分矩阵单元格
type MatrixCell struct {
	House     string
	AwardType string
	Points    int
}

// StudentTypeCell 学生×类别积分矩阵单元格
type StudentTypeCell struct {
	StudentID string
	AwardType string
	Points    int
}

// AwardRepository 积分奖励数据访问接口
type AwardRepository interface {
	Create(ctx context.Context, award *model.Award) error
	CreateBatch(ctx context.Context, awards []model.Award) error
	GetByID(ctx context.Context, id string) (*model.Award, error)
	ListBySemester(ctx context.Context, semesterID string, offset, limit int) ([]model.Award, int64, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Award, error)
	ListByHouse(ctx context.Context, semesterID, house string, before *time.Time, limit int) ([]model.Award, error)
	Update(ctx context.Context, award *model.Award) error
	Delete(ctx context.Context, id string) error

	// ── 聚合统计 ──
	HouseTotals(ctx context.Context, semesterID string, before *time.Time) ([]HouseTotal, error)
	StudentTotals(ctx context.Context, semesterID, house string, before *time.Time) ([]StudentTotal, error)
	MatrixTotals(ctx context.Context, semesterID string, before *time.Time) ([]MatrixCell, error)
	StudentMatrixTotals(ctx context.Context, semesterID, house string, before *time.Time) ([]StudentTypeCell, error)
	HouseLevelTypeTotals(ctx context.Context, semesterID, house string, before *time.Time) ([]MatrixCell, error)
	SumByStudentAndType(ctx context.Context, studentID, awardType string) (int, error)
}

// awardRepo AwardRepository 的 GORM 实现
type awardRepo struct {
	db *gorm.DB
}

// NewAwardRepo 创建 AwardRepository 实例
func NewAwardRepo(db *gorm.DB) AwardRepository {
	return &awardRepo{db: db}
}

func (r *awardRepo) Create(ctx context.Context, award *model.Award) error {
	return r.db.WithContext(ctx).Create(award).Error
}

func (r *awardRepo) CreateBatch(ctx context.Context, awards []model.Award) error {
	if len(awards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(awards, 100).Error
}

func (r *awardRepo) GetByID(ctx context.Context, id string) (*model.Award, error) {
	var award model.Award
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("AwardedBy").
		Where("award_id = ?", id).
		First(&award).Error
	if err != nil {
		return nil, err
	}
	return &award, nil
}

func (r *awardRepo) ListBySemester(ctx context.Context, semesterID string, offset, limit int) ([]model.Award, int64, error) {
	var awards []model.Award
	var total int64

	q := r.db.WithContext(ctx).
		Model(&model.Award{}).
		Where("semester_id = ?", semesterID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Preload("Student").
		Preload("AwardedBy").
		Order("awarded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&awards).Error
	return awards, total, err
}

func (r *awardRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Award, error) {
	var awards []model.Award
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("awarded_at DESC").
		Find(&awards).Error
	return awards, err
}

func (r *awardRepo) ListByHouse(ctx context.Context, semesterID, house string, before *time.Time, limit int) ([]model.Award, error) {
	var awards []model.Award
	q := r.db.WithContext(ctx).
		Preload("Student").
		Where("semester_id = ? AND house = ?", semesterID, house)
	if before != nil {
		q = q.Where("awarded_at < ?", *before)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("awarded_at DESC").Find(&awards).Error
	return awards, err
}

func (r *awardRepo) Update(ctx context.Context, award *model.Award) error {
	return r.db.WithContext(ctx).Save(award).Error
}

func (r *awardRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("award_id = ?", id).
		Delete(&model.Award{}).Error
}

// ── 聚合统计 ──

func (r *awardRepo) HouseTotals(ctx context.Context, semesterID string, before *time.Time) ([]HouseTotal, error) {
	var rows []HouseTotal
	q := r.db.WithContext(ctx).
		Model(&model.Award{}).
		Select("house, COALESCE(SUM(points), 0) AS points").
		Where("semester_id = ?", semesterID)
	if before != nil {
		q = q.Where("awarded_at < ?", *before)
	}
	err := q.Group("house").Scan(&rows).Error
	return rows, err
}

func (r *awardRepo) StudentTotals(ctx context.Context, semesterID, house string, before *time.Time) ([]StudentTotal, error) {
	var rows []StudentTotal
	q := r.db.WithContext(ctx).
		Model(&model.Award{}).
		Select("awards.student_id, students.airtable_name, awards.house, COALESCE(SUM(awards.points), 0) AS points").
		Joins("JOIN students ON students.student_id = awards.student_id").
		Where("awards.semester_id = ? AND awards.house = ?", semesterID, house)
	if before != nil {
		q = q.Where("awards.awarded_at < ?", *before)
	}
	err := q.
		Group("awards.student_id, students.airtable_name, awards.house").
		Order("points DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *awardRepo) MatrixTotals(ctx context.Context, semesterID string, before *time.Time) ([]MatrixCell, error) {
	var rows []MatrixCell
	q := r.db.WithContext(ctx).
		Model(&model.Award{}).
		Select("house, award_type, COALESCE(SUM(points), 0) AS points").
		Where("semester_id = ?", semesterID)
	if before != nil {
		q = q.Where("awarded_at < ?", *before)
	}
	err := q.Group("house, award_type").Scan(&rows).Error
	return rows, err
}

func (r *awardRepo) StudentMatrixTotals(ctx context.Context, semesterID, house string, before *time.Time) ([]StudentTypeCell, error) {
	var rows []StudentTypeCell
	q := r.db.WithContext(ctx).
		Model(&model.Award{}).
		Select("student_id, award_type, COALESCE(SUM(points), 0) AS points").
		Where("semester_id = ? AND house = ? AND student_id IS NOT NULL", semesterID, house)
	if before != nil {
		q = q.Where("awarded_at < ?", *before)
	}
	err := q.Group("student_id, award_type").Scan(&rows).Error
	return rows, err
}

func (r *awardRepo) HouseLevelTypeTotals(ctx context.Context, semesterID, house string, before *time.Time) ([]MatrixCell, error) {
	var rows []MatrixCell
	q := r.db.WithContext(ctx).
		Model(&model.Award{}).
		Select("house, award_type, COALESCE(SUM(points), 0) AS points").
		Where("semester_id = ? AND house = ? AND student_id IS NULL", semesterID, house)
	if before != nil {
		q = q.Where("awarded_at < ?", *before)
	}
	err := q.Group("house, award_type").Scan(&rows).Error
	return rows, err
}

func (r *awardRepo) SumByStudentAndType(ctx context.Context, studentID, awardType string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Award{}).
		Select("COALESCE(SUM(points), 0)").
		Where("student_id = ? AND award_type = ?", studentID, awardType).
		Scan(&total).Error
	return int(total), err
}
