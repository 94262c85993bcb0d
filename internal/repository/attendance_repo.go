package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// AttendanceCount 助教出勤次数统计行
type AttendanceCount struct {
	UserID string
	Count  int
}

// AttendanceRepository 助教出勤数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.Attendance) error
	Exists(ctx context.Context, userID, clubID string, date time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Attendance, error)
	ListByClub(ctx context.Context, clubID string) ([]model.Attendance, error)
	ListAll(ctx context.Context) ([]model.Attendance, error)
	CountByUserForClubs(ctx context.Context, clubIDs []string) ([]AttendanceCount, error)
	Delete(ctx context.Context, id string) error
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) Exists(ctx context.Context, userID, clubID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("user_id = ? AND club_id = ? AND date = ?", userID, clubID, date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Club").
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByClub(ctx context.Context, clubID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("club_id = ?", clubID).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListAll(ctx context.Context) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Club").
		Order("date DESC").
		Find(&records).Error
	return records, err
}

// CountByUserForClubs 统计每位助教在给定社团范围内的出勤总次数
func (r *attendanceRepo) CountByUserForClubs(ctx context.Context, clubIDs []string) ([]AttendanceCount, error) {
	var rows []AttendanceCount
	if len(clubIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("user_id, COUNT(*) AS count").
		Where("club_id IN ?", clubIDs).
		Group("user_id").
		Scan(&rows).Error
	return rows, err
}

func (r *attendanceRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("attendance_id = ?", id).
		Delete(&model.Attendance{}).Error
}
