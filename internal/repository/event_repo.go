package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// EventRepository 全局活动数据访问接口
type EventRepository interface {
	Create(ctx context.Context, event *model.GlobalEvent) error
	GetByID(ctx context.Context, id string) (*model.GlobalEvent, error)
	ListBySemester(ctx context.Context, semesterID string) ([]model.GlobalEvent, error)
	ListInRange(ctx context.Context, semesterID string, from, to time.Time) ([]model.GlobalEvent, error)
	ListUpcoming(ctx context.Context, semesterID string, after time.Time, limit int) ([]model.GlobalEvent, error)
	Update(ctx context.Context, event *model.GlobalEvent) error
	Delete(ctx context.Context, id string) error
}

// eventRepo EventRepository 的 GORM 实现
type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.GlobalEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.GlobalEvent, error) {
	var event model.GlobalEvent
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) ListBySemester(ctx context.Context, semesterID string) ([]model.GlobalEvent, error) {
	var events []model.GlobalEvent
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", semesterID).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) ListInRange(ctx context.Context, semesterID string, from, to time.Time) ([]model.GlobalEvent, error) {
	var events []model.GlobalEvent
	err := r.db.WithContext(ctx).
		Where("semester_id = ? AND start_time >= ? AND start_time < ?", semesterID, from, to).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) ListUpcoming(ctx context.Context, semesterID string, after time.Time, limit int) ([]model.GlobalEvent, error) {
	var events []model.GlobalEvent
	q := r.db.WithContext(ctx).
		Where("semester_id = ? AND start_time >= ?", semesterID, after).
		Order("start_time ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *eventRepo) Update(ctx context.Context, event *model.GlobalEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", id).
		Delete(&model.GlobalEvent{}).Error
}
