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

// ── 活动模块业务错误 ──

var ErrEventNotFound = errors.New("event not found")

// EventService 全局活动业务接口
type EventService interface {
	Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EventResponse, error)
	ListBySemester(ctx context.Context, semesterID string) ([]dto.EventResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, id string) error
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidStartTime
	}

	event := &model.GlobalEvent{
		SemesterID:  req.SemesterID,
		Title:       req.Title,
		StartTime:   startTime,
		Description: req.Description,
		Link:        req.Link,
	}
	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}

	resp := eventToResponse(event)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *eventService) GetByID(ctx context.Context, id string) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := eventToResponse(event)
	return &resp, nil
}

// ────────────────────── ListBySemester ──────────────────────

func (s *eventService) ListBySemester(ctx context.Context, semesterID string) ([]dto.EventResponse, error) {
	events, err := s.repo.Event.ListBySemester(ctx, semesterID)
	if err != nil {
		s.logger.Error("列出活动失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		result = append(result, eventToResponse(&events[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.StartTime != nil {
		startTime, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return nil, ErrInvalidStartTime
		}
		event.StartTime = startTime
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Link != nil {
		event.Link = *req.Link
	}

	if err := s.repo.Event.Update(ctx, event); err != nil {
		s.logger.Error("更新活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := eventToResponse(event)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *eventService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Event.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Event.Delete(ctx, id); err != nil {
		s.logger.Error("删除活动失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func eventToResponse(event *model.GlobalEvent) dto.EventResponse {
	return dto.EventResponse{
		ID:          event.EventID,
		SemesterID:  event.SemesterID,
		Title:       event.Title,
		StartTime:   event.StartTime.Format(time.RFC3339),
		Description: event.Description,
		Link:        event.Link,
	}
}
