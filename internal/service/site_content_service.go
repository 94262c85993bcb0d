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

// ── 站点内容模块业务错误 ──

var (
	ErrHistoryEntryNotFound = errors.New("history entry not found")
	ErrHistorySlugTaken     = errors.New("a history entry with this slug already exists")
	ErrProblemSetNotFound   = errors.New("problem set not found")
	ErrInvalidPSetStatus    = errors.New("invalid problem set status")
	ErrInvalidPSetDeadline  = errors.New("invalid problem set deadline")
)

// SiteContentService 站点内容业务接口（历史页面、申请题集）
type SiteContentService interface {
	// ── 历史页面 ──

	// ListHistory 历史条目列表；员工可见隐藏条目
	ListHistory(ctx context.Context, caller *Caller) ([]dto.HistoryEntryResponse, error)
	// GetHistoryEntry 按 slug 查询条目；隐藏条目仅员工可见
	GetHistoryEntry(ctx context.Context, caller *Caller, slug string) (*dto.HistoryEntryResponse, error)
	CreateHistoryEntry(ctx context.Context, req *dto.CreateHistoryEntryRequest) (*dto.HistoryEntryResponse, error)
	UpdateHistoryEntry(ctx context.Context, id string, req *dto.UpdateHistoryEntryRequest) (*dto.HistoryEntryResponse, error)
	DeleteHistoryEntry(ctx context.Context, id string) error

	// ── 申请题集 ──

	// ApplyPage 申请页：有 active 题集时展示它们，否则展示最近一期 completed 的关闭提示
	ApplyPage(ctx context.Context) (*dto.ApplyPageResponse, error)
	// PastProblemSets 已完成题集，按截止时间倒序
	PastProblemSets(ctx context.Context) ([]dto.ProblemSetResponse, error)
	ListProblemSets(ctx context.Context) ([]dto.ProblemSetResponse, error)
	CreateProblemSet(ctx context.Context, req *dto.CreateProblemSetRequest) (*dto.ProblemSetResponse, error)
	UpdateProblemSet(ctx context.Context, id string, req *dto.UpdateProblemSetRequest) (*dto.ProblemSetResponse, error)
	DeleteProblemSet(ctx context.Context, id string) error
}

type siteContentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSiteContentService 创建 SiteContentService 实例
func NewSiteContentService(repo *repository.Repository, logger *zap.Logger) SiteContentService {
	return &siteContentService{repo: repo, logger: logger}
}

// ────────────────────── ListHistory ──────────────────────

func (s *siteContentService) ListHistory(ctx context.Context, caller *Caller) ([]dto.HistoryEntryResponse, error) {
	entries, err := s.repo.SiteContent.ListHistoryEntries(ctx, !caller.IsStaff())
	if err != nil {
		s.logger.Error("查询历史条目失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, historyEntryToResponse(&entries[i]))
	}
	return out, nil
}

// ────────────────────── GetHistoryEntry ──────────────────────

func (s *siteContentService) GetHistoryEntry(ctx context.Context, caller *Caller, slug string) (*dto.HistoryEntryResponse, error) {
	entry, err := s.repo.SiteContent.GetHistoryEntryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryEntryNotFound
		}
		s.logger.Error("查询历史条目失败", zap.Error(err))
		return nil, err
	}
	// 隐藏条目对非员工不暴露存在性
	if !entry.Visible && !caller.IsStaff() {
		return nil, ErrHistoryEntryNotFound
	}
	resp := historyEntryToResponse(entry)
	return &resp, nil
}

// ────────────────────── CreateHistoryEntry ──────────────────────

func (s *siteContentService) CreateHistoryEntry(ctx context.Context, req *dto.CreateHistoryEntryRequest) (*dto.HistoryEntryResponse, error) {
	if _, err := s.repo.SiteContent.GetHistoryEntryBySlug(ctx, req.Slug); err == nil {
		return nil, ErrHistorySlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询历史条目失败", zap.Error(err))
		return nil, err
	}

	entry := &model.HistoryEntry{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
		Visible: true,
	}
	if req.Visible != nil {
		entry.Visible = *req.Visible
	}
	if err := s.repo.SiteContent.CreateHistoryEntry(ctx, entry); err != nil {
		s.logger.Error("创建历史条目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("历史条目已创建", zap.String("slug", entry.Slug))
	resp := historyEntryToResponse(entry)
	return &resp, nil
}

// ────────────────────── UpdateHistoryEntry ──────────────────────

func (s *siteContentService) UpdateHistoryEntry(ctx context.Context, id string, req *dto.UpdateHistoryEntryRequest) (*dto.HistoryEntryResponse, error) {
	entry, err := s.repo.SiteContent.GetHistoryEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryEntryNotFound
		}
		s.logger.Error("查询历史条目失败", zap.Error(err))
		return nil, err
	}

	if req.Slug != nil && *req.Slug != entry.Slug {
		if _, err := s.repo.SiteContent.GetHistoryEntryBySlug(ctx, *req.Slug); err == nil {
			return nil, ErrHistorySlugTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询历史条目失败", zap.Error(err))
			return nil, err
		}
		entry.Slug = *req.Slug
	}
	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.Content != nil {
		entry.Content = *req.Content
	}
	if req.Visible != nil {
		entry.Visible = *req.Visible
	}

	if err := s.repo.SiteContent.UpdateHistoryEntry(ctx, entry); err != nil {
		s.logger.Error("更新历史条目失败", zap.Error(err))
		return nil, err
	}
	resp := historyEntryToResponse(entry)
	return &resp, nil
}

// ────────────────────── DeleteHistoryEntry ──────────────────────

func (s *siteContentService) DeleteHistoryEntry(ctx context.Context, id string) error {
	if _, err := s.repo.SiteContent.GetHistoryEntryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHistoryEntryNotFound
		}
		s.logger.Error("查询历史条目失败", zap.Error(err))
		return err
	}
	if err := s.repo.SiteContent.DeleteHistoryEntry(ctx, id); err != nil {
		s.logger.Error("删除历史条目失败", zap.Error(err))
		return err
	}
	s.logger.Info("历史条目已删除", zap.String("entry_id", id))
	return nil
}

// ────────────────────── ApplyPage ──────────────────────

func (s *siteContentService) ApplyPage(ctx context.Context) (*dto.ApplyPageResponse, error) {
	active, err := s.repo.SiteContent.ListProblemSetsByStatus(ctx, model.PSetStatusActive)
	if err != nil {
		s.logger.Error("查询题集失败", zap.Error(err))
		return nil, err
	}
	if len(active) > 0 {
		resp := &dto.ApplyPageResponse{
			Open:   true,
			Active: make([]dto.ProblemSetResponse, 0, len(active)),
		}
		for i := range active {
			resp.Active = append(resp.Active, problemSetToResponse(&active[i]))
		}
		return resp, nil
	}

	completed, err := s.repo.SiteContent.ListProblemSetsByStatus(ctx, model.PSetStatusCompleted)
	if err != nil {
		s.logger.Error("查询题集失败", zap.Error(err))
		return nil, err
	}
	resp := &dto.ApplyPageResponse{Open: false}
	if len(completed) > 0 {
		resp.ClosedMessage = completed[0].ClosedMessage
	}
	return resp, nil
}

// ────────────────────── PastProblemSets ──────────────────────

func (s *siteContentService) PastProblemSets(ctx context.Context) ([]dto.ProblemSetResponse, error) {
	psets, err := s.repo.SiteContent.ListProblemSetsByStatus(ctx, model.PSetStatusCompleted)
	if err != nil {
		s.logger.Error("查询题集失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.ProblemSetResponse, 0, len(psets))
	for i := range psets {
		out = append(out, problemSetToResponse(&psets[i]))
	}
	return out, nil
}

// ────────────────────── ListProblemSets ──────────────────────

func (s *siteContentService) ListProblemSets(ctx context.Context) ([]dto.ProblemSetResponse, error) {
	psets, err := s.repo.SiteContent.ListProblemSets(ctx)
	if err != nil {
		s.logger.Error("查询题集失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.ProblemSetResponse, 0, len(psets))
	for i := range psets {
		out = append(out, problemSetToResponse(&psets[i]))
	}
	return out, nil
}

// ────────────────────── CreateProblemSet ──────────────────────

func (s *siteContentService) CreateProblemSet(ctx context.Context, req *dto.CreateProblemSetRequest) (*dto.ProblemSetResponse, error) {
	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return nil, ErrInvalidPSetDeadline
	}
	status := req.Status
	if status == "" {
		status = model.PSetStatusDraft
	}
	if !model.IsValidPSetStatus(status) {
		return nil, ErrInvalidPSetStatus
	}

	pset := &model.ProblemSet{
		Name:          req.Name,
		Deadline:      deadline,
		Status:        status,
		FileURL:       req.FileURL,
		Instructions:  req.Instructions,
		ClosedMessage: req.ClosedMessage,
	}
	if err := s.repo.SiteContent.CreateProblemSet(ctx, pset); err != nil {
		s.logger.Error("创建题集失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("题集已创建", zap.String("name", pset.Name), zap.String("status", pset.Status))
	resp := problemSetToResponse(pset)
	return &resp, nil
}

// ────────────────────── UpdateProblemSet ──────────────────────

func (s *siteContentService) UpdateProblemSet(ctx context.Context, id string, req *dto.UpdateProblemSetRequest) (*dto.ProblemSetResponse, error) {
	pset, err := s.repo.SiteContent.GetProblemSetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProblemSetNotFound
		}
		s.logger.Error("查询题集失败", zap.Error(err))
		return nil, err
	}

	if req.Deadline != nil {
		deadline, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return nil, ErrInvalidPSetDeadline
		}
		pset.Deadline = deadline
	}
	if req.Status != nil {
		if !model.IsValidPSetStatus(*req.Status) {
			return nil, ErrInvalidPSetStatus
		}
		pset.Status = *req.Status
	}
	if req.Name != nil {
		pset.Name = *req.Name
	}
	if req.FileURL != nil {
		pset.FileURL = *req.FileURL
	}
	if req.Instructions != nil {
		pset.Instructions = *req.Instructions
	}
	if req.ClosedMessage != nil {
		pset.ClosedMessage = *req.ClosedMessage
	}

	if err := s.repo.SiteContent.UpdateProblemSet(ctx, pset); err != nil {
		s.logger.Error("更新题集失败", zap.Error(err))
		return nil, err
	}
	resp := problemSetToResponse(pset)
	return &resp, nil
}

// ────────────────────── DeleteProblemSet ──────────────────────

func (s *siteContentService) DeleteProblemSet(ctx context.Context, id string) error {
	if _, err := s.repo.SiteContent.GetProblemSetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProblemSetNotFound
		}
		s.logger.Error("查询题集失败", zap.Error(err))
		return err
	}
	if err := s.repo.SiteContent.DeleteProblemSet(ctx, id); err != nil {
		s.logger.Error("删除题集失败", zap.Error(err))
		return err
	}
	s.logger.Info("题集已删除", zap.String("pset_id", id))
	return nil
}

// ── 内部辅助方法 ──

func historyEntryToResponse(entry *model.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:      entry.EntryID,
		Title:   entry.Title,
		Slug:    entry.Slug,
		Content: entry.Content,
		Visible: entry.Visible,
	}
}

func problemSetToResponse(pset *model.ProblemSet) dto.ProblemSetResponse {
	return dto.ProblemSetResponse{
		ID:            pset.PSetID,
		Name:          pset.Name,
		Deadline:      pset.Deadline.Format(time.RFC3339),
		Status:        pset.Status,
		FileURL:       pset.FileURL,
		Instructions:  pset.Instructions,
		ClosedMessage: pset.ClosedMessage,
	}
}
