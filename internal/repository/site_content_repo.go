package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// SiteContentRepository 站点内容（历史页面、题集）数据访问接口
type SiteContentRepository interface {
	// ── 历史页面 ──
	CreateHistoryEntry(ctx context.Context, entry *model.HistoryEntry) error
	GetHistoryEntryByID(ctx context.Context, id string) (*model.HistoryEntry, error)
	GetHistoryEntryBySlug(ctx context.Context, slug string) (*model.HistoryEntry, error)
	ListHistoryEntries(ctx context.Context, visibleOnly bool) ([]model.HistoryEntry, error)
	UpdateHistoryEntry(ctx context.Context, entry *model.HistoryEntry) error
	DeleteHistoryEntry(ctx context.Context, id string) error

	// ── 题集 ──
	CreateProblemSet(ctx context.Context, pset *model.ProblemSet) error
	GetProblemSetByID(ctx context.Context, id string) (*model.ProblemSet, error)
	ListProblemSets(ctx context.Context) ([]model.ProblemSet, error)
	ListProblemSetsByStatus(ctx context.Context, status string) ([]model.ProblemSet, error)
	UpdateProblemSet(ctx context.Context, pset *model.ProblemSet) error
	DeleteProblemSet(ctx context.Context, id string) error
}

// siteContentRepo SiteContentRepository 的 GORM 实现
type siteContentRepo struct {
	db *gorm.DB
}

// NewSiteContentRepo 创建 SiteContentRepository 实例
func NewSiteContentRepo(db *gorm.DB) SiteContentRepository {
	return &siteContentRepo{db: db}
}

// ── 历史页面 ──

func (r *siteContentRepo) CreateHistoryEntry(ctx context.Context, entry *model.HistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *siteContentRepo) GetHistoryEntryByID(ctx context.Context, id string) (*model.HistoryEntry, error) {
	var entry model.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *siteContentRepo) GetHistoryEntryBySlug(ctx context.Context, slug string) (*model.HistoryEntry, error) {
	var entry model.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *siteContentRepo) ListHistoryEntries(ctx context.Context, visibleOnly bool) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	q := r.db.WithContext(ctx)
	if visibleOnly {
		q = q.Where("visible = ?", true)
	}
	err := q.Order("title ASC").Find(&entries).Error
	return entries, err
}

func (r *siteContentRepo) UpdateHistoryEntry(ctx context.Context, entry *model.HistoryEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *siteContentRepo) DeleteHistoryEntry(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ?", id).
		Delete(&model.HistoryEntry{}).Error
}

// ── 题集 ──

func (r *siteContentRepo) CreateProblemSet(ctx context.Context, pset *model.ProblemSet) error {
	return r.db.WithContext(ctx).Create(pset).Error
}

func (r *siteContentRepo) GetProblemSetByID(ctx context.Context, id string) (*model.ProblemSet, error) {
	var pset model.ProblemSet
	err := r.db.WithContext(ctx).
		Where("pset_id = ?", id).
		First(&pset).Error
	if err != nil {
		return nil, err
	}
	return &pset, nil
}

func (r *siteContentRepo) ListProblemSets(ctx context.Context) ([]model.ProblemSet, error) {
	var psets []model.ProblemSet
	err := r.db.WithContext(ctx).
		Order("deadline DESC").
		Find(&psets).Error
	return psets, err
}

func (r *siteContentRepo) ListProblemSetsByStatus(ctx context.Context, status string) ([]model.ProblemSet, error) {
	var psets []model.ProblemSet
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("deadline DESC").
		Find(&psets).Error
	return psets, err
}

func (r *siteContentRepo) UpdateProblemSet(ctx context.Context, pset *model.ProblemSet) error {
	return r.db.WithContext(ctx).Save(pset).Error
}

func (r *siteContentRepo) DeleteProblemSet(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("pset_id = ?", id).
		Delete(&model.ProblemSet{}).Error
}
