package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// BlogRepository 博客数据访问接口
type BlogRepository interface {
	CreatePost(ctx context.Context, post *model.BlogPost) error
	GetPostByID(ctx context.Context, id string) (*model.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	ListPublished(ctx context.Context, offset, limit int) ([]model.BlogPost, int64, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.BlogPost, error)
	CountUnpublishedByCreator(ctx context.Context, creatorID string) (int64, error)
	UpdatePost(ctx context.Context, post *model.BlogPost) error
	DeletePost(ctx context.Context, id string) error

	// ── 博客图片 ──
	CreatePhoto(ctx context.Context, photo *model.BlogPhoto) error
	GetPhotoByID(ctx context.Context, id string) (*model.BlogPhoto, error)
	ListPhotos(ctx context.Context) ([]model.BlogPhoto, error)
	DeletePhoto(ctx context.Context, id string) error
}

// blogRepo BlogRepository 的 GORM 实现
type blogRepo struct {
	db *gorm.DB
}

// NewBlogRepo 创建 BlogRepository 实例
func NewBlogRepo(db *gorm.DB) BlogRepository {
	return &blogRepo{db: db}
}

func (r *blogRepo) CreatePost(ctx context.Context, post *model.BlogPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *blogRepo) GetPostByID(ctx context.Context, id string) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("post_id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *blogRepo) GetPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *blogRepo) ListPublished(ctx context.Context, offset, limit int) ([]model.BlogPost, int64, error) {
	var posts []model.BlogPost
	var total int64

	q := r.db.WithContext(ctx).
		Model(&model.BlogPost{}).
		Where("published = ?", true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Order("display_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *blogRepo) ListByCreator(ctx context.Context, creatorID string) ([]model.BlogPost, error) {
	var posts []model.BlogPost
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("display_date DESC").
		Find(&posts).Error
	return posts, err
}

func (r *blogRepo) CountUnpublishedByCreator(ctx context.Context, creatorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BlogPost{}).
		Where("creator_id = ? AND published = ?", creatorID, false).
		Count(&count).Error
	return count, err
}

func (r *blogRepo) UpdatePost(ctx context.Context, post *model.BlogPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *blogRepo) DeletePost(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ?", id).
		Delete(&model.BlogPost{}).Error
}

// ── 博客图片 ──

func (r *blogRepo) CreatePhoto(ctx context.Context, photo *model.BlogPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *blogRepo) GetPhotoByID(ctx context.Context, id string) (*model.BlogPhoto, error) {
	var photo model.BlogPhoto
	err := r.db.WithContext(ctx).
		Where("photo_id = ?", id).
		First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *blogRepo) ListPhotos(ctx context.Context) ([]model.BlogPhoto, error) {
	var photos []model.BlogPhoto
	err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Find(&photos).Error
	return photos, err
}

func (r *blogRepo) DeletePhoto(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("photo_id = ?", id).
		Delete(&model.BlogPhoto{}).Error
}
