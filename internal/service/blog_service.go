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

// 每位作者同时持有的草稿上限
const maxPendingPosts = 3

// ── 博客模块业务错误 ──

var (
	ErrPostNotFound       = errors.New("blog post not found")
	ErrPostSlugTaken      = errors.New("blog post slug already exists")
	ErrDraftLimitReached  = errors.New("you already have 3 pending posts")
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrInvalidDisplayDate = errors.New("invalid display date")
)

// BlogService 博客业务接口
type BlogService interface {
	// ListPublished 公开文章列表，按展示日期倒序
	ListPublished(ctx context.Context, page *dto.PaginationRequest) ([]dto.PostResponse, int64, error)
	// GetBySlug 文章详情；草稿仅作者和员工可见，caller 可为 nil（匿名）
	GetBySlug(ctx context.Context, caller *Caller, slug string) (*dto.PostResponse, error)
	MyPosts(ctx context.Context, caller *Caller) (*dto.MyPostsResponse, error)
	Create(ctx context.Context, caller *Caller, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	Update(ctx context.Context, caller *Caller, slug string, req *dto.UpdatePostRequest) (*dto.PostResponse, error)
	// Publish 员工发布文章
	Publish(ctx context.Context, caller *Caller, slug string) (*dto.PostResponse, error)
	Delete(ctx context.Context, caller *Caller, slug string) error

	// ── 博客图片 ──
	CreatePhoto(ctx context.Context, req *dto.CreatePhotoRequest) (*dto.PhotoResponse, error)
	ListPhotos(ctx context.Context) ([]dto.PhotoResponse, error)
	DeletePhoto(ctx context.Context, id string) error
}

type blogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBlogService 创建 BlogService 实例
func NewBlogService(repo *repository.Repository, logger *zap.Logger) BlogService {
	return &blogService{repo: repo, logger: logger}
}

// ────────────────────── ListPublished ──────────────────────

func (s *blogService) ListPublished(ctx context.Context, page *dto.PaginationRequest) ([]dto.PostResponse, int64, error) {
	posts, total, err := s.repo.Blog.ListPublished(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询文章列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		result = append(result, postToResponse(&posts[i]))
	}
	return result, total, nil
}

// ────────────────────── GetBySlug ──────────────────────

func (s *blogService) GetBySlug(ctx context.Context, caller *Caller, slug string) (*dto.PostResponse, error) {
	post, err := s.repo.Blog.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		s.logger.Error("查询文章失败", zap.Error(err))
		return nil, err
	}

	// 草稿对外不可见，按不存在处理
	if !post.Published {
		if caller == nil || (caller.UserID != post.CreatorID && !caller.IsStaff()) {
			return nil, ErrPostNotFound
		}
	}

	resp := postToResponse(post)
	return &resp, nil
}

// ────────────────────── MyPosts ──────────────────────

func (s *blogService) MyPosts(ctx context.Context, caller *Caller) (*dto.MyPostsResponse, error) {
	posts, err := s.repo.Blog.ListByCreator(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("查询本人文章失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.MyPostsResponse{
		Pending:   make([]dto.PostResponse, 0),
		Published: make([]dto.PostResponse, 0),
	}
	pending := 0
	for i := range posts {
		if posts[i].Published {
			resp.Published = append(resp.Published, postToResponse(&posts[i]))
		} else {
			pending++
			resp.Pending = append(resp.Pending, postToResponse(&posts[i]))
		}
	}
	resp.CanCreate = pending < maxPendingPosts
	return resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *blogService) Create(ctx context.Context, caller *Caller, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	pending, err := s.repo.Blog.CountUnpublishedByCreator(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("统计草稿数失败", zap.Error(err))
		return nil, err
	}
	if pending >= maxPendingPosts {
		return nil, ErrDraftLimitReached
	}

	if _, err := s.repo.Blog.GetPostBySlug(ctx, req.Slug); err == nil {
		return nil, ErrPostSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询文章失败", zap.Error(err))
		return nil, err
	}

	post := &model.BlogPost{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Slug:          req.Slug,
		DisplayAuthor: req.DisplayAuthor,
		CreatorID:     caller.UserID,
		Content:       req.Content,
		Published:     false,
		DisplayDate:   time.Now(),
	}
	if err := s.repo.Blog.CreatePost(ctx, post); err != nil {
		s.logger.Error("创建文章失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("文章草稿已创建",
		zap.String("post_id", post.PostID),
		zap.String("slug", post.Slug),
		zap.String("creator_id", caller.UserID))
	resp := postToResponse(post)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

// Update 作者只能编辑本人未发布的文章；员工可编辑任何文章
func (s *blogService) Update(ctx context.Context, caller *Caller, slug string, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.repo.Blog.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		s.logger.Error("查询文章失败", zap.Error(err))
		return nil, err
	}

	if !caller.IsStaff() {
		if post.CreatorID != caller.UserID || post.Published {
			return nil, ErrPostNotFound
		}
	}

	if req.Slug != nil && *req.Slug != post.Slug {
		if _, err := s.repo.Blog.GetPostBySlug(ctx, *req.Slug); err == nil {
			return nil, ErrPostSlugTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询文章失败", zap.Error(err))
			return nil, err
		}
		post.Slug = *req.Slug
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Subtitle != nil {
		post.Subtitle = *req.Subtitle
	}
	if req.DisplayAuthor != nil {
		post.DisplayAuthor = *req.DisplayAuthor
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	// 展示日期只有员工可以改
	if req.DisplayDate != nil && caller.IsStaff() {
		displayDate, err := time.Parse("2006-01-02", *req.DisplayDate)
		if err != nil {
			return nil, ErrInvalidDisplayDate
		}
		post.DisplayDate = displayDate
	}

	if err := s.repo.Blog.UpdatePost(ctx, post); err != nil {
		s.logger.Error("更新文章失败", zap.Error(err))
		return nil, err
	}
	resp := postToResponse(post)
	return &resp, nil
}

// ────────────────────── Publish ──────────────────────

func (s *blogService) Publish(ctx context.Context, caller *Caller, slug string) (*dto.PostResponse, error) {
	post, err := s.repo.Blog.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		s.logger.Error("查询文章失败", zap.Error(err))
		return nil, err
	}

	if !post.Published {
		post.Published = true
		if err := s.repo.Blog.UpdatePost(ctx, post); err != nil {
			s.logger.Error("发布文章失败", zap.Error(err))
			return nil, err
		}
		s.logger.Info("文章已发布",
			zap.String("post_id", post.PostID),
			zap.String("slug", post.Slug),
			zap.String("published_by", caller.UserID))
	}
	resp := postToResponse(post)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 作者可删除本人草稿；员工可删除任何文章
func (s *blogService) Delete(ctx context.Context, caller *Caller, slug string) error {
	post, err := s.repo.Blog.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		s.logger.Error("查询文章失败", zap.Error(err))
		return err
	}

	if !caller.IsStaff() {
		if post.CreatorID != caller.UserID || post.Published {
			return ErrPostNotFound
		}
	}

	if err := s.repo.Blog.DeletePost(ctx, post.PostID); err != nil {
		s.logger.Error("删除文章失败", zap.Error(err))
		return err
	}
	s.logger.Info("文章已删除",
		zap.String("post_id", post.PostID),
		zap.String("slug", post.Slug))
	return nil
}

// ────────────────────── CreatePhoto ──────────────────────

func (s *blogService) CreatePhoto(ctx context.Context, req *dto.CreatePhotoRequest) (*dto.PhotoResponse, error) {
	photo := &model.BlogPhoto{
		Name:       req.Name,
		URL:        req.URL,
		UploadedAt: time.Now(),
	}
	if err := s.repo.Blog.CreatePhoto(ctx, photo); err != nil {
		s.logger.Error("登记图片失败", zap.Error(err))
		return nil, err
	}
	resp := photoToResponse(photo)
	return &resp, nil
}

// ────────────────────── ListPhotos ──────────────────────

func (s *blogService) ListPhotos(ctx context.Context) ([]dto.PhotoResponse, error) {
	photos, err := s.repo.Blog.ListPhotos(ctx)
	if err != nil {
		s.logger.Error("查询图片列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PhotoResponse, 0, len(photos))
	for i := range photos {
		result = append(result, photoToResponse(&photos[i]))
	}
	return result, nil
}

// ────────────────────── DeletePhoto ──────────────────────

func (s *blogService) DeletePhoto(ctx context.Context, id string) error {
	if _, err := s.repo.Blog.GetPhotoByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPhotoNotFound
		}
		s.logger.Error("查询图片失败", zap.Error(err))
		return err
	}
	if err := s.repo.Blog.DeletePhoto(ctx, id); err != nil {
		s.logger.Error("删除图片失败", zap.Error(err))
		return err
	}
	s.logger.Info("图片已删除", zap.String("photo_id", id))
	return nil
}

// ── 内部辅助方法 ──

func postToResponse(post *model.BlogPost) dto.PostResponse {
	return dto.PostResponse{
		ID:            post.PostID,
		Title:         post.Title,
		Subtitle:      post.Subtitle,
		Slug:          post.Slug,
		DisplayAuthor: post.DisplayAuthor,
		Content:       post.Content,
		Published:     post.Published,
		DisplayDate:   post.DisplayDate.Format("2006-01-02"),
	}
}

func photoToResponse(photo *model.BlogPhoto) dto.PhotoResponse {
	return dto.PhotoResponse{
		ID:         photo.PhotoID,
		Name:       photo.Name,
		URL:        photo.URL,
		UploadedAt: photo.UploadedAt.Format(time.RFC3339),
	}
}
