package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// InviteRepository 注册邀请数据访问接口
type InviteRepository interface {
	// ── 学生邀请 ──
	CreateStudentInvite(ctx context.Context, invite *model.StudentInvite) error
	GetStudentInvite(ctx context.Context, token string) (*model.StudentInvite, error)
	ListStudentInvites(ctx context.Context, semesterID string) ([]model.StudentInvite, error)
	DeleteStudentInvite(ctx context.Context, token string) error

	// ── 员工邀请 ──
	CreateStaffInvite(ctx context.Context, invite *model.StaffInvite) error
	GetStaffInvite(ctx context.Context, token string) (*model.StaffInvite, error)
	ListStaffInvites(ctx context.Context) ([]model.StaffInvite, error)
	DeleteStaffInvite(ctx context.Context, token string) error
}

// inviteRepo InviteRepository 的 GORM 实现
type inviteRepo struct {
	db *gorm.DB
}

// NewInviteRepo 创建 InviteRepository 实例
func NewInviteRepo(db *gorm.DB) InviteRepository {
	return &inviteRepo{db: db}
}

// ── 学生邀请 ──

func (r *inviteRepo) CreateStudentInvite(ctx context.Context, invite *model.StudentInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *inviteRepo) GetStudentInvite(ctx context.Context, token string) (*model.StudentInvite, error) {
	var invite model.StudentInvite
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("invite_id = ?", token).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepo) ListStudentInvites(ctx context.Context, semesterID string) ([]model.StudentInvite, error) {
	var invites []model.StudentInvite
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", semesterID).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

func (r *inviteRepo) DeleteStudentInvite(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("invite_id = ?", token).
		Delete(&model.StudentInvite{}).Error
}

// ── 员工邀请 ──

func (r *inviteRepo) CreateStaffInvite(ctx context.Context, invite *model.StaffInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *inviteRepo) GetStaffInvite(ctx context.Context, token string) (*model.StaffInvite, error) {
	var invite model.StaffInvite
	err := r.db.WithContext(ctx).
		Where("invite_id = ?", token).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepo) ListStaffInvites(ctx context.Context) ([]model.StaffInvite, error) {
	var invites []model.StaffInvite
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

func (r *inviteRepo) DeleteStaffInvite(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("invite_id = ?", token).
		Delete(&model.StaffInvite{}).Error
}
