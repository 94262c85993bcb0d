package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	"github.com/vEnhance/atheweb/pkg/mailer"
)

// 邀请默认有效期（天）
const defaultInviteExpiresDays = 30

// InviteService 注册邀请业务接口
type InviteService interface {
	CreateStudentInvite(ctx context.Context, caller *Caller, req *dto.CreateStudentInviteRequest) (*dto.InviteResponse, error)
	CreateStaffInvite(ctx context.Context, caller *Caller, req *dto.CreateStaffInviteRequest) (*dto.InviteResponse, error)
	// Validate 注册页预检：返回邀请是否仍然可用
	Validate(ctx context.Context, kind, token string) (*dto.InviteValidateResponse, error)
	ListStudentInvites(ctx context.Context, semesterID string) ([]dto.InviteResponse, error)
	ListStaffInvites(ctx context.Context) ([]dto.InviteResponse, error)
	DeleteStudentInvite(ctx context.Context, token string) error
	DeleteStaffInvite(ctx context.Context, token string) error
}

type inviteService struct {
	cfg    *config.Config
	repo   *repository.Repository
	mail   mailer.Mailer
	logger *zap.Logger
}

// NewInviteService 创建 InviteService 实例
func NewInviteService(cfg *config.Config, repo *repository.Repository, mail mailer.Mailer, logger *zap.Logger) InviteService {
	return &inviteService{cfg: cfg, repo: repo, mail: mail, logger: logger}
}

// ────────────────────── CreateStudentInvite ──────────────────────

func (s *inviteService) CreateStudentInvite(ctx context.Context, caller *Caller, req *dto.CreateStudentInviteRequest) (*dto.InviteResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, req.SemesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	days := req.ExpiresDays
	if days <= 0 {
		days = defaultInviteExpiresDays
	}
	invite := &model.StudentInvite{
		Name:        req.Name,
		SemesterID:  semester.SemesterID,
		ExpiresAt:   time.Now().AddDate(0, 0, days),
		CreatedByID: &caller.UserID,
	}
	if err := s.repo.Invite.CreateStudentInvite(ctx, invite); err != nil {
		s.logger.Error("创建学生邀请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生邀请已签发",
		zap.String("invite_id", invite.InviteID),
		zap.String("semester_id", semester.SemesterID),
		zap.String("name", invite.Name))

	resp := &dto.InviteResponse{
		Token:        invite.InviteID,
		Kind:         "student",
		Name:         invite.Name,
		SemesterID:   semester.SemesterID,
		SemesterName: semester.Name,
		ExpiresAt:    invite.ExpiresAt.Format(time.RFC3339),
	}
	if req.SendToEmail != "" {
		resp.MailSent = s.sendInviteMail(req.SendToEmail, invite.Name, "student", invite.InviteID, semester.Name)
	}
	return resp, nil
}

// ────────────────────── CreateStaffInvite ──────────────────────

func (s *inviteService) CreateStaffInvite(ctx context.Context, caller *Caller, req *dto.CreateStaffInviteRequest) (*dto.InviteResponse, error) {
	days := req.ExpiresDays
	if days <= 0 {
		days = defaultInviteExpiresDays
	}
	invite := &model.StaffInvite{
		Name:        req.Name,
		ExpiresAt:   time.Now().AddDate(0, 0, days),
		CreatedByID: &caller.UserID,
	}
	if err := s.repo.Invite.CreateStaffInvite(ctx, invite); err != nil {
		s.logger.Error("创建员工邀请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工邀请已签发",
		zap.String("invite_id", invite.InviteID),
		zap.String("name", invite.Name))

	resp := &dto.InviteResponse{
		Token:     invite.InviteID,
		Kind:      "staff",
		Name:      invite.Name,
		ExpiresAt: invite.ExpiresAt.Format(time.RFC3339),
	}
	if req.SendToEmail != "" {
		resp.MailSent = s.sendInviteMail(req.SendToEmail, invite.Name, "staff", invite.InviteID, "")
	}
	return resp, nil
}

// ────────────────────── Validate ──────────────────────

func (s *inviteService) Validate(ctx context.Context, kind, token string) (*dto.InviteValidateResponse, error) {
	now := time.Now()
	switch kind {
	case "student":
		invite, err := s.repo.Invite.GetStudentInvite(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &dto.InviteValidateResponse{Valid: false}, nil
			}
			s.logger.Error("查询学生邀请失败", zap.Error(err))
			return nil, err
		}
		resp := &dto.InviteValidateResponse{
			Kind:      "student",
			Name:      invite.Name,
			ExpiresAt: invite.ExpiresAt.Format(time.RFC3339),
		}
		if invite.Semester != nil {
			resp.SemesterName = invite.Semester.Name
			// 学期结束后邀请同样失效
			resp.Valid = !invite.IsExpired(now) && !invite.Semester.HasEnded(now)
		}
		return resp, nil
	case "staff":
		invite, err := s.repo.Invite.GetStaffInvite(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &dto.InviteValidateResponse{Valid: false}, nil
			}
			s.logger.Error("查询员工邀请失败", zap.Error(err))
			return nil, err
		}
		return &dto.InviteValidateResponse{
			Valid:     !invite.IsExpired(now),
			Kind:      "staff",
			Name:      invite.Name,
			ExpiresAt: invite.ExpiresAt.Format(time.RFC3339),
		}, nil
	default:
		return &dto.InviteValidateResponse{Valid: false}, nil
	}
}

// ────────────────────── ListStudentInvites ──────────────────────

func (s *inviteService) ListStudentInvites(ctx context.Context, semesterID string) ([]dto.InviteResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}
	invites, err := s.repo.Invite.ListStudentInvites(ctx, semesterID)
	if err != nil {
		s.logger.Error("查询学生邀请失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		result = append(result, dto.InviteResponse{
			Token:        invites[i].InviteID,
			Kind:         "student",
			Name:         invites[i].Name,
			SemesterID:   invites[i].SemesterID,
			SemesterName: semester.Name,
			ExpiresAt:    invites[i].ExpiresAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// ────────────────────── ListStaffInvites ──────────────────────

func (s *inviteService) ListStaffInvites(ctx context.Context) ([]dto.InviteResponse, error) {
	invites, err := s.repo.Invite.ListStaffInvites(ctx)
	if err != nil {
		s.logger.Error("查询员工邀请失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		result = append(result, dto.InviteResponse{
			Token:     invites[i].InviteID,
			Kind:      "staff",
			Name:      invites[i].Name,
			ExpiresAt: invites[i].ExpiresAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// ────────────────────── DeleteStudentInvite ──────────────────────

func (s *inviteService) DeleteStudentInvite(ctx context.Context, token string) error {
	if _, err := s.repo.Invite.GetStudentInvite(ctx, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteInvalid
		}
		s.logger.Error("查询学生邀请失败", zap.Error(err))
		return err
	}
	if err := s.repo.Invite.DeleteStudentInvite(ctx, token); err != nil {
		s.logger.Error("删除学生邀请失败", zap.Error(err))
		return err
	}
	s.logger.Info("学生邀请已删除", zap.String("invite_id", token))
	return nil
}

// ────────────────────── DeleteStaffInvite ──────────────────────

func (s *inviteService) DeleteStaffInvite(ctx context.Context, token string) error {
	if _, err := s.repo.Invite.GetStaffInvite(ctx, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteInvalid
		}
		s.logger.Error("查询员工邀请失败", zap.Error(err))
		return err
	}
	if err := s.repo.Invite.DeleteStaffInvite(ctx, token); err != nil {
		s.logger.Error("删除员工邀请失败", zap.Error(err))
		return err
	}
	s.logger.Info("员工邀请已删除", zap.String("invite_id", token))
	return nil
}

// ── 内部辅助方法 ──

// sendInviteMail 发送邀请邮件；失败只记日志，不影响签发
func (s *inviteService) sendInviteMail(toEmail, toName, kind, token, semesterName string) bool {
	link := fmt.Sprintf("%s/register?kind=%s&invite=%s", s.cfg.Server.BaseURL, kind, token)
	subject := "You're invited to join Athemath"
	body := fmt.Sprintf(
		"<p>Hello %s,</p>"+
			"<p>You have been invited to register an Athemath account.</p>"+
			"<p><a href=%q>Click here to register</a></p>",
		toName, link)
	if semesterName != "" {
		body = fmt.Sprintf(
			"<p>Hello %s,</p>"+
				"<p>You have been invited to join Athemath for %s.</p>"+
				"<p><a href=%q>Click here to register</a></p>",
			toName, semesterName, link)
	}

	if err := s.mail.Send(toName, toEmail, subject, body); err != nil {
		s.logger.Warn("邀请邮件发送失败",
			zap.String("to", toEmail), zap.Error(err))
		return false
	}
	return true
}
