package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	"github.com/vEnhance/atheweb/pkg/jwt"
	"github.com/vEnhance/atheweb/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("this account has been disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("this username is already taken")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInviteInvalid      = errors.New("invite link is invalid")
	ErrInviteExpired      = errors.New("invite link has expired")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrRefreshInvalid     = errors.New("refresh token is invalid")
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	redis  *redis.Client // 可为 nil：Redis 不可用时黑名单降级
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	redisClient *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		redis:  redisClient,
		logger: logger,
	}
}

// ────────────────────── Register ──────────────────────

// Register 邀请注册。开放注册是关闭的：必须携带有效的学生或员工邀请。
// 学生注册认领同名未关联的名册行；员工注册认领同名未关联的目录条目，
// 并接管该条目任教课程的领队身份。建号与认领在同一事务内完成。
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	// 1. 校验邀请
	var (
		studentInvite *model.StudentInvite
		staffInvite   *model.StaffInvite
	)
	switch req.InviteKind {
	case "student":
		invite, err := s.repo.Invite.GetStudentInvite(ctx, req.InviteToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInviteInvalid
			}
			s.logger.Error("查询学生邀请失败", zap.Error(err))
			return nil, err
		}
		if invite.IsExpired(time.Now()) {
			return nil, ErrInviteExpired
		}
		// 学期结束后邀请随之失效
		if invite.Semester != nil && invite.Semester.HasEnded(time.Now()) {
			return nil, ErrInviteExpired
		}
		studentInvite = invite
	case "staff":
		invite, err := s.repo.Invite.GetStaffInvite(ctx, req.InviteToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInviteInvalid
			}
			s.logger.Error("查询员工邀请失败", zap.Error(err))
			return nil, err
		}
		if invite.IsExpired(time.Now()) {
			return nil, ErrInviteExpired
		}
		staffInvite = invite
	default:
		return nil, ErrInviteInvalid
	}

	// 2. 唯一性检查
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户名失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return nil, err
	}

	// 3. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	role := model.RoleMember
	if staffInvite != nil {
		role = model.RoleStaff
	}
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		IsActive:     true,
	}

	// 4. 事务：建号 + 认领
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.User.Create(ctx, user); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	if studentInvite != nil {
		if err := s.claimRoster(ctx, txRepo, user, studentInvite, req.AirtableName); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return nil, err
		}
	}
	if staffInvite != nil {
		if err := s.claimStaffListing(ctx, txRepo, user, staffInvite); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return nil, err
		}
		// 员工邀请是一次性的：目录条目认领后链接作废
		if err := txRepo.Invite.DeleteStaffInvite(ctx, staffInvite.InviteID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("删除员工邀请失败", zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("新用户注册",
		zap.String("user_id", user.UserID),
		zap.String("username", user.Username),
		zap.String("invite_kind", req.InviteKind),
	)

	return s.issueTokens(user)
}

// claimRoster 认领名册行：同名未关联的行直接关联；否则为该学期新建一行
func (s *authService) claimRoster(ctx context.Context, txRepo *repository.Repository, user *model.User, invite *model.StudentInvite, airtableName string) error {
	name := airtableName
	if name == "" {
		name = user.FullName()
	}

	student, err := txRepo.Student.GetByAirtableName(ctx, invite.SemesterID, name)
	switch {
	case err == nil && student.UserID == nil:
		student.UserID = &user.UserID
		if err := txRepo.Student.Update(ctx, student); err != nil {
			s.logger.Error("认领名册行失败", zap.Error(err))
			return err
		}
		return nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询名册行失败", zap.Error(err))
		return err
	}

	// 名册里没有这个名字（或已被认领）：新建学生行
	fresh := &model.Student{
		UserID:       &user.UserID,
		SemesterID:   invite.SemesterID,
		AirtableName: name,
	}
	if err := txRepo.Student.Create(ctx, fresh); err != nil {
		s.logger.Error("创建学生行失败", zap.Error(err))
		return err
	}
	return nil
}

// claimStaffListing 认领员工目录条目并接管任教课程的领队身份
func (s *authService) claimStaffListing(ctx context.Context, txRepo *repository.Repository, user *model.User, invite *model.StaffInvite) error {
	listings, err := txRepo.Staff.List(ctx)
	if err != nil {
		s.logger.Error("列出员工目录失败", zap.Error(err))
		return err
	}

	for i := range listings {
		listing := &listings[i]
		if listing.UserID != nil || listing.DisplayName != invite.Name {
			continue
		}
		listing.UserID = &user.UserID
		if err := txRepo.Staff.Update(ctx, listing); err != nil {
			s.logger.Error("认领目录条目失败", zap.Error(err))
			return err
		}

		courses, err := txRepo.Course.ListByInstructor(ctx, listing.ListingID)
		if err != nil {
			s.logger.Error("查询任教课程失败", zap.Error(err))
			return err
		}
		for _, course := range courses {
			if err := txRepo.Course.AddLeader(ctx, course.CourseID, user.UserID); err != nil {
				s.logger.Error("添加课程领队失败", zap.String("course_id", course.CourseID), zap.Error(err))
				return err
			}
		}
		return nil
	}

	// 目录里没有匹配条目：账号照常创建，目录由管理员后补
	s.logger.Warn("员工邀请未匹配到目录条目", zap.String("name", invite.Name))
	return nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	return s.issueTokens(user)
}

// ────────────────────── Refresh ──────────────────────

// Refresh 刷新 Token 对。旧的 refresh token 进黑名单（轮换）
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshInvalid
	}

	if s.redis != nil {
		blacklisted, err := s.redis.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("黑名单检查失败，降级放行", zap.Error(err))
		} else if blacklisted {
			return nil, ErrRefreshInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshInvalid
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	if s.redis != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.redis.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("旧 refresh token 加入黑名单失败", zap.Error(err))
		}
	}

	return s.issueTokens(user)
}

// ────────────────────── Logout ──────────────────────

// Logout 将当前 access token 的 jti 加入黑名单直至其过期。
// Redis 不可用时退化为客户端丢弃 Token。
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.redis == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.redis.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("登出加入黑名单失败", zap.Error(err))
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.UserDetailResponse{
		UserResponse: userToResponse(user),
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.String("id", userID), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── UpdateProfile ──────────────────────

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.User.GetByEmail(ctx, *req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询邮箱失败", zap.Error(err))
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	resp := userToResponse(user)
	return &resp, nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         userToResponse(user),
	}, nil
}

// userToResponse 用户响应转换，认证与课程模块复用
func userToResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		Role:      user.Role,
		IsStaff:   user.IsStaff(),
	}
}
