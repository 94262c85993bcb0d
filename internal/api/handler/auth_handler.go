package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
	// 配置缺省时的 refresh cookie 寿命
	defaultRefreshCookieMaxAge = 7 * 24 * 3600
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	authCfg *config.AuthConfig
}

// NewAuthHandler 创建 AuthHandler；authCfg 用于 refresh cookie 的寿命，可为 nil
func NewAuthHandler(authSvc service.AuthService, authCfg *config.AuthConfig) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, authCfg: authCfg}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Register 邀请注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.Created(c, result)
}

// Refresh 刷新 Token 对；请求体缺失时回退到 refresh_token cookie
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		cookie, cookieErr := c.Cookie(refreshCookieName)
		if cookieErr != nil || cookie == "" {
			response.BadRequest(c, 10001, "missing refresh token")
			return
		}
		req.RefreshToken = cookie
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Logout 用户登出：当前 access token 的 jti 加入黑名单，并清除 refresh cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}

	h.clearRefreshCookie(c)
	response.OK(c, nil)
}

// Me 当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateProfile 更新个人资料
// PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.authSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(refreshCookieName, token, h.refreshCookieMaxAge(), refreshCookiePath, "", false, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", false, true)
}

func (h *AuthHandler) refreshCookieMaxAge() int {
	if h.authCfg != nil && h.authCfg.RefreshTokenTTL > 0 {
		return int(h.authCfg.RefreshTokenTTL.Seconds())
	}
	return defaultRefreshCookieMaxAge
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "invalid email or password")
	case errors.Is(err, service.ErrUserDisabled):
		response.Forbidden(c, 11002, "this account has been disabled")
	case errors.Is(err, service.ErrUsernameTaken):
		response.BadRequest(c, 11003, "this username is already taken")
	case errors.Is(err, service.ErrEmailTaken):
		response.BadRequest(c, 11004, "an account with this email already exists")
	case errors.Is(err, service.ErrInviteInvalid):
		response.BadRequest(c, 11005, "invite link is invalid")
	case errors.Is(err, service.ErrInviteExpired):
		response.BadRequest(c, 11006, "invite link has expired")
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11007, "current password is incorrect")
	case errors.Is(err, service.ErrRefreshInvalid):
		response.Error(c, http.StatusUnauthorized, 11008, "refresh token is invalid")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11009, "user not found")
	default:
		response.InternalError(c)
	}
}
