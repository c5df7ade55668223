package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"announcehub/internal/constants"
	"announcehub/internal/middleware"
	"announcehub/internal/service"
	"announcehub/pkg/logger"
)

// UserHandler 用户处理器
type UserHandler struct {
	authService *service.AuthService
	logger      *logger.Logger
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(authService *service.AuthService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FCM      string `json:"fcm"`
}

// Register 用户注册，成功后直接登录
// @Summary 用户注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "注册信息"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, constants.ErrInvalidParams)
		return
	}

	ctx := c.Request.Context()
	if err := h.authService.Register(ctx, req.Username, req.Password); err != nil {
		Error(c, h.logger, "用户注册", err)
		return
	}

	token, err := h.authService.Login(ctx, req.Username, req.Password, req.FCM)
	if err != nil {
		Error(c, h.logger, "注册后登录", err)
		return
	}
	h.respondToken(c, constants.SuccessRegister, token)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FCM      string `json:"fcm"`
}

// Login 用户登录
// @Summary 用户登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param user body LoginRequest true "登录信息"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, constants.ErrInvalidParams)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password, req.FCM)
	if err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			Fail(c, http.StatusUnauthorized, constants.ErrAuthFailed)
			return
		}
		Error(c, h.logger, "用户登录", err)
		return
	}
	h.respondToken(c, constants.SuccessLogin, token)
}

// IdentityTokenRequest 第三方登录请求
type IdentityTokenRequest struct {
	IDToken string `json:"id_token" binding:"required"`
	FCM     string `json:"fcm"`
}

// GoogleLogin 使用Google id_token登录
// @Summary Google登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param token body IdentityTokenRequest true "id_token"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/oauth2/google/token [post]
func (h *UserHandler) GoogleLogin(c *gin.Context) {
	h.identityLogin(c, service.ProviderGoogle)
}

// AppleLogin 使用Apple id_token登录
// @Summary Apple登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param token body IdentityTokenRequest true "id_token"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/oauth2/apple/token [post]
func (h *UserHandler) AppleLogin(c *gin.Context) {
	h.identityLogin(c, service.ProviderApple)
}

func (h *UserHandler) identityLogin(c *gin.Context, provider string) {
	var req IdentityTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, constants.ErrInvalidParams)
		return
	}

	token, err := h.authService.IdentityLogin(c.Request.Context(), provider, req.IDToken, req.FCM)
	if err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			Fail(c, http.StatusUnauthorized, constants.ErrAuthFailed)
			return
		}
		Error(c, h.logger, provider+"登录", err)
		return
	}
	h.respondToken(c, constants.SuccessLogin, token)
}

func (h *UserHandler) respondToken(c *gin.Context, msg, token string) {
	c.SetCookie("Authorization", "Bearer "+token, h.authService.TokenTTL(), "/", "", false, true)
	OK(c, msg, gin.H{"key": token})
}

// GetUserInfo 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 用户
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/user/info [get]
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		Fail(c, http.StatusUnauthorized, constants.ErrUnauthorized)
		return
	}

	OK(c, constants.SuccessGet, gin.H{
		"username":         claims.Username,
		"login_type":       claims.LoginType,
		"permission_level": claims.PermissionLevel,
		"fcm":              claims.FCM,
		"exp":              claims.ExpiresAt,
	})
}
