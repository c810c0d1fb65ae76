package handler

import (
	"github.com/gin-gonic/gin"

	"qa-track/internal/api/middleware"
	"qa-track/internal/dto"
	"qa-track/internal/service"
	"qa-track/pkg/responses"
	"qa-track/pkg/utils"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 注册
// @Summary 用户自助注册
// @Description 创建未验证用户并发送验证邮件
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册请求"
// @Success 201 {object} dto.UserResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, gin.H{"user": resp})
}

// Login 登录
// @Summary 用户登录
// @Description 邮箱+密码登录, 未验证用户返回403
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.LoginResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}

// VerifyEmail 邮箱验证
// @Summary 邮箱验证
// @Description 使用一次性令牌完成邮箱验证
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "验证请求"
// @Success 200 {object} dto.UserResponse
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.authService.VerifyEmail(req.Token)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{"user": resp})
}

// ForgotPassword 忘记密码
// @Summary 申请密码重置
// @Description 无论邮箱是否存在都返回成功
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "重置申请"
// @Success 200 {object} responses.Response
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "若邮箱存在, 重置邮件已发送", nil)
}

// ResetPassword 重置密码
// @Summary 重置密码
// @Description 使用一次性令牌设置新密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "重置请求"
// @Success 200 {object} responses.Response
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "密码已重置", nil)
}

// GetMe 获取当前用户信息
// @Summary 获取当前用户信息
// @Description 认证中间件每次请求都重新加载用户
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		responses.Error(c, responses.ErrUnauthorized)
		return
	}
	responses.Success(c, gin.H{"user": dto.NewUserResponse(user)})
}
