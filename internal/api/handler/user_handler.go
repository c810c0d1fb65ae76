package handler

import (
	"github.com/gin-gonic/gin"

	"qa-track/internal/api/middleware"
	"qa-track/internal/dto"
	"qa-track/internal/service"
	"qa-track/pkg/responses"
	"qa-track/pkg/utils"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List 用户列表
// @Summary 用户列表
// @Description 仅PM
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param role query string false "角色过滤"
// @Param search query string false "关键字搜索"
// @Success 200 {object} responses.Response
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q dto.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	items, total, err := h.service.List(middleware.CurrentActor(c), &q)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{
		"users":      items,
		"pagination": dto.NewPagination(total, q.GetPage(), q.GetLimit()),
	})
}

// Create 创建用户
// @Summary 创建用户
// @Description 仅PM; 创建的账号直接置为已验证
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UserCreateRequest true "创建请求"
// @Success 201 {object} dto.UserResponse
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(middleware.CurrentActor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, gin.H{"user": resp})
}

// Get 用户详情
// @Summary 用户详情
// @Description 仅PM
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} dto.UserResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Get(middleware.CurrentActor(c), p.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{"user": resp})
}

// Update 更新用户
// @Summary 更新用户
// @Description 仅PM
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body dto.UserUpdateRequest true "更新请求"
// @Success 200 {object} dto.UserResponse
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(middleware.CurrentActor(c), p.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{"user": resp})
}

// Delete 删除用户
// @Summary 删除用户
// @Description 仅PM, 且不能删除自己
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} responses.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.service.Delete(middleware.CurrentActor(c), p.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "已删除", nil)
}

// QATesters 可指派QA列表
// @Summary 可指派QA列表
// @Description 所有已登录角色可见, 仅返回已验证的QA
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response
// @Router /users/qa-testers [get]
func (h *UserHandler) QATesters(c *gin.Context) {
	items, err := h.service.ListQATesters()
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{"testers": items})
}
