package handler

import (
	"github.com/gin-gonic/gin"

	"qa-track/internal/api/middleware"
	"qa-track/internal/dto"
	"qa-track/internal/service"
	"qa-track/pkg/responses"
	"qa-track/pkg/utils"
)

type TestCaseHandler struct {
	service service.TestCaseService
}

func NewTestCaseHandler(service service.TestCaseService) *TestCaseHandler {
	return &TestCaseHandler{service: service}
}

// List 用例列表
// @Summary 用例列表
// @Description 按角色收窄范围: PM全部/QA本人被指派/ENG仅fail与escalated
// @Tags 测试用例
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量, 默认10上限100"
// @Param status query string false "状态过滤"
// @Param module_platform query string false "模块/平台过滤"
// @Param search query string false "关键字搜索"
// @Success 200 {object} responses.Response
// @Router /tests [get]
func (h *TestCaseHandler) List(c *gin.Context) {
	var q dto.TestCaseListQuery
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
		"tests":      items,
		"pagination": dto.NewPagination(total, q.GetPage(), q.GetLimit()),
	})
}

// Create 创建用例
// @Summary 创建用例
// @Description 仅PM; 指派对象必须是已验证QA; 状态一律从pending开始
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TestCaseCreateRequest true "创建请求"
// @Success 201 {object} dto.TestCaseResponse
// @Router /tests [post]
func (h *TestCaseHandler) Create(c *gin.Context) {
	var req dto.TestCaseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(middleware.CurrentActor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, gin.H{"test": resp})
}

// Get 用例详情
// @Summary 用例详情
// @Description 范围外的资源一律404
// @Tags 测试用例
// @Produce json
// @Security BearerAuth
// @Param id path int true "用例ID"
// @Success 200 {object} dto.TestCaseResponse
// @Router /tests/{id} [get]
func (h *TestCaseHandler) Get(c *gin.Context) {
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

	responses.Success(c, gin.H{"test": resp})
}

// Update 更新用例
// @Summary 更新用例非结果字段
// @Description 仅PM; 改指派不改状态; 缺省字段不修改, 空串清空
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用例ID"
// @Param request body dto.TestCaseUpdateRequest true "更新请求"
// @Success 200 {object} dto.TestCaseResponse
// @Router /tests/{id} [put]
func (h *TestCaseHandler) Update(c *gin.Context) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	var req dto.TestCaseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(middleware.CurrentActor(c), p.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{"test": resp})
}

// RecordResult 结果录入
// @Summary 录入测试结果
// @Description 仅当前指派QA; pending→pass/fail/escalated, 可重测互转, 永不回pending
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用例ID"
// @Param request body dto.TestResultRequest true "结果请求"
// @Success 200 {object} dto.TestCaseResponse
// @Router /tests/{id}/result [put]
func (h *TestCaseHandler) RecordResult(c *gin.Context) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	var req dto.TestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.RecordResult(middleware.CurrentActor(c), p.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{"test": resp})
}

// Delete 删除用例
// @Summary 删除用例
// @Description 仅PM, 软删除
// @Tags 测试用例
// @Produce json
// @Security BearerAuth
// @Param id path int true "用例ID"
// @Success 200 {object} responses.Response
// @Router /tests/{id} [delete]
func (h *TestCaseHandler) Delete(c *gin.Context) {
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
