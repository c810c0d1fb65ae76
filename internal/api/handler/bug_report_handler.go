package handler

import (
	"github.com/gin-gonic/gin"

	"qa-track/internal/api/middleware"
	"qa-track/internal/dto"
	"qa-track/internal/service"
	"qa-track/pkg/responses"
	"qa-track/pkg/utils"
)

type BugReportHandler struct {
	service service.BugReportService
}

func NewBugReportHandler(service service.BugReportService) *BugReportHandler {
	return &BugReportHandler{service: service}
}

// List Bug列表
// @Summary Bug列表
// @Description 按角色收窄范围: PM/ENG全部, QA仅本人创建
// @Tags Bug
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param status query string false "状态过滤"
// @Param severity query string false "严重级别过滤"
// @Param module_platform query string false "模块/平台过滤"
// @Param search query string false "关键字搜索"
// @Success 200 {object} responses.Response
// @Router /bugs [get]
func (h *BugReportHandler) List(c *gin.Context) {
	var q dto.BugListQuery
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
		"bugs":       items,
		"pagination": dto.NewPagination(total, q.GetPage(), q.GetLimit()),
	})
}

// Create 创建Bug
// @Summary 创建Bug
// @Description 仅QA; 证据链接必填且需满足平台域名约束; 严重级别默认medium
// @Tags Bug
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BugCreateRequest true "创建请求"
// @Success 201 {object} dto.BugResponse
// @Router /bugs [post]
func (h *BugReportHandler) Create(c *gin.Context) {
	var req dto.BugCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(middleware.CurrentActor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, gin.H{"bug": resp})
}

// Get Bug详情
// @Summary Bug详情
// @Description 范围外的资源一律404
// @Tags Bug
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bug ID"
// @Success 200 {object} dto.BugResponse
// @Router /bugs/{id} [get]
func (h *BugReportHandler) Get(c *gin.Context) {
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

	responses.Success(c, gin.H{"bug": resp})
}

// Update 更新Bug
// @Summary 更新Bug
// @Description PM任意字段含状态; 创建者QA仅内容字段且仅在未转换前
// @Tags Bug
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bug ID"
// @Param request body dto.BugUpdateRequest true "更新请求"
// @Success 200 {object} dto.BugResponse
// @Router /bugs/{id} [put]
func (h *BugReportHandler) Update(c *gin.Context) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	var req dto.BugUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(middleware.CurrentActor(c), p.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, gin.H{"bug": resp})
}

// Delete 删除Bug
// @Summary 删除Bug
// @Description 仅PM; 派生用例保留, 仅清空其回引
// @Tags Bug
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bug ID"
// @Success 200 {object} responses.Response
// @Router /bugs/{id} [delete]
func (h *BugReportHandler) Delete(c *gin.Context) {
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

// Convert Bug转测试用例
// @Summary Bug转测试用例
// @Description 仅PM, 恰好一次; 重复转换返回409
// @Tags Bug
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bug ID"
// @Param request body dto.BugConvertRequest true "转换请求"
// @Success 201 {object} dto.BugConvertResponse
// @Router /bugs/{id}/convert [post]
func (h *BugReportHandler) Convert(c *gin.Context) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	var req dto.BugConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.service.Convert(middleware.CurrentActor(c), p.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, resp)
}
