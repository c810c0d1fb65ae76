package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qa-track/internal/api/middleware"
	"qa-track/internal/pkg/logger"
	"qa-track/internal/service"
	"qa-track/pkg/responses"
)

type StatsHandler struct {
	service service.StatsService
}

func NewStatsHandler(service service.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Stats 统计总览
// @Summary 统计总览
// @Description 仅PM; 用例按状态计数, Bug按状态/严重级别计数
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StatsResponse
// @Router /stats [get]
func (h *StatsHandler) Stats(c *gin.Context) {
	resp, err := h.service.Stats(middleware.CurrentActor(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}

// Export 导出报表
// @Summary 导出报表
// @Description 仅PM; 导出用例与Bug全量数据为xlsx
// @Tags 统计
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /stats/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	f, err := h.service.Export(middleware.CurrentActor(c))
	if err != nil {
		responses.Error(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("qa-report-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		logger.Error("写入报表响应失败", zap.Error(err))
	}
}
