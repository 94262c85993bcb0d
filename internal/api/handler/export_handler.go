package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportStandings 导出学院积分榜工作簿
// GET /api/v1/export/standings?semester=xxx
func (h *ExportHandler) ExportStandings(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportStandings(c.Request.Context(), caller, c.Query("semester"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, filename, buf.Bytes())
}

// ExportRoster 导出学期学生名册
// GET /api/v1/export/roster?semester=xxx
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), caller, c.Query("semester"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, filename, buf.Bytes())
}

// writeXLSX 设置下载响应头并输出工作簿
func writeXLSX(c *gin.Context, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 16101, "semester not found")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
