package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"rating-predictor/configs"
	"rating-predictor/internal/app/middleware"
	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/logger"
	"rating-predictor/pkg/status"
)

// HistoryHandler 预测历史处理器
type HistoryHandler struct {
	cfg    *configs.ExportConfig
	logger logger.Logger
}

// NewHistoryHandler 创建预测历史处理器
func NewHistoryHandler(cfg *configs.ExportConfig, log logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		cfg:    cfg,
		logger: log,
	}
}

// Save 保存最近一次预测
// POST /v1/history
func (h *HistoryHandler) Save(c *gin.Context) {
	record, err := middleware.GetSession(c).SaveLatest(c.Request.Context())
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	respondWithSuccess(c, record, "保存成功")
}

// List 列出历史记录
// GET /v1/history
func (h *HistoryHandler) List(c *gin.Context) {
	records, err := middleware.GetSession(c).History(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "查询历史记录失败", "error", err.Error())
		respondWithError(c, status.ErrCodeInternal, "查询历史记录失败", err.Error())
		return
	}

	respondWithSuccess(c, gin.H{
		"columns": models.HistoryColumns,
		"records": records,
		"total":   len(records),
	}, "查询成功")
}

// Clear 清空历史记录
// DELETE /v1/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := middleware.GetSession(c).ClearHistory(c.Request.Context()); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "清空历史记录失败", "error", err.Error())
		respondWithError(c, status.ErrCodeInternal, "清空历史记录失败", err.Error())
		return
	}

	respondWithSuccess(c, nil, "历史记录已清空")
}

// ExportCSV 下载 CSV
// GET /v1/history/export.csv
func (h *HistoryHandler) ExportCSV(c *gin.Context) {
	h.download(c, middleware.GetSession(c).ExportCSV, h.cfg.CSVFilename, "text/csv; charset=utf-8")
}

// ExportPDF 下载 PDF
// GET /v1/history/export.pdf
func (h *HistoryHandler) ExportPDF(c *gin.Context) {
	h.download(c, middleware.GetSession(c).ExportPDF, h.cfg.PDFFilename, "application/pdf")
}

func (h *HistoryHandler) download(c *gin.Context, export func(context.Context) ([]byte, error), filename, contentType string) {
	data, err := export(c.Request.Context())
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
