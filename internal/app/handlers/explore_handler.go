package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"rating-predictor/configs"
	"rating-predictor/internal/infrastructure/dataset"
	"rating-predictor/pkg/logger"
	"rating-predictor/pkg/status"
)

// ExploreHandler 训练数据集探索处理器。
// 数据集未启用时 data 为 nil，所有探索接口返回服务不可用。
type ExploreHandler struct {
	data   *dataset.Dataset
	cfg    *configs.DatasetConfig
	logger logger.Logger
}

// NewExploreHandler 创建数据集探索处理器
func NewExploreHandler(data *dataset.Dataset, cfg *configs.DatasetConfig, log logger.Logger) *ExploreHandler {
	return &ExploreHandler{
		data:   data,
		cfg:    cfg,
		logger: log,
	}
}

// available 数据集不可用时写出错误响应并返回 false
func (h *ExploreHandler) available(c *gin.Context) bool {
	if h.data == nil {
		respondWithError(c, status.ErrCodeUnavailable, "数据集未加载", "")
		return false
	}
	return true
}

// Summary 描述性统计
// GET /v1/explore/summary
func (h *ExploreHandler) Summary(c *gin.Context) {
	if !h.available(c) {
		return
	}
	respondWithSuccess(c, h.data.Describe(), "查询成功")
}

// Histogram 评分直方图
// GET /v1/explore/histogram?bins=10
func (h *ExploreHandler) Histogram(c *gin.Context) {
	if !h.available(c) {
		return
	}

	bins, ok := queryPositiveInt(c, "bins", h.cfg.Bins)
	if !ok {
		respondWithError(c, status.ErrCodeInvalidParam, "bins 必须是正整数", c.Query("bins"))
		return
	}

	hist, err := h.data.RatingHistogram(bins)
	if err != nil {
		respondWithError(c, status.ErrCodeInternal, "直方图计算失败", err.Error())
		return
	}
	respondWithSuccess(c, hist, "查询成功")
}

// Words 描述高频词
// GET /v1/explore/words?top=20
func (h *ExploreHandler) Words(c *gin.Context) {
	if !h.available(c) {
		return
	}

	top, ok := queryPositiveInt(c, "top", h.cfg.TopN)
	if !ok {
		respondWithError(c, status.ErrCodeInvalidParam, "top 必须是正整数", c.Query("top"))
		return
	}
	respondWithSuccess(c, h.data.WordFrequencies(top), "查询成功")
}

// Vocabulary 表单词条在描述中的出现次数
// GET /v1/explore/vocabulary?top=20
func (h *ExploreHandler) Vocabulary(c *gin.Context) {
	if !h.available(c) {
		return
	}

	top, ok := queryPositiveInt(c, "top", h.cfg.TopN)
	if !ok {
		respondWithError(c, status.ErrCodeInvalidParam, "top 必须是正整数", c.Query("top"))
		return
	}

	startTime := time.Now()
	hits, err := h.data.VocabularyHits(top)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "词条匹配失败", "error", err.Error())
		respondWithError(c, status.ErrCodeInternal, "词条匹配失败", err.Error())
		return
	}
	h.logger.DebugContext(c.Request.Context(), "词条匹配完成",
		"terms", len(hits),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	respondWithSuccess(c, hits, "查询成功")
}

// Scatter 价格-评分与评论数-评分散点
// GET /v1/explore/scatter
func (h *ExploreHandler) Scatter(c *gin.Context) {
	if !h.available(c) {
		return
	}
	respondWithSuccess(c, gin.H{
		"price_rating":   h.data.PriceRating(),
		"reviews_rating": h.data.ReviewsRating(),
	}, "查询成功")
}

// Quadrants 评分与评论数四象限计数
// GET /v1/explore/quadrants
func (h *ExploreHandler) Quadrants(c *gin.Context) {
	if !h.available(c) {
		return
	}
	respondWithSuccess(c, h.data.ReviewQuadrants(), "查询成功")
}

// Checklists 表单可选词条，不依赖数据集
// GET /v1/checklists
func (h *ExploreHandler) Checklists(c *gin.Context) {
	respondWithSuccess(c, dataset.Checklists(), "查询成功")
}
