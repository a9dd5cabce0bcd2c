package handlers

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rating-predictor/internal/app/middleware"
	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/logger"
	"rating-predictor/pkg/status"
)

// PredictionHandler 评分预测处理器
type PredictionHandler struct {
	defaultTopN int
	logger      logger.Logger
}

// NewPredictionHandler 创建评分预测处理器，defaultTopN 为归因接口未指定 top 时的取值
func NewPredictionHandler(defaultTopN int, log logger.Logger) *PredictionHandler {
	return &PredictionHandler{
		defaultTopN: defaultTopN,
		logger:      log,
	}
}

// PredictRequest 预测请求。类别和价格缺失时交给编码器报告编码错误。
type PredictRequest struct {
	Category     string   `json:"category"`
	Terms        []string `json:"terms"`
	Price        *float64 `json:"price"`
	ReviewBucket string   `json:"review_bucket" binding:"required"`
}

// toInput 转换为领域输入。
// 类别可以是枚举值或展示名称，无法识别时原样传入，由编码器报告未知类别。
func (r *PredictRequest) toInput() *models.ProductInput {
	category, err := models.ParseCategory(r.Category)
	if err != nil {
		category = models.Category(r.Category)
	}
	price := math.NaN()
	if r.Price != nil {
		price = *r.Price
	}
	return &models.ProductInput{
		Category:     category,
		RawTerms:     r.Terms,
		Price:        price,
		ReviewBucket: models.ReviewBucket(r.ReviewBucket),
	}
}

// Predict 执行评分预测并保存为会话的最近一次预测
// POST /v1/predictions
func (h *PredictionHandler) Predict(c *gin.Context) {
	ctx := c.Request.Context()

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(ctx, "预测请求参数解析失败", "error", err.Error())
		respondWithError(c, status.ErrCodeInvalidParam, "请求参数格式错误", err.Error())
		return
	}

	s := middleware.GetSession(c)
	startTime := time.Now()
	result, err := s.Predict(ctx, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "评分预测请求失败", "error", err.Error())
		respondWithDomainError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "评分预测请求处理完成",
		"rating", result.Rating,
		"model", result.ModelUsed,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	respondWithSuccess(c, result, "预测成功")
}

// Explain 返回最近一次预测的归因解释
// GET /v1/predictions/latest/explanation?top=10
func (h *PredictionHandler) Explain(c *gin.Context) {
	ctx := c.Request.Context()

	top, ok := queryPositiveInt(c, "top", h.defaultTopN)
	if !ok {
		respondWithError(c, status.ErrCodeInvalidParam, "top 必须是正整数", c.Query("top"))
		return
	}

	expl, err := middleware.GetSession(c).Explain(ctx, top)
	if err != nil {
		h.logger.WarnContext(ctx, "归因解释请求失败", "error", err.Error())
		respondWithDomainError(c, err)
		return
	}

	respondWithSuccess(c, expl, "解释成功")
}

// Report 返回最近一次预测的产品报告
// GET /v1/predictions/latest/report
func (h *PredictionHandler) Report(c *gin.Context) {
	report, err := middleware.GetSession(c).Report(c.Request.Context())
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	respondWithSuccess(c, report, "查询成功")
}

// queryPositiveInt 读取正整数查询参数，缺省时返回 def
func queryPositiveInt(c *gin.Context, key string, def int) (int, bool) {
	raw, exists := c.GetQuery(key)
	if !exists || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
