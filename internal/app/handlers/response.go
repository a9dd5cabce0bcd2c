// Package handlers 实现 HTTP 接口处理器
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"rating-predictor/internal/app/middleware"
	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/status"
)

// APIResponse 统一的API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondWithSuccess 返回成功响应
func respondWithSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Code:      int(status.CodeOK),
		Message:   message,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

// respondWithError 返回错误响应
func respondWithError(c *gin.Context, code status.StatusCode, message, detail string) {
	response := APIResponse{
		Success:   false,
		Code:      int(code),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	}

	if detail != "" {
		response.Data = ErrorDetail{
			Message: detail,
			Code:    code.String(),
		}
	}

	c.JSON(http.StatusOK, response)
}

// respondWithDomainError 把领域错误映射为业务状态码后返回
func respondWithDomainError(c *gin.Context, err error) {
	code, message := classifyError(err)
	response := APIResponse{
		Success:   false,
		Code:      int(code),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	}

	detail := ErrorDetail{Message: err.Error(), Code: code.String()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		detail.Field = verrs[0].Field()
	}
	response.Data = detail

	c.JSON(http.StatusOK, response)
}

// classifyError 按错误类型确定状态码。
// 校验错误和编码错误会被 PredictionError 包装，需要先于它判断。
func classifyError(err error) (status.StatusCode, string) {
	var (
		verrs    validator.ValidationErrors
		encErr   *models.EncodingError
		predErr  *models.PredictionError
		explErr  *models.ExplainabilityError
		stateErr *models.HistoryStateError
	)

	switch {
	case errors.As(err, &verrs):
		return status.ErrCodeInvalidParam, "请求参数验证失败"
	case errors.As(err, &encErr):
		return status.ErrCodeEncoding, "特征编码失败"
	case errors.As(err, &stateErr):
		return status.ErrCodeHistoryState, "历史记录状态不满足操作条件"
	case errors.As(err, &explErr):
		return status.ErrCodeExplainability, "归因解释失败"
	case errors.Is(err, context.DeadlineExceeded):
		return status.ErrCodeUnavailable, "请求处理超时"
	case errors.As(err, &predErr):
		return status.ErrCodePrediction, "评分预测失败"
	default:
		return status.ErrCodeInternal, "内部错误"
	}
}
