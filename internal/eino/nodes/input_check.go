package nodes

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"rating-predictor/internal/domain/models"
)

// InputChecker 输入校验节点
type InputChecker struct {
	validate *validator.Validate
	maxTerms int
}

// NewInputChecker 创建输入校验器，maxTerms <= 0 表示不限制词条数
func NewInputChecker(maxTerms int) *InputChecker {
	return &InputChecker{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		maxTerms: maxTerms,
	}
}

// Check 校验请求并生成初始状态 Lambda 函数
func (c *InputChecker) Check(ctx context.Context, req *PredictRequest) (*PredictState, error) {
	if req == nil {
		return nil, &models.PredictionError{Op: "input_check", Err: fmt.Errorf("nil request")}
	}

	if err := c.validate.StructCtx(ctx, req); err != nil {
		return nil, &models.PredictionError{Op: "input_check", Err: err}
	}

	if c.maxTerms > 0 && len(req.RawTerms) > c.maxTerms {
		return nil, &models.PredictionError{
			Op:  "input_check",
			Err: fmt.Errorf("too many terms: %d > %d", len(req.RawTerms), c.maxTerms),
		}
	}

	return &PredictState{Request: req}, nil
}
