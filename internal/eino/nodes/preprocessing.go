package nodes

import (
	"context"
	"strings"
	"time"
	"unicode"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/domain/services"
)

// Describer 描述拼接与预处理节点
type Describer struct {
	preprocessor services.TextPreprocessingService
	timeout      time.Duration
}

// NewDescriber 创建描述节点，timeout <= 0 时不单独限时
func NewDescriber(preprocessor services.TextPreprocessingService, timeout time.Duration) *Describer {
	return &Describer{
		preprocessor: preprocessor,
		timeout:      timeout,
	}
}

// Describe 按选择顺序拼接词条，再执行注册的预处理链（normalize -> tokenize）
func (d *Describer) Describe(ctx context.Context, state *PredictState) (*PredictState, error) {
	state.RawDescription = JoinTerms(state.Request.RawTerms)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	result, _, err := d.preprocessor.PreprocessDescription(ctx, state.RawDescription)
	if err != nil {
		return nil, &models.PredictionError{Op: "describe", Err: err}
	}

	state.CleanedDescription = result.Cleaned
	state.AppliedPreprocessors = result.AppliedPreprocessors
	return state, nil
}

// JoinTerms 以单个空格拼接词条。
// 每个词条去掉首尾空白和控制字符，内部空白合并，空词条跳过。
func JoinTerms(terms []string) string {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		t = normalizeWhitespace(removeControlChars(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, " ")
}

// normalizeWhitespace 规范化空白字符，将连续的空白字符替换为单个空格。
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// removeControlChars 移除不可打印控制字符，换行和制表符替换为空格。
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
