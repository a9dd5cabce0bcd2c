package services

import (
	"context"

	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/status"
)

// PreprocessorFunc 预处理函数类型
// 注册到预处理链中的函数必须符合此签名
//
// 参数:
//
//	text: 待处理的文本
//	metadata: 元数据，可以包含额外的处理信息
//
// 返回:
//
//	string: 处理后的文本
type PreprocessorFunc func(text string, metadata map[string]interface{}) string

// TextPreprocessingService 产品描述预处理服务接口
// 负责把勾选的原始词条转换为编码器可用的清洗后描述
// 采用函数式设计，默认链为 normalize -> tokenize
type TextPreprocessingService interface {
	// PreprocessDescription 预处理产品描述
	// 按注册顺序执行预处理函数链，对任意字符串输入都不会失败
	//
	// 参数:
	//   ctx: 上下文
	//   description: 原始描述（词条以空格拼接）
	//
	// 返回:
	//   *models.PreprocessedDescription: 预处理结果
	//   status.StatusCode: 处理状态码
	//   error: 错误信息
	PreprocessDescription(ctx context.Context, description string) (*models.PreprocessedDescription, status.StatusCode, error)

	// RegisterPreprocessor 注册预处理函数
	// 注册的函数将按注册顺序链式执行
	//
	// 参数:
	//   name: 预处理函数名称，用于标识和管理
	//   processor: 预处理函数
	//
	// 返回:
	//   error: 错误信息，如果名称已存在则返回错误
	RegisterPreprocessor(name string, processor PreprocessorFunc) error

	// UnregisterPreprocessor 取消注册预处理函数
	//
	// 参数:
	//   name: 预处理函数名称
	//
	// 返回:
	//   error: 错误信息，如果名称不存在则返回错误
	UnregisterPreprocessor(name string) error

	// ListPreprocessors 列出所有已注册的预处理函数名称
	//
	// 返回:
	//   []string: 预处理函数名称列表，按注册顺序返回
	ListPreprocessors() []string
}
