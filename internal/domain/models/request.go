package models

// PreprocessedDescription 描述文本经过预处理链后的结果
type PreprocessedDescription struct {
	// Original 拼接后的原始描述
	Original string `json:"original"`

	// Cleaned 归一化并过滤停用词后的描述
	Cleaned string `json:"cleaned"`

	// AppliedPreprocessors 按执行顺序列出的预处理函数
	AppliedPreprocessors []string `json:"applied_preprocessors"`

	// ProcessingTime 预处理耗时（毫秒）
	ProcessingTime float64 `json:"processing_time" validate:"min=0"`
}
