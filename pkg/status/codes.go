package status

// StatusCode 统一的业务状态码类型
// 0 表示成功，1xxx 为通用错误，2xxx 为评分预测领域错误

type StatusCode int

const (
	// CodeOK 成功
	CodeOK StatusCode = 0

	// ErrCodeInvalidParam 参数错误
	ErrCodeInvalidParam StatusCode = 1001
	// ErrCodeInternal 内部错误
	ErrCodeInternal StatusCode = 1002
	// ErrCodeUnavailable 服务不可用
	ErrCodeUnavailable StatusCode = 1003
	// ErrCodeNotFound 资源不存在
	ErrCodeNotFound StatusCode = 1004

	// ErrCodeEncoding 特征编码失败（未知类别、价格非法等）
	ErrCodeEncoding StatusCode = 2001
	// ErrCodePrediction 模型推理失败
	ErrCodePrediction StatusCode = 2002
	// ErrCodeExplainability 归因解释不可用
	ErrCodeExplainability StatusCode = 2003
	// ErrCodeHistoryState 历史记录状态不满足操作前提
	ErrCodeHistoryState StatusCode = 2004
)

// String 将状态码转换为字符串标识
func (c StatusCode) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case ErrCodeInvalidParam:
		return "INVALID_PARAM"
	case ErrCodeInternal:
		return "INTERNAL_ERROR"
	case ErrCodeUnavailable:
		return "UNAVAILABLE"
	case ErrCodeNotFound:
		return "NOT_FOUND"
	case ErrCodeEncoding:
		return "ENCODING_ERROR"
	case ErrCodePrediction:
		return "PREDICTION_ERROR"
	case ErrCodeExplainability:
		return "EXPLAINABILITY_ERROR"
	case ErrCodeHistoryState:
		return "HISTORY_STATE_ERROR"
	default:
		return "UNKNOWN"
	}
}
