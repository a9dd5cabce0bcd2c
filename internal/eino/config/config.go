// Package config 定义 Eino 预测流水线的配置结构
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// EinoConfig 预测流水线的总配置结构。
// 包含模型与编码器工件、预测图、归因解释以及回调系统的配置。
type EinoConfig struct {
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Predict   PredictConfig   `yaml:"predict"`
	Explain   ExplainConfig   `yaml:"explain"`
	Callbacks CallbacksConfig `yaml:"callbacks"`
}

// ArtifactsConfig 定义预训练工件的位置。
// 文件名相对于 Dir 解析，绝对路径原样使用。
type ArtifactsConfig struct {
	Dir       string `yaml:"dir"`
	Encoder   string `yaml:"encoder"`
	LowModel  string `yaml:"low_model"`
	HighModel string `yaml:"high_model"`
}

// PredictConfig 定义预测图（Predict Graph）的配置。
type PredictConfig struct {
	// 单次图调用的超时
	Timeout time.Duration `yaml:"timeout"`

	// 描述预处理超时
	PreprocessTimeout time.Duration `yaml:"preprocess_timeout"`

	// 单次请求允许的最大词条数
	MaxTerms int `yaml:"max_terms"`

	// 复合词表，为空时使用内置默认表
	CompoundTerms []string `yaml:"compound_terms"`
}

// ExplainConfig 定义归因解释的配置。
type ExplainConfig struct {
	Enabled bool `yaml:"enabled"`

	// 默认返回的贡献最大的特征数
	DefaultTopN int `yaml:"default_top_n"`
}

// CallbacksConfig 定义 Eino 框架的回调系统配置。
type CallbacksConfig struct {
	Logging LoggingCallbackConfig `yaml:"logging"`
	Metrics MetricsCallbackConfig `yaml:"metrics"`
	Tracing TracingCallbackConfig `yaml:"tracing"`
}

// LoggingCallbackConfig 定义日志回调的配置。
type LoggingCallbackConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// MetricsCallbackConfig 定义指标监控回调的配置。
type MetricsCallbackConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Namespace string `yaml:"namespace"`
}

// TracingCallbackConfig 定义链路追踪回调的配置。
type TracingCallbackConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultEinoConfig 创建并返回一个包含默认值的 EinoConfig 对象。
func DefaultEinoConfig() *EinoConfig {
	return &EinoConfig{
		Artifacts: ArtifactsConfig{
			Dir:       "artifacts",
			Encoder:   "encoder.json",
			LowModel:  "model_low.json",
			HighModel: "model_high.json",
		},
		Predict: PredictConfig{
			Timeout:           5 * time.Second,
			PreprocessTimeout: time.Second,
			MaxTerms:          64,
		},
		Explain: ExplainConfig{
			Enabled:     true,
			DefaultTopN: 10,
		},
		Callbacks: CallbacksConfig{
			Logging: LoggingCallbackConfig{
				Enabled: true,
				Level:   "info",
			},
			Metrics: MetricsCallbackConfig{
				Enabled:   true,
				Endpoint:  "/metrics",
				Namespace: "rating_predictor",
			},
			Tracing: TracingCallbackConfig{
				Enabled: false,
			},
		},
	}
}

// Validate 检查 EinoConfig 配置的有效性。
func (c *EinoConfig) Validate() error {
	if c.Artifacts.Encoder == "" || c.Artifacts.LowModel == "" || c.Artifacts.HighModel == "" {
		return fmt.Errorf("encoder, low_model and high_model artifacts are required")
	}

	if c.Predict.Timeout <= 0 {
		return fmt.Errorf("predict timeout must be positive")
	}

	if c.Predict.PreprocessTimeout <= 0 {
		c.Predict.PreprocessTimeout = time.Second
	}

	if c.Predict.MaxTerms <= 0 {
		return fmt.Errorf("max_terms must be positive")
	}

	if c.Explain.DefaultTopN <= 0 {
		c.Explain.DefaultTopN = 10
	}

	return nil
}

// EncoderPath 编码器工件路径
func (a ArtifactsConfig) EncoderPath() string {
	return a.resolve(a.Encoder)
}

// LowModelPath 低评论数模型工件路径
func (a ArtifactsConfig) LowModelPath() string {
	return a.resolve(a.LowModel)
}

// HighModelPath 高评论数模型工件路径
func (a ArtifactsConfig) HighModelPath() string {
	return a.resolve(a.HighModel)
}

func (a ArtifactsConfig) resolve(name string) string {
	if filepath.IsAbs(name) || a.Dir == "" {
		return name
	}
	return filepath.Join(a.Dir, name)
}
