package preprocessing

import "fmt"

// Config 描述预处理服务配置
type Config struct {
	// EnableLogging 是否启用详细日志
	EnableLogging bool `json:"enable_logging" yaml:"enable_logging"`

	// CompoundTerms 复合词表，归一化与停用词豁免共用；为空时使用默认表
	CompoundTerms []string `json:"compound_terms" yaml:"compound_terms"`
}

// Validate 验证配置
func (c *Config) Validate() error {
	if len(c.CompoundTerms) > 0 {
		if _, err := NewCompoundRegistry(c.CompoundTerms); err != nil {
			return fmt.Errorf("compound_terms: %w", err)
		}
	}
	return nil
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		EnableLogging: true,
	}
}
