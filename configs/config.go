package configs

import (
	"fmt"
	"time"

	einoconfig "rating-predictor/internal/eino/config"
)

// 历史记录存储后端
const (
	HistoryProviderMemory = "memory"
	HistoryProviderRedis  = "redis"
	HistoryProviderBadger = "badger"
)

// Config 主配置结构体，定义了应用程序的所有配置项。
// 包含服务器、日志、预测流水线、会话、历史记录、导出和数据集等模块的配置信息。
type Config struct {
	Server   ServerConfig          `yaml:"server"`
	Logging  LoggingConfig         `yaml:"logging"`
	Pipeline einoconfig.EinoConfig `yaml:"pipeline"` // Eino 预测流水线配置
	Session  SessionConfig         `yaml:"session"`
	History  HistoryConfig         `yaml:"history"`
	Export   ExportConfig          `yaml:"export"`
	Dataset  DatasetConfig         `yaml:"dataset"`
}

// ServerConfig 定义服务器相关的配置参数。
// 包含监听地址、端口、超时设置和连接限制等。
type ServerConfig struct {
	Host                    string        `yaml:"host"`
	Port                    int           `yaml:"port"`
	Mode                    string        `yaml:"mode"` // gin 运行模式：debug、release、test
	ReadTimeout             time.Duration `yaml:"read_timeout"`
	WriteTimeout            time.Duration `yaml:"write_timeout"`
	IdleTimeout             time.Duration `yaml:"idle_timeout"`
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`
	MaxConnections          int           `yaml:"max_connections"`
}

// LoggingConfig 定义日志系统的配置参数。
// 包含日志级别、输出目标（stdout/stderr/file）和格式（text/json）。
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
	Format   string `yaml:"format"`
}

// SessionConfig 定义会话管理的配置参数。
// 会话空闲超过 TTL 后被回收，其历史记录随之清除。
type SessionConfig struct {
	Header          string        `yaml:"header"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MaxSessions     int           `yaml:"max_sessions"`
}

// HistoryConfig 定义预测历史的存储配置。
type HistoryConfig struct {
	Provider   string       `yaml:"provider"` // memory, redis, badger
	MaxRecords int          `yaml:"max_records"`
	Redis      RedisConfig  `yaml:"redis"`
	Badger     BadgerConfig `yaml:"badger"`
}

// RedisConfig 定义 Redis 历史存储的连接参数。
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
}

// BadgerConfig 定义嵌入式 Badger 历史存储的参数。
type BadgerConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// ExportConfig 定义历史导出的文件名。
type ExportConfig struct {
	CSVFilename string `yaml:"csv_filename"`
	PDFFilename string `yaml:"pdf_filename"`
}

// DatasetConfig 定义训练数据集探索的配置。
type DatasetConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	TopN    int    `yaml:"top_n"`
	Bins    int    `yaml:"bins"`
}

// Validate 检查 Config 配置结构体的有效性。
// 依次调用各个子配置项的 Validate 方法，如果发现无效配置，返回相应的错误。
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config validation failed: %w", err)
	}

	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config validation failed: %w", err)
	}

	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history config validation failed: %w", err)
	}

	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export config validation failed: %w", err)
	}

	if err := c.Dataset.Validate(); err != nil {
		return fmt.Errorf("dataset config validation failed: %w", err)
	}

	return nil
}

// Validate 检查 ServerConfig 配置的有效性。
// 确保端口号在有效范围内，且超时设置和最大连接数为正数。
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	if s.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive")
	}

	switch s.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s", s.Mode)
	}

	return nil
}

// Validate 检查 LoggingConfig 配置的有效性。
// 确保日志级别、输出目标和格式有效，如果输出到文件，确保文件路径已指定。
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	validOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}

	if !validOutputs[l.Output] {
		return fmt.Errorf("invalid log output: %s", l.Output)
	}

	if l.Output == "file" && l.FilePath == "" {
		return fmt.Errorf("file path is required when output is file")
	}

	// 验证日志格式，空值默认为 text
	validFormats := map[string]bool{
		"text": true, "json": true, "": true,
	}

	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s", l.Format)
	}

	return nil
}

// Validate 检查 SessionConfig 配置的有效性。
func (s *SessionConfig) Validate() error {
	if s.Header == "" {
		s.Header = "X-Session-ID"
	}

	if s.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if s.CleanupInterval <= 0 {
		s.CleanupInterval = s.TTL / 2
	}

	if s.MaxSessions < 0 {
		return fmt.Errorf("max_sessions must not be negative")
	}

	return nil
}

// Validate 检查 HistoryConfig 配置的有效性。
// 确保存储后端受支持，并校验对应后端的连接参数。
func (h *HistoryConfig) Validate() error {
	if h.MaxRecords < 0 {
		return fmt.Errorf("max_records must not be negative")
	}

	switch h.Provider {
	case HistoryProviderMemory:
		return nil
	case HistoryProviderRedis:
		return h.Redis.Validate()
	case HistoryProviderBadger:
		return h.Badger.Validate()
	case "":
		return fmt.Errorf("history provider is required")
	default:
		return fmt.Errorf("unsupported history provider: %s", h.Provider)
	}
}

// Validate 检查 RedisConfig 配置的有效性。
func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}

	if r.KeyPrefix == "" {
		r.KeyPrefix = "rating:history:"
	}

	if r.Timeout <= 0 {
		r.Timeout = 3 * time.Second // 默认超时时间
	}

	return nil
}

// Validate 检查 BadgerConfig 配置的有效性。
func (b *BadgerConfig) Validate() error {
	if !b.InMemory && b.Path == "" {
		return fmt.Errorf("badger path is required unless in_memory is set")
	}
	return nil
}

// Validate 检查 ExportConfig 配置的有效性。
func (e *ExportConfig) Validate() error {
	if e.CSVFilename == "" {
		e.CSVFilename = "historial_predicciones.csv"
	}
	if e.PDFFilename == "" {
		e.PDFFilename = "historial_predicciones.pdf"
	}
	return nil
}

// Validate 检查 DatasetConfig 配置的有效性。
func (d *DatasetConfig) Validate() error {
	if !d.Enabled {
		return nil
	}

	if d.Path == "" {
		return fmt.Errorf("dataset path is required when dataset is enabled")
	}

	if d.TopN <= 0 {
		d.TopN = 20
	}

	if d.Bins <= 0 {
		d.Bins = 10
	}

	return nil
}

// GetAddr 获取服务器的完整监听地址。
// 返回格式为 "Host:Port" 的字符串。
func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
