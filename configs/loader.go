package configs

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	einoconfig "rating-predictor/internal/eino/config"
)

// DefaultConfigPaths 配置文件搜索路径，按顺序使用第一个存在的文件
var DefaultConfigPaths = []string{
	"configs/config.yaml",
	"config.yaml",
	"/etc/rating-predictor/config.yaml",
}

// Load 加载并验证应用程序配置。
// 它按照以下优先级顺序加载配置：
// 1. 默认配置
// 2. 配置文件（config.yaml，支持多个搜索路径）
// 3. 环境变量（覆盖配置文件中的值）
//
// 参数 ctx: 上下文对象。
// 返回加载并验证后的 Config 指针，如果出错则返回 error。
func Load(ctx context.Context) (*Config, error) {
	// 加载 .env 文件（如果存在）
	// 忽略错误，因为 .env 文件是可选的
	_ = godotenv.Load()

	return LoadFrom(ctx, DefaultConfigPaths...)
}

// LoadFrom 与 Load 相同，但只在给定路径中查找配置文件，且不读取 .env
func LoadFrom(ctx context.Context, paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, err
			}
			break
		}
	}

	// 从环境变量覆盖配置
	loadFromEnv(config)

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig 创建并返回一个包含默认值的 Config 对象。
// 默认使用内存历史存储，工件从 artifacts/ 目录加载。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                    "0.0.0.0",
			Port:                    8080,
			Mode:                    "release",
			ReadTimeout:             30 * time.Second,
			WriteTimeout:            30 * time.Second,
			IdleTimeout:             60 * time.Second,
			GracefulShutdownTimeout: 30 * time.Second,
			MaxConnections:          1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Pipeline: *einoconfig.DefaultEinoConfig(),
		Session: SessionConfig{
			Header:          "X-Session-ID",
			TTL:             2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
			MaxSessions:     10000,
		},
		History: HistoryConfig{
			Provider:   HistoryProviderMemory,
			MaxRecords: 1000,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "rating:history:",
				Timeout:   3 * time.Second,
			},
			Badger: BadgerConfig{
				Path: "data/history",
			},
		},
		Export: ExportConfig{
			CSVFilename: "historial_predicciones.csv",
			PDFFilename: "historial_predicciones.pdf",
		},
		Dataset: DatasetConfig{
			Enabled: true,
			Path:    "data/datos_productos.csv",
			TopN:    20,
			Bins:    10,
		},
	}
}

// loadFromEnv 从环境变量中读取配置并覆盖 Config 中的值。
// 支持 RATING_PORT, RATING_HISTORY_PROVIDER, REDIS_ADDR 等环境变量。
func loadFromEnv(config *Config) {
	// Server 配置
	if port := os.Getenv("RATING_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p <= 65535 {
			config.Server.Port = p
		}
	}

	// 历史存储配置
	if provider := os.Getenv("RATING_HISTORY_PROVIDER"); provider != "" {
		config.History.Provider = provider
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.History.Redis.Addr = addr
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.History.Redis.Password = password
	}

	// 工件与数据集路径
	if dir := os.Getenv("RATING_ARTIFACTS_DIR"); dir != "" {
		config.Pipeline.Artifacts.Dir = dir
	}

	if path := os.Getenv("RATING_DATASET_PATH"); path != "" {
		config.Dataset.Path = path
	}
}
