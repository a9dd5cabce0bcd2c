package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rating-predictor/configs"
	"rating-predictor/internal/app/handlers"
	"rating-predictor/internal/app/server"
	"rating-predictor/internal/domain/repositories"
	"rating-predictor/internal/eino/callbacks"
	"rating-predictor/internal/eino/components"
	"rating-predictor/internal/eino/flows"
	"rating-predictor/internal/infrastructure/dataset"
	"rating-predictor/internal/infrastructure/preprocessing"
	"rating-predictor/internal/infrastructure/stores"
	"rating-predictor/internal/session"
	"rating-predictor/pkg/logger"
)

// main 主函数 - 应用程序入口点
func main() {
	// 创建根上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 创建早期logger（使用默认配置）
	earlyLogger := logger.Default()

	if err := initializeApplication(ctx, earlyLogger); err != nil {
		earlyLogger.ErrorContext(ctx, "应用程序初始化失败", "error", err)
		os.Exit(1)
	}
}

// initializeApplication 初始化应用程序
func initializeApplication(ctx context.Context, earlyLogger logger.Logger) error {
	// 1. 加载配置
	config, err := configs.Load(ctx)
	if err != nil {
		return fmt.Errorf("配置加载失败: %w", err)
	}

	earlyLogger.InfoContext(ctx, "配置加载成功",
		"server_port", config.Server.Port,
		"artifacts_dir", config.Pipeline.Artifacts.Dir,
		"history_provider", config.History.Provider)

	// 2. 初始化日志服务
	appLogger := logger.New(logger.Config{
		Level:    logger.ParseLevel(config.Logging.Level),
		Output:   config.Logging.Output,
		FilePath: config.Logging.FilePath,
		Format:   config.Logging.Format,
	})
	appLogger.InfoContext(ctx, "日志服务初始化完成")

	// 3. 初始化历史存储
	history, err := stores.NewHistoryStoreFactory(appLogger).CreateHistoryRepository(ctx, &config.History, config.Session.TTL)
	if err != nil {
		return fmt.Errorf("历史存储初始化失败: %w", err)
	}
	defer func() {
		if err := history.Close(); err != nil {
			appLogger.ErrorContext(ctx, "历史存储关闭失败", "error", err)
		}
	}()

	// 4. 初始化预测流水线
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	preprocessConfig := preprocessing.DefaultConfig()
	preprocessConfig.CompoundTerms = config.Pipeline.Predict.CompoundTerms
	compounds, err := preprocessing.NewFactory(appLogger).CreateCompoundRegistry(preprocessConfig)
	if err != nil {
		return fmt.Errorf("复合词表无效: %w", err)
	}

	manager, err := initializePipeline(ctx, config, preprocessConfig, history, registry, appLogger)
	if err != nil {
		return fmt.Errorf("预测流水线初始化失败: %w", err)
	}
	appLogger.InfoContext(ctx, "预测流水线初始化完成")

	// 5. 加载探索数据集
	var data *dataset.Dataset
	if config.Dataset.Enabled {
		data, err = dataset.Load(config.Dataset.Path, dataset.WithCompoundRegistry(compounds))
		if err != nil {
			// 数据集只服务探索接口，加载失败不影响预测
			appLogger.WarnContext(ctx, "数据集加载失败，探索接口不可用", "path", config.Dataset.Path, "error", err)
			data = nil
		} else {
			appLogger.InfoContext(ctx, "数据集加载完成", "rows", data.Len(), "skipped", data.Skipped())
		}
	}

	// 6. 初始化应用层
	h := &server.Handlers{
		Prediction: handlers.NewPredictionHandler(config.Pipeline.Explain.DefaultTopN, appLogger),
		History:    handlers.NewHistoryHandler(&config.Export, appLogger),
		Explore:    handlers.NewExploreHandler(data, &config.Dataset, appLogger),
		Health:     handlers.NewHealthHandler(manager.Len),
	}
	if config.Pipeline.Callbacks.Metrics.Enabled {
		h.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}
	httpServer := server.NewServer(&config.Server, h, manager, config.Session.Header, appLogger)

	// 会话过期回收
	go manager.Run(ctx)

	// 7. 启动服务并等待停止信号
	return runApplication(ctx, httpServer, appLogger)
}

// initializePipeline 加载模型工件，编译预测图并创建会话管理器
func initializePipeline(
	ctx context.Context,
	config *configs.Config,
	preprocessConfig *preprocessing.Config,
	history repositories.HistoryRepository,
	registry prometheus.Registerer,
	log logger.Logger,
) (*session.Manager, error) {
	pipeline := &config.Pipeline

	log.InfoContext(ctx, "正在加载模型工件", "dir", pipeline.Artifacts.Dir)
	predictor, err := components.LoadRatingPredictor(ctx, &pipeline.Artifacts, log)
	if err != nil {
		return nil, fmt.Errorf("模型工件加载失败: %w", err)
	}

	preprocessor, err := preprocessing.NewFactory(log).CreateTextPreprocessingService(preprocessConfig)
	if err != nil {
		return nil, fmt.Errorf("文本预处理服务创建失败: %w", err)
	}

	callbackHandlers, err := callbacks.NewFactory(&pipeline.Callbacks, log, registry).CreateHandlers()
	if err != nil {
		return nil, fmt.Errorf("回调处理器创建失败: %w", err)
	}

	graph := flows.NewRatingPredictGraph(predictor, preprocessor, &pipeline.Predict)
	predictionService, err := flows.NewPredictionService(ctx, graph, log, callbackHandlers...)
	if err != nil {
		return nil, fmt.Errorf("预测图编译失败: %w", err)
	}
	log.InfoContext(ctx, "预测图编译成功")

	explanationService := flows.NewExplanationService(predictor, &pipeline.Explain, log)

	return session.NewManager(&config.Session, history, predictionService, explanationService, log), nil
}

// runApplication 运行应用程序，监听停止信号
// 此函数会阻塞直到收到停止信号、服务器错误或上下文取消
func runApplication(ctx context.Context, httpServer *server.Server, log logger.Logger) error {
	// 创建错误通道 - 用于接收服务器运行时错误
	errChan := make(chan error, 1)

	// 创建信号通道
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	// 启动HTTP服务器（非阻塞）
	httpServer.Start(ctx, errChan)

	select {
	case err := <-errChan:
		log.ErrorContext(ctx, "服务器运行错误", "error", err)
		return err

	case sig := <-signalChan:
		log.InfoContext(ctx, "收到停止信号，开始优雅关闭", "signal", sig.String())
		return gracefulShutdown(ctx, httpServer, log)

	case <-ctx.Done():
		log.InfoContext(ctx, "上下文取消，开始优雅关闭")
		return gracefulShutdown(ctx, httpServer, log)
	}
}

// gracefulShutdown 执行优雅关闭
func gracefulShutdown(ctx context.Context, httpServer *server.Server, log logger.Logger) error {
	log.InfoContext(ctx, "开始执行优雅关闭流程")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "HTTP服务器关闭失败", "error", err)
		return fmt.Errorf("HTTP服务器关闭失败: %w", err)
	}

	log.InfoContext(ctx, "优雅关闭完成")
	return nil
}
