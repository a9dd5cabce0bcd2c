// Package flows 提供 Eino Graph 流程定义
package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/domain/services"
	"rating-predictor/internal/eino/components"
	"rating-predictor/internal/eino/config"
	"rating-predictor/internal/eino/nodes"
	"rating-predictor/pkg/logger"
)

// RatingPredictInput 预测图输入
type RatingPredictInput = nodes.PredictRequest

// RatingPredictOutput 预测图输出
type RatingPredictOutput = models.PredictionResult

// 图节点名
const (
	NodeInputCheck  = "input_check"
	NodeDescribe    = "describe"
	NodeEncode      = "encode"
	NodePredictLow  = "predict_low"
	NodePredictHigh = "predict_high"
)

// RatingPredictGraph 评分预测 Graph
type RatingPredictGraph struct {
	predictor    *components.RatingPredictor
	preprocessor services.TextPreprocessingService
	cfg          *config.PredictConfig
}

// NewRatingPredictGraph 创建评分预测 Graph
func NewRatingPredictGraph(
	predictor *components.RatingPredictor,
	preprocessor services.TextPreprocessingService,
	cfg *config.PredictConfig,
) *RatingPredictGraph {
	return &RatingPredictGraph{
		predictor:    predictor,
		preprocessor: preprocessor,
		cfg:          cfg,
	}
}

// Compile 编译 Graph 为 Runnable。
// START -> input_check -> describe -> encode -> (按评论数分支) -> predict_low | predict_high -> END
func (g *RatingPredictGraph) Compile(ctx context.Context) (compose.Runnable[*RatingPredictInput, *RatingPredictOutput], error) {
	graph := compose.NewGraph[*RatingPredictInput, *RatingPredictOutput]()

	// 1. 输入校验
	checker := nodes.NewInputChecker(g.cfg.MaxTerms)
	if err := graph.AddLambdaNode(NodeInputCheck, compose.InvokableLambda(checker.Check), compose.WithNodeName(NodeInputCheck)); err != nil {
		return nil, fmt.Errorf("add input_check node: %w", err)
	}

	// 2. 描述拼接与预处理
	describer := nodes.NewDescriber(g.preprocessor, g.cfg.PreprocessTimeout)
	if err := graph.AddLambdaNode(NodeDescribe, compose.InvokableLambda(describer.Describe), compose.WithNodeName(NodeDescribe)); err != nil {
		return nil, fmt.Errorf("add describe node: %w", err)
	}

	// 3. 特征编码
	encoder := nodes.NewFeatureEncodeNode(g.predictor)
	if err := graph.AddLambdaNode(NodeEncode, compose.InvokableLambda(encoder.Encode), compose.WithNodeName(NodeEncode)); err != nil {
		return nil, fmt.Errorf("add encode node: %w", err)
	}

	// 4. 两个模型变体的推理节点
	targets := map[models.ModelVariant]string{
		models.ModelLowReviews:  NodePredictLow,
		models.ModelHighReviews: NodePredictHigh,
	}
	for variant, key := range targets {
		model, err := g.predictor.Model(variant)
		if err != nil {
			return nil, err
		}
		runner := nodes.NewModelRunner(variant, model)
		if err := graph.AddLambdaNode(key, compose.InvokableLambda(runner.Run), compose.WithNodeName(key)); err != nil {
			return nil, fmt.Errorf("add %s node: %w", key, err)
		}
	}

	// 5. 连接节点
	if err := graph.AddEdge(compose.START, NodeInputCheck); err != nil {
		return nil, fmt.Errorf("add edge START->input_check: %w", err)
	}
	if err := graph.AddEdge(NodeInputCheck, NodeDescribe); err != nil {
		return nil, fmt.Errorf("add edge input_check->describe: %w", err)
	}
	if err := graph.AddEdge(NodeDescribe, NodeEncode); err != nil {
		return nil, fmt.Errorf("add edge describe->encode: %w", err)
	}

	// 6. 按评论数选择模型
	selector := nodes.NewModelSelector(targets)
	branch := compose.NewGraphBranch(selector.Select, selector.EndNodes())
	if err := graph.AddBranch(NodeEncode, branch); err != nil {
		return nil, fmt.Errorf("add branch: %w", err)
	}

	if err := graph.AddEdge(NodePredictLow, compose.END); err != nil {
		return nil, fmt.Errorf("add edge predict_low->END: %w", err)
	}
	if err := graph.AddEdge(NodePredictHigh, compose.END); err != nil {
		return nil, fmt.Errorf("add edge predict_high->END: %w", err)
	}

	return graph.Compile(ctx, compose.WithGraphName("rating_predict"))
}

// PredictionService 基于预测图的评分预测服务，图只编译一次，可并发调用
type PredictionService struct {
	runnable         compose.Runnable[*RatingPredictInput, *RatingPredictOutput]
	cfg              *config.PredictConfig
	callbackHandlers []callbacks.Handler
	logger           logger.Logger
}

var _ services.PredictionService = (*PredictionService)(nil)

// NewPredictionService 编译预测图并创建服务
func NewPredictionService(
	ctx context.Context,
	graph *RatingPredictGraph,
	log logger.Logger,
	callbackHandlers ...callbacks.Handler,
) (*PredictionService, error) {
	runnable, err := graph.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile rating_predict graph: %w", err)
	}

	return &PredictionService{
		runnable:         runnable,
		cfg:              graph.cfg,
		callbackHandlers: callbackHandlers,
		logger:           log,
	}, nil
}

// Predict 将表单输入的评论档位换算为代表性评论数后执行预测
func (s *PredictionService) Predict(ctx context.Context, input *models.ProductInput) (*models.PredictionResult, error) {
	if input == nil {
		return nil, &models.PredictionError{Op: NodeInputCheck, Err: fmt.Errorf("nil input")}
	}

	return s.Run(ctx, &RatingPredictInput{
		Category:     input.Category,
		RawTerms:     input.RawTerms,
		Price:        input.Price,
		ReviewCount:  input.ReviewBucket.Count(),
		ReviewBucket: input.ReviewBucket,
	})
}

// Run 以显式评论数执行预测图。
// 返回的错误总是 *models.PredictionError，原因可用 errors.As/errors.Is 取得。
func (s *PredictionService) Run(ctx context.Context, input *RatingPredictInput) (*models.PredictionResult, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var opts []compose.Option
	if len(s.callbackHandlers) > 0 {
		opts = append(opts, compose.WithCallbacks(s.callbackHandlers...))
	}

	result, err := s.runnable.Invoke(ctx, input, opts...)
	if err != nil {
		predErr := toPredictionError(err)
		s.logger.WarnContext(ctx, "评分预测失败", "op", predErr.Op, "error", predErr.Err)
		return nil, predErr
	}

	s.logger.InfoContext(ctx, "评分预测完成",
		"model", result.ModelUsed,
		"rating", result.Rating,
		"review_count", result.ReviewCount,
		"cleaned_description", result.CleanedDescription,
	)
	return result, nil
}

// toPredictionError 剥离图执行框架的包装，保留节点给出的 PredictionError
func toPredictionError(err error) *models.PredictionError {
	var predErr *models.PredictionError
	if errors.As(err, &predErr) {
		return predErr
	}
	return &models.PredictionError{Op: "graph", Err: err}
}
