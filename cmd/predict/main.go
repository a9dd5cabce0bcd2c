// predict 在终端中执行一次评分预测并打印归因表
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"rating-predictor/configs"
	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/eino/callbacks"
	"rating-predictor/internal/eino/components"
	"rating-predictor/internal/eino/flows"
	"rating-predictor/internal/infrastructure/preprocessing"
	"rating-predictor/pkg/logger"
)

func main() {
	category := flag.String("category", "", "product type: shampoo, soap, exfoliant (or champu, jabon, exfoliante)")
	terms := flag.String("terms", "", "comma separated domain words and ingredients")
	price := flag.Float64("price", 0, "price in EUR")
	reviews := flag.Int("reviews", 0, "review count, models switch at 60")
	top := flag.Int("top", 10, "number of attributions to print")
	artifacts := flag.String("artifacts", "", "artifact directory, overrides config")
	verbose := flag.Bool("v", false, "log pipeline nodes")
	flag.Parse()

	if err := run(context.Background(), *category, *terms, *price, *reviews, *top, *artifacts, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, category, terms string, price float64, reviews, top int, artifacts string, verbose bool) error {
	config, err := configs.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pipeline := &config.Pipeline
	if artifacts != "" {
		pipeline.Artifacts.Dir = artifacts
	}

	log := logger.Discard()
	var handlers []einocallbacks.Handler
	if verbose {
		log = logger.New(logger.Config{Level: slog.LevelDebug, Output: "stderr"})
		handlers = append(handlers, callbacks.NewLoggingHandler(log, &pipeline.Callbacks.Logging))
	}

	predictor, err := components.LoadRatingPredictor(ctx, &pipeline.Artifacts, log)
	if err != nil {
		return err
	}
	preprocessConfig := preprocessing.DefaultConfig()
	preprocessConfig.CompoundTerms = pipeline.Predict.CompoundTerms
	preprocessor, err := preprocessing.NewFactory(log).CreateTextPreprocessingService(preprocessConfig)
	if err != nil {
		return err
	}
	svc, err := flows.NewPredictionService(ctx, flows.NewRatingPredictGraph(predictor, preprocessor, &pipeline.Predict), log, handlers...)
	if err != nil {
		return err
	}

	parsed, err := models.ParseCategory(category)
	if err != nil {
		parsed = models.Category(category)
	}
	result, err := svc.Run(ctx, &flows.RatingPredictInput{
		Category:    parsed,
		RawTerms:    splitTerms(terms),
		Price:       price,
		ReviewCount: reviews,
	})
	if err != nil {
		return err
	}

	report := models.NewProductReport(result)
	for _, line := range report.Lines {
		fmt.Println(line)
	}
	fmt.Printf("Modelo: %s\n\n", result.ModelUsed)

	vec, err := flows.NewExplanationService(predictor, &pipeline.Explain, log).Explain(ctx, result)
	if err != nil {
		return err
	}
	printAttributions(models.NewExplanation(vec, result.Features.Values(), top))
	return nil
}

// splitTerms 按逗号拆分词条并去掉空项
func splitTerms(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Compact(parts)
}

func printAttributions(expl models.Explanation) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Feature", "Value", "SHAP"})
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, c := range expl.Top {
		table.Append([]string{
			c.Feature,
			strconv.FormatFloat(c.Data, 'g', 6, 64),
			fmt.Sprintf("%+.4f", c.Value),
		})
	}
	table.SetFooter([]string{"base value", "", fmt.Sprintf("%.4f", expl.Baseline)})
	table.Render()
}
