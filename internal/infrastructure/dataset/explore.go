package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/infrastructure/preprocessing"
)

// 四象限阈值
const (
	QuadrantRatingThreshold  = 3.5
	QuadrantReviewsThreshold = 60.0
)

// Describe 计算数值列的描述统计（样本标准差，线性插值分位数）。单行时标准差记为 0。
func (d *Dataset) Describe() models.DatasetSummary {
	columns := map[string]func(models.DatasetRow, int) float64{
		ColumnStarRating: func(r models.DatasetRow, _ int) float64 { return r.StarRating },
		ColumnPrice:      func(r models.DatasetRow, _ int) float64 { return r.Price },
		ColumnReviews:    func(r models.DatasetRow, _ int) float64 { return r.Reviews },
	}

	summary := models.DatasetSummary{
		Rows:        len(d.rows),
		SkippedRows: d.skipped,
		Columns:     make(map[string]models.ColumnStats, len(columns)),
		ByTipo:      lo.CountValuesBy(d.rows, func(r models.DatasetRow) string { return r.Tipo }),
	}
	for name, get := range columns {
		summary.Columns[name] = describe(lo.Map(d.rows, get))
	}
	return summary
}

func describe(values []float64) models.ColumnStats {
	n := len(values)
	if n == 0 {
		return models.ColumnStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := lo.Sum(values) / float64(n)
	var std float64
	if n > 1 {
		ss := lo.SumBy(values, func(v float64) float64 { return (v - mean) * (v - mean) })
		std = math.Sqrt(ss / float64(n-1))
	}

	return models.ColumnStats{
		Count: n,
		Mean:  mean,
		Std:   std,
		Min:   sorted[0],
		P25:   quantile(sorted, 0.25),
		P50:   quantile(sorted, 0.50),
		P75:   quantile(sorted, 0.75),
		Max:   sorted[n-1],
	}
}

// quantile 对已排序数据做线性插值分位数
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// RatingHistogram 评分等宽直方图，覆盖 [min, max]，最后一箱包含 max
func (d *Dataset) RatingHistogram(bins int) ([]models.HistogramBin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}
	if len(d.rows) == 0 {
		return []models.HistogramBin{}, nil
	}

	ratings := lo.Map(d.rows, func(r models.DatasetRow, _ int) float64 { return r.StarRating })
	lowest, highest := lo.Min(ratings), lo.Max(ratings)
	width := (highest - lowest) / float64(bins)

	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lowest + float64(i)*width
		out[i].Upper = lowest + float64(i+1)*width
	}
	out[bins-1].Upper = highest

	for _, v := range ratings {
		i := 0
		if width > 0 {
			i = int((v - lowest) / width)
		}
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, nil
}

// WordFrequencies 清洗后描述中出现最多的 topN 个词，次数相同按字母序
func (d *Dataset) WordFrequencies(topN int) []models.TermCount {
	counts := make(map[string]int)
	for _, r := range d.rows {
		for _, tok := range strings.Fields(d.cleanDescription(r.Description)) {
			counts[tok]++
		}
	}
	return topTerms(counts, topN)
}

func topTerms(counts map[string]int, topN int) []models.TermCount {
	out := lo.Map(lo.Entries(counts), func(e lo.Entry[string, int], _ int) models.TermCount {
		return models.TermCount{Term: e.Key, Count: e.Value}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// PriceRating 按 Tipo 分组的价格-评分散点
func (d *Dataset) PriceRating() map[string][]models.ScatterPoint {
	groups := lo.GroupBy(d.rows, func(r models.DatasetRow) string { return r.Tipo })
	return lo.MapValues(groups, func(rows []models.DatasetRow, tipo string) []models.ScatterPoint {
		return lo.Map(rows, func(r models.DatasetRow, _ int) models.ScatterPoint {
			return models.ScatterPoint{X: r.Price, Y: r.StarRating, Tipo: tipo}
		})
	})
}

// ReviewsRating 评论数-评分散点，与 ReviewQuadrants 配合使用
func (d *Dataset) ReviewsRating() []models.ScatterPoint {
	return lo.Map(d.rows, func(r models.DatasetRow, _ int) models.ScatterPoint {
		return models.ScatterPoint{X: r.Reviews, Y: r.StarRating, Tipo: r.Tipo}
	})
}

// ReviewQuadrants 以评分 3.5 和评论数 60 为界统计四象限，等于阈值计入高侧
func (d *Dataset) ReviewQuadrants() models.QuadrantCounts {
	q := models.QuadrantCounts{
		RatingThreshold:  QuadrantRatingThreshold,
		ReviewsThreshold: QuadrantReviewsThreshold,
	}
	for _, r := range d.rows {
		highRating := r.StarRating >= QuadrantRatingThreshold
		highReviews := r.Reviews >= QuadrantReviewsThreshold
		switch {
		case highRating && highReviews:
			q.HighRatingHighReviews++
		case highRating:
			q.HighRatingLowReviews++
		case highReviews:
			q.LowRatingHighReviews++
		default:
			q.LowRatingLowReviews++
		}
	}
	return q
}

// Checklists 表单使用的类别、领域词和成分
func Checklists() models.Checklists {
	return models.Checklists{
		Categories:  models.Categories(),
		DomainWords: append([]string(nil), preprocessing.DomainWords...),
		Ingredients: append([]string(nil), preprocessing.Ingredients...),
	}
}
