// Package dataset 读取静态训练数据集并提供描述性探索
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/infrastructure/preprocessing"
)

// 数据集列名
const (
	ColumnStarRating  = "Star_Rating"
	ColumnDescription = "Product_Description"
	ColumnPrice       = "Price"
	ColumnReviews     = "Reviews"
	ColumnTipo        = "Tipo"
)

var requiredColumns = []string{ColumnStarRating, ColumnDescription, ColumnPrice, ColumnReviews, ColumnTipo}

// Dataset 加载后的只读数据集
type Dataset struct {
	rows    []models.DatasetRow
	skipped int

	registry *preprocessing.CompoundRegistry
	cleaner  *preprocessing.Cleaner
}

// Option 数据集加载选项
type Option func(*Dataset)

// WithCompoundRegistry 使用与预测链相同的复合词表清洗描述
func WithCompoundRegistry(registry *preprocessing.CompoundRegistry) Option {
	return func(d *Dataset) {
		if registry != nil {
			d.registry = registry
		}
	}
}

// Load 从 CSV 文件加载数据集
func Load(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	d, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return d, nil
}

// Parse 解析 CSV 数据集，列按表头名称定位，顺序不限。
// 数值列无法解析的行被跳过并计数。
func Parse(r io.Reader, opts ...Option) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	d := &Dataset{registry: preprocessing.DefaultCompoundRegistry()}
	for _, opt := range opts {
		opt(d)
	}
	d.cleaner = preprocessing.NewCleaner(d.registry)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(d.rows)+d.skipped+2, err)
		}

		row, ok := parseRow(rec, index)
		if !ok {
			d.skipped++
			continue
		}
		d.rows = append(d.rows, row)
	}

	return d, nil
}

func parseRow(rec []string, index map[string]int) (models.DatasetRow, bool) {
	field := func(col string) string {
		i := index[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rating, ok := parseNumber(field(ColumnStarRating))
	if !ok {
		return models.DatasetRow{}, false
	}
	price, ok := parseNumber(field(ColumnPrice))
	if !ok {
		return models.DatasetRow{}, false
	}
	reviews, ok := parseNumber(field(ColumnReviews))
	if !ok {
		return models.DatasetRow{}, false
	}

	return models.DatasetRow{
		StarRating:  rating,
		Description: field(ColumnDescription),
		Price:       price,
		Reviews:     reviews,
		Tipo:        field(ColumnTipo),
	}, true
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Len 有效行数
func (d *Dataset) Len() int { return len(d.rows) }

// Skipped 被跳过的行数
func (d *Dataset) Skipped() int { return d.skipped }

// Rows 返回行的副本
func (d *Dataset) Rows() []models.DatasetRow {
	out := make([]models.DatasetRow, len(d.rows))
	copy(out, d.rows)
	return out
}

// cleanDescription 与预测流水线相同的清洗和停用词过滤
func (d *Dataset) cleanDescription(s string) string {
	return d.cleaner.Clean(s)
}
