// Package export 将预测历史导出为 CSV 和 PDF
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"rating-predictor/internal/domain/models"
)

// formatRating 评分统一保留两位小数
func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatPrice 价格使用最短表示
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// recordFields 记录按导出列顺序展开为字符串
func recordFields(r models.HistoryRecord) []string {
	return []string{
		formatRating(r.Rating),
		r.Description,
		formatPrice(r.Price),
		r.ReviewLabel,
		r.Timestamp,
	}
}

// WriteCSV 以 UTF-8 写出带表头的历史记录
func WriteCSV(w io.Writer, records []models.HistoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.HistoryColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, r := range records {
		if err := cw.Write(recordFields(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV 读取 WriteCSV 输出的格式
func ParseCSV(r io.Reader) ([]models.HistoryRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.HistoryColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range models.HistoryColumns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i, header[i], col)
		}
	}

	out := make([]models.HistoryRecord, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rating, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid rating %q: %w", line, row[0], err)
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid price %q: %w", line, row[2], err)
		}

		out = append(out, models.HistoryRecord{
			Rating:      rating,
			Description: row[1],
			Price:       price,
			ReviewLabel: row[3],
			Timestamp:   row[4],
		})
	}
	return out, nil
}
