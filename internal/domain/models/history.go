package models

import "time"

// TimestampLayout 历史记录时间格式
const TimestampLayout = "2006-01-02 15:04:05"

// HistoryColumns 历史记录导出列名，顺序即导出顺序
var HistoryColumns = []string{"Rating", "Descripción", "Precio", "Reseñas", "Fecha y hora"}

// HistoryRecord 用户显式保存的一条预测记录
type HistoryRecord struct {
	Rating      float64 `json:"Rating"`
	Description string  `json:"Descripción"`
	Price       float64 `json:"Precio"`
	ReviewLabel string  `json:"Reseñas"`
	Timestamp   string  `json:"Fecha y hora"`
}

// NewHistoryRecord 由预测结果生成历史记录，评分保留两位小数
func NewHistoryRecord(p *PredictionResult, now time.Time) HistoryRecord {
	return HistoryRecord{
		Rating:      RoundTo(p.Rating, 2),
		Description: p.RawDescription,
		Price:       p.Input.Price,
		ReviewLabel: ReviewLabel(p.ReviewCount),
		Timestamp:   now.Format(TimestampLayout),
	}
}
