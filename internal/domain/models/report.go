package models

import "fmt"

// ProductReport 最近一次预测的产品报告
type ProductReport struct {
	Rating      float64      `json:"rating"`
	Tipo        string       `json:"tipo"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Reviews     string       `json:"reviews"`
	ModelUsed   ModelVariant `json:"model_used"`
	Lines       []string     `json:"lines"`
}

// NewProductReport 由预测结果生成报告，Lines 为展示用的文本行
func NewProductReport(p *PredictionResult) ProductReport {
	r := ProductReport{
		Rating:      RoundTo(p.Rating, 2),
		Tipo:        p.Input.Category.Label(),
		Description: p.RawDescription,
		Price:       p.Input.Price,
		Reviews:     ReviewLabel(p.ReviewCount),
		ModelUsed:   p.ModelUsed,
	}
	r.Lines = []string{
		fmt.Sprintf("Rating Predicho: %.2f", p.Rating),
		fmt.Sprintf("Tipo de producto: %s", r.Tipo),
		fmt.Sprintf("Descripción: %s", r.Description),
		fmt.Sprintf("Precio: €%.2f", r.Price),
		fmt.Sprintf("Número de Reseñas: %s", r.Reviews),
	}
	return r
}
