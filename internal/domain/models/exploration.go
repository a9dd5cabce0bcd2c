package models

// DatasetRow 训练数据集中的一行
type DatasetRow struct {
	StarRating  float64 `json:"star_rating"`
	Description string  `json:"product_description"`
	Price       float64 `json:"price"`
	Reviews     float64 `json:"reviews"`
	Tipo        string  `json:"tipo"`
}

// ColumnStats 数值列的描述统计
type ColumnStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// DatasetSummary 数据集概要
type DatasetSummary struct {
	Rows        int                    `json:"rows"`
	SkippedRows int                    `json:"skipped_rows"`
	Columns     map[string]ColumnStats `json:"columns"`
	ByTipo      map[string]int         `json:"by_tipo"`
}

// HistogramBin 直方图分箱，区间为 [Lower, Upper)，最后一箱为闭区间
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// TermCount 词频
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// ScatterPoint 散点图数据点
type ScatterPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Tipo string  `json:"tipo"`
}

// QuadrantCounts 按评分与评论数阈值划分的四象限计数
type QuadrantCounts struct {
	RatingThreshold       float64 `json:"rating_threshold"`
	ReviewsThreshold      float64 `json:"reviews_threshold"`
	HighRatingHighReviews int     `json:"high_rating_high_reviews"`
	HighRatingLowReviews  int     `json:"high_rating_low_reviews"`
	LowRatingHighReviews  int     `json:"low_rating_high_reviews"`
	LowRatingLowReviews   int     `json:"low_rating_low_reviews"`
}

// Checklists 表单可选词条
type Checklists struct {
	Categories  []Category `json:"categories"`
	DomainWords []string   `json:"domain_words"`
	Ingredients []string   `json:"ingredients"`
}
