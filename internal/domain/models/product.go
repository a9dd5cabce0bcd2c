package models

import (
	"fmt"
	"strings"
)

// Category 产品类别（封闭枚举）
type Category string

const (
	// CategoryShampoo 洗发水
	CategoryShampoo Category = "shampoo"
	// CategorySoap 香皂
	CategorySoap Category = "soap"
	// CategoryExfoliant 去角质产品
	CategoryExfoliant Category = "exfoliant"
)

// categoryLabels 类别与训练数据集 Tipo 列取值的对应关系
var categoryLabels = map[Category]string{
	CategoryShampoo:   "champu",
	CategorySoap:      "jabon",
	CategoryExfoliant: "exfoliante",
}

// Categories 返回全部类别，顺序固定
func Categories() []Category {
	return []Category{CategoryShampoo, CategorySoap, CategoryExfoliant}
}

// ParseCategory 解析类别，同时接受枚举标识和数据集标签（如 "jabon"）
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for c, label := range categoryLabels {
		if v == string(c) || v == label {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q: %w", s, ErrUnknownCategory)
}

// Label 返回编码器使用的数据集标签。未知类别原样返回，由编码器拒绝。
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ReviewBucket 评论数粗分档，仅用于选择模型
type ReviewBucket string

const (
	// ReviewBucketLow 少于 60 条评论
	ReviewBucketLow ReviewBucket = "low"
	// ReviewBucketHigh 60 条及以上评论
	ReviewBucketHigh ReviewBucket = "high"
)

// ReviewThreshold 模型选择阈值，评论数达到该值使用高评论模型
const ReviewThreshold = 60

// Count 返回档位对应的代表性评论数
func (b ReviewBucket) Count() int {
	if b == ReviewBucketHigh {
		return 90
	}
	return 25
}

// Valid 判断档位是否合法
func (b ReviewBucket) Valid() bool {
	return b == ReviewBucketLow || b == ReviewBucketHigh
}

// ReviewLabel 根据评论数返回历史记录中展示的标签
func ReviewLabel(reviewCount int) string {
	if reviewCount >= ReviewThreshold {
		return "Más de 60"
	}
	return "Menos de 60"
}

// ProductInput 一次预测表单提交的产品属性
type ProductInput struct {
	Category     Category     `json:"category"`
	RawTerms     []string     `json:"raw_terms"`
	Price        float64      `json:"price"`
	ReviewBucket ReviewBucket `json:"review_bucket"`
}

// RawDescription 按选择顺序以单个空格拼接原始词条
func (p *ProductInput) RawDescription() string {
	return strings.Join(p.RawTerms, " ")
}

// EncoderRecord 送入特征编码器的结构化记录，对应数据集的 Tipo、Product_Description、Price 列
type EncoderRecord struct {
	Tipo        string
	Description string
	Price       float64
}
