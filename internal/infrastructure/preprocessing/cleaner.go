package preprocessing

import "strings"

// Cleaner 组合归一化和停用词过滤，输出是 normalize -> tokenize 的不动点
type Cleaner struct {
	normalizer *TextNormalizer
	filter     *StopwordFilter
}

// NewCleaner 用同一份复合词表创建归一化器和停用词过滤器，registry 为 nil 时使用默认表
func NewCleaner(registry *CompoundRegistry) *Cleaner {
	return &Cleaner{
		normalizer: NewTextNormalizer(registry),
		filter:     NewStopwordFilter(registry, nil),
	}
}

// Normalizer 返回内部归一化器
func (c *Cleaner) Normalizer() *TextNormalizer { return c.normalizer }

// Filter 返回内部停用词过滤器
func (c *Cleaner) Filter() *StopwordFilter { return c.filter }

// Clean 执行完整清洗
func (c *Cleaner) Clean(text string) string {
	return c.Settle(c.filter.TokenizeFilter(c.normalizer.Normalize(text)))
}

// Settle 对已分词的文本重复 normalize -> tokenize 直到输出不再变化。
// 去掉停用词或压缩空白后相邻的词可能组成复合词，每一轮只会合并或删除 token，因此轮数不超过 token 数。
func (c *Cleaner) Settle(text string) string {
	for range len(strings.Fields(text)) + 1 {
		next := c.filter.TokenizeFilter(c.normalizer.Normalize(text))
		if next == text {
			break
		}
		text = next
	}
	return text
}
