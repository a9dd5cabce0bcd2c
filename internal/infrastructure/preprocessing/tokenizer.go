package preprocessing

import "strings"

// StopwordFilter 空白分词并过滤西班牙语停用词，已注册的复合词永远保留
type StopwordFilter struct {
	stopwords map[string]struct{}
	compounds *CompoundRegistry
}

// NewStopwordFilter 创建停用词过滤器。
// registry 为 nil 时使用默认复合词表，stopwords 为 nil 时使用内置西班牙语停用词表。
func NewStopwordFilter(registry *CompoundRegistry, stopwords []string) *StopwordFilter {
	if registry == nil {
		registry = DefaultCompoundRegistry()
	}
	if stopwords == nil {
		stopwords = SpanishStopwords
	}

	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[w] = struct{}{}
	}

	return &StopwordFilter{
		stopwords: set,
		compounds: registry,
	}
}

// TokenizeFilter 按空白切分，去掉停用词（复合词除外），再用单个空格拼接
func (f *StopwordFilter) TokenizeFilter(text string) string {
	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if f.IsStopword(tok) && !f.compounds.IsCompound(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// IsStopword 判断 token 是否在停用词表中
func (f *StopwordFilter) IsStopword(token string) bool {
	_, ok := f.stopwords[token]
	return ok
}
