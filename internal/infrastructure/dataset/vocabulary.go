package dataset

import (
	"fmt"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/infrastructure/preprocessing"
)

// VocabularyMatcher 用 Aho-Corasick 自动机在清洗后的描述中统计表单词条
type VocabularyMatcher struct {
	machine *goahocorasick.Machine
	terms   []string
}

// NewVocabularyMatcher 将词条清洗为连字符形式后建立自动机，registry 为 nil 时使用默认复合词表
func NewVocabularyMatcher(vocabulary []string, registry *preprocessing.CompoundRegistry) (*VocabularyMatcher, error) {
	n := preprocessing.NewTextNormalizer(registry)

	terms := lo.Uniq(lo.Compact(lo.Map(vocabulary, func(v string, _ int) string {
		return n.Normalize(v)
	})))
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}

	patterns := lo.Map(terms, func(t string, _ int) []rune { return []rune(t) })
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build vocabulary automaton: %w", err)
	}
	return &VocabularyMatcher{machine: m, terms: terms}, nil
}

// Terms 清洗后的词条
func (v *VocabularyMatcher) Terms() []string {
	return append([]string(nil), v.terms...)
}

// Count 统计 text 中整词出现的词条次数，"menta" 不会匹配 "mentol"
func (v *VocabularyMatcher) Count(text string, counts map[string]int) {
	runes := []rune(text)
	if len(runes) == 0 {
		return
	}

	for _, hit := range v.machine.MultiPatternSearch(runes, false) {
		start, end := hit.Pos, hit.Pos+len(hit.Word)
		if start > 0 && !isBoundary(runes[start-1]) {
			continue
		}
		if end < len(runes) && !isBoundary(runes[end]) {
			continue
		}
		counts[string(hit.Word)]++
	}
}

func isBoundary(r rune) bool {
	return unicode.IsSpace(r)
}

// VocabularyHits 统计表单领域词和成分在数据集清洗后描述中的出现次数
func (d *Dataset) VocabularyHits(topN int) ([]models.TermCount, error) {
	matcher, err := NewVocabularyMatcher(append(append([]string(nil), preprocessing.DomainWords...), preprocessing.Ingredients...), d.registry)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range d.rows {
		matcher.Count(d.cleaner.Normalizer().Normalize(r.Description), counts)
	}
	return topTerms(counts, topN), nil
}
