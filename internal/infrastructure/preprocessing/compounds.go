package preprocessing

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCompoundTerms 默认的多词领域复合词
var DefaultCompoundTerms = []string{
	"acido salicilico",
	"acido hialuronico",
	"vitamina c",
	"aloe vera",
	"manteca de karite",
	"aceite de almendras",
	"aceite de argan",
	"aceite de coco",
	"aceite de ricino",
	"aceite de jojoba",
	"aceite de romero",
	"crecimiento capilar",
	"caida del cabello",
	"sal rosa",
}

var compoundPhrasePattern = regexp.MustCompile(`^[a-z0-9]+( [a-z0-9]+)+$`)

// compoundTerm 单个复合词的短语形式、连字符形式和匹配模式
type compoundTerm struct {
	phrase  string
	fused   string
	pattern *regexp.Regexp
}

// CompoundRegistry 复合词注册表。
// 归一化阶段用它把短语合并为连字符形式，停用词过滤阶段用它豁免连字符形式，两者共用同一份数据。
type CompoundRegistry struct {
	terms []compoundTerm
	fused map[string]struct{}
}

// NewCompoundRegistry 创建复合词注册表。
// 短语需为小写 ASCII、至少两个词；重复短语只保留一次。
func NewCompoundRegistry(phrases []string) (*CompoundRegistry, error) {
	r := &CompoundRegistry{
		terms: make([]compoundTerm, 0, len(phrases)),
		fused: make(map[string]struct{}, len(phrases)),
	}

	for _, p := range phrases {
		phrase := strings.Join(strings.Fields(strings.ToLower(p)), " ")
		if !compoundPhrasePattern.MatchString(phrase) {
			return nil, fmt.Errorf("invalid compound term %q", p)
		}

		fused := strings.ReplaceAll(phrase, " ", "-")
		if _, exists := r.fused[fused]; exists {
			continue
		}

		r.terms = append(r.terms, compoundTerm{
			phrase:  phrase,
			fused:   fused,
			pattern: phrasePattern(phrase),
		})
		r.fused[fused] = struct{}{}
	}

	return r, nil
}

// MustCompoundRegistry 与 NewCompoundRegistry 相同，出错时 panic
func MustCompoundRegistry(phrases []string) *CompoundRegistry {
	r, err := NewCompoundRegistry(phrases)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = MustCompoundRegistry(DefaultCompoundTerms)

// DefaultCompoundRegistry 返回默认复合词注册表（只读共享）
func DefaultCompoundRegistry() *CompoundRegistry {
	return defaultRegistry
}

// phrasePattern 短语各词之间允许任意长度空白，忽略大小写
func phrasePattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, `[\s\v]+`))
}

// Fuse 将文本中整词出现的复合词短语（忽略大小写）替换为连字符形式。
// 整词边界按 Unicode 判断，"éaloe vera" 不会被合并。
func (r *CompoundRegistry) Fuse(text string) string {
	for _, t := range r.terms {
		text = t.fuse(text)
	}
	return text
}

func (t compoundTerm) fuse(text string) string {
	matches := t.pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if !atWordBoundary(text, m[0], m[1]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(t.fused)
		last = m[1]
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// atWordBoundary 判断 text[start:end] 前后是否都不是单词字符
func atWordBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsCompound 判断 token 是否为已注册复合词的连字符形式
func (r *CompoundRegistry) IsCompound(token string) bool {
	_, ok := r.fused[token]
	return ok
}

// Phrases 返回短语形式，保持注册顺序
func (r *CompoundRegistry) Phrases() []string {
	out := make([]string, len(r.terms))
	for i, t := range r.terms {
		out[i] = t.phrase
	}
	return out
}

// FusedTerms 返回连字符形式，保持注册顺序
func (r *CompoundRegistry) FusedTerms() []string {
	out := make([]string, len(r.terms))
	for i, t := range r.terms {
		out[i] = t.fused
	}
	return out
}

// Len 注册的复合词数量
func (r *CompoundRegistry) Len() int {
	return len(r.terms)
}
