package preprocessing

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern    = regexp.MustCompile(`https?://\S+|www\.\S+`)
	symbolPattern = regexp.MustCompile(`[^\w\s\v-]`)
)

// TextNormalizer 确定性的文本清洗器
type TextNormalizer struct {
	compounds *CompoundRegistry
}

// NewTextNormalizer 创建文本清洗器，registry 为 nil 时使用默认复合词表
func NewTextNormalizer(registry *CompoundRegistry) *TextNormalizer {
	if registry == nil {
		registry = DefaultCompoundRegistry()
	}
	return &TextNormalizer{compounds: registry}
}

// Normalize 清洗文本：
//  1. 复合词短语合并为连字符形式
//  2. 去除 URL
//  3. NFD 分解后丢弃所有非 ASCII 字符（去重音）
//  4. 去除单词字符、空白和连字符以外的字符
//  5. 在无重音文本上再次合并复合词，保证输出是不动点
//  6. 转小写并去除首尾空白
func (n *TextNormalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = n.compounds.Fuse(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = foldToASCII(text)
	text = symbolPattern.ReplaceAllString(text, "")
	text = n.compounds.Fuse(text)

	return strings.TrimSpace(strings.ToLower(text))
}

// NormalizeValue 对任意值做清洗，非字符串输入返回空串
func (n *TextNormalizer) NormalizeValue(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return n.Normalize(s)
}

// foldToASCII NFD 分解后移除所有非 ASCII 码点（组合重音符号随之去除）
func foldToASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return out
}
