package preprocessing

import (
	"context"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rating-predictor/pkg/logger"
)

func TestCleanReachesFixedPoint(t *testing.T) {
	c := NewCleaner(nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "symbol between compound words", input: "vitamina , c \ndel", expected: "vitamina-c"},
		{name: "stopword between compound words", input: "acido del salicilico puro", expected: "acido-salicilico puro"},
		{name: "plain description", input: "aloe vera glicerina", expected: "aloe-vera glicerina"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := c.Clean(tt.input)
			assert.Equal(t, tt.expected, once)
			assert.Equal(t, once, c.filter.TokenizeFilter(c.normalizer.Normalize(once)))
		})
	}
}

func TestCleanIdempotentProperty(t *testing.T) {
	c := NewCleaner(nil)
	words := []string{"acido", "salicilico", "del", "de", "vitamina", "c", ",", ".", "\n", "aloe", "vera", "y", "sal", "rosa", "caida", "cabello", "la", "Ácido", "¡"}

	// 随机字符串很少拼出复合词，额外用领域词随机组合
	phrase := func(picks []uint8, sep uint8) bool {
		text := ""
		for _, p := range picks {
			text += words[int(p)%len(words)]
			if sep%2 == 0 {
				text += " "
			} else {
				text += "  "
			}
			sep /= 2
		}
		once := c.Clean(text)
		return c.filter.TokenizeFilter(c.normalizer.Normalize(once)) == once
	}
	if err := quick.Check(phrase, &quick.Config{MaxCount: 5000}); err != nil {
		t.Error(err)
	}

	random := func(s string) bool {
		once := c.Clean(s)
		return c.Clean(once) == once
	}
	if err := quick.Check(random, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestPreprocessChainIsIdempotent(t *testing.T) {
	svc, err := NewFactory(logger.Discard()).CreateTextPreprocessingService(nil)
	require.NoError(t, err)

	for _, in := range []string{"vitamina , c \ndel", "Ácido del Salicílico y aceite de coco", "sal, de rosa"} {
		first, _, err := svc.PreprocessDescription(context.Background(), in)
		require.NoError(t, err)
		second, _, err := svc.PreprocessDescription(context.Background(), first.Cleaned)
		require.NoError(t, err)
		assert.Equal(t, first.Cleaned, second.Cleaned, "input %q", in)
	}
}

func TestFuseUsesUnicodeWordBoundaries(t *testing.T) {
	r := DefaultCompoundRegistry()

	assert.Equal(t, "éaloe vera", r.Fuse("éaloe vera"))
	assert.Equal(t, "aloe veraña", r.Fuse("aloe veraña"))
	assert.Equal(t, "(aloe-vera)", r.Fuse("(aloe vera)"))
	assert.Equal(t, "aloe-vera aloe-vera", r.Fuse("aloe vera aloe\t\tvera"))
	assert.Equal(t, "ealoe vera", NewTextNormalizer(nil).Normalize("éaloe vera"))
}
