package preprocessing

import (
	"strings"
	"testing"
	"testing/quick"
)

func TestNormalize(t *testing.T) {
	n := NewTextNormalizer(nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "compound fused case-insensitively",
			input:    "Vitamina C es buena",
			expected: "vitamina-c es buena",
		},
		{
			name:     "accented compound fused after folding",
			input:    "Aceite de Argán puro",
			expected: "aceite-de-argan puro",
		},
		{
			name:     "compound split by punctuation",
			input:    "aloe, vera",
			expected: "aloe-vera",
		},
		{
			name:     "multi word compound with accent",
			input:    "Evita la caída del cabello",
			expected: "evita la caida-del-cabello",
		},
		{
			name:     "http url removed",
			input:    "Visita https://tienda.com/x ya!",
			expected: "visita  ya",
		},
		{
			name:     "www url removed",
			input:    "www.ejemplo.es champú",
			expected: "champu",
		},
		{
			name:     "punctuation and inverted marks removed",
			input:    "Jabón: ¡100% natural!",
			expected: "jabon 100 natural",
		},
		{
			name:     "underscore and hyphen kept",
			input:    "snake_case-word",
			expected: "snake_case-word",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  Sal Rosa  ",
			expected: "sal-rosa",
		},
		{
			name:     "partial word is not a compound",
			input:    "saloe vera",
			expected: "saloe vera",
		},
		{
			name:     "non ascii symbols dropped",
			input:    "precio 5€ ✓",
			expected: "precio 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeValueRejectsNonStrings(t *testing.T) {
	n := NewTextNormalizer(nil)

	for _, v := range []interface{}{nil, 42, 3.5, []string{"aloe vera"}, true} {
		if got := n.NormalizeValue(v); got != "" {
			t.Errorf("NormalizeValue(%v) = %q, want empty", v, got)
		}
	}

	if got := n.NormalizeValue("Aloe Vera"); got != "aloe-vera" {
		t.Errorf("NormalizeValue(string) = %q", got)
	}
}

func TestNormalizeIdempotentCorpus(t *testing.T) {
	n := NewTextNormalizer(nil)

	corpus := []string{
		"Ácido Salicílico y ACEITE DE COCO",
		"aloe. vera",
		"sal\trosa",
		"vitamina  c",
		"www.aloe vera.com manteca de karité",
		"¿Champú anticaída? ¡Sí! https://x.y/z",
		"crecimiento-capilar crecimiento capilar",
		"ÀÉÎÕÜ ñandú",
		"\x00\xffbad utf8 aloe vera",
		"a\vb",
	}

	for _, s := range corpus {
		once := n.Normalize(s)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", s, once, twice)
		}
	}
}

func TestNormalizeIdempotentProperty(t *testing.T) {
	n := NewTextNormalizer(nil)

	property := func(s string) bool {
		once := n.Normalize(s)
		return n.Normalize(once) == once
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestNormalizeKeepsCompoundAsSingleToken(t *testing.T) {
	n := NewTextNormalizer(nil)
	f := NewStopwordFilter(nil, nil)

	cleaned := f.TokenizeFilter(n.Normalize("vitamina c es buena"))
	tokens := strings.Fields(cleaned)

	found := false
	for _, tok := range tokens {
		if tok == "vitamina" || tok == "c" {
			t.Fatalf("compound split into separate tokens: %q", cleaned)
		}
		if tok == "vitamina-c" {
			found = true
		}
	}
	if !found {
		t.Errorf("vitamina-c missing from %q", cleaned)
	}
}
