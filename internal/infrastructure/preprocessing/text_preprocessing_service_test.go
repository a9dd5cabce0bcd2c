package preprocessing

import (
	"context"
	"strings"
	"testing"

	"rating-predictor/pkg/logger"
	"rating-predictor/pkg/status"
)

func TestFactoryRegistersDefaultChain(t *testing.T) {
	svc, err := NewFactory(logger.Discard()).CreateTextPreprocessingService(nil)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	got := svc.ListPreprocessors()
	want := []string{PreprocessorNormalize, PreprocessorTokenize}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListPreprocessors() = %v, want %v", got, want)
	}
}

func TestPreprocessDescription(t *testing.T) {
	svc, err := NewFactory(logger.Discard()).CreateTextPreprocessingService(nil)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "scenario terms", input: "aloe vera glicerina", expected: "aloe-vera glicerina"},
		{name: "stopwords and accents", input: "Champú para el pelo graso con Vitamina C", expected: "champu pelo graso vitamina-c"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, code, err := svc.PreprocessDescription(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if code != status.CodeOK {
				t.Errorf("code = %v, want OK", code)
			}
			if result.Cleaned != tt.expected {
				t.Errorf("Cleaned = %q, want %q", result.Cleaned, tt.expected)
			}
			if result.Original != tt.input {
				t.Errorf("Original = %q, want %q", result.Original, tt.input)
			}
		})
	}
}

func TestFactoryUsesConfiguredCompounds(t *testing.T) {
	config := DefaultConfig()
	config.CompoundTerms = []string{"te verde"}

	svc, err := NewFactory(logger.Discard()).CreateTextPreprocessingService(config)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	result, _, err := svc.PreprocessDescription(context.Background(), "Té verde con aloe vera")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cleaned != "te-verde aloe vera" {
		t.Errorf("Cleaned = %q, want %q", result.Cleaned, "te-verde aloe vera")
	}

	if _, err := NewFactory(logger.Discard()).CreateTextPreprocessingService(&Config{CompoundTerms: []string{"aloe"}}); err == nil {
		t.Error("invalid compound list must be rejected")
	}
}

func TestPreprocessDescriptionCancelled(t *testing.T) {
	svc := NewDefaultTextPreprocessingService(nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, code, err := svc.PreprocessDescription(ctx, "aloe vera")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if code != status.ErrCodeUnavailable {
		t.Errorf("code = %v, want %v", code, status.ErrCodeUnavailable)
	}
}

func TestRegisterAndUnregisterPreprocessor(t *testing.T) {
	svc := NewDefaultTextPreprocessingService(nil, logger.Discard())

	upper := func(text string, _ map[string]interface{}) string { return strings.ToUpper(text) }

	if err := svc.RegisterPreprocessor("", upper); err == nil {
		t.Error("empty name must be rejected")
	}
	if err := svc.RegisterPreprocessor("upper", nil); err == nil {
		t.Error("nil processor must be rejected")
	}
	if err := svc.RegisterPreprocessor("upper", upper); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RegisterPreprocessor("upper", upper); err == nil {
		t.Error("duplicate name must be rejected")
	}

	result, _, _ := svc.PreprocessDescription(context.Background(), "abc")
	if result.Cleaned != "ABC" {
		t.Errorf("Cleaned = %q, want ABC", result.Cleaned)
	}

	if err := svc.UnregisterPreprocessor("upper"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if err := svc.UnregisterPreprocessor("upper"); err == nil {
		t.Error("unregistering twice must fail")
	}

	result, _, _ = svc.PreprocessDescription(context.Background(), "abc")
	if result.Cleaned != "abc" {
		t.Errorf("Cleaned = %q after unregister, want abc", result.Cleaned)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "defaults", config: *DefaultConfig()},
		{name: "empty compounds use defaults", config: Config{}},
		{name: "valid custom compounds", config: Config{CompoundTerms: []string{"aloe vera", "te verde"}}},
		{name: "invalid compound", config: Config{CompoundTerms: []string{"aloe"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
