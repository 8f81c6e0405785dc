package pricing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
)

type stubRuleSource struct {
	rule *models.TierMarkupRule
	err  error
}

func (s *stubRuleSource) ActiveRule(ctx context.Context) (*models.TierMarkupRule, error) {
	return s.rule, s.err
}

type stubFallbackCounter struct {
	fallbacks int
}

func (s *stubFallbackCounter) IncRuleFallback() {
	s.fallbacks++
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: buf})
}

func TestLoaderReturnsActiveRule(t *testing.T) {
	row := models.TierMarkupRule{
		BronzeThreshold: dec(t, "200"),
		BronzePercent:   dec(t, "10"),
		BronzeFlat:      dec(t, "20"),
		GoldThreshold:   dec(t, "200"),
		GoldPercent:     dec(t, "8"),
		GoldFlat:        dec(t, "15"),
	}
	var buf bytes.Buffer
	metrics := &stubFallbackCounter{}
	loader, err := NewLoader(&stubRuleSource{rule: &row}, testLogger(&buf), metrics)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	rule, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.IsDefault {
		t.Fatalf("expected the active rule, not the default")
	}
	gold, ok := rule.Params("gold")
	if !ok {
		t.Fatalf("missing gold params")
	}
	if !gold.Percent.Equal(dec(t, "8")) {
		t.Fatalf("expected gold percent 8, got %s", gold.Percent)
	}
	if metrics.fallbacks != 0 {
		t.Fatalf("fallback counter must not move on active rule")
	}
}

func TestLoaderFallsBackToDefaultRule(t *testing.T) {
	var buf bytes.Buffer
	metrics := &stubFallbackCounter{}
	loader, err := NewLoader(&stubRuleSource{}, testLogger(&buf), metrics)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	rule, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rule.IsDefault {
		t.Fatalf("expected the default rule")
	}
	if metrics.fallbacks != 1 {
		t.Fatalf("expected 1 fallback, got %d", metrics.fallbacks)
	}
	if !strings.Contains(buf.String(), "falling back to default rule") {
		t.Fatalf("expected fallback warning, got %q", buf.String())
	}
}

func TestLoaderPropagatesSourceError(t *testing.T) {
	var buf bytes.Buffer
	wantErr := errors.New("db down")
	loader, err := NewLoader(&stubRuleSource{err: wantErr}, testLogger(&buf), nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	if _, err := loader.Load(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestNewLoaderValidatesDependencies(t *testing.T) {
	if _, err := NewLoader(nil, testLogger(&bytes.Buffer{}), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := NewLoader(&stubRuleSource{}, nil, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}
