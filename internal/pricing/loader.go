package pricing

import (
	"context"
	"errors"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
)

// RuleSource supplies the active rule row.
type RuleSource interface {
	ActiveRule(ctx context.Context) (*models.TierMarkupRule, error)
}

// fallbackCounter is the slice of metrics the loader needs.
type fallbackCounter interface {
	IncRuleFallback()
}

// Loader resolves the rule set once per request so every pricing call in the
// request observes the same configuration.
type Loader struct {
	source  RuleSource
	logg    *logger.Logger
	metrics fallbackCounter
}

// NewLoader validates dependencies and builds the loader.
func NewLoader(source RuleSource, logg *logger.Logger, metrics fallbackCounter) (*Loader, error) {
	if source == nil {
		return nil, errors.New("rule source is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Loader{source: source, logg: logg, metrics: metrics}, nil
}

// Load returns the active rule set, falling back to the documented default
// when no active row exists. Pricing never runs at $0.
func (l *Loader) Load(ctx context.Context) (RuleSet, error) {
	row, err := l.source.ActiveRule(ctx)
	if err != nil {
		return RuleSet{}, err
	}
	if row == nil {
		l.logg.Warn(ctx, "no active pricing rule, falling back to default rule")
		if l.metrics != nil {
			l.metrics.IncRuleFallback()
		}
		return DefaultRule(), nil
	}
	return FromModel(*row), nil
}
