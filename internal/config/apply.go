package config

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/weft/pkg/aspects"
	"github.com/aretw0/weft/pkg/domain"
)

// RuleRegistrar accepts pointcut expressions with their advice.
// Both *weft.Engine and *registry.Registry satisfy it.
type RuleRegistrar interface {
	RegisterRule(expr string, advice ...domain.Advice) (domain.Rule, error)
}

// Apply registers every configured rule, resolving aspect names through catalog.
// Rules are registered in file order, which is also their advice order.
func (c Config) Apply(reg RuleRegistrar, catalog aspects.Catalog, logger *slog.Logger) error {
	deps := aspects.Deps{
		Logger:        logger,
		SlowThreshold: c.Aspects.SlowThreshold,
		Tag:           c.Aspects.Tag,
	}
	for i, spec := range c.Rules {
		advice, err := catalog.Build(spec.Aspect, deps)
		if err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}
		if _, err := reg.RegisterRule(spec.Pointcut, advice...); err != nil {
			return fmt.Errorf("rules[%d] %s: %w", i, spec.Pointcut, err)
		}
	}
	return nil
}
