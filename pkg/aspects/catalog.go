package aspects

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// Deps carries what aspect factories may need.
type Deps struct {
	Logger        *slog.Logger
	SlowThreshold time.Duration
	// Tag is the label LogExecution reads its description from.
	Tag string
}

// Factory builds the advice of a named aspect.
type Factory func(Deps) []domain.Advice

// Catalog maps aspect names, as used in configuration, to factories.
type Catalog map[string]Factory

// Names of the built-in aspects.
const (
	NameLogging      = "logging"
	NameLogExecution = "log-execution"
	NamePerformance  = "performance"
)

// DefaultCatalog returns the built-in aspects.
func DefaultCatalog() Catalog {
	return Catalog{
		NameLogging: func(d Deps) []domain.Advice {
			return Logging(d.Logger)
		},
		NameLogExecution: func(d Deps) []domain.Advice {
			tag := d.Tag
			if tag == "" {
				tag = "logged"
			}
			return []domain.Advice{LogExecution(d.Logger, tag)}
		},
		NamePerformance: func(d Deps) []domain.Advice {
			return []domain.Advice{Performance(d.Logger, d.SlowThreshold)}
		},
	}
}

// Build returns the advice of the named aspect.
func (c Catalog) Build(name string, deps Deps) ([]domain.Advice, error) {
	f, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", domain.ErrUnknownAspect, name, c.Names())
	}
	return f(deps), nil
}

// Names lists the catalog entries in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
