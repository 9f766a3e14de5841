package pointcut

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/weft/pkg/domain"
)

// Scope selects which part of the qualified name a structural pointcut looks at.
type Scope string

const (
	ScopeExecution Scope = "execution"
	ScopeWithin    Scope = "within"
)

// Structural matches targets by qualified-name pattern.
type Structural struct {
	Scope   Scope
	Pattern string
	glob    string
}

// NewStructural compiles a dotted pattern.
func NewStructural(scope Scope, pattern string) (*Structural, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", domain.ErrInvalidPointcut)
	}
	if strings.Contains(pattern, "...") {
		return nil, fmt.Errorf("%w: %q has a run of more than two dots", domain.ErrInvalidPointcut, pattern)
	}
	glob := toGlob(pattern)
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("%w: malformed pattern %q", domain.ErrInvalidPointcut, pattern)
	}
	return &Structural{Scope: scope, Pattern: pattern, glob: glob}, nil
}

func (s *Structural) Kind() domain.RuleKind { return domain.RuleStructural }

// Matches compares the pattern segment by segment with the target name
// (or its owner path for within()).
func (s *Structural) Matches(t domain.Target) bool {
	name := t.Name
	if s.Scope == ScopeWithin {
		name = t.Owner()
	}
	if name == "" {
		return false
	}
	ok, err := doublestar.Match(s.glob, toPath(name))
	return err == nil && ok
}

func (s *Structural) String() string {
	if s.Scope == ScopeWithin {
		return "within(" + s.Pattern + ")"
	}
	return "execution(* " + s.Pattern + "(..))"
}

// Tag matches targets declaring a label.
type Tag struct {
	Label string
}

// NewTag builds a tag pointcut.
func NewTag(label string) (*Tag, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.ContainsAny(label, " ()") {
		return nil, fmt.Errorf("%w: bad tag label %q", domain.ErrInvalidPointcut, label)
	}
	return &Tag{Label: label}, nil
}

func (t *Tag) Kind() domain.RuleKind { return domain.RuleTag }

func (t *Tag) Matches(target domain.Target) bool {
	return target.HasTag(t.Label)
}

func (t *Tag) String() string {
	return "@annotation(" + t.Label + ")"
}

// toGlob turns "a.b..*" into "a/b/**/*" so segment wildcards can be matched as path globs.
func toGlob(pattern string) string {
	parts := strings.Split(pattern, "..")
	for i, p := range parts {
		parts[i] = toPath(p)
	}
	glob := strings.Join(parts, "/**/")
	glob = strings.TrimPrefix(glob, "/")
	glob = strings.TrimSuffix(glob, "/")
	return glob
}

func toPath(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
