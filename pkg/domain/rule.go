package domain

// RuleKind distinguishes name-based rules from tag-based rules.
type RuleKind string

const (
	RuleStructural RuleKind = "structural"
	RuleTag        RuleKind = "tag"
)

// Pointcut is the predicate half of a Rule.
// Implementations must be pure: the same Target always yields the same answer.
type Pointcut interface {
	Kind() RuleKind
	Matches(t Target) bool
	String() string
}

// Rule binds a Pointcut to the Advice it contributes.
// ID is assigned by the registry and reflects registration order.
type Rule struct {
	ID       int
	Pointcut Pointcut
	Advice   []Advice
}

// Matches reports whether the rule applies to the target.
func (r Rule) Matches(t Target) bool {
	return r.Pointcut != nil && r.Pointcut.Matches(t)
}

// RuleSummary is the printable form of a Rule.
type RuleSummary struct {
	ID       int      `json:"id" yaml:"id"`
	Kind     RuleKind `json:"kind" yaml:"kind"`
	Pointcut string   `json:"pointcut" yaml:"pointcut"`
	Advice   []string `json:"advice" yaml:"advice"`
}

// Summary describes the rule without its functions.
func (r Rule) Summary() RuleSummary {
	s := RuleSummary{ID: r.ID}
	if r.Pointcut != nil {
		s.Kind = r.Pointcut.Kind()
		s.Pointcut = r.Pointcut.String()
	}
	for _, a := range r.Advice {
		s.Advice = append(s.Advice, string(a.Phase)+":"+a.Name)
	}
	return s
}
