// Package chain resolves the advice that applies to a target and groups it by phase.
package chain

import (
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/pointcut"
)

// Link is one advice in a chain, remembering the rule that contributed it.
type Link struct {
	RuleID int
	Rule   string
	Advice domain.Advice
}

// Chain is the resolved advice for one target, partitioned by phase.
// Within a phase, links keep registration order: rule order first, then the
// order advice was listed in the rule.
type Chain struct {
	Target       domain.Target
	Before       []Link
	Around       []Link
	AfterSuccess []Link
	AfterFailure []Link
	AfterAlways  []Link
}

// Build matches the rules against the target and partitions the resulting advice.
func Build(t domain.Target, rules []domain.Rule) Chain {
	c := Chain{Target: t}
	for _, rule := range pointcut.Match(rules, t) {
		for _, a := range rule.Advice {
			link := Link{RuleID: rule.ID, Rule: rule.Pointcut.String(), Advice: a}
			switch a.Phase {
			case domain.PhaseBefore:
				c.Before = append(c.Before, link)
			case domain.PhaseAround:
				c.Around = append(c.Around, link)
			case domain.PhaseAfterSuccess:
				c.AfterSuccess = append(c.AfterSuccess, link)
			case domain.PhaseAfterFailure:
				c.AfterFailure = append(c.AfterFailure, link)
			case domain.PhaseAfterAlways:
				c.AfterAlways = append(c.AfterAlways, link)
			}
		}
	}
	return c
}

// Empty reports whether no advice applies, in which case the body is called directly.
func (c Chain) Empty() bool {
	return c.Len() == 0
}

// Len counts every link across phases.
func (c Chain) Len() int {
	return len(c.Before) + len(c.Around) + len(c.AfterSuccess) + len(c.AfterFailure) + len(c.AfterAlways)
}

// Phase returns the links of one phase.
func (c Chain) Phase(p domain.Phase) []Link {
	switch p {
	case domain.PhaseBefore:
		return c.Before
	case domain.PhaseAround:
		return c.Around
	case domain.PhaseAfterSuccess:
		return c.AfterSuccess
	case domain.PhaseAfterFailure:
		return c.AfterFailure
	case domain.PhaseAfterAlways:
		return c.AfterAlways
	default:
		return nil
	}
}

// Step is the printable form of a Link.
type Step struct {
	Phase  domain.Phase `json:"phase" yaml:"phase"`
	Advice string       `json:"advice" yaml:"advice"`
	RuleID int          `json:"rule_id" yaml:"rule_id"`
	Rule   string       `json:"rule" yaml:"rule"`
}

// Steps lists every link in phase order.
func (c Chain) Steps() []Step {
	steps := make([]Step, 0, c.Len())
	for _, p := range domain.Phases {
		for _, l := range c.Phase(p) {
			steps = append(steps, Step{Phase: p, Advice: l.Advice.Name, RuleID: l.RuleID, Rule: l.Rule})
		}
	}
	return steps
}
