package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
)

// RulesMarkdown renders rules as a markdown table.
func RulesMarkdown(rules []domain.RuleSummary) string {
	var sb strings.Builder
	sb.WriteString("# Rules\n\n")
	if len(rules) == 0 {
		sb.WriteString("_No rules registered._\n")
		return sb.String()
	}
	sb.WriteString("| # | Kind | Pointcut | Advice |\n")
	sb.WriteString("|---|------|----------|--------|\n")
	for _, r := range rules {
		fmt.Fprintf(&sb, "| %d | %s | `%s` | %s |\n", r.ID, r.Kind, escape(r.Pointcut), strings.Join(r.Advice, ", "))
	}
	return sb.String()
}

// ChainMarkdown renders the advice chain of a target grouped by phase.
func ChainMarkdown(target domain.Target, steps []chain.Step) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", target.Name)
	if len(target.Tags) > 0 {
		sb.WriteString("Tags:")
		for _, label := range sortedKeys(target.Tags) {
			fmt.Fprintf(&sb, " `%s`", label)
		}
		sb.WriteString("\n\n")
	}
	if len(steps) == 0 {
		sb.WriteString("_No advice applies; calls reach the body directly._\n")
		return sb.String()
	}

	var current domain.Phase
	for _, s := range steps {
		if s.Phase != current {
			current = s.Phase
			fmt.Fprintf(&sb, "\n## %s\n\n", current)
		}
		fmt.Fprintf(&sb, "1. **%s** from rule %d `%s`\n", s.Advice, s.RuleID, escape(s.Rule))
	}
	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
