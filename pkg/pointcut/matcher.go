package pointcut

import "github.com/aretw0/weft/pkg/domain"

// Match returns the rules applying to the target, in the order they were given.
// It has no side effects, so its result may be cached for as long as rules and target are unchanged.
func Match(rules []domain.Rule, t domain.Target) []domain.Rule {
	var matched []domain.Rule
	for _, r := range rules {
		if r.Matches(t) {
			matched = append(matched, r)
		}
	}
	return matched
}
