package pointcut

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// Parse compiles a pointcut expression.
func Parse(expr string) (domain.Pointcut, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", domain.ErrInvalidPointcut)
	}

	if inner, ok := designator(expr, "@annotation"); ok {
		return NewTag(inner)
	}
	if strings.HasPrefix(expr, "@") {
		return NewTag(expr[1:])
	}
	if inner, ok := designator(expr, "within"); ok {
		return NewStructural(ScopeWithin, inner)
	}
	if inner, ok := designator(expr, "execution"); ok {
		pattern, err := executionPattern(inner)
		if err != nil {
			return nil, err
		}
		return NewStructural(ScopeExecution, pattern)
	}
	if strings.ContainsAny(expr, "() ") {
		return nil, fmt.Errorf("%w: unsupported expression %q", domain.ErrInvalidPointcut, expr)
	}
	return NewStructural(ScopeExecution, expr)
}

// MustParse is Parse for static expressions; it panics on error.
func MustParse(expr string) domain.Pointcut {
	pc, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return pc
}

// designator extracts "x" from "name(x)".
func designator(expr, name string) (string, bool) {
	if !strings.HasPrefix(expr, name+"(") || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	return strings.TrimSpace(expr[len(name)+1 : len(expr)-1]), true
}

// executionPattern reduces "* service..*(..)" to "service..*".
func executionPattern(inner string) (string, error) {
	if strings.HasSuffix(inner, ")") {
		open := strings.LastIndex(inner, "(")
		if open < 0 {
			return "", fmt.Errorf("%w: unbalanced parameter list in %q", domain.ErrInvalidPointcut, inner)
		}
		inner = inner[:open]
	}
	fields := strings.Fields(inner)
	if len(fields) > 0 {
		switch fields[0] {
		case "public", "protected", "private":
			fields = fields[1:]
		}
	}
	switch len(fields) {
	case 1:
		return fields[0], nil
	case 2:
		// return type, then the name pattern
		return fields[1], nil
	default:
		return "", fmt.Errorf("%w: cannot read execution(%s)", domain.ErrInvalidPointcut, inner)
	}
}
