package demo

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// bind maps positional args onto named params and decodes them into out.
// Decoding is weak so values coming from the CLI or MCP ("1" for an id) are accepted.
func bind(params []string, args []any, out any) error {
	if len(args) > len(params) {
		return fmt.Errorf("too many arguments: got %d, want %d", len(args), len(params))
	}
	if len(args) < len(params) {
		return fmt.Errorf("missing argument %q: got %d, want %d", params[len(args)], len(args), len(params))
	}
	named := make(map[string]any, len(args))
	for i, arg := range args {
		named[params[i]] = arg
	}
	if err := mapstructure.WeakDecode(named, out); err != nil {
		return fmt.Errorf("bind arguments: %w", err)
	}
	return nil
}
