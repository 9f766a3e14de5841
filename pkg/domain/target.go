package domain

import (
	"context"
	"maps"
	"slices"
	"strings"
)

// Func is the body of a Target.
// It receives the raw argument list exactly as the caller passed it to the dispatcher.
type Func func(ctx context.Context, args []any) (any, error)

// Tags are the declared metadata labels of a Target.
// The value is an optional free-text description (e.g. logged: "create order").
type Tags map[string]string

// Target identifies a unit of business logic.
// Name is a dot-separated qualified name whose last segment is the method,
// e.g. "service.OrderService.CreateOrder".
type Target struct {
	Name   string   `json:"name" yaml:"name" mapstructure:"name"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	Tags   Tags     `json:"tags,omitempty" yaml:"tags,omitempty" mapstructure:"tags"`
}

// Owner returns the qualified name without the method segment.
func (t Target) Owner() string {
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[:i]
	}
	return ""
}

// Method returns the last segment of the qualified name.
func (t Target) Method() string {
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

// ShortString renders the target as "Type.Method(..)".
func (t Target) ShortString() string {
	owner := t.Owner()
	if i := strings.LastIndex(owner, "."); i >= 0 {
		owner = owner[i+1:]
	}
	if owner == "" {
		return t.Method() + "(..)"
	}
	return owner + "." + t.Method() + "(..)"
}

// HasTag reports whether the target declares the given label.
func (t Target) HasTag(label string) bool {
	_, ok := t.Tags[label]
	return ok
}

// Tag returns the free-text value of a declared label.
func (t Target) Tag(label string) (string, bool) {
	v, ok := t.Tags[label]
	return v, ok
}

// Clone returns a deep copy so the registry can hand out values nobody else can mutate.
func (t Target) Clone() Target {
	return Target{
		Name:   t.Name,
		Params: slices.Clone(t.Params),
		Tags:   maps.Clone(t.Tags),
	}
}
