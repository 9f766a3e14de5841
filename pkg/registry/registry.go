package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/pointcut"
)

// Binding pairs a registered Target with its body.
type Binding struct {
	Target domain.Target
	Body   domain.Func
}

// Registry holds the targets and rules known to the engine.
// It is meant to be filled once during setup; reads take a consistent snapshot
// so late registrations never tear an in-flight chain resolution.
type Registry struct {
	mu         sync.RWMutex
	targets    map[string]Binding
	order      []string
	rules      []domain.Rule
	nextID     int
	generation uint64
	sealed     bool
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]Binding),
		nextID:  1,
	}
}

// RegisterTarget adds a target and its body.
// The target is copied, so later changes made by the caller are not observed.
func (r *Registry) RegisterTarget(t domain.Target, body domain.Func) error {
	if t.Name == "" {
		return fmt.Errorf("register target: empty name")
	}
	if body == nil {
		return fmt.Errorf("register target %s: nil body", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("register target %s: %w", t.Name, domain.ErrRegistrySealed)
	}
	if _, exists := r.targets[t.Name]; exists {
		return fmt.Errorf("register target %s: %w", t.Name, domain.ErrDuplicateTarget)
	}
	r.targets[t.Name] = Binding{Target: t.Clone(), Body: body}
	r.order = append(r.order, t.Name)
	r.generation++
	return nil
}

// RegisterRule parses a pointcut expression and appends a rule carrying the advice.
func (r *Registry) RegisterRule(expr string, advice ...domain.Advice) (domain.Rule, error) {
	pc, err := pointcut.Parse(expr)
	if err != nil {
		return domain.Rule{}, err
	}
	return r.AddRule(pc, advice...)
}

// AddRule appends a rule built from an already compiled pointcut.
func (r *Registry) AddRule(pc domain.Pointcut, advice ...domain.Advice) (domain.Rule, error) {
	if pc == nil {
		return domain.Rule{}, fmt.Errorf("add rule: %w: nil pointcut", domain.ErrInvalidPointcut)
	}
	for _, a := range advice {
		if !a.Valid() {
			return domain.Rule{}, fmt.Errorf("add rule %s: %w: %q (phase %q)", pc, domain.ErrInvalidAdvice, a.Name, a.Phase)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return domain.Rule{}, fmt.Errorf("add rule %s: %w", pc, domain.ErrRegistrySealed)
	}
	rule := domain.Rule{
		ID:       r.nextID,
		Pointcut: pc,
		Advice:   append([]domain.Advice(nil), advice...),
	}
	r.nextID++
	r.rules = append(r.rules, rule)
	r.generation++
	return rule, nil
}

// Seal ends the registration phase. Further registrations fail with ErrRegistrySealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the binding for a target name.
func (r *Registry) Lookup(name string) (Binding, bool) {
	r.mu.RLock()
	b, ok := r.targets[name]
	r.mu.RUnlock()
	return b, ok
}

// Rules returns a snapshot of the rules in registration order, together with
// the generation it was taken at.
func (r *Registry) Rules() ([]domain.Rule, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Rule(nil), r.rules...), r.generation
}

// Generation changes every time a target or rule is registered.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Targets lists registered targets in registration order.
func (r *Registry) Targets() []domain.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Target, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.targets[name].Target.Clone())
	}
	return out
}
