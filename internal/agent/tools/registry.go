package tools

import (
	"fmt"
	"time"

	"github.com/nkapoor/docuchat/internal/metrics"
)

// Spec is one named capability the reasoning loop can dispatch to. Run takes
// the raw tool input and always returns a human-readable string - tools
// absorb their own faults and never raise to the caller.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Run         func(input string) string `json:"-"`
}

// Registry is the closed, statically known set of tools, resolved by name.
// Order is preserved for presentation to the model.
type Registry struct {
	specs  []Spec
	byName map[string]Spec
}

func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{byName: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if _, dup := r.byName[s.Name]; dup {
			continue
		}
		r.specs = append(r.specs, s)
		r.byName[s.Name] = s
	}
	return r
}

// DefaultRegistry ships the three built-in tools.
func DefaultRegistry() *Registry {
	return NewRegistry(CalculatorSpec(), TextAnalyzerSpec(), DateTimeSpec())
}

func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Execute dispatches input to the named tool. The second return is false when
// no such tool is registered. A panicking tool is reported as an error
// string, keeping the no-raise contract even for programmer mistakes.
func (r *Registry) Execute(name, input string) (observation string, ok bool) {
	spec, ok := r.byName[name]
	if !ok {
		return "", false
	}

	start := time.Now()
	defer func() {
		metrics.CaptureExecutionMetrics("tool_"+name, time.Since(start))
		if rec := recover(); rec != nil {
			observation = fmt.Sprintf("Error executing %s: %v", name, rec)
			ok = true
		}
	}()
	return spec.Run(input), true
}
