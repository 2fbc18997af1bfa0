// Package methods implements the differential abundance stage: feature
// prefiltering, the method registry, and the three reference analysis
// routines (DESeq2-, ANCOM- and ALDEx2-style).
package methods

import (
	"sort"

	"gobiome/internal/errors"
	"gobiome/ports"
)

// Registry maps configured method names to analysis routines. It fails
// closed: resolving a name outside the registered set is a fatal error.
// Adding a method is one Register call, not a new dispatch branch.
type Registry struct {
	routines map[string]ports.AnalysisRoutine
}

// NewRegistry creates a registry with the three reference routines installed
func NewRegistry(rngPort ports.RNGPort, workers int) *Registry {
	r := &Registry{routines: make(map[string]ports.AnalysisRoutine)}
	r.Register(NewDESeq2(workers))
	r.Register(NewANCOM(workers))
	r.Register(NewALDEx2(rngPort, workers))
	return r
}

// Register installs a routine under its own name
func (r *Registry) Register(routine ports.AnalysisRoutine) {
	r.routines[routine.Name()] = routine
}

// Resolve returns the routine for a configured method name
func (r *Registry) Resolve(name string) (ports.AnalysisRoutine, error) {
	routine, ok := r.routines[name]
	if !ok {
		return nil, errors.UnknownMethod(name)
	}
	return routine, nil
}

// Methods returns the registered method names in sorted order
func (r *Registry) Methods() []string {
	names := make([]string, 0, len(r.routines))
	for name := range r.routines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
