package methods

import (
	"testing"

	"gobiome/adapters/rng"
	"gobiome/internal/errors"
)

func TestRegistryResolvesKnownMethods(t *testing.T) {
	registry := NewRegistry(rng.New(), 2)

	for _, name := range []string{"deseq2", "ancom", "aldex2"} {
		routine, err := registry.Resolve(name)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", name, err)
			continue
		}
		if routine.Name() != name {
			t.Errorf("Resolve(%q) returned routine named %q", name, routine.Name())
		}
	}
}

func TestRegistryFailsClosed(t *testing.T) {
	registry := NewRegistry(rng.New(), 2)

	for _, name := range []string{"limma", "DESEQ2", "", "wilcoxon"} {
		_, err := registry.Resolve(name)
		if err == nil {
			t.Errorf("Resolve(%q) should fail", name)
			continue
		}
		if !errors.HasCode(err, errors.CodeUnknownMethod) {
			t.Errorf("Resolve(%q) error code = %s, want %s", name, errors.GetCode(err), errors.CodeUnknownMethod)
		}
	}
}

func TestRegistryMethodsSorted(t *testing.T) {
	registry := NewRegistry(rng.New(), 2)
	got := registry.Methods()
	want := []string{"aldex2", "ancom", "deseq2"}
	if len(got) != len(want) {
		t.Fatalf("Methods() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Methods()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
