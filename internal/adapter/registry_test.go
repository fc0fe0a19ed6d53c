package adapter_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/adapter/stub"
)

func TestRegistry_ListPreservesInsertionOrder(t *testing.T) {
	reg := adapter.NewRegistry()
	for _, name := range []string{"Text Classification", "Image Classification", "Echo"} {
		if err := reg.Register(stub.Echo(name)); err != nil {
			t.Fatalf("Register(%q) failed: %v", name, err)
		}
	}

	want := []string{"Text Classification", "Image Classification", "Echo"}
	if got := reg.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}
}

func TestRegistry_ListReturnsCopy(t *testing.T) {
	reg := adapter.NewRegistry()
	_ = reg.Register(stub.Echo("A"))

	names := reg.List()
	names[0] = "mutated"

	if reg.List()[0] != "A" {
		t.Error("List() exposed internal slice")
	}
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	reg := adapter.NewRegistry()
	if err := reg.Register(stub.Echo("Echo")); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(stub.Echo("Echo")); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if err := reg.Register(stub.Echo("")); err == nil {
		t.Error("expected empty name to fail")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := adapter.NewRegistry()
	_, err := reg.Get("missing")

	var nf *adapter.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get(missing) error = %v, want *NotFoundError", err)
	}
	if nf.Name != "missing" {
		t.Errorf("NotFoundError.Name = %q, want missing", nf.Name)
	}
}

func TestRegistry_Descriptors(t *testing.T) {
	reg := adapter.NewRegistry()
	_ = reg.Register(stub.Echo("One"))
	_ = reg.Register(stub.Echo("Two"))

	descs := reg.Descriptors()
	if len(descs) != 2 || descs[0].Name != "One" || descs[1].Name != "Two" {
		t.Errorf("Descriptors() = %+v", descs)
	}
}

func TestNewRegistryFromFactories_Filter(t *testing.T) {
	defer adapter.ResetFactories()()

	adapter.RegisterFactory(1000, func(adapter.Options) adapter.Adapter { return stub.Echo("factory-late") })
	adapter.RegisterFactory(999, func(adapter.Options) adapter.Adapter { return stub.Echo("factory-early") })

	reg, err := adapter.NewRegistryFromFactories(adapter.Options{}, nil)
	if err != nil {
		t.Fatalf("NewRegistryFromFactories failed: %v", err)
	}
	names := reg.List()
	var early, late = -1, -1
	for i, n := range names {
		switch n {
		case "factory-early":
			early = i
		case "factory-late":
			late = i
		}
	}
	if early < 0 || late < 0 || early > late {
		t.Errorf("factory order wrong: %v", names)
	}

	filtered, err := adapter.NewRegistryFromFactories(adapter.Options{}, map[string]bool{"factory-late": false})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := filtered.Get("factory-late"); err == nil {
		t.Error("disabled adapter should not be registered")
	}
	if _, err := filtered.Get("factory-early"); err != nil {
		t.Errorf("enabled adapter missing: %v", err)
	}
}
