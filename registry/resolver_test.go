package registry

import (
	"testing"

	"github.com/DarkerMinecraft/Gravix/errors"
)

func overloaded(t *testing.T) *TypeDescriptor {
	t.Helper()
	r := NewRegistry()
	desc, err := r.Define("Counter", newCounter).
		Method("Add", (*counter).Weights).
		Method("Add", (*counter).Add).
		Method("Add", (*counter).AddWide).
		Method("Get", (*counter).Get).
		Method("Describe", (*counter).Describe).
		Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return desc
}

func TestResolve_FirstDeclared(t *testing.T) {
	desc := overloaded(t)
	res := Resolver{Policy: FirstDeclared}

	m, err := res.Resolve(desc, "Add", 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Index != 0 {
		t.Errorf("picked index %d, want 0", m.Index)
	}

	m, err = res.ResolveTyped(desc, "Add", []any{int32(1)})
	if err != nil || m.Index != 0 {
		t.Errorf("ResolveTyped = %v, %v", m, err)
	}

	if m, err := res.Resolve(desc, "Get", 0); err != nil || m.Name != "Get" {
		t.Errorf("Resolve(Get) = %v, %v", m, err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	desc := overloaded(t)

	for _, p := range []Policy{FirstDeclared, TypeDirected} {
		res := Resolver{Policy: p}
		if _, err := res.Resolve(desc, "Missing", 0); !errors.Is(err, errors.ErrMethodNotFound) {
			t.Errorf("%s: missing name = %v", p, err)
		}
		if _, err := res.Resolve(desc, "Get", 1); !errors.Is(err, errors.ErrMethodNotFound) {
			t.Errorf("%s: wrong arity = %v", p, err)
		}
		if _, err := res.ResolveTyped(desc, "Add", nil); !errors.Is(err, errors.ErrMethodNotFound) {
			t.Errorf("%s: typed wrong arity = %v", p, err)
		}
	}
}

func TestResolve_TypeDirected(t *testing.T) {
	desc := overloaded(t)
	res := Resolver{Policy: TypeDirected}

	// Two marshalable overloads remain once []float32 is dropped.
	_, err := res.Resolve(desc, "Add", 1)
	if !errors.Is(err, errors.ErrAmbiguousMatch) {
		t.Fatalf("Resolve(Add) = %v", err)
	}
	if be := errors.As(errors.PhaseResolve, err); be.Value == nil {
		t.Error("ambiguous match carries no candidates")
	}

	// int64 rejects nothing an int32 accepts, but int32 rejects 1<<40.
	m, err := res.ResolveTyped(desc, "Add", []any{int64(1) << 40})
	if err != nil || m.Index != 2 {
		t.Errorf("ResolveTyped(1<<40) = %v, %v", m, err)
	}
	if _, err := res.ResolveTyped(desc, "Add", []any{1}); !errors.Is(err, errors.ErrAmbiguousMatch) {
		t.Errorf("ResolveTyped(1) = %v", err)
	}
	if _, err := res.ResolveTyped(desc, "Add", []any{"x"}); !errors.Is(err, errors.ErrMethodNotFound) {
		t.Errorf("ResolveTyped(string) = %v", err)
	}

	m, err = res.Resolve(desc, "Describe", 1)
	if err != nil || m.Name != "Describe" {
		t.Errorf("Resolve(Describe) = %v, %v", m, err)
	}
}

func TestResolve_TypeDirectedUnsupported(t *testing.T) {
	r := NewRegistry()
	desc, _ := r.Define("Counter", newCounter).
		Method("Weights", (*counter).Weights).
		Commit()

	_, err := Resolver{Policy: TypeDirected}.Resolve(desc, "Weights", 1)
	if !errors.Is(err, errors.ErrUnsupportedParam) {
		t.Fatalf("err = %v", err)
	}

	// FirstDeclared resolves it; marshaling reports the failure later.
	if _, err := (Resolver{}).Resolve(desc, "Weights", 1); err != nil {
		t.Errorf("FirstDeclared: %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"", FirstDeclared, true},
		{"first-declared", FirstDeclared, true},
		{"Type-Directed", TypeDirected, true},
		{"type_directed", TypeDirected, true},
		{"random", 0, false},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
	if TypeDirected.String() != "type-directed" {
		t.Errorf("String() = %s", TypeDirected)
	}
}
