package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quarrygql/quarry/internal/language"
	"github.com/quarrygql/quarry/internal/response"
)

// mustSelectionSet parses a query and returns its top-level selection set.
func mustSelectionSet(t *testing.T, q string) language.SelectionSet {
	t.Helper()
	doc, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return doc.Operations[0].SelectionSet
}

func valueLeaf(v any) *Leaf {
	return NewLeaf(func(ctx context.Context) (any, error) { return v, nil })
}

func resolveMap(t *testing.T, o *Object, q string) (*Map, []response.Error) {
	t.Helper()
	v, errs := o.Resolve(context.Background(), mustSelectionSet(t, q))
	m, ok := v.(*Map)
	if !ok {
		t.Fatalf("object resolution produced %T, want *Map", v)
	}
	return m, errs
}

func TestObject_AliasBinding(t *testing.T) {
	root := NewObject(map[string]Node{"foo": valueLeaf(42)})

	m, errs := resolveMap(t, root, `{ bar: foo }`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if diff := cmp.Diff([]string{"bar"}, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if v, _ := m.Get("bar"); v != 42 {
		t.Fatalf("bar = %v, want 42", v)
	}
}

func TestObject_RequestOrder(t *testing.T) {
	root := NewObject(map[string]Node{
		"a": valueLeaf("A"),
		"b": valueLeaf("B"),
		"c": valueLeaf("C"),
	})

	m, errs := resolveMap(t, root, `{ c a second: a b }`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if diff := cmp.Diff([]string{"c", "a", "second", "b"}, m.Keys()); diff != "" {
		t.Fatalf("key order (-want +got):\n%s", diff)
	}
}

func TestObject_NestedResolution(t *testing.T) {
	root := NewObject(map[string]Node{
		"user": NewObject(map[string]Node{
			"name": valueLeaf("ada"),
			"id":   valueLeaf(7),
		}),
	})

	m, errs := resolveMap(t, root, `{ user { id name } }`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	user, _ := m.Get("user")
	um, ok := user.(*Map)
	if !ok {
		t.Fatalf("user is %T, want *Map", user)
	}
	if diff := cmp.Diff([]string{"id", "name"}, um.Keys()); diff != "" {
		t.Fatalf("nested keys (-want +got):\n%s", diff)
	}
}

func TestObject_UnknownField(t *testing.T) {
	root := NewObject(map[string]Node{"known": valueLeaf(1)})

	m, errs := resolveMap(t, root, "{\n  known\n  missing\n}")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0].Message != `cannot resolve field "missing"` {
		t.Fatalf("message: %q", errs[0].Message)
	}
	if errs[0].StatusCode != 400 {
		t.Fatalf("status: %d", errs[0].StatusCode)
	}
	want := []response.Location{{Line: 3, Column: 3}}
	if diff := cmp.Diff(want, errs[0].Locations); diff != "" {
		t.Fatalf("locations (-want +got):\n%s", diff)
	}
	// The unknown field contributes no binding; the sibling still resolves.
	if diff := cmp.Diff([]string{"known"}, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestObject_ArgumentsRejected(t *testing.T) {
	root := NewObject(map[string]Node{"f": valueLeaf(1)})

	m, errs := resolveMap(t, root, `{ f(x: 1) }`)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0].Message != `field "f" does not accept arguments` {
		t.Fatalf("message: %q", errs[0].Message)
	}
	if m.Len() != 0 {
		t.Fatalf("field with arguments must not bind, got keys %v", m.Keys())
	}
}

func TestObject_DuplicateAlias(t *testing.T) {
	root := NewObject(map[string]Node{
		"a": valueLeaf("first"),
		"b": valueLeaf("second"),
	})

	m, errs := resolveMap(t, root, `{ x: a x: b }`)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0].Message != `duplicate alias "x" in selection set` {
		t.Fatalf("message: %q", errs[0].Message)
	}
	if v, _ := m.Get("x"); v != "first" {
		t.Fatalf("first binding must win, got %v", v)
	}
}

func TestObject_HandlerFailure(t *testing.T) {
	root := NewObject(map[string]Node{
		"ok":   valueLeaf("fine"),
		"bad":  NewLeaf(func(ctx context.Context) (any, error) { return nil, errors.New("backend down") }),
		"also": valueLeaf("fine"),
	})

	m, errs := resolveMap(t, root, `{ ok bad also }`)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0].Message != "backend down" || errs[0].StatusCode != response.DefaultStatusCode {
		t.Fatalf("error: %+v", errs[0])
	}
	if len(errs[0].Locations) != 1 {
		t.Fatalf("handler failure should inherit the field location, got %+v", errs[0])
	}
	// The failed field binds null and siblings keep resolving.
	if diff := cmp.Diff([]string{"ok", "bad", "also"}, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if v, ok := m.Get("bad"); !ok || v != nil {
		t.Fatalf("failed field must bind null, got %v (present=%v)", v, ok)
	}
}

func TestObject_HandlerCoercedError(t *testing.T) {
	root := NewObject(map[string]Node{
		"f": NewLeaf(func(ctx context.Context) (any, error) { return nil, notFoundError{} }),
	})

	_, errs := resolveMap(t, root, `{ f }`)
	if len(errs) != 1 || errs[0].StatusCode != 404 {
		t.Fatalf("coerced status lost: %v", errs)
	}
}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }
func (notFoundError) ToError() response.Error {
	return response.Error{Message: "not found", StatusCode: 404}
}

func TestLeaf_IgnoresSubSelection(t *testing.T) {
	root := NewObject(map[string]Node{"n": valueLeaf(42)})

	m, errs := resolveMap(t, root, `{ n { deeper } }`)
	if len(errs) != 0 {
		t.Fatalf("leaf sub-selection must be tolerated, got %v", errs)
	}
	if v, _ := m.Get("n"); v != 42 {
		t.Fatalf("n = %v, want 42", v)
	}
}

func TestObject_FragmentUnsupported(t *testing.T) {
	root := NewObject(map[string]Node{"a": valueLeaf(1)})

	m, errs := resolveMap(t, root, `{ a ... { a } }`)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0].Message != "unsupported selection: only fields may be requested" {
		t.Fatalf("message: %q", errs[0].Message)
	}
	if diff := cmp.Diff([]string{"a"}, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestLeaf_ContextReachesHandler(t *testing.T) {
	type key struct{}
	var seen any
	root := NewObject(map[string]Node{
		"f": NewLeaf(func(ctx context.Context) (any, error) {
			seen = ctx.Value(key{})
			return nil, nil
		}),
	})

	ctx := context.WithValue(context.Background(), key{}, "present")
	root.Resolve(ctx, mustSelectionSet(t, `{ f }`))
	if seen != "present" {
		t.Fatalf("handler did not receive the caller context, saw %v", seen)
	}
}
