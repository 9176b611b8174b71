// Package resolve implements the schema node tree and the recursive
// selection-set walk at the heart of the engine.
//
// A schema is a tree of nodes built once at startup and shared read-only
// across queries. There are two node variants: a Leaf produces a terminal
// value by invoking its handler, and an Object maps declared field names to
// child nodes. Resolving an Object against a selection set visits the
// requested fields in document order, resolves each matching child
// recursively, and binds the produced value under the field's alias into an
// insertion-ordered result Map.
//
// Errors discovered along the way are collected, not thrown: a failing or
// unknown field contributes an entry to the returned error list and sibling
// fields still resolve. A duplicate alias is likewise a recoverable error;
// the first binding wins.
package resolve

import (
	"context"

	"github.com/quarrygql/quarry/internal/language"
	"github.com/quarrygql/quarry/internal/response"
)

// Handler produces the value for a leaf field. It may block or perform
// side effects; a returned error is reified into the query's error list.
type Handler func(ctx context.Context) (any, error)

// Node is one point in the schema tree.
type Node interface {
	// Resolve consumes a selection set and produces a partial value plus
	// any errors encountered. It never aborts on a field failure.
	Resolve(ctx context.Context, sel language.SelectionSet) (any, []response.Error)
}

// Leaf is a terminal node backed by a handler.
type Leaf struct {
	handler Handler
}

func NewLeaf(h Handler) *Leaf {
	return &Leaf{handler: h}
}

// Resolve invokes the handler. A sub-selection on a leaf field is ignored.
func (l *Leaf) Resolve(ctx context.Context, _ language.SelectionSet) (any, []response.Error) {
	v, err := l.handler(ctx)
	if err != nil {
		return nil, response.SingleError(err)
	}
	return v, nil
}

// Object owns a mapping from declared field name to child node.
type Object struct {
	fields map[string]Node
}

// NewObject builds an object node over the given declared fields. The map
// is copied; the node is immutable afterwards.
func NewObject(fields map[string]Node) *Object {
	copied := make(map[string]Node, len(fields))
	for name, child := range fields {
		copied[name] = child
	}
	return &Object{fields: copied}
}

// Field returns the declared child node for name.
func (o *Object) Field(name string) (Node, bool) {
	n, ok := o.fields[name]
	return n, ok
}

// Resolve walks the selection set in document order and assembles the
// result object. Unknown fields, fields carrying arguments, non-field
// selections and duplicate aliases each contribute an error without
// stopping the walk.
func (o *Object) Resolve(ctx context.Context, sel language.SelectionSet) (any, []response.Error) {
	out := NewMap()
	var errs []response.Error

	for _, selection := range sel {
		field, ok := selection.(*language.Field)
		if !ok {
			errs = append(errs, selectionError(selection))
			continue
		}

		alias := field.Alias
		if alias == "" {
			alias = field.Name
		}

		child, declared := o.fields[field.Name]
		if !declared {
			errs = append(errs, fieldError(field, "cannot resolve field %q", field.Name))
			continue
		}
		if len(field.Arguments) > 0 {
			errs = append(errs, fieldError(field, "field %q does not accept arguments", field.Name))
			continue
		}

		value, childErrs := child.Resolve(ctx, field.SelectionSet)
		errs = append(errs, located(childErrs, field.Position)...)

		if err := out.Set(alias, value); err != nil {
			errs = append(errs, fieldError(field, "duplicate alias %q in selection set", alias))
		}
	}

	return out, errs
}

func fieldError(field *language.Field, format string, args ...any) response.Error {
	e := response.Errorf(400, format, args...)
	if field.Position != nil {
		e.Locations = []response.Location{{Line: field.Position.Line, Column: field.Position.Column}}
	}
	return e
}

func selectionError(sel language.Selection) response.Error {
	e := response.Errorf(400, "unsupported selection: only fields may be requested")
	var pos *language.Position
	switch s := sel.(type) {
	case *language.InlineFragment:
		pos = s.Position
	case *language.FragmentSpread:
		pos = s.Position
	}
	if pos != nil {
		e.Locations = []response.Location{{Line: pos.Line, Column: pos.Column}}
	}
	return e
}

// located backfills the requesting field's position onto errors that carry
// no location of their own, typically handler failures.
func located(errs []response.Error, pos *language.Position) []response.Error {
	if pos == nil {
		return errs
	}
	for i := range errs {
		if len(errs[i].Locations) == 0 {
			errs[i].Locations = []response.Location{{Line: pos.Line, Column: pos.Column}}
		}
	}
	return errs
}
