// Package schema turns a declarative field description into the immutable
// resolve.Node tree that queries execute against. The tree is built once at
// startup and shared read-only across queries; nothing here is safe to call
// after Build.
package schema

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/quarrygql/quarry/internal/resolve"
)

// graphqlName is the GraphQL name grammar.
var graphqlName = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// ObjectBuilder declares the fields of one object node. Declaration order
// is irrelevant; resolution order is dictated by the query.
type ObjectBuilder struct {
	fields []fieldDecl
}

type fieldDecl struct {
	name    string
	handler resolve.Handler
	object  *ObjectBuilder
}

func NewObject() *ObjectBuilder {
	return &ObjectBuilder{}
}

// Leaf declares a terminal field backed by a handler.
func (b *ObjectBuilder) Leaf(name string, h resolve.Handler) *ObjectBuilder {
	b.fields = append(b.fields, fieldDecl{name: name, handler: h})
	return b
}

// Object declares a nested object field.
func (b *ObjectBuilder) Object(name string, child *ObjectBuilder) *ObjectBuilder {
	b.fields = append(b.fields, fieldDecl{name: name, object: child})
	return b
}

// Build validates the declaration and freezes it into a resolve.Object.
// All violations are reported at once via errors.Join.
func (b *ObjectBuilder) Build() (*resolve.Object, error) {
	node, errs := b.build("")
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return node, nil
}

func (b *ObjectBuilder) build(path string) (*resolve.Object, []error) {
	var errs []error
	fields := make(map[string]resolve.Node, len(b.fields))

	for _, decl := range b.fields {
		qualified := decl.name
		if path != "" {
			qualified = path + "." + decl.name
		}

		if !graphqlName.MatchString(decl.name) {
			errs = append(errs, fmt.Errorf("%s: invalid field name", qualified))
			continue
		}
		if _, dup := fields[decl.name]; dup {
			errs = append(errs, fmt.Errorf("%s: field declared twice", qualified))
			continue
		}

		switch {
		case decl.handler != nil:
			fields[decl.name] = resolve.NewLeaf(decl.handler)
		case decl.object != nil:
			child, childErrs := decl.object.build(qualified)
			errs = append(errs, childErrs...)
			fields[decl.name] = child
		default:
			errs = append(errs, fmt.Errorf("%s: field has neither handler nor object", qualified))
		}
	}

	return resolve.NewObject(fields), errs
}
