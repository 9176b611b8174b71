// Package language is a thin façade over the gqlparser AST and parser.
// The engine consumes selection sets through these aliases so that the
// parser dependency stays confined to one import path.
package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
