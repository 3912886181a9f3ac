package parser

import (
	"github.com/vektah/gqlparser/v2/ast"
	gqlparser "github.com/vektah/gqlparser/v2/parser"
)

// CheckSyntax parses document as an executable GraphQL document. It performs
// no schema validation; it only reports malformed text.
func CheckSyntax(name, document string) error {
	_, err := gqlparser.ParseQuery(&ast.Source{Name: name, Input: document})
	return err
}
