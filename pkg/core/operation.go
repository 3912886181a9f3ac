package core

import "strings"

// OperationKind is the GraphQL operation type keyword.
type OperationKind string

// Operation kinds.
const (
	KindQuery        OperationKind = "query"
	KindMutation     OperationKind = "mutation"
	KindSubscription OperationKind = "subscription"
)

// Variable is a declared operation variable such as `$spaceID: UUID!`.
type Variable struct {
	// Name is the variable name without the leading `$`.
	Name string
	// Type is the declared type with the trailing non-null marker removed.
	// List brackets are kept, e.g. "[UUID!]" or "UUID".
	Type string
	// Required is true when the declared type ended in `!`.
	Required bool
}

// BaseType returns the named type with list and non-null markers stripped.
func (v Variable) BaseType() string {
	return strings.Trim(v.Type, "[]!")
}

// String renders the variable as `$name: Type`.
func (v Variable) String() string {
	return "$" + v.Name + ": " + v.BaseType()
}

// Operation is a named (or file-named anonymous) GraphQL operation.
type Operation struct {
	Name      string
	Kind      OperationKind
	Variables []Variable
	// FilePath is the path of the file declaring the operation.
	FilePath string
	// RawText is the comment-stripped content of the whole file.
	RawText string
	// Anonymous is true for a bare `{ ... }` document named after its file.
	Anonymous bool
	// ParseError describes a declaration that could not be read, such as an
	// unterminated variable list. Such an operation is never executed.
	ParseError string
}

// Fragment is a named fragment definition found while scanning sources.
type Fragment struct {
	Name string
	// TypeCondition is the type named after `on`.
	TypeCondition string
	// FilePath is the file the fragment was first seen in.
	FilePath string
	// SourceText is the comment-stripped content of that file.
	SourceText string
}
