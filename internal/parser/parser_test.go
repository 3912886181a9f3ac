package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gqlperf/pkg/core"
)

func TestParseOperations_MultipleOperations(t *testing.T) {
	content := `# Space queries
query GetSpace($spaceID: UUID!, $first: Int = 5) {
  lookup { space(ID: $spaceID) { id } }
}

mutation DeleteSpace($input: DeleteSpaceInput!) {
  deleteSpace(deleteData: $input) { id }
}

subscription OnMessage {
  messageReceived { id }
}
`
	ops := ParseOperations("/ops/space.graphql", content)
	require.Len(t, ops, 3)

	assert.Equal(t, "GetSpace", ops[0].Name)
	assert.Equal(t, core.KindQuery, ops[0].Kind)
	require.Len(t, ops[0].Variables, 2)
	assert.Equal(t, core.Variable{Name: "spaceID", Type: "UUID", Required: true}, ops[0].Variables[0])
	assert.Equal(t, core.Variable{Name: "first", Type: "Int", Required: false}, ops[0].Variables[1])

	assert.Equal(t, "DeleteSpace", ops[1].Name)
	assert.Equal(t, core.KindMutation, ops[1].Kind)

	assert.Equal(t, "OnMessage", ops[2].Name)
	assert.Equal(t, core.KindSubscription, ops[2].Kind)
	assert.Empty(t, ops[2].Variables)

	for _, op := range ops {
		assert.Equal(t, "/ops/space.graphql", op.FilePath)
		assert.NotContains(t, op.RawText, "# Space queries")
	}
}

func TestParseOperations_CommentedOutOperationIgnored(t *testing.T) {
	content := `# query OldQuery { me { id } }
query Current { me { id } }`

	ops := ParseOperations("a.graphql", content)
	require.Len(t, ops, 1)
	assert.Equal(t, "Current", ops[0].Name)
}

func TestParseOperations_FieldNamedQueryIsNotAnOperation(t *testing.T) {
	content := `query Search {
  search {
    query
    results { id }
  }
}`
	ops := ParseOperations("search.graphql", content)
	require.Len(t, ops, 1)
	assert.Equal(t, "Search", ops[0].Name)
}

func TestParseOperations_AnonymousQuery(t *testing.T) {
	content := `
# platform info
{
  platform { id }
}`
	ops := ParseOperations("/ops/platformInfo.graphql", content)
	require.Len(t, ops, 1)
	assert.Equal(t, "platformInfo", ops[0].Name)
	assert.Equal(t, core.KindQuery, ops[0].Kind)
	assert.True(t, ops[0].Anonymous)
	assert.Empty(t, ops[0].Variables)
}

func TestParseOperations_FragmentOnlyFile(t *testing.T) {
	ops := ParseOperations("frag.graphql", `fragment UserFields on User { id nameID }`)
	assert.Empty(t, ops)
}

func TestParseOperations_VariableListErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		wantVars int
	}{
		{
			name:     "well formed",
			content:  `query GetSpace($spaceID: UUID!) { space(ID: $spaceID) { id } }`,
			wantVars: 1,
		},
		{
			name:    "unclosed variable list",
			content: `query GetSpace($spaceID: UUID! { space(ID: $spaceID) { id } }`,
			wantErr: true,
		},
		{
			name:    "unterminated default string",
			content: `query Search($term: String = "abc) { search(term: $term) { id } }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := ParseOperations("a.graphql", tt.content)
			require.Len(t, ops, 1)
			if tt.wantErr {
				assert.Contains(t, ops[0].ParseError, "malformed variable list")
				assert.Empty(t, ops[0].Variables)
				return
			}
			assert.Empty(t, ops[0].ParseError)
			assert.Len(t, ops[0].Variables, tt.wantVars)
		})
	}
}

func TestParseVariables(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []core.Variable
	}{
		{
			name: "required and optional",
			list: `$id: UUID!, $limit: Int`,
			want: []core.Variable{
				{Name: "id", Type: "UUID", Required: true},
				{Name: "limit", Type: "Int"},
			},
		},
		{
			name: "default value is stripped before required check",
			list: `$first: Int! = 10`,
			want: []core.Variable{{Name: "first", Type: "Int", Required: true}},
		},
		{
			name: "default on optional",
			list: `$filter: SpaceFilterInput = {visibilities: [ACTIVE]}`,
			want: []core.Variable{{Name: "filter", Type: "SpaceFilterInput"}},
		},
		{
			name: "list types keep inner markers",
			list: `$ids: [UUID!]!
  $tags: [String]`,
			want: []core.Variable{
				{Name: "ids", Type: "[UUID!]", Required: true},
				{Name: "tags", Type: "[String]"},
			},
		},
		{
			name: "directives are ignored",
			list: `$cursor: String @deprecated`,
			want: []core.Variable{{Name: "cursor", Type: "String"}},
		},
		{
			name: "empty",
			list: ``,
			want: []core.Variable{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVariables(tt.list))
		})
	}
}

func TestVariable_BaseTypeAndString(t *testing.T) {
	v := core.Variable{Name: "ids", Type: "[UUID!]", Required: true}
	assert.Equal(t, "UUID", v.BaseType())
	assert.Equal(t, "$ids: UUID", v.String())
}

func TestParseFragmentHeaders(t *testing.T) {
	text := `fragment SpaceFields on Space { id ...ProfileFields }
fragment ProfileFields on Profile @include(if: true) { displayName }`

	headers := ParseFragmentHeaders(text)
	assert.Equal(t, []FragmentHeader{
		{Name: "SpaceFields", TypeCondition: "Space"},
		{Name: "ProfileFields", TypeCondition: "Profile"},
	}, headers)
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no comments", "query A { a }", "query A { a }"},
		{"line comment", "query A { a } # trailing\n{ b }", "query A { a } \n{ b }"},
		{"comment at eof", "{ a }\n# done", "{ a }\n"},
		{"hash in string kept", `{ a(x: "#1") }`, `{ a(x: "#1") }`},
		{"hash in block string kept", "{ a(x: \"\"\"# x\"\"\") }", "{ a(x: \"\"\"# x\"\"\") }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(tt.in))
		})
	}
}

func TestExtractOperationDef(t *testing.T) {
	text := `query GetSpaces { spaces { id } }
query GetSpace($id: UUID!) {
  space(ID: $id) { ...SpaceFields }
}
fragment SpaceFields on Space { id }`

	def, err := ExtractOperationDef(text, "GetSpace")
	require.NoError(t, err)
	assert.Equal(t, "query GetSpace($id: UUID!) {\n  space(ID: $id) { ...SpaceFields }\n}", def)

	def, err = ExtractOperationDef(text, "GetSpaces")
	require.NoError(t, err)
	assert.Equal(t, "query GetSpaces { spaces { id } }", def)

	_, err = ExtractOperationDef(text, "Missing")
	assert.Error(t, err)
}

func TestExtractFragmentDef(t *testing.T) {
	text := `fragment SpaceFields on Space {
  id
  profile { displayName }
}
fragment Other on User { id }`

	def, err := ExtractFragmentDef(text, "SpaceFields")
	require.NoError(t, err)
	assert.Equal(t, "fragment SpaceFields on Space {\n  id\n  profile { displayName }\n}", def)

	_, err = ExtractFragmentDef(text, "Space")
	assert.Error(t, err, "name match must be anchored")
}

func TestExtractAnonymousDef(t *testing.T) {
	def, err := ExtractAnonymousDef("\n{ me { id } }\nfragment X on Y { id }")
	require.NoError(t, err)
	assert.Equal(t, "{ me { id } }", def)
}

func TestMatchingClose(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		open    int
		pair    string
		want    int
		wantErr bool
	}{
		{"flat braces", "{ a }", 0, Braces, 4, false},
		{"nested braces", "{ a { b { c } } } tail", 0, Braces, 16, false},
		{"parens", "($a: Int, $b: [X!]) {", 0, Parens, 18, false},
		{"brace in string ignored", `{ a(x: "}") }`, 0, Braces, 12, false},
		{"unbalanced", "{ a { b }", 0, Braces, -1, true},
		{"not an opener", "a { }", 0, Braces, -1, true},
		{"bad pair", "{}", 0, "{", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchingClose(tt.text, tt.open, tt.pair)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlock(t *testing.T) {
	start, end, err := Block("query A($x: Int) { a { b } }", 0, Braces)
	require.NoError(t, err)
	assert.Equal(t, 17, start)
	assert.Equal(t, 27, end)

	_, _, err = Block("no braces", 0, Braces)
	assert.Error(t, err)
}

func TestCheckSyntax(t *testing.T) {
	assert.NoError(t, CheckSyntax("ok", "query A { me { id } }"))

	err := CheckSyntax("bad.graphql", "query A { me { id }")
	require.Error(t, err)
	assert.NotEmpty(t, strings.TrimSpace(err.Error()))
}
