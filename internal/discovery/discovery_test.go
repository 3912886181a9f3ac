package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/leapstack-labs/gqlperf/internal/client"
	"github.com/leapstack-labs/gqlperf/internal/parser"
	"github.com/leapstack-labs/gqlperf/internal/testutil"
)

// fakeDoer answers by operation name.
type fakeDoer struct {
	responses map[string]*client.Response
	errs      map[string]error
	calls     []string
}

func (f *fakeDoer) Do(_ context.Context, req client.Request) (*client.Response, error) {
	f.calls = append(f.calls, req.OperationName)
	if err := f.errs[req.OperationName]; err != nil {
		return &client.Response{}, err
	}
	if resp, ok := f.responses[req.OperationName]; ok {
		return resp, nil
	}
	return &client.Response{Data: json.RawMessage(`null`)}, nil
}

func data(s string) *client.Response {
	return &client.Response{Data: json.RawMessage(s)}
}

const meResponse = `{
  "me": {
    "user": {"id": "user-1", "nameID": "alice"},
    "spaceMembershipsHierarchical": [
      {
        "id": "m1",
        "space": {
          "id": "space-1", "nameID": "space-one",
          "collaboration": {"id": "collab-1", "calloutsSet": {"id": "cs-1"}},
          "community": {"id": "community-1", "roleSet": {"id": "rs-1"}},
          "account": {"id": "account-1"}
        },
        "childMemberships": [
          {
            "id": "m1a",
            "space": {"id": "sub-1", "nameID": "sub-one"},
            "childMemberships": [
              {"id": "m1a1", "space": {"id": "subsub-1", "nameID": "subsub-one"}}
            ]
          }
        ]
      },
      {
        "id": "m2",
        "space": {"id": "space-2", "nameID": "space-two"},
        "childMemberships": [{"id": "m2a", "space": {"id": "sub-2", "nameID": "sub-two"}}]
      }
    ]
  }
}`

func TestContext_FirstWriteWins(t *testing.T) {
	c := NewContext()

	assert.True(t, c.Set(KeySpaceID, "first"))
	assert.False(t, c.Set(KeySpaceID, "second"))
	assert.False(t, c.Set(KeyUserID, ""), "empty values are never stored")
	assert.False(t, c.Set(Key("unknown"), "x"))

	v, ok := c.Get(KeySpaceID)
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = c.Get(KeyUserID)
	assert.False(t, ok)

	assert.Equal(t, map[Key]string{KeySpaceID: "first"}, c.Values())
}

func TestContext_NilGet(t *testing.T) {
	var c *Context
	_, ok := c.Get(KeySpaceID)
	assert.False(t, ok)
}

func TestAllKeys_CoverEverySlot(t *testing.T) {
	c := NewContext()
	for _, k := range AllKeys() {
		require.True(t, c.Set(k, "v-"+string(k)), "slot %s missing", k)
	}
	assert.Len(t, c.Values(), len(AllKeys()))
}

func TestExtractMe(t *testing.T) {
	c := NewContext()
	require.NoError(t, extractMe(json.RawMessage(meResponse), c))

	assert.Equal(t, "user-1", c.UserID)
	assert.Equal(t, "alice", c.UserNameID)
	assert.Equal(t, "space-1", c.SpaceID)
	assert.Equal(t, "space-one", c.SpaceL0NameID)
	assert.Equal(t, "collab-1", c.CollaborationID)
	assert.Equal(t, "cs-1", c.CalloutsSetID)
	assert.Equal(t, "community-1", c.CommunityID)
	assert.Equal(t, "rs-1", c.RoleSetID)
	assert.Equal(t, "account-1", c.AccountID)
	assert.Equal(t, "sub-1", c.SubspaceL1ID)
	assert.Equal(t, "sub-one", c.SubspaceL1NameID)
	assert.Equal(t, "subsub-1", c.SubspaceL2ID)
	assert.Equal(t, "subsub-one", c.SubspaceL2NameID)
}

func TestExtractMe_NullMe(t *testing.T) {
	c := NewContext()
	require.NoError(t, extractMe(json.RawMessage(`{"me": null}`), c))
	assert.Empty(t, c.Values())
}

func TestExtractors_MalformedData(t *testing.T) {
	for _, q := range DefaultQueries() {
		t.Run(q.Name, func(t *testing.T) {
			assert.Error(t, q.Extract(json.RawMessage(`[1,2]`), NewContext()))
		})
	}
}

func TestDefaultQueries_AreValidGraphQL(t *testing.T) {
	queries := DefaultQueries()
	require.Len(t, queries, 5)
	for _, q := range queries {
		assert.NoError(t, parser.CheckSyntax(q.Name, q.Document), q.Name)
		op, err := parser.ExtractOperationDef(q.Document, q.Name)
		require.NoError(t, err)
		assert.Equal(t, q.Document, op)
	}
}

func TestExecutor_Run_PopulatesContextInOrder(t *testing.T) {
	doer := &fakeDoer{responses: map[string]*client.Response{
		"DiscoveryMe":            data(meResponse),
		"DiscoveryUsers":         data(`{"users":[{"id":"user-9","nameID":"zed"}]}`),
		"DiscoveryOrganizations": data(`{"organizations":[{"id":"org-1","nameID":"acme"}]}`),
		"DiscoveryPlatform":      data(`{"platform":{"id":"plat-1","library":{"id":"lib-1"},"forum":{"id":"forum-1"}}}`),
		"DiscoveryAccounts":      data(`{"accounts":[{"id":"account-9","spaces":[{"id":"space-9","nameID":"nine"}]}]}`),
	}}

	e := NewExecutor(Config{Client: doer, Logger: testutil.NewTestLogger(t)})
	c, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DiscoveryMe", "DiscoveryUsers", "DiscoveryOrganizations", "DiscoveryPlatform", "DiscoveryAccounts",
	}, doer.calls)

	// later discoveries never overwrite
	assert.Equal(t, "user-1", c.UserID)
	assert.Equal(t, "account-1", c.AccountID)
	assert.Equal(t, "space-1", c.SpaceID)

	assert.Equal(t, "org-1", c.OrganizationID)
	assert.Equal(t, "acme", c.OrganizationNameID)
	assert.Equal(t, "plat-1", c.PlatformID)
	assert.Equal(t, "lib-1", c.LibraryID)
	assert.Equal(t, "forum-1", c.ForumID)
}

func TestExecutor_Run_NonFatalFailuresContinue(t *testing.T) {
	doer := &fakeDoer{
		responses: map[string]*client.Response{
			"DiscoveryUsers": {
				Data:   json.RawMessage(`{"users":[{"id":"user-2","nameID":"bob"}]}`),
				Errors: gqlerror.List{{Message: "partial"}},
			},
			"DiscoveryOrganizations": {Errors: gqlerror.List{{Message: "forbidden"}}},
			"DiscoveryPlatform":      data(`{"platform": "not-an-object"}`),
		},
		errs: map[string]error{
			"DiscoveryMe": errors.New("connection reset"),
		},
	}

	c, err := NewExecutor(Config{Client: doer, Logger: testutil.NewTestLogger(t)}).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, doer.calls, 5)
	assert.Equal(t, "user-2", c.UserID, "data with errors is still used")
	assert.Empty(t, c.OrganizationID)
	assert.Empty(t, c.PlatformID)
}

func TestExecutor_Run_UnauthorizedIsFatal(t *testing.T) {
	doer := &fakeDoer{errs: map[string]error{"DiscoveryUsers": client.ErrUnauthorized}}

	_, err := NewExecutor(Config{Client: doer}).Run(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, []string{"DiscoveryMe", "DiscoveryUsers"}, doer.calls)
}

func TestExecutor_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doer := &fakeDoer{}
	_, err := NewExecutor(Config{Client: doer}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, doer.calls)
}
