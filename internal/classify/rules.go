package classify

import (
	"strings"

	"github.com/leapstack-labs/gqlperf/internal/discovery"
)

// MatchMode selects how a Rule pattern is compared with a variable name.
type MatchMode int

const (
	Exact MatchMode = iota
	Suffix
	Contains
)

// Rule maps variable names matching Pattern to a discovered identifier.
// Names are compared in lower case.
type Rule struct {
	Pattern string
	Mode    MatchMode
	Key     discovery.Key
	// Fallback is consulted when Key has not been discovered.
	Fallback discovery.Key
}

func (r Rule) matches(name string) bool {
	switch r.Mode {
	case Exact:
		return name == r.Pattern
	case Suffix:
		return strings.HasSuffix(name, r.Pattern)
	case Contains:
		return strings.Contains(name, r.Pattern)
	}
	return false
}

// lookup finds the first rule matching name and resolves it from its Key,
// then its Fallback. Later rules are never consulted, so a name tied to one
// hierarchy level cannot pick up an identifier from another.
func lookup(rules []Rule, name string, dc *discovery.Context) (string, bool) {
	for _, r := range rules {
		if !r.matches(name) {
			continue
		}
		if v, ok := dc.Get(r.Key); ok {
			return v, true
		}
		if r.Fallback != "" {
			return dc.Get(r.Fallback)
		}
		return "", false
	}
	return "", false
}

// UUIDRules resolve UUID variables. Exact names come first, then suffixes
// ordered from most to least specific.
var UUIDRules = []Rule{
	{Pattern: "spaceid", Mode: Exact, Key: discovery.KeySpaceID},
	{Pattern: "parentspaceid", Mode: Exact, Key: discovery.KeySpaceID},
	{Pattern: "subspaceid", Mode: Exact, Key: discovery.KeySubspaceL1ID, Fallback: discovery.KeySpaceID},
	{Pattern: "subspacel1id", Mode: Exact, Key: discovery.KeySubspaceL1ID},
	{Pattern: "subspacel2id", Mode: Exact, Key: discovery.KeySubspaceL2ID},
	{Pattern: "organizationid", Mode: Exact, Key: discovery.KeyOrganizationID},
	{Pattern: "orgid", Mode: Exact, Key: discovery.KeyOrganizationID},
	{Pattern: "userid", Mode: Exact, Key: discovery.KeyUserID},
	{Pattern: "accountid", Mode: Exact, Key: discovery.KeyAccountID},
	{Pattern: "collaborationid", Mode: Exact, Key: discovery.KeyCollaborationID},
	{Pattern: "calloutssetid", Mode: Exact, Key: discovery.KeyCalloutsSetID},
	{Pattern: "communityid", Mode: Exact, Key: discovery.KeyCommunityID},
	{Pattern: "rolesetid", Mode: Exact, Key: discovery.KeyRoleSetID},
	{Pattern: "platformid", Mode: Exact, Key: discovery.KeyPlatformID},
	{Pattern: "libraryid", Mode: Exact, Key: discovery.KeyLibraryID},
	{Pattern: "forumid", Mode: Exact, Key: discovery.KeyForumID},

	{Pattern: "subspaceid", Mode: Suffix, Key: discovery.KeySubspaceL1ID, Fallback: discovery.KeySpaceID},
	{Pattern: "spaceid", Mode: Suffix, Key: discovery.KeySpaceID},
	{Pattern: "userid", Mode: Suffix, Key: discovery.KeyUserID},
	{Pattern: "organizationid", Mode: Suffix, Key: discovery.KeyOrganizationID},
	{Pattern: "orgid", Mode: Suffix, Key: discovery.KeyOrganizationID},
	{Pattern: "accountid", Mode: Suffix, Key: discovery.KeyAccountID},
	{Pattern: "collaborationid", Mode: Suffix, Key: discovery.KeyCollaborationID},
	{Pattern: "calloutssetid", Mode: Suffix, Key: discovery.KeyCalloutsSetID},
	{Pattern: "communityid", Mode: Suffix, Key: discovery.KeyCommunityID},
	{Pattern: "rolesetid", Mode: Suffix, Key: discovery.KeyRoleSetID},
	{Pattern: "platformid", Mode: Suffix, Key: discovery.KeyPlatformID},
	{Pattern: "libraryid", Mode: Suffix, Key: discovery.KeyLibraryID},
	{Pattern: "forumid", Mode: Suffix, Key: discovery.KeyForumID},
}

// NameIDRules resolve NameID variables from the most specific level of the
// space hierarchy down to the generic names.
var NameIDRules = []Rule{
	{Pattern: "subspacel2", Mode: Contains, Key: discovery.KeySubspaceL2NameID},
	{Pattern: "subspace_l2", Mode: Contains, Key: discovery.KeySubspaceL2NameID},
	{Pattern: "subspacel1", Mode: Contains, Key: discovery.KeySubspaceL1NameID},
	{Pattern: "subspace_l1", Mode: Contains, Key: discovery.KeySubspaceL1NameID},
	{Pattern: "space", Mode: Contains, Key: discovery.KeySpaceL0NameID},
	{Pattern: "nameid", Mode: Exact, Key: discovery.KeySpaceL0NameID},
	{Pattern: "user", Mode: Contains, Key: discovery.KeyUserNameID},
	{Pattern: "org", Mode: Contains, Key: discovery.KeyOrganizationNameID},
}

// Names that page through results and cannot be synthesized.
var cursorNames = map[string]bool{
	"cursor": true,
	"after":  true,
	"before": true,
}

var pageSizeNames = map[string]bool{
	"first": true,
	"limit": true,
	"take":  true,
}

const (
	pageSize   = 3
	defaultInt = 10
)
