// Package discovery harvests real entity identifiers from a live server by
// running a fixed sequence of bootstrap queries. The identifiers feed the
// variable resolver so operations can run against data that exists.
package discovery

import "sort"

// Key names one identifier slot in a Context.
type Key string

// Identifier slots filled during discovery.
const (
	KeyUserID             Key = "userId"
	KeyUserNameID         Key = "userNameId"
	KeySpaceID            Key = "spaceId"
	KeySpaceL0NameID      Key = "spaceL0NameID"
	KeySubspaceL1ID       Key = "subspaceL1Id"
	KeySubspaceL1NameID   Key = "subspaceL1NameID"
	KeySubspaceL2ID       Key = "subspaceL2Id"
	KeySubspaceL2NameID   Key = "subspaceL2NameID"
	KeyCollaborationID    Key = "collaborationId"
	KeyCalloutsSetID      Key = "calloutsSetId"
	KeyCommunityID        Key = "communityId"
	KeyRoleSetID          Key = "roleSetId"
	KeyAccountID          Key = "accountId"
	KeyOrganizationID     Key = "organizationId"
	KeyOrganizationNameID Key = "organizationNameId"
	KeyPlatformID         Key = "platformId"
	KeyLibraryID          Key = "libraryId"
	KeyForumID            Key = "forumId"
)

// Context holds identifiers discovered for one source. Each slot is written
// at most once: the first non-empty value wins and later writes are ignored.
// It is filled by a single writer during discovery and read-only afterwards.
type Context struct {
	UserID             string
	UserNameID         string
	SpaceID            string
	SpaceL0NameID      string
	SubspaceL1ID       string
	SubspaceL1NameID   string
	SubspaceL2ID       string
	SubspaceL2NameID   string
	CollaborationID    string
	CalloutsSetID      string
	CommunityID        string
	RoleSetID          string
	AccountID          string
	OrganizationID     string
	OrganizationNameID string
	PlatformID         string
	LibraryID          string
	ForumID            string
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

func (c *Context) slot(k Key) *string {
	switch k {
	case KeyUserID:
		return &c.UserID
	case KeyUserNameID:
		return &c.UserNameID
	case KeySpaceID:
		return &c.SpaceID
	case KeySpaceL0NameID:
		return &c.SpaceL0NameID
	case KeySubspaceL1ID:
		return &c.SubspaceL1ID
	case KeySubspaceL1NameID:
		return &c.SubspaceL1NameID
	case KeySubspaceL2ID:
		return &c.SubspaceL2ID
	case KeySubspaceL2NameID:
		return &c.SubspaceL2NameID
	case KeyCollaborationID:
		return &c.CollaborationID
	case KeyCalloutsSetID:
		return &c.CalloutsSetID
	case KeyCommunityID:
		return &c.CommunityID
	case KeyRoleSetID:
		return &c.RoleSetID
	case KeyAccountID:
		return &c.AccountID
	case KeyOrganizationID:
		return &c.OrganizationID
	case KeyOrganizationNameID:
		return &c.OrganizationNameID
	case KeyPlatformID:
		return &c.PlatformID
	case KeyLibraryID:
		return &c.LibraryID
	case KeyForumID:
		return &c.ForumID
	}
	return nil
}

// Get returns the value for k and whether it has been set.
func (c *Context) Get(k Key) (string, bool) {
	if c == nil {
		return "", false
	}
	p := c.slot(k)
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

// Set stores v under k unless k already holds a value or v is empty.
// It reports whether the value was stored.
func (c *Context) Set(k Key, v string) bool {
	p := c.slot(k)
	if p == nil || v == "" || *p != "" {
		return false
	}
	*p = v
	return true
}

// Values returns the populated slots.
func (c *Context) Values() map[Key]string {
	out := make(map[Key]string)
	for _, k := range AllKeys() {
		if v, ok := c.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// AllKeys lists every slot, sorted by name.
func AllKeys() []Key {
	keys := []Key{
		KeyUserID, KeyUserNameID, KeySpaceID, KeySpaceL0NameID,
		KeySubspaceL1ID, KeySubspaceL1NameID, KeySubspaceL2ID, KeySubspaceL2NameID,
		KeyCollaborationID, KeyCalloutsSetID, KeyCommunityID, KeyRoleSetID,
		KeyAccountID, KeyOrganizationID, KeyOrganizationNameID,
		KeyPlatformID, KeyLibraryID, KeyForumID,
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
