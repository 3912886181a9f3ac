package discovery

import (
	"encoding/json"
	"fmt"
)

// Query is one bootstrap query and the routine that destructures its data.
type Query struct {
	Name     string
	Document string
	Extract  func(data json.RawMessage, c *Context) error
}

// DefaultQueries is the fixed, ordered discovery sequence.
func DefaultQueries() []Query {
	return []Query{
		{Name: "DiscoveryMe", Document: meQuery, Extract: extractMe},
		{Name: "DiscoveryUsers", Document: usersQuery, Extract: extractUsers},
		{Name: "DiscoveryOrganizations", Document: organizationsQuery, Extract: extractOrganizations},
		{Name: "DiscoveryPlatform", Document: platformQuery, Extract: extractPlatform},
		{Name: "DiscoveryAccounts", Document: accountsQuery, Extract: extractAccounts},
	}
}

const meQuery = `query DiscoveryMe {
  me {
    user { id nameID }
    spaceMembershipsHierarchical {
      id
      space {
        id
        nameID
        collaboration { id calloutsSet { id } }
        community { id roleSet { id } }
        account { id }
      }
      childMemberships {
        id
        space { id nameID }
        childMemberships {
          id
          space { id nameID }
        }
      }
    }
  }
}`

const usersQuery = `query DiscoveryUsers {
  users(limit: 5) { id nameID }
}`

const organizationsQuery = `query DiscoveryOrganizations {
  organizations(limit: 5) { id nameID }
}`

const platformQuery = `query DiscoveryPlatform {
  platform {
    id
    library { id }
    forum { id }
  }
}`

const accountsQuery = `query DiscoveryAccounts {
  accounts {
    id
    spaces { id nameID }
  }
}`

type ref struct {
	ID     string `json:"id"`
	NameID string `json:"nameID"`
}

type membership struct {
	ID    string `json:"id"`
	Space struct {
		ref
		Collaboration *struct {
			ID          string `json:"id"`
			CalloutsSet *ref   `json:"calloutsSet"`
		} `json:"collaboration"`
		Community *struct {
			ID      string `json:"id"`
			RoleSet *ref   `json:"roleSet"`
		} `json:"community"`
		Account *ref `json:"account"`
	} `json:"space"`
	ChildMemberships []membership `json:"childMemberships"`
}

func extractMe(data json.RawMessage, c *Context) error {
	var payload struct {
		Me *struct {
			User        *ref         `json:"user"`
			Memberships []membership `json:"spaceMembershipsHierarchical"`
		} `json:"me"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode me: %w", err)
	}
	if payload.Me == nil {
		return nil
	}

	if u := payload.Me.User; u != nil {
		c.Set(KeyUserID, u.ID)
		c.Set(KeyUserNameID, u.NameID)
	}

	for _, m := range payload.Me.Memberships {
		space := m.Space
		c.Set(KeySpaceID, space.ID)
		c.Set(KeySpaceL0NameID, space.NameID)
		if col := space.Collaboration; col != nil {
			c.Set(KeyCollaborationID, col.ID)
			if col.CalloutsSet != nil {
				c.Set(KeyCalloutsSetID, col.CalloutsSet.ID)
			}
		}
		if com := space.Community; com != nil {
			c.Set(KeyCommunityID, com.ID)
			if com.RoleSet != nil {
				c.Set(KeyRoleSetID, com.RoleSet.ID)
			}
		}
		if space.Account != nil {
			c.Set(KeyAccountID, space.Account.ID)
		}

		for _, l1 := range m.ChildMemberships {
			c.Set(KeySubspaceL1ID, l1.Space.ID)
			c.Set(KeySubspaceL1NameID, l1.Space.NameID)
			for _, l2 := range l1.ChildMemberships {
				c.Set(KeySubspaceL2ID, l2.Space.ID)
				c.Set(KeySubspaceL2NameID, l2.Space.NameID)
			}
		}
	}
	return nil
}

func extractUsers(data json.RawMessage, c *Context) error {
	var payload struct {
		Users []ref `json:"users"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode users: %w", err)
	}
	if len(payload.Users) > 0 {
		c.Set(KeyUserID, payload.Users[0].ID)
		c.Set(KeyUserNameID, payload.Users[0].NameID)
	}
	return nil
}

func extractOrganizations(data json.RawMessage, c *Context) error {
	var payload struct {
		Organizations []ref `json:"organizations"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode organizations: %w", err)
	}
	if len(payload.Organizations) > 0 {
		c.Set(KeyOrganizationID, payload.Organizations[0].ID)
		c.Set(KeyOrganizationNameID, payload.Organizations[0].NameID)
	}
	return nil
}

func extractPlatform(data json.RawMessage, c *Context) error {
	var payload struct {
		Platform *struct {
			ID      string `json:"id"`
			Library *ref   `json:"library"`
			Forum   *ref   `json:"forum"`
		} `json:"platform"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode platform: %w", err)
	}
	p := payload.Platform
	if p == nil {
		return nil
	}
	c.Set(KeyPlatformID, p.ID)
	if p.Library != nil {
		c.Set(KeyLibraryID, p.Library.ID)
	}
	if p.Forum != nil {
		c.Set(KeyForumID, p.Forum.ID)
	}
	return nil
}

func extractAccounts(data json.RawMessage, c *Context) error {
	var payload struct {
		Accounts []struct {
			ID     string `json:"id"`
			Spaces []ref  `json:"spaces"`
		} `json:"accounts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}
	for _, a := range payload.Accounts {
		c.Set(KeyAccountID, a.ID)
		for _, s := range a.Spaces {
			c.Set(KeySpaceID, s.ID)
			c.Set(KeySpaceL0NameID, s.NameID)
		}
	}
	return nil
}
