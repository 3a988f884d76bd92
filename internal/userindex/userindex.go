// Package userindex keys the users collection by id for owner lookups.
package userindex

import "github.com/yourorg/hbnb-web/hbnb"

// Index is read-only once built.
type Index struct {
	byID map[string]hbnb.User
}

// Build indexes users in a single pass. Users without an id are skipped.
func Build(users []hbnb.User) Index {
	byID := make(map[string]hbnb.User, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		byID[u.ID] = u
	}
	return Index{byID: byID}
}

func (ix Index) Lookup(id string) (hbnb.User, bool) {
	u, ok := ix.byID[id]
	return u, ok
}

// Owner returns the user for id, or nil when the index has no such user.
func (ix Index) Owner(id string) *hbnb.User {
	u, ok := ix.byID[id]
	if !ok {
		return nil
	}
	return &u
}

func (ix Index) Len() int { return len(ix.byID) }
