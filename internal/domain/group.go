package domain

import "time"

// Group is a named, owned collection of member uids addressable by its short
// public join code. The code doubles as the document key in the groups
// collection, so it is unique among live groups.
type Group struct {
	Code             string    `json:"code" firestore:"code" db:"code"`
	OwnerUID         string    `json:"ownerUid" firestore:"ownerUid" db:"owner_uid"`
	OwnerDisplayName string    `json:"ownerDisplayName" firestore:"ownerDisplayName" db:"owner_display_name"`
	Name             string    `json:"name" firestore:"name" db:"name"`
	Members          []string  `json:"members" firestore:"members" db:"-"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp" db:"created_at"`
}

// HasMember reports whether uid is already in the member set.
func (g *Group) HasMember(uid string) bool {
	for _, m := range g.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// UpdateGroupRequest is the request body for renaming a group.
type UpdateGroupRequest struct {
	Name string `json:"name"`
}

// DeleteGroupResponse confirms a deletion with the normalized code.
type DeleteGroupResponse struct {
	ID string `json:"id"`
}
