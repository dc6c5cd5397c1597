package domain

import "time"

// Principal is the authenticated identity supplied by the identity provider.
// It is never persisted directly; the profile mirror keeps a denormalized
// copy in the users collection for member lookups.
type Principal struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// UserProfile is the mirrored profile document, keyed by uid.
type UserProfile struct {
	UID         string    `json:"uid" firestore:"-" db:"uid"`
	DisplayName string    `json:"displayName" firestore:"displayName" db:"display_name"`
	Email       string    `json:"email" firestore:"email" db:"email"`
	PhotoURL    string    `json:"photoURL" firestore:"photoURL" db:"photo_url"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp" db:"updated_at"`
}

// Profile returns the mirrored profile for a principal.
func (p *Principal) Profile() *UserProfile {
	return &UserProfile{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
	}
}

// LookupUsersRequest is the request body for batch profile lookup.
type LookupUsersRequest struct {
	UIDs []string `json:"uids"`
}
