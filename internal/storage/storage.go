package storage

import (
	"context"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

// Store defines the interface for the document store backing groups and
// mirrored user profiles. Implementations must be safe for concurrent use
// and must translate provider errors into the domain sentinel set at the
// call boundary.
type Store interface {
	// Close closes the store connection.
	Close() error

	// Groups (keyed by join code)

	// CreateGroup performs a conditional create keyed by group.Code.
	// Returns domain.ErrAlreadyExists if a live group already holds the code.
	CreateGroup(ctx context.Context, group *domain.Group) error

	// GetGroup fetches a group by its normalized code.
	// Returns domain.ErrNotFound if absent.
	GetGroup(ctx context.Context, code string) (*domain.Group, error)

	// AddGroupMember adds uid to the group's member set with union
	// semantics: adding an existing member is a no-op.
	AddGroupMember(ctx context.Context, code, uid string) error

	// UpdateGroupName overwrites the group's name field only.
	UpdateGroupName(ctx context.Context, code, name string) error

	// DeleteGroup permanently removes the group document.
	DeleteGroup(ctx context.Context, code string) error

	// ListGroupsByMember returns all groups whose member set contains uid.
	// Order is store-defined. No matches yields an empty slice, not an error.
	ListGroupsByMember(ctx context.Context, uid string) ([]*domain.Group, error)

	// User profiles (keyed by uid)

	// UpsertUserProfile writes a profile with merge semantics: fields absent
	// from the write are preserved. UpdatedAt is assigned by the store.
	UpsertUserProfile(ctx context.Context, profile *domain.UserProfile) error

	// GetUserProfile fetches a mirrored profile by uid.
	// Returns domain.ErrNotFound if no profile is stored.
	GetUserProfile(ctx context.Context, uid string) (*domain.UserProfile, error)
}
