// Package service implements the group lifecycle operations on top of the
// storage layer: code allocation, join, rename, delete, listing, and member
// profile lookup, plus the background profile mirror.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/crhubottom/school-flow-project/internal/domain"
	"github.com/crhubottom/school-flow-project/internal/joincode"
	"github.com/crhubottom/school-flow-project/internal/storage"
)

// createAttempts bounds the code-collision retry loop. With a 32-symbol
// alphabet at 6 characters the collision probability per attempt is tiny,
// so exhausting the bound means something is wrong with the store.
const createAttempts = 6

// GroupService orchestrates the group document lifecycle. All persistent
// state lives in the injected store; every operation re-fetches rather than
// caching.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup allocates a fresh join code and creates the group document
// with the acting principal as owner and sole member. Collisions with
// existing codes are retried up to createAttempts times before giving up
// with domain.ErrAllocationExhausted.
func (s *GroupService) CreateGroup(ctx context.Context, principal *domain.Principal, name string) (*domain.Group, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}

	for attempt := 1; attempt <= createAttempts; attempt++ {
		code := joincode.Generate()
		group := &domain.Group{
			Code:             code,
			OwnerUID:         principal.UID,
			OwnerDisplayName: principal.DisplayName,
			Name:             strings.TrimSpace(name),
			Members:          []string{principal.UID},
		}

		err := s.store.CreateGroup(ctx, group)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Another live group holds this code. Draw again.
			log.Debug().Str("code", code).Int("attempt", attempt).Msg("join code collision")
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Info().Str("code", code).Str("owner_uid", principal.UID).Msg("group created")
		// Re-fetch so the caller sees the store-assigned creation timestamp.
		return s.store.GetGroup(ctx, code)
	}

	log.Warn().Int("attempts", createAttempts).Msg("join code allocation exhausted")
	return nil, domain.ErrAllocationExhausted
}

// JoinGroup adds the acting principal to the group's member set and returns
// the refreshed document. Joining a group you already belong to is a no-op.
func (s *GroupService) JoinGroup(ctx context.Context, principal *domain.Principal, code string) (*domain.Group, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	clean := joincode.Normalize(code)
	if clean == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := s.store.AddGroupMember(ctx, clean, principal.UID); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, clean)
}

// GetGroup fetches a group by its join code.
func (s *GroupService) GetGroup(ctx context.Context, code string) (*domain.Group, error) {
	clean := joincode.Normalize(code)
	if clean == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.GetGroup(ctx, clean)
}

// ListUserGroups returns every group whose member set contains the acting
// principal. Order is store-defined.
func (s *GroupService) ListUserGroups(ctx context.Context, principal *domain.Principal) ([]*domain.Group, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.store.ListGroupsByMember(ctx, principal.UID)
}

// UpdateGroupName renames a group. Only the owner may rename; everyone else
// gets domain.ErrForbidden.
func (s *GroupService) UpdateGroupName(ctx context.Context, principal *domain.Principal, code, newName string) (*domain.Group, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	clean := joincode.Normalize(code)
	if clean == "" {
		return nil, domain.ErrInvalidInput
	}

	group, err := s.store.GetGroup(ctx, clean)
	if err != nil {
		return nil, err
	}
	if group.OwnerUID != principal.UID {
		return nil, domain.ErrForbidden
	}

	if err := s.store.UpdateGroupName(ctx, clean, strings.TrimSpace(newName)); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, clean)
}

// DeleteGroup permanently removes a group and returns its normalized code.
// Only the owner may delete.
func (s *GroupService) DeleteGroup(ctx context.Context, principal *domain.Principal, code string) (string, error) {
	if principal == nil {
		return "", domain.ErrUnauthorized
	}
	clean := joincode.Normalize(code)
	if clean == "" {
		return "", domain.ErrInvalidInput
	}

	group, err := s.store.GetGroup(ctx, clean)
	if err != nil {
		return "", err
	}
	if group.OwnerUID != principal.UID {
		return "", domain.ErrForbidden
	}

	if err := s.store.DeleteGroup(ctx, clean); err != nil {
		return "", err
	}
	log.Info().Str("code", clean).Str("owner_uid", principal.UID).Msg("group deleted")
	return clean, nil
}

// GetUsers fetches the mirrored profiles for a set of uids concurrently and
// returns a uid-to-profile map. A uid with no stored profile maps to nil;
// any store failure aborts the whole batch.
func (s *GroupService) GetUsers(ctx context.Context, uids []string) (map[string]*domain.UserProfile, error) {
	result := make(map[string]*domain.UserProfile, len(uids))
	if len(uids) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, uid := range uids {
		g.Go(func() error {
			profile, err := s.store.GetUserProfile(ctx, uid)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			mu.Lock()
			result[uid] = profile
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
