package memory

import (
	"context"
	"sync"
	"time"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu sync.RWMutex

	groups   map[string]*domain.Group       // key: code
	profiles map[string]*domain.UserProfile // key: uid
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		groups:   make(map[string]*domain.Group),
		profiles: make(map[string]*domain.UserProfile),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.Code]; ok {
		return domain.ErrAlreadyExists
	}

	g := copyGroup(group)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.groups[g.Code] = g
	group.CreatedAt = g.CreatedAt
	return nil
}

func (s *Store) GetGroup(ctx context.Context, code string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyGroup(g), nil
}

func (s *Store) AddGroupMember(ctx context.Context, code, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[code]
	if !ok {
		return domain.ErrNotFound
	}
	if !g.HasMember(uid) {
		g.Members = append(g.Members, uid)
	}
	return nil
}

func (s *Store) UpdateGroupName(ctx context.Context, code, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[code]
	if !ok {
		return domain.ErrNotFound
	}
	g.Name = name
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[code]; !ok {
		return domain.ErrNotFound
	}
	delete(s.groups, code)
	return nil
}

func (s *Store) ListGroupsByMember(ctx context.Context, uid string) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := []*domain.Group{}
	for _, g := range s.groups {
		if g.HasMember(uid) {
			groups = append(groups, copyGroup(g))
		}
	}
	return groups, nil
}

func (s *Store) UpsertUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *profile
	p.UpdatedAt = time.Now().UTC()

	// Merge semantics: empty incoming fields leave existing values intact.
	if existing, ok := s.profiles[p.UID]; ok {
		if p.DisplayName == "" {
			p.DisplayName = existing.DisplayName
		}
		if p.Email == "" {
			p.Email = existing.Email
		}
		if p.PhotoURL == "" {
			p.PhotoURL = existing.PhotoURL
		}
	}
	s.profiles[p.UID] = &p
	return nil
}

func (s *Store) GetUserProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func copyGroup(g *domain.Group) *domain.Group {
	cp := *g
	cp.Members = append([]string(nil), g.Members...)
	return &cp
}
