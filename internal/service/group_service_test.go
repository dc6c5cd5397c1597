package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crhubottom/school-flow-project/internal/domain"
	"github.com/crhubottom/school-flow-project/internal/joincode"
	"github.com/crhubottom/school-flow-project/internal/service"
	"github.com/crhubottom/school-flow-project/internal/storage"
	"github.com/crhubottom/school-flow-project/internal/storage/memory"
)

var (
	alice = &domain.Principal{UID: "u1", DisplayName: "Alice", Email: "alice@example.com"}
	bob   = &domain.Principal{UID: "u2", DisplayName: "Bob", Email: "bob@example.com"}
)

// collideStore forces the first n creates to report a code collision.
type collideStore struct {
	storage.Store
	collisions int
	creates    int
}

func (s *collideStore) CreateGroup(ctx context.Context, group *domain.Group) error {
	s.creates++
	if s.creates <= s.collisions {
		return domain.ErrAlreadyExists
	}
	return s.Store.CreateGroup(ctx, group)
}

// failProfileStore fails profile reads for one uid.
type failProfileStore struct {
	storage.Store
	failUID string
}

func (s *failProfileStore) GetUserProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	if uid == s.failUID {
		return nil, domain.ErrStoreUnavailable
	}
	return s.Store.GetUserProfile(ctx, uid)
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGroupService(memory.New())

	group, err := svc.CreateGroup(ctx, alice, "  Math Club  ")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	if len(group.Code) != joincode.DefaultLength {
		t.Errorf("code length = %d, want %d", len(group.Code), joincode.DefaultLength)
	}
	if !joincode.Valid(group.Code) {
		t.Errorf("code %q not drawn from the alphabet", group.Code)
	}
	if group.OwnerUID != alice.UID {
		t.Errorf("ownerUid = %q, want %q", group.OwnerUID, alice.UID)
	}
	if group.OwnerDisplayName != "Alice" {
		t.Errorf("ownerDisplayName = %q, want Alice", group.OwnerDisplayName)
	}
	if group.Name != "Math Club" {
		t.Errorf("name = %q, want trimmed %q", group.Name, "Math Club")
	}
	if len(group.Members) != 1 || group.Members[0] != alice.UID {
		t.Errorf("members = %v, want [%s]", group.Members, alice.UID)
	}
	if group.CreatedAt.IsZero() {
		t.Error("createdAt not assigned by the store")
	}
}

func TestCreateGroupRetriesOnCollision(t *testing.T) {
	ctx := context.Background()

	for _, collisions := range []int{1, 3, 5} {
		store := &collideStore{Store: memory.New(), collisions: collisions}
		svc := service.NewGroupService(store)

		group, err := svc.CreateGroup(ctx, alice, "Chess")
		if err != nil {
			t.Fatalf("collisions=%d: CreateGroup() error = %v", collisions, err)
		}
		if group.Code == "" {
			t.Fatalf("collisions=%d: empty code", collisions)
		}
		if store.creates != collisions+1 {
			t.Errorf("collisions=%d: creates = %d, want %d", collisions, store.creates, collisions+1)
		}
	}
}

func TestCreateGroupAllocationExhausted(t *testing.T) {
	ctx := context.Background()
	store := &collideStore{Store: memory.New(), collisions: 6}
	svc := service.NewGroupService(store)

	_, err := svc.CreateGroup(ctx, alice, "Chess")
	if !errors.Is(err, domain.ErrAllocationExhausted) {
		t.Fatalf("CreateGroup() error = %v, want ErrAllocationExhausted", err)
	}
	if store.creates != 6 {
		t.Errorf("creates = %d, want exactly 6 attempts", store.creates)
	}
}

func TestCreateGroupRequiresPrincipal(t *testing.T) {
	svc := service.NewGroupService(memory.New())
	if _, err := svc.CreateGroup(context.Background(), nil, "x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("CreateGroup(nil principal) error = %v, want ErrUnauthorized", err)
	}
}

func TestJoinGroupIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGroupService(memory.New())

	group, err := svc.CreateGroup(ctx, alice, "Math Club")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	joined, err := svc.JoinGroup(ctx, bob, group.Code)
	if err != nil {
		t.Fatalf("JoinGroup() error = %v", err)
	}
	if len(joined.Members) != 2 || !joined.HasMember(bob.UID) {
		t.Fatalf("members after join = %v", joined.Members)
	}

	// Joining again has no additional effect.
	joined, err = svc.JoinGroup(ctx, bob, group.Code)
	if err != nil {
		t.Fatalf("second JoinGroup() error = %v", err)
	}
	count := 0
	for _, m := range joined.Members {
		if m == bob.UID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("uid %q appears %d times in members %v", bob.UID, count, joined.Members)
	}
}

func TestGetGroupNormalization(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := service.NewGroupService(store)

	seed := &domain.Group{Code: "AB3D7F", OwnerUID: alice.UID, Name: "Math", Members: []string{alice.UID}}
	if err := store.CreateGroup(ctx, seed); err != nil {
		t.Fatal(err)
	}

	for _, raw := range []string{"AB3D7F", "  ab3d7f ", "\tAb3D7f\n"} {
		group, err := svc.GetGroup(ctx, raw)
		if err != nil {
			t.Fatalf("GetGroup(%q) error = %v", raw, err)
		}
		if group.Code != "AB3D7F" {
			t.Errorf("GetGroup(%q) resolved code %q", raw, group.Code)
		}
	}
}

func TestGetGroupEmptyCode(t *testing.T) {
	svc := service.NewGroupService(memory.New())
	for _, raw := range []string{"", "   ", "\t\n"} {
		if _, err := svc.GetGroup(context.Background(), raw); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("GetGroup(%q) error = %v, want ErrInvalidInput", raw, err)
		}
	}
}

func TestNotFoundSymmetry(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGroupService(memory.New())
	const code = "QQQQQQ"

	ops := []struct {
		name string
		call func() error
	}{
		{"GetGroup", func() error { _, err := svc.GetGroup(ctx, code); return err }},
		{"JoinGroup", func() error { _, err := svc.JoinGroup(ctx, bob, code); return err }},
		{"UpdateGroupName", func() error { _, err := svc.UpdateGroupName(ctx, alice, code, "x"); return err }},
		{"DeleteGroup", func() error { _, err := svc.DeleteGroup(ctx, alice, code); return err }},
	}
	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			if err := op.call(); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("%s on absent code error = %v, want ErrNotFound", op.name, err)
			}
		})
	}
}

func TestOwnershipGate(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGroupService(memory.New())

	group, err := svc.CreateGroup(ctx, alice, "Math Club")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if _, err := svc.JoinGroup(ctx, bob, group.Code); err != nil {
		t.Fatalf("JoinGroup() error = %v", err)
	}

	// Non-owner mutations are rejected.
	if _, err := svc.UpdateGroupName(ctx, bob, group.Code, "x"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner UpdateGroupName error = %v, want ErrForbidden", err)
	}
	if _, err := svc.DeleteGroup(ctx, bob, group.Code); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner DeleteGroup error = %v, want ErrForbidden", err)
	}

	// Owner mutations succeed.
	renamed, err := svc.UpdateGroupName(ctx, alice, group.Code, "  Math Club!  ")
	if err != nil {
		t.Fatalf("owner UpdateGroupName error = %v", err)
	}
	if renamed.Name != "Math Club!" {
		t.Errorf("name after rename = %q", renamed.Name)
	}
	if renamed.OwnerUID != alice.UID {
		t.Errorf("ownerUid changed to %q", renamed.OwnerUID)
	}

	id, err := svc.DeleteGroup(ctx, alice, group.Code)
	if err != nil {
		t.Fatalf("owner DeleteGroup error = %v", err)
	}
	if id != group.Code {
		t.Errorf("DeleteGroup returned %q, want %q", id, group.Code)
	}
	if _, err := svc.GetGroup(ctx, group.Code); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetGroup after delete error = %v, want ErrNotFound", err)
	}
}

func TestListUserGroups(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGroupService(memory.New())

	// No memberships yet: empty, not an error.
	groups, err := svc.ListUserGroups(ctx, bob)
	if err != nil {
		t.Fatalf("ListUserGroups() error = %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}

	g1, _ := svc.CreateGroup(ctx, alice, "Math")
	g2, _ := svc.CreateGroup(ctx, alice, "Chess")
	if _, err := svc.JoinGroup(ctx, bob, g2.Code); err != nil {
		t.Fatal(err)
	}

	groups, err = svc.ListUserGroups(ctx, alice)
	if err != nil {
		t.Fatalf("ListUserGroups() error = %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("alice group count = %d, want 2", len(groups))
	}

	groups, err = svc.ListUserGroups(ctx, bob)
	if err != nil {
		t.Fatalf("ListUserGroups() error = %v", err)
	}
	if len(groups) != 1 || groups[0].Code != g2.Code {
		t.Errorf("bob groups = %v, want only %s", groups, g2.Code)
	}
	_ = g1
}

func TestGetUsers(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := service.NewGroupService(store)

	if err := store.UpsertUserProfile(ctx, alice.Profile()); err != nil {
		t.Fatal(err)
	}

	users, err := svc.GetUsers(ctx, []string{alice.UID, "ghost"})
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("result size = %d, want 2", len(users))
	}
	if users[alice.UID] == nil || users[alice.UID].DisplayName != "Alice" {
		t.Errorf("profile for %s = %+v", alice.UID, users[alice.UID])
	}
	if users["ghost"] != nil {
		t.Errorf("missing profile should map to nil, got %+v", users["ghost"])
	}
}

func TestGetUsersEmptyInput(t *testing.T) {
	svc := service.NewGroupService(memory.New())
	users, err := svc.GetUsers(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetUsers(nil) error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("GetUsers(nil) = %v, want empty map", users)
	}
}

func TestGetUsersBatchAbortsOnFailure(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	if err := base.UpsertUserProfile(ctx, alice.Profile()); err != nil {
		t.Fatal(err)
	}
	svc := service.NewGroupService(&failProfileStore{Store: base, failUID: "broken"})

	_, err := svc.GetUsers(ctx, []string{alice.UID, "broken"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("GetUsers() error = %v, want ErrStoreUnavailable (no partial results)", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGroupService(memory.New())

	created, err := svc.CreateGroup(ctx, alice, "Math Club")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	code := created.Code

	group, err := svc.GetGroup(ctx, code)
	if err != nil {
		t.Fatal(err)
	}
	if group.OwnerUID != alice.UID || group.Name != "Math Club" || len(group.Members) != 1 {
		t.Fatalf("unexpected group after create: %+v", group)
	}

	if _, err := svc.JoinGroup(ctx, bob, code); err != nil {
		t.Fatal(err)
	}
	group, _ = svc.GetGroup(ctx, code)
	if !group.HasMember(alice.UID) || !group.HasMember(bob.UID) || len(group.Members) != 2 {
		t.Fatalf("members after join = %v", group.Members)
	}

	if _, err := svc.UpdateGroupName(ctx, bob, code, "x"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("bob rename error = %v, want ErrForbidden", err)
	}
	group, err = svc.UpdateGroupName(ctx, alice, code, "Math Club!")
	if err != nil {
		t.Fatal(err)
	}
	if group.Name != "Math Club!" {
		t.Fatalf("name = %q", group.Name)
	}

	if _, err := svc.DeleteGroup(ctx, alice, code); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetGroup(ctx, code); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetGroup after delete error = %v, want ErrNotFound", err)
	}
}
