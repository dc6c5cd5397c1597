// Package firestore implements the storage interface on Cloud Firestore,
// the production document store. Groups live in the "groups" collection
// keyed by join code; mirrored profiles live in "users" keyed by uid.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

const (
	groupsCollection = "groups"
	usersCollection  = "users"
)

// Store implements the storage interface using Cloud Firestore.
type Store struct {
	client *firestore.Client
}

// New creates a Firestore-backed store. credentialsFile may be empty, in
// which case application default credentials are used.
func New(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// Close closes the underlying Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	// Create is a conditional write: it fails if the document already
	// exists, which is what makes join codes unique under concurrent
	// allocation.
	_, err := s.client.Collection(groupsCollection).Doc(group.Code).Create(ctx, group)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, code string) (*domain.Group, error) {
	doc, err := s.client.Collection(groupsCollection).Doc(code).Get(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	var group domain.Group
	if err := doc.DataTo(&group); err != nil {
		return nil, fmt.Errorf("%w: decoding group %s: %v", domain.ErrStoreInternal, code, err)
	}
	if group.Code == "" {
		group.Code = doc.Ref.ID
	}
	return &group, nil
}

func (s *Store) AddGroupMember(ctx context.Context, code, uid string) error {
	_, err := s.client.Collection(groupsCollection).Doc(code).Update(ctx, []firestore.Update{
		{Path: "members", Value: firestore.ArrayUnion(uid)},
	})
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) UpdateGroupName(ctx context.Context, code, name string) error {
	_, err := s.client.Collection(groupsCollection).Doc(code).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
	})
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, code string) error {
	// The Exists precondition makes deleting an absent document an error
	// instead of a silent no-op, matching the other backends.
	_, err := s.client.Collection(groupsCollection).Doc(code).Delete(ctx, firestore.Exists)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) ListGroupsByMember(ctx context.Context, uid string) ([]*domain.Group, error) {
	iter := s.client.Collection(groupsCollection).
		Where("members", "array-contains", uid).
		Documents(ctx)
	defer iter.Stop()

	groups := []*domain.Group{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translateError(err)
		}
		var group domain.Group
		if err := doc.DataTo(&group); err != nil {
			return nil, fmt.Errorf("%w: decoding group %s: %v", domain.ErrStoreInternal, doc.Ref.ID, err)
		}
		if group.Code == "" {
			group.Code = doc.Ref.ID
		}
		groups = append(groups, &group)
	}
	return groups, nil
}

func (s *Store) UpsertUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	// Merge write: only the listed fields are touched, anything else on
	// the document survives. Empty fields are left out so they cannot
	// clobber previously mirrored values.
	data := map[string]any{
		"updatedAt": firestore.ServerTimestamp,
	}
	if profile.DisplayName != "" {
		data["displayName"] = profile.DisplayName
	}
	if profile.Email != "" {
		data["email"] = profile.Email
	}
	if profile.PhotoURL != "" {
		data["photoURL"] = profile.PhotoURL
	}

	_, err := s.client.Collection(usersCollection).Doc(profile.UID).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) GetUserProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	doc, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	var profile domain.UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("%w: decoding profile %s: %v", domain.ErrStoreInternal, uid, err)
	}
	profile.UID = doc.Ref.ID
	return &profile, nil
}

// translateError maps Firestore gRPC status codes onto the closed domain
// error set. Callers above the storage layer never see a raw status code.
func translateError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return domain.ErrNotFound
	case codes.AlreadyExists:
		return domain.ErrAlreadyExists
	case codes.FailedPrecondition:
		// Delete with an Exists precondition on a missing document.
		return domain.ErrNotFound
	case codes.PermissionDenied:
		return fmt.Errorf("%w: check Firestore rules and that the user is allowed to write", domain.ErrStorePermissionDenied)
	case codes.Unavailable:
		return fmt.Errorf("%w: try again later", domain.ErrStoreUnavailable)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: check your network connection", domain.ErrStoreTimeout)
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreInternal, err)
	}
}
