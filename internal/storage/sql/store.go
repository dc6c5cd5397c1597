package sql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Store implements the storage interface on a relational database. It exists
// for self-hosted and local development setups where a managed document store
// is not available; the Firestore backend is the production default.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New creates a new SQL store and runs pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (code, owner_uid, owner_display_name, name, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		group.Code, group.OwnerUID, group.OwnerDisplayName, group.Name, group.CreatedAt)
	if err != nil {
		return wrapUniqueError(err)
	}

	for _, uid := range group.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (code, uid) VALUES ($1, $2)
			 ON CONFLICT (code, uid) DO NOTHING`, group.Code, uid)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) GetGroup(ctx context.Context, code string) (*domain.Group, error) {
	var group domain.Group
	err := s.db.GetContext(ctx, &group,
		`SELECT code, owner_uid, owner_display_name, name, created_at
		 FROM groups WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	group.Members, err = s.getMembers(ctx, code)
	return &group, err
}

func (s *Store) getMembers(ctx context.Context, code string) ([]string, error) {
	var members []string
	err := s.db.SelectContext(ctx, &members,
		`SELECT uid FROM group_members WHERE code = $1`, code)
	return members, err
}

func (s *Store) AddGroupMember(ctx context.Context, code, uid string) error {
	// ON CONFLICT DO NOTHING gives the set-union semantics: a second join by
	// the same uid is a no-op.
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (code, uid)
		 SELECT $1, $2 WHERE EXISTS (SELECT 1 FROM groups WHERE code = $1)
		 ON CONFLICT (code, uid) DO NOTHING`, code, uid)
	if err != nil {
		return wrapUniqueError(err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Either the group vanished or the uid is already a member.
		if _, err := s.GetGroup(ctx, code); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateGroupName(ctx context.Context, code, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET name = $1 WHERE code = $2`, name, code)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE code = $1`, code)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	// Membership rows cascade via the foreign key.
	return nil
}

func (s *Store) ListGroupsByMember(ctx context.Context, uid string) ([]*domain.Group, error) {
	var groups []*domain.Group
	err := s.db.SelectContext(ctx, &groups,
		`SELECT g.code, g.owner_uid, g.owner_display_name, g.name, g.created_at
		 FROM groups g JOIN group_members m ON g.code = m.code
		 WHERE m.uid = $1`, uid)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.Members, err = s.getMembers(ctx, g.Code)
		if err != nil {
			return nil, err
		}
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	return groups, nil
}

func (s *Store) UpsertUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	// Merge semantics: empty incoming fields keep the stored value.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (uid, display_name, email, photo_url, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (uid) DO UPDATE SET
		   display_name = CASE WHEN excluded.display_name = '' THEN users.display_name ELSE excluded.display_name END,
		   email        = CASE WHEN excluded.email = '' THEN users.email ELSE excluded.email END,
		   photo_url    = CASE WHEN excluded.photo_url = '' THEN users.photo_url ELSE excluded.photo_url END,
		   updated_at   = excluded.updated_at`,
		profile.UID, profile.DisplayName, profile.Email, profile.PhotoURL, time.Now().UTC())
	return err
}

func (s *Store) GetUserProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := s.db.GetContext(ctx, &profile,
		`SELECT uid, display_name, email, photo_url, updated_at FROM users WHERE uid = $1`, uid)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
