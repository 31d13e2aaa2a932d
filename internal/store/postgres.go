package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// ErrNotFound is returned for missing schools and users so callers can map
// it to a 404 without matching on sql.ErrNoRows themselves.
var ErrNotFound = errors.New("not found")

const schoolColumns = `id, name, slug, logo, primary_color, secondary_color, doc, updated_by_name, created_at, updated_at`

func scanSchool(row interface{ Scan(...any) error }) (School, error) {
	var item School
	var rawDoc []byte
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Slug,
		&item.Logo,
		&item.PrimaryColor,
		&item.SecondaryColor,
		&rawDoc,
		&item.UpdatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return School{}, ErrNotFound
	}
	if err != nil {
		return School{}, fmt.Errorf("scan school: %w", err)
	}
	if len(rawDoc) > 0 {
		if err := json.Unmarshal(rawDoc, &item.Doc); err != nil {
			return School{}, fmt.Errorf("decode school doc %s: %w", item.ID, err)
		}
	}
	return item, nil
}

func (s *PostgresStore) GetSchool(ctx context.Context, schoolID string) (School, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id=$1`, schoolID)
	return scanSchool(row)
}

func (s *PostgresStore) GetSchoolBySlug(ctx context.Context, slug string) (School, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+schoolColumns+` FROM schools WHERE slug=$1`, slug)
	return scanSchool(row)
}

func (s *PostgresStore) ListSchools(ctx context.Context) ([]School, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, logo, primary_color, secondary_color, updated_at
		FROM schools
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	defer rows.Close()

	items := make([]School, 0)
	for rows.Next() {
		var item School
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &item.Logo, &item.PrimaryColor, &item.SecondaryColor, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan school row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schools: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateSchool(ctx context.Context, item School) error {
	doc := item.Doc
	if doc == nil {
		doc = map[string]any{"pages": map[string]any{}}
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode school doc: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schools (id, name, slug, logo, primary_color, secondary_color, doc, updated_by_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.Name, item.Slug, item.Logo, item.PrimaryColor, item.SecondaryColor, encoded, item.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert school: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateSchoolProfile(ctx context.Context, schoolID, name, logo, primaryColor, secondaryColor, updatedBy string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE schools
		SET name=$2, logo=$3, primary_color=$4, secondary_color=$5, updated_by_name=$6, updated_at=NOW()
		WHERE id=$1
	`, schoolID, name, logo, primaryColor, secondaryColor, updatedBy)
	if err != nil {
		return fmt.Errorf("update school profile: %w", err)
	}
	return ensureRowUpdated(result)
}

// UpdatePageSection replaces one page sub-document inside the school doc.
// The write targets only doc->pages-><pageKey>, so concurrent saves to
// different sections never clobber each other's payloads.
func (s *PostgresStore) UpdatePageSection(ctx context.Context, schoolID, pageKey string, payload any, updatedBy string) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode page payload: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE schools
		SET doc = jsonb_set(
				jsonb_set(doc, '{pages}', COALESCE(doc->'pages', '{}'::jsonb), true),
				ARRAY['pages', $2],
				$3::jsonb,
				true
			),
			updated_by_name=$4,
			updated_at=NOW()
		WHERE id=$1
	`, schoolID, pageKey, encoded, updatedBy)
	if err != nil {
		return fmt.Errorf("update page section %s: %w", pageKey, err)
	}
	return ensureRowUpdated(result)
}

func ensureRowUpdated(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash, verification_token, verification_expires_at)
		VALUES ($1, $2, LOWER($3), $4, $5, $6)
	`, user.ID, user.DisplayName, user.Email, user.PasswordHash, user.VerificationToken, user.VerificationExpiresAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = `id, display_name, email, password_hash, is_email_verified, deactivated_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.IsEmailVerified,
		&user.DeactivatedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=LOWER($1)`, email)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	return scanUser(row)
}

// VerifyEmail consumes a verification token. Expired or unknown tokens
// return ErrNotFound.
func (s *PostgresStore) VerifyEmail(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_verified=TRUE, verification_token='', verification_expires_at=NULL, updated_at=NOW()
		WHERE verification_token=$1 AND verification_expires_at > NOW()
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	return ensureRowUpdated(result)
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return ensureRowUpdated(result)
}

func (s *PostgresStore) SavePasswordReset(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, used_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save password reset: %w", err)
	}
	return nil
}

// ConsumePasswordReset marks a reset token used and returns its user, or
// ErrNotFound when the token is unknown, expired, or already used.
func (s *PostgresStore) ConsumePasswordReset(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		UPDATE password_resets
		SET used_at=NOW()
		WHERE token_hash=$1 AND used_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume password reset: %w", err)
	}
	return userID, nil
}

func (s *PostgresStore) UpsertMembership(ctx context.Context, userID, schoolID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO school_memberships (user_id, school_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, school_id) DO UPDATE SET role=EXCLUDED.role
	`, userID, schoolID, role)
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMemberships(ctx context.Context, userID string) ([]Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, school_id, role, created_at
		FROM school_memberships
		WHERE user_id=$1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	items := make([]Membership, 0)
	for rows.Next() {
		var item Membership
		if err := rows.Scan(&item.UserID, &item.SchoolID, &item.Role, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) RemoveMembership(ctx context.Context, userID, schoolID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM school_memberships WHERE user_id=$1 AND school_id=$2
	`, userID, schoolID)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.display_name, u.email, u.password_hash, u.is_email_verified, u.deactivated_at, u.created_at, u.updated_at
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	row := s.db.QueryRowContext(ctx, query, tokenHash)
	return scanUser(row)
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
