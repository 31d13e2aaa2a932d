package store

import "time"

type User struct {
	ID                    string
	DisplayName           string
	Email                 string
	PasswordHash          string
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	DeactivatedAt         *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// School is one tenant. Doc holds the whole page document as decoded JSON:
// the pages sub-document plus any legacy school-level fields still present
// in older rows.
type School struct {
	ID             string
	Name           string
	Slug           string
	Logo           string
	PrimaryColor   string
	SecondaryColor string
	Doc            map[string]any
	UpdatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Membership grants one user a role within one school. Roles are admin,
// editor and viewer; a user without a membership has no admin access to the
// school at all.
type Membership struct {
	UserID    string
	SchoolID  string
	Role      string
	CreatedAt time.Time
}

type PasswordReset struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
