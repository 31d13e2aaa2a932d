package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"campora/api/internal/auth"
	"campora/api/internal/authpw"
	"campora/api/internal/config"
	"campora/api/internal/content"
	"campora/api/internal/history"
	"campora/api/internal/media"
	"campora/api/internal/rbac"
	"campora/api/internal/search"
	"campora/api/internal/session"
	"campora/api/internal/store"
	"campora/api/internal/util"
)

// Session is one authenticated caller. Memberships maps school ID to role
// and is carried inside the access token, so authorization checks need no
// extra store round trip.
type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
	Memberships  map[string]string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetSchool(context.Context, string) (store.School, error)
	GetSchoolBySlug(context.Context, string) (store.School, error)
	ListSchools(context.Context) ([]store.School, error)
	CreateSchool(context.Context, store.School) error
	UpdateSchoolProfile(context.Context, string, string, string, string, string, string) error
	UpdatePageSection(context.Context, string, string, any, string) error
	GetUserByID(context.Context, string) (store.User, error)
	ListMemberships(context.Context, string) ([]store.Membership, error)
	UpsertMembership(context.Context, string, string, string) error
	RemoveMembership(context.Context, string, string) error
	SaveRefreshSession(context.Context, string, string, time.Time) error
	RevokeRefreshSession(context.Context, string) error
	LookupRefreshSession(context.Context, string) (store.User, error)
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)
	Ping(ctx context.Context) error
}

// refreshCache is the Redis session store. Postgres keeps an authoritative
// copy, so cache failures degrade to a store lookup instead of a signout.
type refreshCache interface {
	Save(ctx context.Context, tokenHash string, data session.TokenData, expiresAt time.Time) error
	Lookup(ctx context.Context, tokenHash string) (session.TokenData, error)
	Revoke(ctx context.Context, tokenHash string) error
}

type passwordAuth interface {
	SignUp(ctx context.Context, req authpw.SignUpRequest) (*authpw.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*authpw.SignInResult, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type mailer interface {
	IsConfigured() bool
	SendVerificationEmail(to, userName, verificationURL string) error
	SendPasswordResetEmail(to, userName, resetURL string) error
}

type searchIndex interface {
	Healthy() bool
	Search(q search.Query) search.Response
	IndexSchool(schoolID string, vm content.ViewModel)
	DeleteSchool(schoolID string)
}

type changeLog interface {
	EnsureSchoolRepo(schoolID string, doc map[string]any, author string) error
	RecordSave(schoolID string, doc map[string]any, author, message string) (history.CommitInfo, error)
	History(schoolID string, limit int) ([]history.CommitInfo, error)
	DocAt(schoolID, hash string) (map[string]any, error)
}

type uploadStager interface {
	Stage(fileName, contentType string, r io.Reader, size int64) (media.PendingUpload, error)
	Commit(ctx context.Context, schoolID, pendingID string) (string, error)
	Release(pendingID string) error
}

// Collaborators bundles the optional service dependencies. Nil members
// disable their feature instead of failing startup, matching how a dev
// environment runs without SMTP or object storage.
type Collaborators struct {
	Sessions refreshCache
	Auth     passwordAuth
	Email    mailer
	Search   searchIndex
	History  changeLog
	Uploads  uploadStager
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions refreshCache
	authpw   passwordAuth
	email    mailer
	search   searchIndex
	history  changeLog
	uploads  uploadStager
}

func New(cfg config.Config, dataStore dataStore, c Collaborators) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: c.Sessions,
		authpw:   c.Auth,
		email:    c.Email,
		search:   c.Search,
		history:  c.History,
		uploads:  c.Uploads,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) emailConfigured() bool {
	return s.email != nil && s.email.IsConfigured()
}

// --- Accounts and sessions ---

type SignUpOutcome struct {
	UserID string
	// DevVerificationToken is only set when no mailer is configured, so
	// local development can complete the verify flow without SMTP.
	DevVerificationToken string
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (SignUpOutcome, error) {
	if s.authpw == nil {
		return SignUpOutcome{}, domainError(http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Authentication service not configured", nil)
	}
	result, err := s.authpw.SignUp(ctx, authpw.SignUpRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return SignUpOutcome{}, err
	}

	if s.emailConfigured() {
		verifyURL := s.cfg.AppBaseURL + "/verify-email?token=" + result.VerificationToken
		if err := s.email.SendVerificationEmail(email, displayName, verifyURL); err != nil {
			log.Printf("send verification email to %s: %v", email, err)
		}
		return SignUpOutcome{UserID: result.UserID}, nil
	}
	return SignUpOutcome{UserID: result.UserID, DevVerificationToken: result.VerificationToken}, nil
}

// errEmailNotVerified reports a correct password on an unverified account.
var errEmailNotVerified = domainError(http.StatusForbidden, "EMAIL_NOT_VERIFIED", "Please verify your email before signing in", nil)

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	if s.authpw == nil {
		return Session{}, domainError(http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Authentication service not configured", nil)
	}
	result, err := s.authpw.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if result.RequiresVerify {
		return Session{}, errEmailNotVerified
	}
	return s.issueSession(ctx, result.User)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	memberships, err := s.store.ListMemberships(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}
	roleBySchool := make(map[string]string, len(memberships))
	for _, m := range memberships {
		roleBySchool[m.SchoolID] = m.Role
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), user.ID, user.DisplayName, user.Email, jti, roleBySchool, s.cfg.AccessTTL)
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshHash := auth.HashToken(refresh)
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.store.SaveRefreshSession(ctx, refreshHash, user.ID, refreshExpires); err != nil {
		return Session{}, err
	}
	if s.sessions != nil {
		err := s.sessions.Save(ctx, refreshHash, session.TokenData{
			UserID:      user.ID,
			DisplayName: user.DisplayName,
			Email:       user.Email,
			Memberships: roleBySchool,
			CreatedAt:   now,
		}, refreshExpires)
		if err != nil {
			log.Printf("cache refresh session: %v", err)
		}
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Email:        user.Email,
		Memberships:  roleBySchool,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.ID)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}
	memberships := claims.Memberships
	if memberships == nil {
		memberships = map[string]string{}
	}
	return Session{
		Token:       token,
		UserID:      claims.Subject,
		UserName:    claims.Name,
		Email:       claims.Email,
		Memberships: memberships,
		JTI:         claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Refresh rotates a refresh token. The Redis cache is consulted first; on a
// cache miss the Postgres copy decides, so losing Redis never signs
// everyone out.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)

	var user store.User
	found := false
	if s.sessions != nil {
		if data, err := s.sessions.Lookup(ctx, tokenHash); err == nil {
			user = store.User{ID: data.UserID, DisplayName: data.DisplayName, Email: data.Email}
			found = true
		}
	}
	if !found {
		stored, err := s.store.LookupRefreshSession(ctx, tokenHash)
		if err != nil {
			return Session{}, err
		}
		user = stored
	}

	if err := s.store.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	if s.sessions != nil {
		if err := s.sessions.Revoke(ctx, tokenHash); err != nil {
			log.Printf("revoke cached refresh session: %v", err)
		}
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Logout(ctx context.Context, sess Session, refreshToken string) error {
	if sess.JTI != "" {
		if err := s.store.RevokeAccessToken(ctx, sess.JTI, sess.ExpiresAt); err != nil {
			log.Printf("revoke access token: %v", err)
		}
	}
	if refreshToken != "" {
		tokenHash := auth.HashToken(refreshToken)
		if err := s.store.RevokeRefreshSession(ctx, tokenHash); err != nil {
			log.Printf("revoke refresh session: %v", err)
		}
		if s.sessions != nil {
			if err := s.sessions.Revoke(ctx, tokenHash); err != nil {
				log.Printf("revoke cached refresh session: %v", err)
			}
		}
	}
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if s.authpw == nil {
		return domainError(http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Authentication service not configured", nil)
	}
	return s.authpw.VerifyEmail(ctx, token)
}

// RequestPasswordReset returns the raw reset token only when no mailer is
// configured (dev bypass); otherwise the token travels by email alone.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if s.authpw == nil {
		return "", domainError(http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Authentication service not configured", nil)
	}
	token, err := s.authpw.RequestPasswordReset(ctx, email)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}
	if s.emailConfigured() {
		resetURL := s.cfg.AppBaseURL + "/reset-password?token=" + token
		if err := s.email.SendPasswordResetEmail(email, "", resetURL); err != nil {
			log.Printf("send password reset email to %s: %v", email, err)
		}
		return "", nil
	}
	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.authpw == nil {
		return domainError(http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Authentication service not configured", nil)
	}
	return s.authpw.ResetPassword(ctx, token, newPassword)
}

// --- Authorization ---

func (s *Service) requireSchoolRole(sess Session, schoolID string, action rbac.Action) error {
	role, ok := sess.Memberships[schoolID]
	if !ok {
		return domainError(http.StatusForbidden, "FORBIDDEN", "No access to this school", nil)
	}
	if !rbac.Can(rbac.Normalize(role), action) {
		return domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
	}
	return nil
}

// --- Schools ---

func schoolDocument(item store.School) *content.SchoolDocument {
	return &content.SchoolDocument{
		ID:             item.ID,
		Name:           item.Name,
		Slug:           item.Slug,
		Logo:           item.Logo,
		PrimaryColor:   item.PrimaryColor,
		SecondaryColor: item.SecondaryColor,
		Root:           item.Doc,
	}
}

func schoolMeta(item store.School) map[string]any {
	return map[string]any{
		"id":             item.ID,
		"name":           item.Name,
		"slug":           item.Slug,
		"logo":           item.Logo,
		"primaryColor":   item.PrimaryColor,
		"secondaryColor": item.SecondaryColor,
		"updatedAt":      item.UpdatedAt,
	}
}

func (s *Service) ListSchools(ctx context.Context) ([]map[string]any, error) {
	schools, err := s.store.ListSchools(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(schools))
	for _, item := range schools {
		items = append(items, schoolMeta(item))
	}
	return items, nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func (s *Service) CreateSchool(ctx context.Context, sess Session, name, slug string) (map[string]any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "School name is required", nil)
	}
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		slug = slugify(name)
	}
	if !slugPattern.MatchString(slug) {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Slug may contain lowercase letters, digits and hyphens", nil)
	}

	item := store.School{
		ID:        util.NewID("sch"),
		Name:      name,
		Slug:      slug,
		UpdatedBy: sess.UserName,
	}
	if err := s.store.CreateSchool(ctx, item); err != nil {
		return nil, err
	}
	if err := s.store.UpsertMembership(ctx, sess.UserID, item.ID, string(rbac.RoleAdmin)); err != nil {
		return nil, err
	}
	if s.history != nil {
		if err := s.history.EnsureSchoolRepo(item.ID, map[string]any{"pages": map[string]any{}}, sess.UserName); err != nil {
			log.Printf("init history for school %s: %v", item.ID, err)
		}
	}
	return schoolMeta(item), nil
}

func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// GetSchool resolves by ID first, then by slug, and returns the school
// metadata together with the fully reconciled page content.
// GetSchool loads a school's full reconciled view model. The document fetch
// and the search-health probe run concurrently and merge into one response.
func (s *Service) GetSchool(ctx context.Context, idOrSlug string) (map[string]any, error) {
	type lookupResult struct {
		item store.School
		err  error
	}
	docCh := make(chan lookupResult, 1)
	searchCh := make(chan bool, 1)

	go func() {
		item, err := s.lookupSchool(ctx, idOrSlug)
		docCh <- lookupResult{item: item, err: err}
	}()
	go func() {
		searchCh <- s.search != nil && s.search.Healthy()
	}()

	doc := <-docCh
	searchAvailable := <-searchCh
	if doc.err != nil {
		return nil, doc.err
	}
	return map[string]any{
		"school":          schoolMeta(doc.item),
		"content":         content.Reconcile(schoolDocument(doc.item)),
		"searchAvailable": searchAvailable,
	}, nil
}

func (s *Service) lookupSchool(ctx context.Context, idOrSlug string) (store.School, error) {
	item, err := s.store.GetSchool(ctx, idOrSlug)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.School{}, err
	}
	return s.store.GetSchoolBySlug(ctx, idOrSlug)
}

func (s *Service) UpdateSchoolProfile(ctx context.Context, sess Session, schoolID, name, logo, primaryColor, secondaryColor string) (map[string]any, error) {
	if err := s.requireSchoolRole(sess, schoolID, rbac.ActionManage); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "School name is required", nil)
	}
	logo, err := s.resolveImageRef(ctx, schoolID, logo)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateSchoolProfile(ctx, schoolID, name, logo, primaryColor, secondaryColor, sess.UserName); err != nil {
		return nil, err
	}
	item, err := s.store.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return schoolMeta(item), nil
}

func (s *Service) SetMembership(ctx context.Context, sess Session, schoolID, userID, role string) error {
	if err := s.requireSchoolRole(sess, schoolID, rbac.ActionManage); err != nil {
		return err
	}
	switch rbac.Role(role) {
	case rbac.RoleAdmin, rbac.RoleEditor, rbac.RoleViewer:
	default:
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Role must be admin, editor or viewer", nil)
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return s.store.UpsertMembership(ctx, userID, schoolID, role)
}

func (s *Service) RemoveMembership(ctx context.Context, sess Session, schoolID, userID string) error {
	if err := s.requireSchoolRole(sess, schoolID, rbac.ActionManage); err != nil {
		return err
	}
	if userID == sess.UserID {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "You cannot remove your own membership", nil)
	}
	return s.store.RemoveMembership(ctx, userID, schoolID)
}

// --- Section saves ---

// Every save follows the same sequence: authorize, validate, commit staged
// uploads, build the write payload, write it, then re-fetch the whole
// document and reconcile. The response content always comes from the
// re-fetched document, never from the payload that was written.
func (s *Service) saveSection(ctx context.Context, sess Session, schoolID string, section content.Section, payload any) (map[string]any, error) {
	if err := s.requireSchoolRole(sess, schoolID, rbac.ActionWrite); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePageSection(ctx, schoolID, section.PageKey(), payload, sess.UserName); err != nil {
		return nil, err
	}

	item, err := s.store.GetSchool(ctx, schoolID)
	if err != nil {
		// The write went through; report the stale read instead of failing
		// the save.
		log.Printf("refetch school %s after save: %v", schoolID, err)
		return map[string]any{
			"content":   content.EmptyViewModel(),
			"refreshed": false,
		}, nil
	}

	vm := content.Reconcile(schoolDocument(item))
	if s.search != nil {
		s.search.IndexSchool(schoolID, vm)
	}
	if s.history != nil {
		if _, err := s.history.RecordSave(schoolID, item.Doc, sess.UserName, "Update "+section.PageKey()); err != nil {
			log.Printf("record save history for %s: %v", schoolID, err)
		}
	}
	return map[string]any{
		"content":   vm,
		"refreshed": true,
	}, nil
}

type HomeSaveInput struct {
	Home    content.HomeContent `json:"home"`
	Journey []content.Milestone `json:"journey"`
}

func (s *Service) SaveHome(ctx context.Context, sess Session, schoolID string, input HomeSaveInput) (map[string]any, error) {
	home := input.Home
	home.PrincipalMessage = content.TruncatePrincipalMessage(home.PrincipalMessage)
	if err := validateHomeContent(&home); err != nil {
		return nil, err
	}

	photo, err := s.resolveImageRef(ctx, schoolID, home.PrincipalPhoto)
	if err != nil {
		return nil, err
	}
	home.PrincipalPhoto = photo
	heroes, err := s.resolveImageRefs(ctx, schoolID, home.HeroImages)
	if err != nil {
		return nil, err
	}
	home.HeroImages = heroes

	journey := make([]content.Milestone, len(input.Journey))
	copy(journey, input.Journey)
	for i := range journey {
		if journey[i].ID == "" {
			journey[i].ID = util.NewEntityID()
		}
	}

	payload := content.BuildHomePayload(home, journey)
	return s.saveSection(ctx, sess, schoolID, content.SectionHome, payload)
}

func validateHomeContent(home *content.HomeContent) error {
	fields := []struct {
		key   string
		value *string
	}{
		{"welcomeTitle", &home.WelcomeTitle},
		{"welcomeSubtitle", &home.WelcomeSubtitle},
		{"principalName", &home.PrincipalName},
		{"principalMessage", &home.PrincipalMessage},
		{"yearEstablished", &home.YearEstablished},
		{"students", &home.Students},
		{"teachers", &home.Teachers},
		{"successRate", &home.SuccessRate},
	}
	for _, f := range fields {
		normalized, err := content.ValidateInline(content.SectionHome, f.key, *f.value)
		if err != nil {
			return err
		}
		*f.value = normalized
	}
	return nil
}

func (s *Service) SaveContact(ctx context.Context, sess Session, schoolID string, contact content.ContactContent) (map[string]any, error) {
	if err := validateContactContent(&contact); err != nil {
		return nil, err
	}
	payload := content.BuildContactPayload(contact)
	return s.saveSection(ctx, sess, schoolID, content.SectionContact, payload)
}

func validateContactContent(contact *content.ContactContent) error {
	fields := []struct {
		key   string
		value *string
	}{
		{"address", &contact.Address},
		{"phone", &contact.Phone},
		{"email", &contact.Email},
		{"officeHours", &contact.OfficeHours},
		{"whatsApp", &contact.WhatsApp},
		{"facebook", &contact.Facebook},
		{"instagram", &contact.Instagram},
	}
	for _, f := range fields {
		normalized, err := content.ValidateInline(content.SectionContact, f.key, *f.value)
		if err != nil {
			return err
		}
		*f.value = normalized
	}
	return nil
}

func (s *Service) SaveStaff(ctx context.Context, sess Session, schoolID string, staff []content.StaffMember) (map[string]any, error) {
	items := make([]content.StaffMember, len(staff))
	copy(items, staff)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = util.NewEntityID()
		}
		image, err := s.resolveImageRef(ctx, schoolID, items[i].Image)
		if err != nil {
			return nil, err
		}
		items[i].Image = image
	}
	return s.saveSection(ctx, sess, schoolID, content.SectionStaff, content.BuildStaffPayload(items))
}

func (s *Service) SaveAlumni(ctx context.Context, sess Session, schoolID string, alumni []content.AlumniMember) (map[string]any, error) {
	items := make([]content.AlumniMember, len(alumni))
	copy(items, alumni)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = util.NewEntityID()
		}
		image, err := s.resolveImageRef(ctx, schoolID, items[i].Image)
		if err != nil {
			return nil, err
		}
		items[i].Image = image
	}
	return s.saveSection(ctx, sess, schoolID, content.SectionAlumni, content.BuildAlumniPayload(items))
}

func (s *Service) SaveGallery(ctx context.Context, sess Session, schoolID string, gallery []content.GalleryItem) (map[string]any, error) {
	items := make([]content.GalleryItem, len(gallery))
	copy(items, gallery)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = util.NewEntityID()
		}
		if items[i].VideoURL != "" && !content.IsValidYouTubeURL(items[i].VideoURL) {
			return nil, &content.ValidationError{
				Section: content.SectionGallery,
				Field:   "videoUrl",
				Message: "Enter a valid YouTube link",
			}
		}
		images, err := s.resolveImageRefs(ctx, schoolID, items[i].Images)
		if err != nil {
			return nil, err
		}
		items[i].Images = images
	}
	items = content.DedupeGalleryItems(items)
	return s.saveSection(ctx, sess, schoolID, content.SectionGallery, content.BuildGalleryPayload(items))
}

func (s *Service) SaveAnnouncements(ctx context.Context, sess Session, schoolID string, announcements []content.Announcement) (map[string]any, error) {
	items := make([]content.Announcement, len(announcements))
	copy(items, announcements)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = util.NewEntityID()
		}
		if strings.TrimSpace(items[i].Title) == "" {
			return nil, &content.ValidationError{
				Section: content.SectionAnnouncements,
				Field:   "title",
				Message: "Title is required",
			}
		}
	}
	return s.saveSection(ctx, sess, schoolID, content.SectionAnnouncements, content.BuildAnnouncementsPayload(items))
}

func (s *Service) SaveAchievements(ctx context.Context, sess Session, schoolID string, achievements []content.Achievement) (map[string]any, error) {
	items := make([]content.Achievement, len(achievements))
	copy(items, achievements)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = util.NewEntityID()
		}
		image, err := s.resolveImageRef(ctx, schoolID, items[i].Image)
		if err != nil {
			return nil, err
		}
		items[i].Image = image
	}
	return s.saveSection(ctx, sess, schoolID, content.SectionAchievements, content.BuildAchievementsPayload(items))
}

// --- Staged uploads ---

// pendingRefPrefix marks an image value that still points at a staged
// upload. Such values are committed to the media host at save time and
// replaced with the returned URL.
const pendingRefPrefix = "pending:"

func (s *Service) resolveImageRef(ctx context.Context, schoolID, ref string) (string, error) {
	if !strings.HasPrefix(ref, pendingRefPrefix) {
		return ref, nil
	}
	if s.uploads == nil {
		return "", domainError(http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE", "Media uploads are not configured", nil)
	}
	url, err := s.uploads.Commit(ctx, schoolID, strings.TrimPrefix(ref, pendingRefPrefix))
	if err != nil {
		return "", fmt.Errorf("commit staged upload: %w", err)
	}
	return url, nil
}

func (s *Service) resolveImageRefs(ctx context.Context, schoolID string, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		resolved, err := s.resolveImageRef(ctx, schoolID, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (s *Service) StageUpload(sess Session, schoolID, fileName, contentType string, r io.Reader, size int64) (media.PendingUpload, error) {
	if err := s.requireSchoolRole(sess, schoolID, rbac.ActionWrite); err != nil {
		return media.PendingUpload{}, err
	}
	if s.uploads == nil {
		return media.PendingUpload{}, domainError(http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE", "Media uploads are not configured", nil)
	}
	return s.uploads.Stage(fileName, contentType, r, size)
}

func (s *Service) ReleaseUpload(pendingID string) error {
	if s.uploads == nil {
		return domainError(http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE", "Media uploads are not configured", nil)
	}
	return s.uploads.Release(pendingID)
}

// --- Search ---

func (s *Service) SearchSchool(schoolID, text, filterType string, limit, offset int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}}
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.search.Search(search.Query{
		Text:       text,
		FilterType: search.ResultType(filterType),
		SchoolID:   schoolID,
		Limit:      limit,
		Offset:     offset,
	})
}

// --- History ---

func (s *Service) SchoolHistory(sess Session, schoolID string, limit int) ([]history.CommitInfo, error) {
	if err := s.requireSchoolRole(sess, schoolID, rbac.ActionRead); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []history.CommitInfo{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.history.History(schoolID, limit)
}

func (s *Service) SchoolDocAt(sess Session, schoolID, hash string) (map[string]any, error) {
	if err := s.requireSchoolRole(sess, schoolID, rbac.ActionRead); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "History is not enabled", nil)
	}
	doc, err := s.history.DocAt(schoolID, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "No document at that revision", nil)
	}
	return doc, nil
}
