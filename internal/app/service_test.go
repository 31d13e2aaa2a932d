package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"campora/api/internal/authpw"
	"campora/api/internal/config"
	"campora/api/internal/content"
	"campora/api/internal/history"
	"campora/api/internal/media"
	"campora/api/internal/search"
	"campora/api/internal/session"
	"campora/api/internal/store"
)

type fakeStore struct {
	getSchoolFn           func(context.Context, string) (store.School, error)
	getSchoolBySlugFn     func(context.Context, string) (store.School, error)
	listSchoolsFn         func(context.Context) ([]store.School, error)
	createSchoolFn        func(context.Context, store.School) error
	updatePageSectionFn   func(context.Context, string, string, any, string) error
	getUserByIDFn         func(context.Context, string) (store.User, error)
	listMembershipsFn     func(context.Context, string) ([]store.Membership, error)
	upsertMembershipFn    func(context.Context, string, string, string) error
	removeMembershipFn    func(context.Context, string, string) error
	saveRefreshFn         func(context.Context, string, string, time.Time) error
	revokeRefreshFn       func(context.Context, string) error
	lookupRefreshFn       func(context.Context, string) (store.User, error)
	isAccessTokenRevokedFn func(context.Context, string) (bool, error)
}

func (f *fakeStore) GetSchool(ctx context.Context, schoolID string) (store.School, error) {
	if f.getSchoolFn != nil {
		return f.getSchoolFn(ctx, schoolID)
	}
	return store.School{}, store.ErrNotFound
}

func (f *fakeStore) GetSchoolBySlug(ctx context.Context, slug string) (store.School, error) {
	if f.getSchoolBySlugFn != nil {
		return f.getSchoolBySlugFn(ctx, slug)
	}
	return store.School{}, store.ErrNotFound
}

func (f *fakeStore) ListSchools(ctx context.Context) ([]store.School, error) {
	if f.listSchoolsFn != nil {
		return f.listSchoolsFn(ctx)
	}
	return nil, nil
}

func (f *fakeStore) CreateSchool(ctx context.Context, item store.School) error {
	if f.createSchoolFn != nil {
		return f.createSchoolFn(ctx, item)
	}
	return nil
}

func (f *fakeStore) UpdateSchoolProfile(context.Context, string, string, string, string, string, string) error {
	return nil
}

func (f *fakeStore) UpdatePageSection(ctx context.Context, schoolID, pageKey string, payload any, updatedBy string) error {
	if f.updatePageSectionFn != nil {
		return f.updatePageSectionFn(ctx, schoolID, pageKey, payload, updatedBy)
	}
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID string) (store.User, error) {
	if f.getUserByIDFn != nil {
		return f.getUserByIDFn(ctx, userID)
	}
	return store.User{ID: userID}, nil
}

func (f *fakeStore) ListMemberships(ctx context.Context, userID string) ([]store.Membership, error) {
	if f.listMembershipsFn != nil {
		return f.listMembershipsFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeStore) UpsertMembership(ctx context.Context, userID, schoolID, role string) error {
	if f.upsertMembershipFn != nil {
		return f.upsertMembershipFn(ctx, userID, schoolID, role)
	}
	return nil
}

func (f *fakeStore) RemoveMembership(ctx context.Context, userID, schoolID string) error {
	if f.removeMembershipFn != nil {
		return f.removeMembershipFn(ctx, userID, schoolID)
	}
	return nil
}

func (f *fakeStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	if f.saveRefreshFn != nil {
		return f.saveRefreshFn(ctx, tokenHash, userID, expiresAt)
	}
	return nil
}

func (f *fakeStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	if f.revokeRefreshFn != nil {
		return f.revokeRefreshFn(ctx, tokenHash)
	}
	return nil
}

func (f *fakeStore) LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error) {
	if f.lookupRefreshFn != nil {
		return f.lookupRefreshFn(ctx, tokenHash)
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeStore) RevokeAccessToken(context.Context, string, time.Time) error { return nil }

func (f *fakeStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if f.isAccessTokenRevokedFn != nil {
		return f.isAccessTokenRevokedFn(ctx, jti)
	}
	return false, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type fakeSearch struct {
	indexed []string
	deleted []string
}

func (f *fakeSearch) Healthy() bool { return true }

func (f *fakeSearch) Search(q search.Query) search.Response {
	return search.Response{Results: []search.Result{}}
}

func (f *fakeSearch) IndexSchool(schoolID string, vm content.ViewModel) {
	f.indexed = append(f.indexed, schoolID)
}

func (f *fakeSearch) DeleteSchool(schoolID string) {
	f.deleted = append(f.deleted, schoolID)
}

type fakeHistory struct {
	ensured  []string
	messages []string
}

func (f *fakeHistory) EnsureSchoolRepo(schoolID string, doc map[string]any, author string) error {
	f.ensured = append(f.ensured, schoolID)
	return nil
}

func (f *fakeHistory) RecordSave(schoolID string, doc map[string]any, author, message string) (history.CommitInfo, error) {
	f.messages = append(f.messages, message)
	return history.CommitInfo{Hash: "abc1234", Message: message, Author: author}, nil
}

func (f *fakeHistory) History(schoolID string, limit int) ([]history.CommitInfo, error) {
	return []history.CommitInfo{}, nil
}

func (f *fakeHistory) DocAt(schoolID, hash string) (map[string]any, error) {
	return nil, errors.New("no such revision")
}

type fakeUploads struct {
	committed []string
	released  []string
	commitErr error
}

func (f *fakeUploads) Stage(fileName, contentType string, r io.Reader, size int64) (media.PendingUpload, error) {
	return media.PendingUpload{ID: "upl_new", FileName: fileName, ContentType: contentType, Size: size}, nil
}

func (f *fakeUploads) Commit(ctx context.Context, schoolID, pendingID string) (string, error) {
	if f.commitErr != nil {
		return "", f.commitErr
	}
	f.committed = append(f.committed, pendingID)
	return "https://media.example.com/" + schoolID + "/" + pendingID + ".jpg", nil
}

func (f *fakeUploads) Release(pendingID string) error {
	f.released = append(f.released, pendingID)
	return nil
}

type fakeAuthPW struct {
	signInFn func(context.Context, string, string) (*authpw.SignInResult, error)
}

func (f *fakeAuthPW) SignUp(ctx context.Context, req authpw.SignUpRequest) (*authpw.SignUpResult, error) {
	return &authpw.SignUpResult{UserID: "usr_1", VerificationToken: "verify-token"}, nil
}

func (f *fakeAuthPW) SignIn(ctx context.Context, email, password string) (*authpw.SignInResult, error) {
	if f.signInFn != nil {
		return f.signInFn(ctx, email, password)
	}
	return nil, authpw.ErrInvalidCredentials
}

func (f *fakeAuthPW) VerifyEmail(context.Context, string) error { return nil }

func (f *fakeAuthPW) RequestPasswordReset(context.Context, string) (string, error) {
	return "reset-token", nil
}

func (f *fakeAuthPW) ResetPassword(context.Context, string, string) error { return nil }

type fakeSessionCache struct {
	data map[string]session.TokenData
}

func (f *fakeSessionCache) Save(ctx context.Context, tokenHash string, data session.TokenData, expiresAt time.Time) error {
	if f.data == nil {
		f.data = map[string]session.TokenData{}
	}
	f.data[tokenHash] = data
	return nil
}

func (f *fakeSessionCache) Lookup(ctx context.Context, tokenHash string) (session.TokenData, error) {
	data, ok := f.data[tokenHash]
	if !ok {
		return session.TokenData{}, session.ErrSessionNotFound
	}
	return data, nil
}

func (f *fakeSessionCache) Revoke(ctx context.Context, tokenHash string) error {
	delete(f.data, tokenHash)
	return nil
}

// jsonRoundTrip mimics the jsonb round trip: anything written through the
// store comes back as decoded JSON, not as the original Go values.
func jsonRoundTrip(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return out
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:  "test-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 720 * time.Hour,
		AppBaseURL: "http://localhost:3000",
	}
}

func editorSession(schoolID string) Session {
	return Session{
		UserID:      "usr_editor",
		UserName:    "Priya",
		Email:       "priya@example.com",
		Memberships: map[string]string{schoolID: "editor"},
	}
}

func TestSignInIssuesSessionWithMemberships(t *testing.T) {
	st := &fakeStore{
		listMembershipsFn: func(ctx context.Context, userID string) ([]store.Membership, error) {
			return []store.Membership{{UserID: userID, SchoolID: "sch_1", Role: "admin"}}, nil
		},
	}
	authFake := &fakeAuthPW{
		signInFn: func(ctx context.Context, email, password string) (*authpw.SignInResult, error) {
			return &authpw.SignInResult{User: store.User{ID: "usr_1", DisplayName: "Priya", Email: email}}, nil
		},
	}
	cache := &fakeSessionCache{}
	svc := New(testConfig(), st, Collaborators{Auth: authFake, Sessions: cache})

	sess, err := svc.SignIn(context.Background(), "priya@example.com", "secret123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.Token == "" || sess.RefreshToken == "" {
		t.Fatal("expected access and refresh tokens")
	}
	if sess.Memberships["sch_1"] != "admin" {
		t.Fatalf("memberships = %v, want sch_1 admin", sess.Memberships)
	}
	if len(cache.data) != 1 {
		t.Fatalf("expected 1 cached refresh session, got %d", len(cache.data))
	}

	parsed, err := svc.SessionFromToken(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if parsed.UserID != "usr_1" || parsed.Memberships["sch_1"] != "admin" {
		t.Fatalf("parsed session = %+v", parsed)
	}
}

func TestSignInUnverifiedAccountRejected(t *testing.T) {
	authFake := &fakeAuthPW{
		signInFn: func(ctx context.Context, email, password string) (*authpw.SignInResult, error) {
			return &authpw.SignInResult{User: store.User{ID: "usr_1"}, RequiresVerify: true}, nil
		},
	}
	svc := New(testConfig(), &fakeStore{}, Collaborators{Auth: authFake})

	_, err := svc.SignIn(context.Background(), "priya@example.com", "secret123")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "EMAIL_NOT_VERIFIED" {
		t.Fatalf("expected EMAIL_NOT_VERIFIED, got %v", err)
	}
}

func TestSessionFromTokenRevokedJTI(t *testing.T) {
	st := &fakeStore{
		isAccessTokenRevokedFn: func(context.Context, string) (bool, error) { return true, nil },
	}
	authFake := &fakeAuthPW{
		signInFn: func(ctx context.Context, email, password string) (*authpw.SignInResult, error) {
			return &authpw.SignInResult{User: store.User{ID: "usr_1", DisplayName: "Priya"}}, nil
		},
	}
	svc := New(testConfig(), st, Collaborators{Auth: authFake})

	sess, err := svc.SignIn(context.Background(), "priya@example.com", "secret123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, err := svc.SessionFromToken(context.Background(), sess.Token); err == nil {
		t.Fatal("expected revoked token to be rejected")
	}
}

func TestRefreshFallsBackToStoreOnCacheMiss(t *testing.T) {
	revoked := []string{}
	st := &fakeStore{
		lookupRefreshFn: func(ctx context.Context, tokenHash string) (store.User, error) {
			return store.User{ID: "usr_1", DisplayName: "Priya", Email: "priya@example.com"}, nil
		},
		revokeRefreshFn: func(ctx context.Context, tokenHash string) error {
			revoked = append(revoked, tokenHash)
			return nil
		},
	}
	svc := New(testConfig(), st, Collaborators{Sessions: &fakeSessionCache{}})

	sess, err := svc.Refresh(context.Background(), "old-refresh-token")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if sess.UserID != "usr_1" {
		t.Fatalf("UserID = %q", sess.UserID)
	}
	if len(revoked) != 1 {
		t.Fatalf("expected old refresh token revoked once, got %d", len(revoked))
	}
	if sess.RefreshToken == "old-refresh-token" {
		t.Fatal("refresh token was not rotated")
	}
}

func TestSaveHomeWritesAndRefetches(t *testing.T) {
	var written any
	st := &fakeStore{
		updatePageSectionFn: func(ctx context.Context, schoolID, pageKey string, payload any, updatedBy string) error {
			if pageKey != "homePage" {
				t.Fatalf("pageKey = %q, want homePage", pageKey)
			}
			if updatedBy != "Priya" {
				t.Fatalf("updatedBy = %q", updatedBy)
			}
			written = payload
			return nil
		},
	}
	st.getSchoolFn = func(ctx context.Context, schoolID string) (store.School, error) {
		return store.School{
			ID:   schoolID,
			Name: "Green Valley",
			Doc:  map[string]any{"pages": map[string]any{"homePage": jsonRoundTrip(t, written)}},
		}, nil
	}
	searchFake := &fakeSearch{}
	historyFake := &fakeHistory{}
	svc := New(testConfig(), st, Collaborators{Search: searchFake, History: historyFake})

	result, err := svc.SaveHome(context.Background(), editorSession("sch_1"), "sch_1", HomeSaveInput{
		Home: content.HomeContent{
			WelcomeTitle:    "Welcome to Green Valley",
			WelcomeSubtitle: "Learning for life",
			PrincipalName:   "Dr. Rao",
			SuccessRate:     "92",
		},
		Journey: []content.Milestone{
			{Year: "1998", Title: "Founded"},
			{Year: "2010", Title: "New campus"},
		},
	})
	if err != nil {
		t.Fatalf("SaveHome: %v", err)
	}
	if result["refreshed"] != true {
		t.Fatalf("refreshed = %v", result["refreshed"])
	}

	vm, ok := result["content"].(content.ViewModel)
	if !ok {
		t.Fatalf("content has type %T", result["content"])
	}
	if vm.Home.WelcomeTitle != "Welcome to Green Valley" {
		t.Fatalf("WelcomeTitle = %q", vm.Home.WelcomeTitle)
	}
	if vm.Home.SuccessRate != "92%" {
		t.Fatalf("SuccessRate = %q, want normalized 92%%", vm.Home.SuccessRate)
	}
	if len(vm.Journey) != 2 || vm.Journey[0].Year != "2010" {
		t.Fatalf("journey not sorted descending: %+v", vm.Journey)
	}
	if len(searchFake.indexed) != 1 || searchFake.indexed[0] != "sch_1" {
		t.Fatalf("search indexed = %v", searchFake.indexed)
	}
	if len(historyFake.messages) != 1 || historyFake.messages[0] != "Update homePage" {
		t.Fatalf("history messages = %v", historyFake.messages)
	}
}

func TestSaveHomeValidationError(t *testing.T) {
	svc := New(testConfig(), &fakeStore{}, Collaborators{})

	_, err := svc.SaveHome(context.Background(), editorSession("sch_1"), "sch_1", HomeSaveInput{
		Home: content.HomeContent{
			WelcomeTitle:    "Welcome",
			WelcomeSubtitle: "Sub",
			PrincipalName:   "Dr. Rao",
			SuccessRate:     "150",
		},
	})
	var validationErr *content.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "successRate" {
		t.Fatalf("field = %q", validationErr.Field)
	}
}

func TestSaveSectionRequiresWriteRole(t *testing.T) {
	svc := New(testConfig(), &fakeStore{}, Collaborators{})
	viewer := Session{
		UserID:      "usr_v",
		UserName:    "Viewer",
		Memberships: map[string]string{"sch_1": "viewer"},
	}

	_, err := svc.SaveContact(context.Background(), viewer, "sch_1", content.ContactContent{Address: "1 Main St"})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != 403 {
		t.Fatalf("expected 403, got %v", err)
	}

	stranger := Session{UserID: "usr_s", Memberships: map[string]string{}}
	_, err = svc.SaveContact(context.Background(), stranger, "sch_1", content.ContactContent{Address: "1 Main St"})
	if !errors.As(err, &domainErr) || domainErr.Status != 403 {
		t.Fatalf("expected 403 for non-member, got %v", err)
	}
}

func TestSaveGalleryRejectsInvalidVideoURL(t *testing.T) {
	svc := New(testConfig(), &fakeStore{}, Collaborators{})

	_, err := svc.SaveGallery(context.Background(), editorSession("sch_1"), "sch_1", []content.GalleryItem{
		{Title: "Sports day", VideoURL: "https://vimeo.com/12345"},
	})
	var validationErr *content.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "videoUrl" {
		t.Fatalf("expected videoUrl validation error, got %v", err)
	}
}

func TestSaveStaffCommitsPendingUploads(t *testing.T) {
	var written any
	st := &fakeStore{
		updatePageSectionFn: func(ctx context.Context, schoolID, pageKey string, payload any, updatedBy string) error {
			written = payload
			return nil
		},
	}
	st.getSchoolFn = func(ctx context.Context, schoolID string) (store.School, error) {
		return store.School{ID: schoolID, Doc: map[string]any{"pages": map[string]any{"staffPage": jsonRoundTrip(t, written)}}}, nil
	}
	uploads := &fakeUploads{}
	svc := New(testConfig(), st, Collaborators{Uploads: uploads})

	result, err := svc.SaveStaff(context.Background(), editorSession("sch_1"), "sch_1", []content.StaffMember{
		{Name: "Anil Kumar", Department: "Science", Image: "pending:upl_1"},
	})
	if err != nil {
		t.Fatalf("SaveStaff: %v", err)
	}
	if len(uploads.committed) != 1 || uploads.committed[0] != "upl_1" {
		t.Fatalf("committed = %v", uploads.committed)
	}
	vm := result["content"].(content.ViewModel)
	if len(vm.Staff) != 1 {
		t.Fatalf("staff = %+v", vm.Staff)
	}
	if !strings.HasPrefix(vm.Staff[0].Image, "https://media.example.com/") {
		t.Fatalf("image ref not resolved: %q", vm.Staff[0].Image)
	}
	if vm.Staff[0].ID == "" {
		t.Fatal("expected a generated entity ID")
	}
}

func TestSaveSectionRefetchFailureReturnsClearedContent(t *testing.T) {
	st := &fakeStore{
		updatePageSectionFn: func(context.Context, string, string, any, string) error { return nil },
		getSchoolFn: func(context.Context, string) (store.School, error) {
			return store.School{}, errors.New("connection reset")
		},
	}
	svc := New(testConfig(), st, Collaborators{})

	result, err := svc.SaveContact(context.Background(), editorSession("sch_1"), "sch_1", content.ContactContent{Address: "1 Main St"})
	if err != nil {
		t.Fatalf("SaveContact: %v", err)
	}
	if result["refreshed"] != false {
		t.Fatalf("refreshed = %v, want false", result["refreshed"])
	}
	vm := result["content"].(content.ViewModel)
	if len(vm.Staff) != 0 || vm.Home.WelcomeTitle != "" {
		t.Fatalf("expected cleared view model, got %+v", vm)
	}
}

func TestCreateSchoolGrantsAdminAndInitsHistory(t *testing.T) {
	var created store.School
	var membership []string
	st := &fakeStore{
		createSchoolFn: func(ctx context.Context, item store.School) error {
			created = item
			return nil
		},
		upsertMembershipFn: func(ctx context.Context, userID, schoolID, role string) error {
			membership = []string{userID, schoolID, role}
			return nil
		},
	}
	historyFake := &fakeHistory{}
	svc := New(testConfig(), st, Collaborators{History: historyFake})

	sess := Session{UserID: "usr_1", UserName: "Priya"}
	meta, err := svc.CreateSchool(context.Background(), sess, "Green Valley School", "")
	if err != nil {
		t.Fatalf("CreateSchool: %v", err)
	}
	if created.Slug != "green-valley-school" {
		t.Fatalf("slug = %q", created.Slug)
	}
	if meta["slug"] != "green-valley-school" {
		t.Fatalf("meta slug = %v", meta["slug"])
	}
	if len(membership) != 3 || membership[0] != "usr_1" || membership[2] != "admin" {
		t.Fatalf("membership = %v", membership)
	}
	if len(historyFake.ensured) != 1 || historyFake.ensured[0] != created.ID {
		t.Fatalf("history ensured = %v", historyFake.ensured)
	}
}

func TestGetSchoolFallsBackToSlug(t *testing.T) {
	st := &fakeStore{
		getSchoolBySlugFn: func(ctx context.Context, slug string) (store.School, error) {
			if slug != "green-valley" {
				return store.School{}, store.ErrNotFound
			}
			return store.School{ID: "sch_1", Name: "Green Valley", Slug: slug}, nil
		},
	}
	svc := New(testConfig(), st, Collaborators{})

	payload, err := svc.GetSchool(context.Background(), "green-valley")
	if err != nil {
		t.Fatalf("GetSchool: %v", err)
	}
	meta := payload["school"].(map[string]any)
	if meta["id"] != "sch_1" {
		t.Fatalf("school meta = %v", meta)
	}
	if _, ok := payload["content"].(content.ViewModel); !ok {
		t.Fatalf("content has type %T", payload["content"])
	}
}

func TestSetMembershipValidatesRole(t *testing.T) {
	svc := New(testConfig(), &fakeStore{}, Collaborators{})
	admin := Session{UserID: "usr_a", Memberships: map[string]string{"sch_1": "admin"}}

	err := svc.SetMembership(context.Background(), admin, "sch_1", "usr_b", "owner")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	if err := svc.SetMembership(context.Background(), admin, "sch_1", "usr_b", "editor"); err != nil {
		t.Fatalf("SetMembership editor: %v", err)
	}
}

func TestRemoveMembershipRejectsSelf(t *testing.T) {
	svc := New(testConfig(), &fakeStore{}, Collaborators{})
	admin := Session{UserID: "usr_a", Memberships: map[string]string{"sch_1": "admin"}}

	err := svc.RemoveMembership(context.Background(), admin, "sch_1", "usr_a")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
