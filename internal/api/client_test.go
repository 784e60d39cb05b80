package api_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okatev/readspace/internal/api"
	"github.com/okatev/readspace/internal/apitest"
	"github.com/okatev/readspace/internal/session"
)

func newClient(t *testing.T, srv *apitest.Server) (*api.Client, *session.Holder) {
	t.Helper()
	holder := session.NewHolder(session.NewMemoryStore(), session.NewMemoryStore())
	client, err := api.New(srv.URL(), holder, nil, 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, holder
}

func loggedInClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	srv.SeedUser("reader@example.com", "hunter2", "reader")
	client, _ := newClient(t, srv)
	if err := client.Login(context.Background(), "reader@example.com", "hunter2", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	return client
}

func TestLoginStoresToken(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedUser("reader@example.com", "hunter2", "reader")
	client, holder := newClient(t, srv)

	if err := client.Login(context.Background(), "reader@example.com", "hunter2", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	tok, err := holder.Token()
	if err != nil || tok == "" {
		t.Fatalf("token after login = %q, %v", tok, err)
	}

	id, err := holder.Identity()
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if id.Email != "reader@example.com" {
		t.Fatalf("identity email = %q", id.Email)
	}
}

func TestLoginRejectsEmptyFields(t *testing.T) {
	srv := apitest.New(t)
	client, _ := newClient(t, srv)

	if err := client.Login(context.Background(), "", "pw", false); !errors.Is(err, api.ErrEmptyEmail) {
		t.Fatalf("empty email = %v, want ErrEmptyEmail", err)
	}
	if err := client.Login(context.Background(), "a@b.c", "", false); !errors.Is(err, api.ErrEmptyPassword) {
		t.Fatalf("empty password = %v, want ErrEmptyPassword", err)
	}
	if n := srv.Requests(); n != 0 {
		t.Fatalf("%d requests reached the server, want 0", n)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedUser("reader@example.com", "hunter2", "reader")
	client, holder := newClient(t, srv)

	err := client.Login(context.Background(), "reader@example.com", "nope", false)
	if !api.IsAuthError(err) {
		t.Fatalf("wrong password = %v, want an auth error", err)
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("err = %v, want status 401", err)
	}
	if _, err := holder.Token(); !errors.Is(err, session.ErrNoToken) {
		t.Fatal("failed login must not store a token")
	}
}

func TestLogoutClearsToken(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)

	if err := client.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := client.MyNotes(context.Background()); !errors.Is(err, api.ErrNotAuthenticated) {
		t.Fatalf("notes after logout = %v, want ErrNotAuthenticated", err)
	}
}

func TestAuthedCallWithoutTokenSkipsNetwork(t *testing.T) {
	srv := apitest.New(t)
	client, _ := newClient(t, srv)

	if _, err := client.MyNotes(context.Background()); !errors.Is(err, api.ErrNotAuthenticated) {
		t.Fatalf("notes = %v, want ErrNotAuthenticated", err)
	}
	if n := srv.Requests(); n != 0 {
		t.Fatalf("%d requests reached the server, want 0", n)
	}
}

func TestBooksListingAndFilter(t *testing.T) {
	srv := apitest.New(t)
	client, _ := newClient(t, srv)
	ctx := context.Background()

	page, err := client.ListBooks(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Books) != 2 || page.TotalCount != 3 {
		t.Fatalf("page = %d books of %d, want 2 of 3", len(page.Books), page.TotalCount)
	}

	filtered, err := client.FilterRecommendations(ctx, api.BookFilter{Category: "psychology"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if filtered.TotalCount != 1 {
		t.Fatalf("filtered count = %d, want 1", filtered.TotalCount)
	}

	if _, err := client.GetBook(ctx, 999); !api.IsNotFound(err) {
		t.Fatalf("missing book = %v, want not-found", err)
	}
}

func TestLibraryFlow(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	if err := client.AddToLibrary(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	st, err := client.LibraryStatus(ctx, 1)
	if err != nil || !st.InLibrary {
		t.Fatalf("status after add = %+v, %v", st, err)
	}

	page, err := client.LibraryBooks(ctx, 1, 20)
	if err != nil || len(page.Books) != 1 {
		t.Fatalf("library = %+v, %v", page, err)
	}

	if err := client.RemoveFromLibrary(ctx, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	st, err = client.LibraryStatus(ctx, 1)
	if err != nil || st.InLibrary {
		t.Fatalf("status after remove = %+v, %v", st, err)
	}
}

func TestProgressRoundTrip(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	entry := api.ProgressEntry{BookID: 1, LastReadPageNumber: 42, CompletionPercentage: 17}
	if err := client.SaveProgress(ctx, entry); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving again replaces the entry rather than duplicating it.
	entry.LastReadPageNumber = 50
	if err := client.SaveProgress(ctx, entry); err != nil {
		t.Fatalf("save again: %v", err)
	}

	all, err := client.MyProgress(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].LastReadPageNumber != 50 {
		t.Fatalf("progress = %+v, want one entry at page 50", all)
	}
}

func TestNotesCRUD(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	if _, err := client.CreateNote(ctx, 1, 2, "  "); !errors.Is(err, api.ErrEmptyNote) {
		t.Fatalf("blank note = %v, want ErrEmptyNote", err)
	}

	n, err := client.CreateNote(ctx, 1, 2, "key insight")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := client.UpdateNote(ctx, n.NoteID, 1, 2, "sharper insight"); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, err := client.MyNotes(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("notes = %+v, %v", all, err)
	}
	if all[0].Content != "sharper insight" {
		t.Fatalf("content = %q", all[0].Content)
	}

	if err := client.DeleteNote(ctx, n.NoteID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ = client.MyNotes(ctx)
	if len(all) != 0 {
		t.Fatalf("notes after delete = %+v", all)
	}
}

func TestCreateSpaceRejectsBlankTitle(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	before := srv.Requests()

	if _, err := client.CreateSpace(context.Background(), "   "); !errors.Is(err, api.ErrEmptyTitle) {
		t.Fatalf("blank title = %v, want ErrEmptyTitle", err)
	}
	if srv.Requests() != before {
		t.Fatal("blank title must be rejected before any request is sent")
	}
}

func TestJoinSpaceGrant(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	spaceID := srv.SeedSimpleSpace("evening pages", 99)

	grant, err := client.JoinSpace(context.Background(), spaceID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if grant.Token == "" || grant.RTCUID == "" {
		t.Fatalf("grant = %+v, want token and identity", grant)
	}
	if !strings.HasPrefix(grant.Channel, "space-") {
		t.Fatalf("channel = %q", grant.Channel)
	}
}

func TestJoinSpaceIdentityConflict(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	spaceID := srv.SeedSimpleSpace("evening pages", 99)
	srv.FailJoinWithConflict(spaceID)

	_, err := client.JoinSpace(context.Background(), spaceID)
	if !errors.Is(err, api.ErrIdentityConflict) {
		t.Fatalf("join = %v, want ErrIdentityConflict", err)
	}
}

func TestSpaceDetailsRoster(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	spaceID := srv.SeedSimpleSpace("book club", 7)

	details, err := client.SpaceDetails(context.Background(), spaceID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Host == nil || details.Host.UserID != 7 {
		t.Fatalf("host = %+v", details.Host)
	}
	if details.TotalParticipants != 1 {
		t.Fatalf("total = %d, want 1", details.TotalParticipants)
	}
}

func TestProfileAndStreak(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	me, err := client.Me(ctx)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.UserProfile.Username != "reader" {
		t.Fatalf("username = %q", me.UserProfile.Username)
	}

	next := me.UserProfile
	next.Specialization = "distributed systems"
	if err := client.UpdateProfile(ctx, next); err != nil {
		t.Fatalf("update: %v", err)
	}
	me, _ = client.Me(ctx)
	if me.UserProfile.Specialization != "distributed systems" {
		t.Fatalf("specialization = %q", me.UserProfile.Specialization)
	}

	streak, err := client.MyStreak(ctx)
	if err != nil || streak.CurrentStreak == 0 {
		t.Fatalf("streak = %+v, %v", streak, err)
	}
}

func TestChangePassword(t *testing.T) {
	srv := apitest.New(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	if err := client.ChangePassword(ctx, "hunter2", "correct-horse", "correct-horse"); err != nil {
		t.Fatalf("change: %v", err)
	}

	fresh, _ := newClient(t, srv)
	if err := fresh.Login(ctx, "reader@example.com", "hunter2", false); !api.IsAuthError(err) {
		t.Fatalf("old password still works: %v", err)
	}
	if err := fresh.Login(ctx, "reader@example.com", "correct-horse", false); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
