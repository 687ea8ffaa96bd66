package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"inkwell/internal/app/service"
	"inkwell/internal/common/security"
	"inkwell/internal/domain/model"
	"inkwell/internal/domain/repository/memory"
)

func newTestRouter(t *testing.T) (http.Handler, *memory.Store, *security.TokenManager) {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager([]byte("test-secret"))
	logger := zerolog.Nop()

	authService := service.NewAuthService(store.Users(), tokens)
	postService := service.NewPostService(store.Posts(), store.Comments())
	commentService := service.NewCommentService(store.Comments(), store.Posts())

	router := NewRouter(logger, tokens, store.Users(), authService, postService, commentService)
	return router, store, tokens
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func registerUser(t *testing.T, h http.Handler, username, email, role string) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "email": email, "password": "password", "role": role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: code %d body %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		User model.User `json:"user"`
	}
	decodeBody(t, w, &resp)
	return resp.User.ID
}

func loginUser(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"email": email, "password": "password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: code %d body %s", email, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	return resp.Token
}

func createPost(t *testing.T, h http.Handler, token, title string, published bool) model.Post {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/posts", token, map[string]interface{}{
		"title": title, "content": "Lorem ipsum", "published": published,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: code %d body %s", w.Code, w.Body.String())
	}
	var post model.Post
	decodeBody(t, w, &post)
	return post
}

func TestRegisterNeverExposesPasswordHash(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "password", "role": "AUTHOR",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("code %d body %s", w.Code, w.Body.String())
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "password") {
		t.Fatalf("response leaks password material: %s", w.Body.String())
	}
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	router, _, _ := newTestRouter(t)
	registerUser(t, router, "alice", "a@x.com", "AUTHOR")

	w := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice2", "email": "a@x.com", "password": "password",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("code %d, want 409", w.Code)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{"username": "alice"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code %d, want 400", w.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _, _ := newTestRouter(t)
	registerUser(t, router, "alice", "a@x.com", "")

	w := doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code %d, want 401", w.Code)
	}
}

// TestDraftPostLifecycle walks the headline scenario: an AUTHOR registers,
// logs in, creates a draft; anonymous readers get 404 on it, the owner reads
// it, a different AUTHOR cannot update it, and a READER cannot create posts
// at all.
func TestDraftPostLifecycle(t *testing.T) {
	router, _, _ := newTestRouter(t)

	registerUser(t, router, "alice", "a@x.com", "AUTHOR")
	aliceToken := loginUser(t, router, "a@x.com")

	registerUser(t, router, "bob", "b@x.com", "AUTHOR")
	bobToken := loginUser(t, router, "b@x.com")

	registerUser(t, router, "rita", "r@x.com", "READER")
	ritaToken := loginUser(t, router, "r@x.com")

	post := createPost(t, router, aliceToken, "Work in progress", false)
	if post.Published {
		t.Fatal("post should be a draft")
	}

	// Anonymous read of the draft: indistinguishable from absent.
	w := doJSON(t, router, http.MethodGet, "/api/posts/"+post.ID, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("anonymous get: code %d, want 404", w.Code)
	}

	// Owner reads the full draft.
	w = doJSON(t, router, http.MethodGet, "/api/posts/"+post.ID, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner get: code %d body %s", w.Code, w.Body.String())
	}
	var got model.Post
	decodeBody(t, w, &got)
	if got.Content != "Lorem ipsum" {
		t.Fatalf("content = %q", got.Content)
	}
	if got.Author == nil || got.Author.Username != "alice" {
		t.Fatalf("author summary = %+v", got.Author)
	}

	// A different AUTHOR exists but does not own the post.
	w = doJSON(t, router, http.MethodPut, "/api/posts/"+post.ID, bobToken, map[string]string{"title": "Hijacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner put: code %d, want 403", w.Code)
	}

	// READERs cannot create posts.
	w = doJSON(t, router, http.MethodPost, "/api/posts", ritaToken, map[string]string{"title": "T", "content": "C"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("reader create: code %d, want 403", w.Code)
	}

	// Unauthenticated create.
	w = doJSON(t, router, http.MethodPost, "/api/posts", "", map[string]string{"title": "T", "content": "C"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: code %d, want 401", w.Code)
	}
}

func TestListVisibility(t *testing.T) {
	router, _, _ := newTestRouter(t)

	registerUser(t, router, "alice", "a@x.com", "AUTHOR")
	aliceToken := loginUser(t, router, "a@x.com")
	createPost(t, router, aliceToken, "Published", true)
	createPost(t, router, aliceToken, "Draft", false)

	var posts []model.Post

	w := doJSON(t, router, http.MethodGet, "/api/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous list: code %d", w.Code)
	}
	decodeBody(t, w, &posts)
	if len(posts) != 1 || posts[0].Title != "Published" {
		t.Fatalf("anonymous list = %+v", posts)
	}

	w = doJSON(t, router, http.MethodGet, "/api/posts", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("author list: code %d", w.Code)
	}
	decodeBody(t, w, &posts)
	if len(posts) != 2 {
		t.Fatalf("author list has %d posts", len(posts))
	}
	// Newest first.
	if posts[0].Title != "Draft" {
		t.Fatalf("order = %q, %q", posts[0].Title, posts[1].Title)
	}
}

func TestUpdateAndDeletePost(t *testing.T) {
	router, _, _ := newTestRouter(t)

	registerUser(t, router, "alice", "a@x.com", "AUTHOR")
	aliceToken := loginUser(t, router, "a@x.com")
	registerUser(t, router, "rita", "r@x.com", "READER")
	ritaToken := loginUser(t, router, "r@x.com")

	post := createPost(t, router, aliceToken, "Original", false)

	// Publish via partial update.
	w := doJSON(t, router, http.MethodPut, "/api/posts/"+post.ID, aliceToken, map[string]bool{"published": true})
	if w.Code != http.StatusOK {
		t.Fatalf("publish: code %d body %s", w.Code, w.Body.String())
	}
	var updated model.Post
	decodeBody(t, w, &updated)
	if !updated.Published || updated.Title != "Original" {
		t.Fatalf("updated = %+v", updated)
	}

	// Absent post answers 404 before any ownership consideration.
	w = doJSON(t, router, http.MethodDelete, "/api/posts/missing", ritaToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: code %d, want 404", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID, ritaToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("reader delete: code %d, want 403", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID, aliceToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("owner delete: code %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/posts/"+post.ID, aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: code %d, want 404", w.Code)
	}
}

func TestCommentFlow(t *testing.T) {
	router, _, _ := newTestRouter(t)

	registerUser(t, router, "alice", "a@x.com", "AUTHOR")
	aliceToken := loginUser(t, router, "a@x.com")
	registerUser(t, router, "rita", "r@x.com", "READER")
	ritaToken := loginUser(t, router, "r@x.com")

	post := createPost(t, router, aliceToken, "Post", true)

	// Commenting requires auth, content, and an existing post.
	w := doJSON(t, router, http.MethodPost, "/api/posts/"+post.ID+"/comments", "", map[string]string{"content": "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous comment: code %d, want 401", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/posts/"+post.ID+"/comments", ritaToken, map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty comment: code %d, want 400", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/posts/missing/comments", ritaToken, map[string]string{"content": "hi"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("comment on missing post: code %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/posts/"+post.ID+"/comments", ritaToken, map[string]string{"content": "first"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: code %d body %s", w.Code, w.Body.String())
	}
	var comment model.Comment
	decodeBody(t, w, &comment)

	// Comments are public and in ascending order.
	doJSON(t, router, http.MethodPost, "/api/posts/"+post.ID+"/comments", ritaToken, map[string]string{"content": "second"})
	w = doJSON(t, router, http.MethodGet, "/api/posts/"+post.ID+"/comments", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list comments: code %d", w.Code)
	}
	var comments []model.Comment
	decodeBody(t, w, &comments)
	if len(comments) != 2 || comments[0].Content != "first" {
		t.Fatalf("comments = %+v", comments)
	}
	if comments[0].Author == nil || comments[0].Author.Username != "rita" {
		t.Fatalf("comment author = %+v", comments[0].Author)
	}

	// The post detail view embeds its comments.
	w = doJSON(t, router, http.MethodGet, "/api/posts/"+post.ID, "", nil)
	var detail model.Post
	decodeBody(t, w, &detail)
	if len(detail.Comments) != 2 {
		t.Fatalf("detail has %d comments", len(detail.Comments))
	}

	// Deletion: any AUTHOR may remove a comment they don't own.
	w = doJSON(t, router, http.MethodDelete, "/api/comments/"+comment.ID, aliceToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("author delete comment: code %d", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/api/comments/"+comment.ID, ritaToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete gone comment: code %d, want 404", w.Code)
	}
}

// TestRoleChangeIsVisibleImmediately pins the freshness contract: the
// middleware resolves the stored user on every request, so a role change
// after token issuance takes effect on the very next call.
func TestRoleChangeIsVisibleImmediately(t *testing.T) {
	router, store, _ := newTestRouter(t)

	userID := registerUser(t, router, "rita", "r@x.com", "READER")
	token := loginUser(t, router, "r@x.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", token, map[string]string{"title": "T", "content": "C"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("reader create: code %d, want 403", w.Code)
	}

	if !store.UpdateUserRole(userID, model.RoleAuthor) {
		t.Fatal("role update failed")
	}

	// Same token, new role.
	w = doJSON(t, router, http.MethodPost, "/api/posts", token, map[string]string{"title": "T", "content": "C"})
	if w.Code != http.StatusCreated {
		t.Fatalf("promoted create: code %d body %s", w.Code, w.Body.String())
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	router, _, tokens := newTestRouter(t)

	userID := registerUser(t, router, "alice", "a@x.com", "AUTHOR")

	tokens.TTL = -time.Minute
	expired, err := tokens.Issue(userID, model.RoleAuthor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := doJSON(t, router, http.MethodPost, "/api/posts", expired, map[string]string{"title": "T", "content": "C"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: code %d, want 401", w.Code)
	}
}

func TestDeletedUserTokenAnswersNotFound(t *testing.T) {
	router, store, _ := newTestRouter(t)

	userID := registerUser(t, router, "alice", "a@x.com", "AUTHOR")
	token := loginUser(t, router, "a@x.com")

	if !store.DeleteUser(userID) {
		t.Fatal("delete user failed")
	}

	// The token still verifies; its subject is simply gone.
	w := doJSON(t, router, http.MethodPost, "/api/posts", token, map[string]string{"title": "T", "content": "C"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted subject: code %d, want 404", w.Code)
	}
}

func TestGarbageTokenOnPublicRouteIsAnonymous(t *testing.T) {
	router, _, _ := newTestRouter(t)

	registerUser(t, router, "alice", "a@x.com", "AUTHOR")
	aliceToken := loginUser(t, router, "a@x.com")
	post := createPost(t, router, aliceToken, "Draft", false)

	// Public reads don't reject on a bad token; they just see the
	// anonymous view.
	w := doJSON(t, router, http.MethodGet, "/api/posts/"+post.ID, "not-a-token", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("garbage token get: code %d, want 404", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/posts", "not-a-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("garbage token list: code %d, want 200", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: code %d", w.Code)
	}
}
