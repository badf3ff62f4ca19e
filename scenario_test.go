package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func register(t *testing.T, c *testClient, email, password, name string) {
	t.Helper()
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("name", name)
	expectRedirect(t, c.post("/register", form), "/")
}

func TestScenario_AdminPostsReaderComments(t *testing.T) {
	blog := setupTestBlog(t)
	alice := newTestClient(t, blog)
	bob := newTestClient(t, blog)

	register(t, alice, "a@x.com", "password1", "alice")
	register(t, bob, "b@x.com", "password2", "bob")

	a, err := getUserByEmail(blog.db, "a@x.com")
	if err != nil {
		t.Fatalf("getUserByEmail(a) error: %v", err)
	}
	b, err := getUserByEmail(blog.db, "b@x.com")
	if err != nil {
		t.Fatalf("getUserByEmail(b) error: %v", err)
	}
	if a.ID != 1 || !a.IsAdmin {
		t.Fatalf("expected first account to be admin with id 1, got id %d admin %v", a.ID, a.IsAdmin)
	}
	if b.ID != 2 || b.IsAdmin {
		t.Fatalf("expected second account to be non-admin with id 2, got id %d admin %v", b.ID, b.IsAdmin)
	}

	expectStatus(t, bob.get("/new-post"), http.StatusForbidden)
	expectStatus(t, bob.post("/new-post", postForm("Hello")), http.StatusForbidden)
	if n := countRows(t, blog, &Post{}); n != 0 {
		t.Fatalf("expected no posts after forbidden attempts, got %d", n)
	}

	expectRedirect(t, alice.post("/new-post", postForm("Hello")), "/")
	if !strings.Contains(bob.get("/").Body.String(), "Hello") {
		t.Fatal("expected 'Hello' in the listing")
	}

	posts, err := listPosts(blog.db)
	if err != nil || len(posts) != 1 {
		t.Fatalf("expected one post, got %d (err %v)", len(posts), err)
	}
	postPath := fmt.Sprintf("/post/%d", posts[0].ID)

	form := url.Values{}
	form.Set("comment_text", "Nice post, alice")
	expectRedirect(t, bob.post(postPath, form), postPath)

	comments, err := listCommentsForPost(blog.db, posts[0].ID)
	if err != nil || len(comments) != 1 {
		t.Fatalf("expected one comment, got %d (err %v)", len(comments), err)
	}
	if comments[0].AuthorID != b.ID {
		t.Fatalf("expected comment author_id %d, got %d", b.ID, comments[0].AuthorID)
	}

	deletePath := withCSRF(fmt.Sprintf("/delete/comment/%d", comments[0].ID))
	expectRedirect(t, bob.get(deletePath), postPath)
	expectStatus(t, alice.get(deletePath), http.StatusNotFound)
}

func TestScenario_DuplicateRegistration(t *testing.T) {
	blog := setupTestBlog(t)

	register(t, newTestClient(t, blog), "a@x.com", "password1", "alice")

	c := newTestClient(t, blog)
	form := url.Values{}
	form.Set("email", "a@x.com")
	form.Set("password", "password9")
	form.Set("name", "mallory")
	expectRedirect(t, c.post("/register", form), "/login")

	if n := countRows(t, blog, &User{}); n != 1 {
		t.Errorf("expected exactly 1 user, got %d", n)
	}
	if strings.Contains(c.get("/").Body.String(), "Log Out") {
		t.Error("expected failed registration to leave the client anonymous")
	}

	user, _ := getUserByEmail(blog.db, "a@x.com")
	if user.Name != "Alice" {
		t.Errorf("expected existing account untouched, got name %q", user.Name)
	}
}
