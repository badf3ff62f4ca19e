package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-test/deep"
)

func countComments(t *testing.T, blog *Blog, postID uint) int64 {
	t.Helper()
	var n int64
	if err := blog.db.Model(&Comment{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		t.Fatalf("counting comments: %v", err)
	}
	return n
}

func TestListPosts_Empty(t *testing.T) {
	blog := setupTestBlog(t)

	posts, err := listPosts(blog.db)
	if err != nil {
		t.Fatalf("listPosts() error: %v", err)
	}

	if len(posts) != 0 {
		t.Errorf("expected 0 posts, got %d", len(posts))
	}
}

func TestCreatePost(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")

	in := PostInput{
		Title:    "Test Title",
		Subtitle: "Test Subtitle",
		Body:     "<p>Test Content</p>",
		ImgURL:   "https://example.com/a.jpg",
	}
	created, err := createPost(blog.db, in, admin.ID, "March 05, 2024")
	if err != nil {
		t.Fatalf("createPost() error: %v", err)
	}

	post, err := getPostByID(blog.db, created.ID)
	if err != nil {
		t.Fatalf("getPostByID() error: %v", err)
	}

	got := PostInput{Title: post.Title, Subtitle: post.Subtitle, Body: post.Body, ImgURL: post.ImgURL}
	if diff := deep.Equal(got, in); diff != nil {
		t.Errorf("stored post differs: %v", diff)
	}
	if post.Date != "March 05, 2024" {
		t.Errorf("expected date 'March 05, 2024', got %q", post.Date)
	}
	if post.Author.ID != admin.ID || post.Author.Name != "Admin" {
		t.Errorf("expected author to be preloaded, got %+v", post.Author)
	}
}

func TestCreatePost_DuplicateTitle(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")
	mustCreatePost(t, blog, "Same", admin.ID)

	_, err := createPost(blog.db, PostInput{Title: "Same", Subtitle: "s", Body: "b", ImgURL: "https://e.com/x"}, admin.ID, "d")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestListPosts_Order(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")

	mustCreatePost(t, blog, "First", admin.ID)
	mustCreatePost(t, blog, "Second", admin.ID)
	mustCreatePost(t, blog, "Third", admin.ID)

	posts, err := listPosts(blog.db)
	if err != nil {
		t.Fatalf("listPosts() error: %v", err)
	}

	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}

	// Should be in reverse order (newest first)
	if posts[0].Title != "Third" {
		t.Errorf("expected first post to be 'Third', got '%s'", posts[0].Title)
	}
	if posts[2].Title != "First" {
		t.Errorf("expected last post to be 'First', got '%s'", posts[2].Title)
	}
	for _, p := range posts {
		if p.Author.Name != "Admin" {
			t.Errorf("expected author preloaded on %q", p.Title)
		}
	}
}

func TestGetPostByID_NotFound(t *testing.T) {
	blog := setupTestBlog(t)

	_, err := getPostByID(blog.db, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPostByID_PreloadsComments(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")
	reader := mustCreateUser(t, blog, "reader@example.com", "password1", "Reader")
	post := mustCreatePost(t, blog, "Post", admin.ID)

	first, _ := createComment(blog.db, "first", reader.ID, post.ID)
	second, _ := createComment(blog.db, "second", admin.ID, post.ID)

	got, err := getPostByID(blog.db, post.ID)
	if err != nil {
		t.Fatalf("getPostByID() error: %v", err)
	}

	type row struct {
		ID     uint
		Text   string
		Author string
	}
	var rows []row
	for _, c := range got.Comments {
		rows = append(rows, row{c.ID, c.Text, c.Author.Name})
	}
	want := []row{
		{first.ID, "first", "Reader"},
		{second.ID, "second", "Admin"},
	}
	if diff := deep.Equal(rows, want); diff != nil {
		t.Errorf("comments differ: %v", diff)
	}
}

func TestUpdatePost(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")
	post := mustCreatePost(t, blog, "Original", admin.ID)

	in := PostInput{Title: "Updated", Subtitle: "New sub", Body: "<p>New body</p>", ImgURL: "https://example.com/b.jpg"}
	if err := updatePost(blog.db, post.ID, in, admin.ID); err != nil {
		t.Fatalf("updatePost() error: %v", err)
	}

	got, _ := getPostByID(blog.db, post.ID)
	if got.Title != "Updated" || got.Subtitle != "New sub" || got.Body != "<p>New body</p>" || got.ImgURL != "https://example.com/b.jpg" {
		t.Errorf("expected updated fields, got %+v", got)
	}
	if got.Date != post.Date {
		t.Errorf("expected date unchanged, got %q", got.Date)
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")

	err := updatePost(blog.db, 999, PostInput{Title: "x", Subtitle: "x", Body: "x", ImgURL: "x"}, admin.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePost_DuplicateTitle(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")
	mustCreatePost(t, blog, "First", admin.ID)
	second := mustCreatePost(t, blog, "Second", admin.ID)

	err := updatePost(blog.db, second.ID, PostInput{Title: "First", Subtitle: "s", Body: "b", ImgURL: "u"}, admin.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	blog := setupTestBlog(t)
	admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")
	post := mustCreatePost(t, blog, "To Delete", admin.ID)

	removed, err := deletePost(blog.db, post.ID)
	if err != nil {
		t.Fatalf("deletePost() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 row removed, got %d", removed)
	}

	if _, err := getPostByID(blog.db, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected post to be deleted, got %v", err)
	}
}

func TestDeletePost_CascadesComments(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d comments", n), func(t *testing.T) {
			blog := setupTestBlog(t)
			admin := mustCreateUser(t, blog, "admin@example.com", "password1", "Admin")
			post := mustCreatePost(t, blog, "Doomed", admin.ID)
			other := mustCreatePost(t, blog, "Other", admin.ID)
			for i := 0; i < n; i++ {
				if _, err := createComment(blog.db, "c", admin.ID, post.ID); err != nil {
					t.Fatalf("creating comment: %v", err)
				}
			}
			if _, err := createComment(blog.db, "keep me", admin.ID, other.ID); err != nil {
				t.Fatalf("creating comment: %v", err)
			}

			removed, err := deletePost(blog.db, post.ID)
			if err != nil {
				t.Fatalf("deletePost() error: %v", err)
			}
			if removed != int64(n+1) {
				t.Errorf("expected %d rows removed, got %d", n+1, removed)
			}

			if left := countComments(t, blog, post.ID); left != 0 {
				t.Errorf("expected no comments left on deleted post, got %d", left)
			}
			if kept := countComments(t, blog, other.ID); kept != 1 {
				t.Errorf("expected other post's comment to survive, got %d", kept)
			}
		})
	}
}

func TestDeletePost_NonExistent(t *testing.T) {
	blog := setupTestBlog(t)

	// Deleting a non-existent post reports ErrNotFound
	_, err := deletePost(blog.db, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
