package main

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const postDateLayout = "January 02, 2006"

// PostInput holds the editable fields of a post.
type PostInput struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

func createPost(db *gorm.DB, in PostInput, authorID uint, date string) (*Post, error) {
	post := &Post{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Body:     in.Body,
		ImgURL:   in.ImgURL,
		Date:     date,
		AuthorID: authorID,
	}

	if err := db.Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, storeError("creating post", err)
	}
	return post, nil
}

func listPosts(db *gorm.DB) ([]Post, error) {
	var posts []Post
	err := db.Preload("Author").Order("id DESC").Find(&posts).Error
	if err != nil {
		return nil, storeError("listing posts", err)
	}
	return posts, nil
}

// getPostByID loads the post with its author and its comments' authors.
func getPostByID(db *gorm.DB, id uint) (*Post, error) {
	var post Post
	if err := db.Preload("Author").First(&post, id).Error; err != nil {
		return nil, storeError(fmt.Sprintf("getting post %d", id), err)
	}

	comments, err := listCommentsForPost(db, post.ID)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return &post, nil
}

// updatePost rewrites the editable fields and reassigns the author to the editor.
func updatePost(db *gorm.DB, id uint, in PostInput, authorID uint) error {
	res := db.Model(&Post{}).Where("id = ?", id).Updates(map[string]any{
		"title":     in.Title,
		"subtitle":  in.Subtitle,
		"body":      in.Body,
		"img_url":   in.ImgURL,
		"author_id": authorID,
	})
	if res.Error != nil {
		return storeError(fmt.Sprintf("updating post %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating post %d: %w", id, ErrNotFound)
	}
	return nil
}

// deletePost removes the post and its comments atomically and returns the
// total number of rows removed.
func deletePost(db *gorm.DB, id uint) (int64, error) {
	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ?", id).Delete(&Comment{})
		if res.Error != nil {
			return res.Error
		}
		comments := res.RowsAffected

		res = tx.Delete(&Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		removed = comments + res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, storeError(fmt.Sprintf("deleting post %d", id), err)
	}
	return removed, nil
}
