package main

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func createComment(db *gorm.DB, text string, authorID, postID uint) (*Comment, error) {
	comment := &Comment{
		Text:     text,
		AuthorID: authorID,
		PostID:   postID,
	}

	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, storeError("creating comment", err)
	}
	return comment, nil
}

func getCommentByID(db *gorm.DB, id uint) (*Comment, error) {
	var comment Comment
	if err := db.First(&comment, id).Error; err != nil {
		return nil, storeError(fmt.Sprintf("getting comment %d", id), err)
	}
	return &comment, nil
}

// listCommentsForPost returns the post's comments oldest first, each with its
// author.
func listCommentsForPost(db *gorm.DB, postID uint) ([]Comment, error) {
	var comments []Comment
	err := db.Preload("Author").Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error
	if err != nil {
		return nil, storeError("listing comments", err)
	}
	return comments, nil
}

func deleteComment(db *gorm.DB, id uint) error {
	res := db.Delete(&Comment{}, id)
	if res.Error != nil {
		return storeError(fmt.Sprintf("deleting comment %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deleting comment %d: %w", id, ErrNotFound)
	}
	return nil
}
