package main

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// requireAdmin passes only for an authenticated administrator.
func requireAdmin(user *User) error {
	if user == nil || !user.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// requireCommentOwner looks the comment up by id on every call and passes
// only if user wrote it. Anonymous callers are refused before the lookup so
// they can't probe which ids exist.
func requireCommentOwner(db *gorm.DB, user *User, commentID uint) (*Comment, error) {
	if user == nil {
		return nil, ErrForbidden
	}

	comment, err := getCommentByID(db, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != user.ID {
		return nil, fmt.Errorf("comment %d belongs to user %d: %w", comment.ID, comment.AuthorID, ErrForbidden)
	}
	return comment, nil
}

// adminOnly refuses the request with 403 before next can touch the store.
func (b *Blog) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireAdmin(currentUser(r)); err != nil {
			b.handleError(w, r, err)
			return
		}
		next(w, r)
	}
}
