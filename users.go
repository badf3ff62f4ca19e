package main

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func newSessionNonce() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("generating session nonce: %w", err)
	}
	return id.String(), nil
}

// lockUsers serializes registrations on Postgres so the MIN(id) check in
// createUser sees every other insert. SQLite has a single writer already.
func lockUsers(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE").Error
}

// createUser inserts a user and, in the same transaction, grants admin to it
// if it holds the lowest id in the table. A duplicate email is ErrConflict.
func createUser(db *gorm.DB, email, passwordHash, name string) (*User, error) {
	nonce, err := newSessionNonce()
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        email,
		Password:     passwordHash,
		Name:         name,
		SessionNonce: nonce,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockUsers(tx); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}

		res := tx.Model(&User{}).
			Where("id = ? AND id = (SELECT MIN(id) FROM users)", user.ID).
			Update("is_admin", true)
		if res.Error != nil {
			return res.Error
		}
		user.IsAdmin = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return nil, storeError("creating user", err)
	}

	return user, nil
}

func getUserByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		return nil, storeError(fmt.Sprintf("getting user %d", id), err)
	}
	return &user, nil
}

func getUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, storeError("getting user by email", err)
	}
	return &user, nil
}

// rotateSessionNonce replaces the user's nonce, invalidating every session
// cookie issued before the call.
func rotateSessionNonce(db *gorm.DB, userID uint) (string, error) {
	nonce, err := newSessionNonce()
	if err != nil {
		return "", err
	}

	res := db.Model(&User{}).Where("id = ?", userID).Update("session_nonce", nonce)
	if res.Error != nil {
		return "", storeError("rotating session nonce", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("rotating session nonce for user %d: %w", userID, ErrNotFound)
	}
	return nonce, nil
}
