package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

const (
	csrfCookieName  = "csrf"
	csrfFieldName   = "csrf_token"
	sessionDuration = 24 * time.Hour
)

var errInvalidCSRF = fmt.Errorf("invalid CSRF token: %w", ErrForbidden)

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRF protection using double-submit cookie pattern

func (b *Blog) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   b.cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

func getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// validateCSRF accepts the token from either the form body or the query
// string, so GET links that mutate can carry it too.
func validateCSRF(r *http.Request) bool {
	cookieToken := getCSRFToken(r)
	formToken := r.FormValue(csrfFieldName)

	if cookieToken == "" || formToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

func (b *Blog) parseFormWithCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		b.renderError(w, r, http.StatusBadRequest)
		return false
	}
	return b.checkCSRF(w, r)
}

// checkCSRF renders the 403 page and returns false when the token is missing
// or doesn't match the cookie.
func (b *Blog) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	if !validateCSRF(r) {
		b.handleError(w, r, errInvalidCSRF)
		return false
	}
	return true
}

// ensureCSRFToken returns existing token or creates a new one
func (b *Blog) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	token := getCSRFToken(r)
	if token != "" {
		return token
	}

	token, err := generateToken()
	if err != nil {
		return ""
	}
	b.setCSRFCookie(w, token)
	return token
}

// requireLogin is middleware that sends anonymous visitors to the login page
func (b *Blog) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
