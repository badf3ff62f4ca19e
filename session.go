package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionCookieName = "session"
	sessionUserKey    = "user_id"
	sessionNonceKey   = "nonce"
)

type ctxKey int

const currentUserKey ctxKey = iota

func newSessionStore(cfg *Config, log *zap.Logger) (*sessions.CookieStore, error) {
	hashKey := []byte(cfg.SessionSecret)
	blockKey := []byte(cfg.SessionBlockKey)

	if len(hashKey) == 0 {
		log.Warn("session secret not set, generating a random key; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(64)
		blockKey = securecookie.GenerateRandomKey(32)
	}
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes, got %d", len(hashKey))
	}
	switch len(blockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("session block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
	}

	var store *sessions.CookieStore
	if len(blockKey) > 0 {
		store = sessions.NewCookieStore(hashKey, blockKey)
	} else {
		store = sessions.NewCookieStore(hashKey)
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// session returns the request's session. A cookie that fails verification
// yields a fresh, empty session instead of an error.
func (b *Blog) session(r *http.Request) *sessions.Session {
	sess, err := b.sessions.Get(r, sessionCookieName)
	if err != nil {
		b.log.Debug("discarding invalid session cookie", zap.Error(err))
	}
	return sess
}

func (b *Blog) login(w http.ResponseWriter, r *http.Request, user *User) error {
	sess := b.session(r)
	sess.Values[sessionUserKey] = user.ID
	sess.Values[sessionNonceKey] = user.SessionNonce
	sess.Options.MaxAge = b.sessions.Options.MaxAge
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (b *Blog) logout(w http.ResponseWriter, r *http.Request) error {
	sess := b.session(r)
	delete(sess.Values, sessionUserKey)
	delete(sess.Values, sessionNonceKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (b *Blog) addFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess := b.session(r)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		b.log.Error("saving flash message", zap.Error(err))
	}
}

// flashes pops the pending flash messages. It must run before the response
// body is written so the emptied session can be saved.
func (b *Blog) flashes(w http.ResponseWriter, r *http.Request) []string {
	sess := b.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		b.log.Error("clearing flash messages", zap.Error(err))
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

// resolveUser maps the session cookie to a user. Any failure degrades to
// anonymous (nil); only unexpected store errors are logged.
func (b *Blog) resolveUser(r *http.Request) *User {
	sess := b.session(r)

	id, ok := sess.Values[sessionUserKey].(uint)
	if !ok {
		return nil
	}
	nonce, _ := sess.Values[sessionNonceKey].(string)

	user, err := getUserByID(b.db.WithContext(r.Context()), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.log.Error("resolving session user", zap.Uint("user_id", id), zap.Error(err))
		}
		return nil
	}
	if nonce == "" || nonce != user.SessionNonce {
		return nil
	}
	return user
}

// identify resolves the current user once per request.
func (b *Blog) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := b.resolveUser(r); user != nil {
			r = r.WithContext(context.WithValue(r.Context(), currentUserKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser returns the authenticated user, or nil for anonymous requests.
func currentUser(r *http.Request) *User {
	user, _ := r.Context().Value(currentUserKey).(*User)
	return user
}
