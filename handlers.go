package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	msgAlreadyRegistered = "You've already signed up with that email, log in instead!"
	msgUnknownEmail      = "Invalid email. Please try again or register if you have no account."
	msgWrongPassword     = "Incorrect password. Please try again."
	msgLoginToComment    = "You need to login or register to comment."
	msgDuplicateTitle    = "A post with this title already exists."
)

// pageData collects what every page needs. It may set cookies, so it must run
// before anything is written to w.
func (b *Blog) pageData(w http.ResponseWriter, r *http.Request, title string) map[string]any {
	user := currentUser(r)
	return map[string]any{
		"Title":           title,
		"CurrentUser":     user,
		"IsAuthenticated": user != nil,
		"IsAdmin":         requireAdmin(user) == nil,
		"CSRFToken":       b.ensureCSRFToken(w, r),
		"Flashes":         b.flashes(w, r),
	}
}

func (b *Blog) render(w http.ResponseWriter, r *http.Request, page string, status int, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := b.templates[page].ExecuteTemplate(w, "base", data); err != nil {
		b.log.Error("rendering template", zap.String("page", page), zap.Error(err))
	}
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", mux.Vars(r)["id"], ErrNotFound)
	}
	return uint(id), nil
}

func validationFields(err error) (map[string]string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

func (b *Blog) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := listPosts(b.db.WithContext(r.Context()))
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	data := b.pageData(w, r, "Home")
	data["Posts"] = posts
	b.render(w, r, "index.html", http.StatusOK, data)
}

func (b *Blog) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		data := b.pageData(w, r, "Register")
		data["Form"] = RegisterForm{}
		b.render(w, r, "register.html", http.StatusOK, data)
		return
	}

	if !b.parseFormWithCSRF(w, r) {
		return
	}

	form, err := parseRegisterForm(r)
	if fields, ok := validationFields(err); ok {
		data := b.pageData(w, r, "Register")
		data["Form"] = form
		data["Errors"] = fields
		b.render(w, r, "register.html", http.StatusBadRequest, data)
		return
	}

	hash, err := hashPassword(form.Password, b.cfg.BcryptCost)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	user, err := createUser(b.db.WithContext(r.Context()), form.Email, hash, form.Name)
	if errors.Is(err, ErrConflict) {
		b.addFlash(w, r, msgAlreadyRegistered)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	if err := b.login(w, r, user); err != nil {
		b.serverError(w, r, err)
		return
	}

	b.log.Info("user registered", zap.Uint("user_id", user.ID), zap.Bool("admin", user.IsAdmin))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		data := b.pageData(w, r, "Login")
		data["Form"] = LoginForm{}
		b.render(w, r, "login.html", http.StatusOK, data)
		return
	}

	if !b.parseFormWithCSRF(w, r) {
		return
	}

	form, err := parseLoginForm(r)
	if fields, ok := validationFields(err); ok {
		data := b.pageData(w, r, "Login")
		data["Form"] = LoginForm{Email: form.Email}
		data["Errors"] = fields
		b.render(w, r, "login.html", http.StatusBadRequest, data)
		return
	}

	user, err := getUserByEmail(b.db.WithContext(r.Context()), form.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		b.serverError(w, r, err)
		return
	}

	var msg string
	switch {
	case user == nil:
		msg = msgUnknownEmail
	case !checkPassword(user.Password, form.Password):
		msg = msgWrongPassword
	}
	if msg != "" {
		data := b.pageData(w, r, "Login")
		data["Form"] = LoginForm{Email: form.Email}
		data["Error"] = msg
		b.render(w, r, "login.html", http.StatusUnauthorized, data)
		return
	}

	if err := b.login(w, r, user); err != nil {
		b.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Logout(w http.ResponseWriter, r *http.Request) {
	if err := b.logout(w, r); err != nil {
		b.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LogoutEverywhere invalidates every session the user holds, on any device.
func (b *Blog) LogoutEverywhere(w http.ResponseWriter, r *http.Request) {
	if !b.checkCSRF(w, r) {
		return
	}

	user := currentUser(r)
	if _, err := rotateSessionNonce(b.db.WithContext(r.Context()), user.ID); err != nil {
		b.handleError(w, r, err)
		return
	}
	if err := b.logout(w, r); err != nil {
		b.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (b *Blog) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	db := b.db.WithContext(r.Context())
	post, err := getPostByID(db, id)
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	user := currentUser(r)
	if r.Method == http.MethodPost {
		if user == nil {
			b.addFlash(w, r, msgLoginToComment)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if !b.parseFormWithCSRF(w, r) {
			return
		}

		form, err := parseCommentForm(r)
		if fields, ok := validationFields(err); ok {
			data := b.pageData(w, r, post.Title)
			data["Post"] = post
			data["Errors"] = fields
			b.render(w, r, "post.html", http.StatusBadRequest, data)
			return
		}

		if _, err := createComment(db, form.Text, user.ID, post.ID); err != nil {
			b.handleError(w, r, err)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
		return
	}

	data := b.pageData(w, r, post.Title)
	data["Post"] = post
	b.render(w, r, "post.html", http.StatusOK, data)
}

func (b *Blog) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		data := b.pageData(w, r, "New Post")
		data["Form"] = PostForm{}
		b.render(w, r, "make-post.html", http.StatusOK, data)
		return
	}

	if !b.parseFormWithCSRF(w, r) {
		return
	}

	form, err := parsePostForm(r)
	if fields, ok := validationFields(err); ok {
		b.renderPostForm(w, r, "New Post", form, fields, http.StatusBadRequest)
		return
	}

	date := b.clock.Now().Format(postDateLayout)
	_, err = createPost(b.db.WithContext(r.Context()), form.PostInput, currentUser(r).ID, date)
	if errors.Is(err, ErrConflict) {
		b.renderPostForm(w, r, "New Post", form, map[string]string{"title": msgDuplicateTitle}, http.StatusConflict)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	db := b.db.WithContext(r.Context())
	post, err := getPostByID(db, id)
	if err != nil {
		b.handleError(w, r, err)
		return
	}
	title := fmt.Sprintf("Editing %q", post.Title)

	if r.Method == http.MethodGet {
		form := PostForm{PostInput{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			Body:     post.Body,
			ImgURL:   post.ImgURL,
		}}
		b.renderPostForm(w, r, title, form, nil, http.StatusOK)
		return
	}

	if !b.parseFormWithCSRF(w, r) {
		return
	}

	form, err := parsePostForm(r)
	if fields, ok := validationFields(err); ok {
		b.renderPostForm(w, r, title, form, fields, http.StatusBadRequest)
		return
	}

	err = updatePost(db, post.ID, form.PostInput, currentUser(r).ID)
	if errors.Is(err, ErrConflict) {
		b.renderPostForm(w, r, title, form, map[string]string{"title": msgDuplicateTitle}, http.StatusConflict)
		return
	}
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
}

func (b *Blog) renderPostForm(w http.ResponseWriter, r *http.Request, title string, form PostForm, errs map[string]string, status int) {
	data := b.pageData(w, r, title)
	data["Form"] = form
	data["Errors"] = errs
	data["IsEdit"] = mux.Vars(r)["id"] != ""
	b.render(w, r, "make-post.html", status, data)
}

func (b *Blog) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	if !b.checkCSRF(w, r) {
		return
	}

	removed, err := deletePost(b.db.WithContext(r.Context()), id)
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	b.log.Info("post deleted", zap.Uint("post_id", id), zap.Int64("rows", removed))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	db := b.db.WithContext(r.Context())
	comment, err := requireCommentOwner(db, currentUser(r), id)
	if err != nil {
		b.handleError(w, r, err)
		return
	}

	if !b.checkCSRF(w, r) {
		return
	}

	if err := deleteComment(db, comment.ID); err != nil {
		b.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", comment.PostID), http.StatusSeeOther)
}

func (b *Blog) About(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, "about.html", http.StatusOK, b.pageData(w, r, "About"))
}

func (b *Blog) Contact(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, "contact.html", http.StatusOK, b.pageData(w, r, "Contact"))
}
