package main

import (
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	maxFieldLen      = 250
	maxNameLen       = 100
)

type RegisterForm struct {
	Email    string
	Password string
	Name     string
}

type LoginForm struct {
	Email    string
	Password string
}

type PostForm struct {
	PostInput
}

type CommentForm struct {
	Text string
}

func normalizeEmail(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && len(s) <= maxNameLen
}

func validImageURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func parseRegisterForm(r *http.Request) (RegisterForm, error) {
	f := RegisterForm{
		Email:    normalizeEmail(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Name:     cases.Title(language.English).String(normalizeText(r.PostFormValue("name"))),
	}

	var verr ValidationError
	switch {
	case f.Email == "":
		verr.add("email", "Email is required.")
	case !validEmail(f.Email):
		verr.add("email", "Enter a valid email address.")
	}
	switch {
	case f.Password == "":
		verr.add("password", "Password is required.")
	case utf8.RuneCountInString(f.Password) < minPasswordLen:
		verr.add("password", "Password must be at least 8 characters long.")
	case len(f.Password) > maxPasswordBytes:
		verr.add("password", "Password must be at most 72 bytes long.")
	}
	switch {
	case f.Name == "":
		verr.add("name", "Name is required.")
	case utf8.RuneCountInString(f.Name) > maxNameLen:
		verr.add("name", "Name is too long.")
	}

	return f, verr.orNil()
}

func parseLoginForm(r *http.Request) (LoginForm, error) {
	f := LoginForm{
		Email:    normalizeEmail(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	var verr ValidationError
	switch {
	case f.Email == "":
		verr.add("email", "Email is required.")
	case !validEmail(f.Email):
		verr.add("email", "Enter a valid email address.")
	}
	if f.Password == "" {
		verr.add("password", "Password is required.")
	}

	return f, verr.orNil()
}

func parsePostForm(r *http.Request) (PostForm, error) {
	f := PostForm{PostInput{
		Title:    normalizeText(r.PostFormValue("title")),
		Subtitle: normalizeText(r.PostFormValue("subtitle")),
		Body:     strings.TrimSpace(r.PostFormValue("body")),
		ImgURL:   strings.TrimSpace(r.PostFormValue("img_url")),
	}}

	var verr ValidationError
	for field, value := range map[string]string{"title": f.Title, "subtitle": f.Subtitle} {
		switch {
		case value == "":
			verr.add(field, "This field is required.")
		case utf8.RuneCountInString(value) > maxFieldLen:
			verr.add(field, "Must be at most 250 characters.")
		}
	}
	switch {
	case f.ImgURL == "":
		verr.add("img_url", "This field is required.")
	case !validImageURL(f.ImgURL) || len(f.ImgURL) > maxFieldLen:
		verr.add("img_url", "Enter a valid URL.")
	}
	if f.Body == "" {
		verr.add("body", "This field is required.")
	}

	return f, verr.orNil()
}

func parseCommentForm(r *http.Request) (CommentForm, error) {
	f := CommentForm{Text: strings.TrimSpace(r.PostFormValue("comment_text"))}

	var verr ValidationError
	if f.Text == "" {
		verr.add("comment_text", "Comment cannot be empty.")
	}
	return f, verr.orNil()
}
