package main

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var richTextPolicy = bluemonday.UGCPolicy()

// richText renders editor HTML with anything script-like stripped.
func richText(s string) template.HTML {
	return template.HTML(richTextPolicy.Sanitize(s))
}

func gravatar(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", fmt.Sprint(size))
	q.Set("d", "identicon")
	q.Set("r", "g")
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}

var pages = []string{
	"index.html",
	"post.html",
	"make-post.html",
	"register.html",
	"login.html",
	"about.html",
	"contact.html",
	"error.html",
}

func loadTemplates(dir string) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	funcs := template.FuncMap{
		"richtext": richText,
		"gravatar": gravatar,
	}

	for _, page := range pages {
		t, err := template.New("").Funcs(funcs).ParseFiles(
			filepath.Join(dir, "base.html"),
			filepath.Join(dir, page),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		templates[page] = t
	}

	return templates, nil
}
