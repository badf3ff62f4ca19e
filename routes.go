package main

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (b *Blog) routes() http.Handler {
	r := mux.NewRouter()

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(b.cfg.StaticDir))))
	r.Handle("/metrics", b.metrics.handler()).Methods(http.MethodGet)

	// Public routes
	r.HandleFunc("/", b.Home).Methods(http.MethodGet)
	r.HandleFunc("/register", b.Register).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/login", b.Login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", b.Logout).Methods(http.MethodGet)
	r.HandleFunc("/post/{id:[0-9]+}", b.Detail).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/about", b.About).Methods(http.MethodGet)
	r.HandleFunc("/contact", b.Contact).Methods(http.MethodGet)

	// Authenticated routes
	r.HandleFunc("/logout-everywhere", b.requireLogin(b.LogoutEverywhere)).Methods(http.MethodGet)
	r.HandleFunc("/delete/comment/{id:[0-9]+}", b.DeleteComment).Methods(http.MethodGet)

	// Admin routes
	r.HandleFunc("/new-post", b.adminOnly(b.Create)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/edit-post/{id:[0-9]+}", b.adminOnly(b.Edit)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/delete/{id:[0-9]+}", b.adminOnly(b.Delete)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.renderError(w, r, http.StatusNotFound)
	})

	return b.metrics.instrument(b.identify(b.logRequests(r)))
}
