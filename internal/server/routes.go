package server

import (
	"github.com/go-chi/chi/v5"

	"bookfinder/internal/auth"
	"bookfinder/internal/book"
	"bookfinder/internal/httpx"
	"bookfinder/internal/mailer"
	"bookfinder/internal/profile"
	"bookfinder/internal/savedbook"
	"bookfinder/internal/source"
)

func registerRoutes(r chi.Router, d Deps) {
	books := book.NewHTTPHandler(d.Books)
	sources := source.NewHTTPHandler(d.Books, d.Catalog)
	authH := auth.NewHTTPHandler(d.Auth)
	saved := savedbook.NewHTTPHandler(d.Saved)
	profiles := profile.NewHTTPHandler(d.Profiles)
	contact := mailer.NewHTTPHandler(d.Contact)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(d.Probes))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", books.Search)
		r.Get("/books/{id}", sources.Detail)
		r.Get("/books/{id}/sources", sources.Sources)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authH.SignUp)
			r.Post("/signin", authH.SignIn)
			r.Post("/refresh", authH.Refresh)
			r.Post("/signout", authH.SignOut)
			r.Post("/reset-password", authH.ResetPassword)
			r.Post("/update-password", authH.UpdatePassword)
		})

		r.Post("/contact", contact.Contact)

		r.Route("/me", func(r chi.Router) {
			r.Use(httpx.RequireUser(SignInPath))

			r.Get("/", authH.Me)
			r.Get("/profile", profiles.GetOwnProfile)
			r.Put("/profile", profiles.UpdateProfile)

			r.Get("/saved", saved.List)
			r.Post("/saved", saved.Save)
			r.Delete("/saved/{id}", saved.Remove)
		})
	})
}
