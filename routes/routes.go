package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wesoda/anket/app"
	"github.com/wesoda/anket/model"
	"github.com/wesoda/anket/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/signup", SignUp(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))
	api.Post("/password-reset", RequestPasswordReset(app))
	api.Post("/password-reset/confirm", ConfirmPasswordReset(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		r.Post("/logout", Logout(app))
		r.Get("/session", GetSession(app))

		r.Get("/surveys", ListSurveys(app))
		r.Get("/surveys/{id}", GetSurveyByID(app))
		r.Post("/surveys/{id}/select", SelectSurvey(app))
		r.Post("/surveys/{id}/answers", SubmitAnswer(app))
		r.Get("/surveys/{id}/results", GetSurveyResults(app))

		r.Get("/events", Events(app))

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireRole(model.RoleAdmin, model.RoleManager))

			r.Post("/session/create", StartCreate(app))
			r.Post("/surveys", CreateSurvey(app))
			r.Delete("/surveys/{id}", DeleteSurvey(app))
		})
	})

	return api
}
