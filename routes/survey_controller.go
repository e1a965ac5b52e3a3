package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/wesoda/anket/app"
	"github.com/wesoda/anket/httpx"
	"github.com/wesoda/anket/log"
	"github.com/wesoda/anket/model"
	"github.com/wesoda/anket/routes/middlewares"
	"github.com/wesoda/anket/session"
	"github.com/wesoda/anket/store"
)

// StartCreate moves the session to the authoring view.
func StartCreate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Sessions.StartCreate(middlewares.UserID(r), middlewares.Role(r))
		switch {
		case errors.Is(err, session.ErrBusy):
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "session.busy")
			return
		case errors.Is(err, session.ErrForbidden):
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "session.create.role")
			return
		case err != nil:
			httpx.LogInternalError(w, "session.create", err)
			return
		}

		render.JSON(w, r, map[string]any{"view": session.ViewCreate})
	}
}

// CreateSurvey stores a new survey document. Surveys are immutable once
// created; there is no update operation.
func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.UserID(r)
		if err := app.Sessions.BeginOp(userID); err != nil {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "session.busy")
			return
		}
		defer app.Sessions.EndOp(userID)

		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := survey.Validate(); err != nil {
			httpx.LogValidation(w, "survey.validate", err)
			return
		}

		survey.CreatorID = userID
		err = app.Store.CreateSurvey(r.Context(), &survey)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		app.Sessions.Welcome(userID)
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": survey.ID,
		})
	}
}

// DeleteSurvey removes a survey and all of its answers atomically.
func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		userID := middlewares.UserID(r)
		if err := app.Sessions.BeginOp(userID); err != nil {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "session.busy")
			return
		}
		defer app.Sessions.EndOp(userID)

		removed, err := app.Store.DeleteSurveyCascade(r.Context(), surveyID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "delete_survey", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}

		log.Infof("survey %s deleted with %d answers", surveyID, removed)
		app.Sessions.ClearSelection(userID, surveyID)
		w.WriteHeader(http.StatusNoContent)
	}
}
