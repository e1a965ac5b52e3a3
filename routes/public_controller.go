package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/wesoda/anket/app"
	"github.com/wesoda/anket/httpx"
	"github.com/wesoda/anket/log"
	"github.com/wesoda/anket/model"
	"github.com/wesoda/anket/routes/middlewares"
	"github.com/wesoda/anket/session"
	"github.com/wesoda/anket/store"
	"github.com/wesoda/anket/tally"
)

// GetSession reports the caller's current view state.
func GetSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, app.Sessions.Get(middlewares.UserID(r)))
	}
}

type surveyListItem struct {
	model.Survey
	Answered bool `json:"answered"`
	Expired  bool `json:"expired"`
}

// ListSurveys returns every survey, newest first, flagged with whether
// the caller already answered it and whether it has expired.
func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.Store.ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		answered, err := app.Store.AnsweredSurveyIDs(r.Context(), middlewares.UserID(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_answered", err)
			return
		}

		now := time.Now()
		items := make([]surveyListItem, len(surveys))
		for i, s := range surveys {
			items[i] = surveyListItem{
				Survey:   s,
				Answered: answered[s.ID],
				Expired:  s.Expired(now),
			}
		}

		render.JSON(w, r, map[string]any{
			"surveys": items,
		})
	}
}

func GetSurveyByID(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		survey, err := app.Store.GetSurvey(r.Context(), surveyID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

// SelectSurvey runs the view-controller transition for a survey
// selection and returns the view the client should show.
func SelectSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")
		userID := middlewares.UserID(r)

		survey, err := app.Store.GetSurvey(r.Context(), surveyID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		answered, err := app.Store.AnsweredSurveyIDs(r.Context(), userID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_answered", err)
			return
		}

		view, err := app.Sessions.Select(userID, survey, answered[surveyID], middlewares.Role(r), time.Now())
		if errors.Is(err, session.ErrBusy) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "session.busy")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "session.select", err)
			return
		}

		render.JSON(w, r, map[string]any{"view": view})
	}
}

type answerRequest struct {
	Responses []any `json:"responses"`
}

// SubmitAnswer records one respondent's submission. Repeat submissions
// for the same survey are refused by the store's uniqueness constraint.
func SubmitAnswer(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")
		userID := middlewares.UserID(r)

		if err := app.Sessions.BeginOp(userID); err != nil {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "session.busy")
			return
		}
		defer app.Sessions.EndOp(userID)

		var req answerRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey, err := app.Store.GetSurvey(r.Context(), surveyID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		if survey.Expired(time.Now()) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "answer.survey_closed")
			return
		}
		if err := model.ValidateResponses(survey, req.Responses); err != nil {
			httpx.LogValidation(w, "answer.validate", err)
			return
		}

		answer := model.Answer{
			SurveyID:  surveyID,
			UserID:    userID,
			Responses: req.Responses,
		}
		err = app.Store.CreateAnswer(r.Context(), &answer)
		if errors.Is(err, store.ErrDuplicateAnswer) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "answer.already_submitted")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_answer", err)
			return
		}

		app.Sessions.Welcome(userID)
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": answer.ID,
		})
	}
}

// GetSurveyResults serves the aggregated tally once the visibility gate
// opens. The gate is purely time-based: until an expiring survey closes,
// nobody sees the tally, managers included, to protect respondent
// anonymity.
func GetSurveyResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		survey, err := app.Store.GetSurvey(r.Context(), surveyID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		if !survey.ResultsVisible(time.Now()) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, map[string]any{
				"error":     "results.not_visible",
				"expiresAt": survey.ExpiresAt,
			})
			return
		}

		answers, err := app.Store.AnswersForSurvey(r.Context(), surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_answers", err)
			return
		}

		render.JSON(w, r, tally.Compute(survey, answers))
	}
}
