package routes

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wesoda/anket/app"
	"github.com/wesoda/anket/httpx"
	"github.com/wesoda/anket/log"
	"github.com/wesoda/anket/model"
	"github.com/wesoda/anket/roles"
	"github.com/wesoda/anket/routes/middlewares"
	"github.com/wesoda/anket/store"
)

const resetTokenTTL = time.Hour

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates an account and its user profile. The role is derived
// from the email allowlists once, here, and persisted.
func SignUp(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signUpRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || !strings.Contains(email, "@") {
			httpx.LogValidation(w, "signup.email", model.ValidationError("a valid email address is required"))
			return
		}
		if len(req.Password) < 8 {
			httpx.LogValidation(w, "signup.password", model.ValidationError("password must be at least 8 characters"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "signup.hash", err)
			return
		}

		id, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "signup.id", err)
			return
		}

		user := model.User{
			ID:           id.String(),
			Email:        &email,
			PasswordHash: hash,
			Role:         roles.Resolve(&email, app.Admins, app.Managers),
			CreatedAt:    time.Now().UTC(),
		}
		err = app.Store.CreateUser(r.Context(), user)
		if errors.Is(err, store.ErrDuplicateEmail) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "signup.email_taken")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":   user.ID,
			"role": user.Role,
		})
	}
}

// Login bridges HTTP basic auth onto the bearer server's password grant.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

var reRefreshAuth = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := reRefreshAuth.FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

// Logout revokes every token issued to the caller's account.
func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middlewares.Email(r)
		if email == "" {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "logout.credential")
			return
		}

		err := app.Store.RevokeTokens(r.Context(), email)
		if err != nil {
			httpx.LogInternalError(w, "db.revoke_tokens", err)
			return
		}

		app.Sessions.Welcome(middlewares.UserID(r))
		w.WriteHeader(http.StatusNoContent)
	}
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset issues a single-use reset token. The response is
// 204 whether or not the account exists, so the endpoint cannot be used
// to probe for registered emails. Token delivery is the mail
// collaborator's job.
func RequestPasswordReset(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		user, err := app.Store.FindUserByEmail(r.Context(), req.Email)
		if errors.Is(err, store.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.find_user", err)
			return
		}

		token, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "reset.token", err)
			return
		}
		err = app.Store.CreateResetToken(r.Context(), store.ResetToken{
			Token:     token.String(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(resetTokenTTL),
		})
		if err != nil {
			httpx.LogInternalError(w, "db.insert_reset_token", err)
			return
		}

		log.Debugf("reset.issued: user=%s token=%s", user.ID, token)
		w.WriteHeader(http.StatusNoContent)
	}
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func ConfirmPasswordReset(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetConfirmRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if len(req.Password) < 8 {
			httpx.LogValidation(w, "reset.password", model.ValidationError("password must be at least 8 characters"))
			return
		}

		rt, err := app.Store.ConsumeResetToken(r.Context(), req.Token)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "reset.invalid_token")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.consume_reset_token", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "reset.hash", err)
			return
		}
		err = app.Store.SetPassword(r.Context(), rt.UserID, hash)
		if err != nil {
			httpx.LogInternalError(w, "db.set_password", err)
			return
		}

		// old sessions must not survive a password change
		user, err := app.Store.GetUser(r.Context(), rt.UserID)
		if err == nil && user.Email != nil {
			if err := app.Store.RevokeTokens(r.Context(), *user.Email); err != nil {
				log.Warnf("db.revoke_tokens: %s", err)
			}
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
