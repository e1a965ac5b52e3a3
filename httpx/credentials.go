package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/wesoda/anket/config"
	"github.com/wesoda/anket/store"
)

// claim keys carried in issued tokens
const (
	ClaimUserID = "uid"
	ClaimRole   = "role"
)

// refresh tokens outlive access tokens by this much
const refreshTokenTTL = 30 * 24 * time.Hour

type credentialsVerifier struct {
	store *store.Service
}

func CredentialsVerifier(st *store.Service) oauth.CredentialsVerifier {
	return &credentialsVerifier{st}
}

func NewBearerServer(st *store.Service, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(st), nil)
}

func (cv *credentialsVerifier) ValidateUser(username, password, scope string, r *http.Request) error {
	user, err := cv.store.FindUserByEmail(r.Context(), username)
	if err != nil {
		return err
	}
	return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password))
}

func (cv *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential, tokenID, refreshTokenID string) error {
	return cv.store.StoreToken(context.Background(), store.Token{
		Email:          credential,
		TokenID:        tokenID,
		RefreshTokenID: refreshTokenID,
		ExpiresAt:      time.Now().Add(refreshTokenTTL),
	})
}

func (cv *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential, tokenID, refreshTokenID string) error {
	token, err := cv.store.ConsumeToken(context.Background(), credential, tokenID, refreshTokenID)
	if err != nil {
		return errors.New("could not refresh")
	}
	if token.ExpiresAt.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}

func (cv *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential, tokenID, scope string, r *http.Request) (map[string]string, error) {
	user, err := cv.store.FindUserByEmail(r.Context(), credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		ClaimUserID: user.ID,
		ClaimRole:   string(user.Role),
	}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential, tokenID, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID, clientSecret, scope string, r *http.Request) error {
	return errors.New("not supported")
}
