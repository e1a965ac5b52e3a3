package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Token is one issued access/refresh token pair, kept so refresh grants
// can be validated and sign-out can revoke them.
type Token struct {
	Email          string    `bson:"email"`
	TokenID        string    `bson:"tokenId"`
	RefreshTokenID string    `bson:"refreshTokenId"`
	ExpiresAt      time.Time `bson:"expiresAt"`
}

func (s *Service) StoreToken(ctx context.Context, token Token) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.tokens().InsertOne(ctx, token)
	return err
}

// ConsumeToken removes the matching token pair and returns it. Refresh is
// single-use: a second consume of the same pair fails with ErrNotFound.
func (s *Service) ConsumeToken(ctx context.Context, email, tokenID, refreshTokenID string) (Token, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var token Token
	err := s.tokens().FindOneAndDelete(ctx, bson.M{
		"email":          email,
		"tokenId":        tokenID,
		"refreshTokenId": refreshTokenID,
	}).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return token, ErrNotFound
	}
	return token, err
}

// RevokeTokens drops every token issued to the given account.
func (s *Service) RevokeTokens(ctx context.Context, email string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.tokens().DeleteMany(ctx, bson.M{"email": email})
	return err
}

// ResetToken is a single-use password-reset credential. Delivery to the
// user's mailbox is the mail collaborator's job, not ours.
type ResetToken struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (s *Service) CreateResetToken(ctx context.Context, token ResetToken) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.resetTokens().InsertOne(ctx, token)
	return err
}

func (s *Service) ConsumeResetToken(ctx context.Context, token string) (ResetToken, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var rt ResetToken
	err := s.resetTokens().FindOneAndDelete(ctx, bson.M{"_id": token}).Decode(&rt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rt, ErrNotFound
	}
	if err != nil {
		return rt, err
	}
	// the TTL monitor only runs periodically, check expiry ourselves
	if rt.ExpiresAt.Before(time.Now()) {
		return rt, ErrNotFound
	}
	return rt, nil
}
