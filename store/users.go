package store

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wesoda/anket/model"
)

// CreateUser inserts a new user profile. Emails are stored lowercased;
// a second profile with the same email fails with ErrDuplicateEmail.
func (s *Service) CreateUser(ctx context.Context, user model.User) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if user.Email != nil {
		email := strings.ToLower(*user.Email)
		user.Email = &email
	}

	_, err := s.users().InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var user model.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	return user, err
}

func (s *Service) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var user model.User
	err := s.users().FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	return user, err
}

func (s *Service) SetPassword(ctx context.Context, userID string, passwordHash []byte) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res, err := s.users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"passwordHash": passwordHash}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
