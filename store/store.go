// Package store is the document-store layer: three domain collections
// (users, surveys, answers) plus auth bookkeeping, backed by MongoDB.
// Successful writes are published to in-process feeds so that live views
// can follow changes without polling.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wesoda/anket/log"
	"github.com/wesoda/anket/stream"
)

const (
	collectionUsers       = "users"
	collectionSurveys     = "surveys"
	collectionAnswers     = "answers"
	collectionTokens      = "tokens"
	collectionResetTokens = "resetTokens"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicateAnswer = errors.New("answer already submitted for this survey")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// Change describes one mutation of a watched collection.
type Change struct {
	Op       string `json:"op"` // "created" or "deleted"
	ID       string `json:"id"`
	SurveyID string `json:"surveyId,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

const (
	OpCreated = "created"
	OpDeleted = "deleted"
)

type Config struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

type Service struct {
	client  *mongo.Client
	dbName  string
	timeout time.Duration

	surveyFeed *stream.Broker[Change]
	answerFeed *stream.Broker[Change]
}

func Open(cfg Config) (*Service, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx,
		options.Client().ApplyURI(cfg.URI),
		options.Client().SetMaxConnIdleTime(5*time.Minute),
	)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	s := &Service{
		client:     client,
		dbName:     cfg.DBName,
		timeout:    cfg.Timeout,
		surveyFeed: stream.NewBroker[Change](),
		answerFeed: stream.NewBroker[Change](),
	}
	s.createDefaultIndexes()
	return s, nil
}

func (s *Service) Close() error {
	s.surveyFeed.Close()
	s.answerFeed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// SurveyFeed delivers survey create/delete events. Callers own the
// subscription and must Cancel it when done.
func (s *Service) SurveyFeed() *stream.Broker[Change] {
	return s.surveyFeed
}

// AnswerFeed delivers answer create events.
func (s *Service) AnswerFeed() *stream.Broker[Change] {
	return s.answerFeed
}

func (s *Service) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) collection(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

func (s *Service) users() *mongo.Collection       { return s.collection(collectionUsers) }
func (s *Service) surveys() *mongo.Collection     { return s.collection(collectionSurveys) }
func (s *Service) answers() *mongo.Collection     { return s.collection(collectionAnswers) }
func (s *Service) tokens() *mongo.Collection      { return s.collection(collectionTokens) }
func (s *Service) resetTokens() *mongo.Collection { return s.collection(collectionResetTokens) }

func (s *Service) createDefaultIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
	})
	if err != nil {
		log.Warnf("store.index.users: %s", err)
	}

	_, err = s.surveys().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		log.Warnf("store.index.surveys: %s", err)
	}

	_, err = s.answers().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// one answer per (survey, respondent)
			Keys:    bson.D{{Key: "surveyId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	})
	if err != nil {
		log.Warnf("store.index.answers: %s", err)
	}

	_, err = s.tokens().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		log.Warnf("store.index.tokens: %s", err)
	}

	_, err = s.resetTokens().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		log.Warnf("store.index.reset_tokens: %s", err)
	}
}
