package store

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wesoda/anket/model"
)

// CreateSurvey assigns the survey an ID and creation time and inserts it.
func (s *Service) CreateSurvey(ctx context.Context, survey *model.Survey) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	survey.ID = id.String()
	survey.CreatedAt = time.Now().UTC()

	_, err = s.surveys().InsertOne(ctx, survey)
	if err != nil {
		return err
	}

	s.surveyFeed.Publish(Change{Op: OpCreated, ID: survey.ID})
	return nil
}

func (s *Service) GetSurvey(ctx context.Context, id string) (model.Survey, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var survey model.Survey
	err := s.surveys().FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return survey, ErrNotFound
	}
	return survey, err
}

// ListSurveys returns all surveys, newest first.
func (s *Service) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cursor, err := s.surveys().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := []model.Survey{}
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

// DeleteSurveyCascade removes a survey and all of its answers in one
// transaction: either everything goes or nothing does. Returns the number
// of answers removed alongside the survey.
func (s *Service) DeleteSurveyCascade(ctx context.Context, id string) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	sess, err := s.client.StartSession()
	if err != nil {
		return 0, err
	}
	defer sess.EndSession(ctx)

	removed, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		answers, err := s.answers().DeleteMany(sc, bson.M{"surveyId": id})
		if err != nil {
			return nil, err
		}
		res, err := s.surveys().DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, ErrNotFound
		}
		return answers.DeletedCount, nil
	})
	if err != nil {
		return 0, err
	}

	s.surveyFeed.Publish(Change{Op: OpDeleted, ID: id})
	return removed.(int64), nil
}
