package store

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wesoda/anket/model"
)

// answerNamespace seeds the deterministic answer IDs.
var answerNamespace = uuid.Must(uuid.FromString("8a4f9c3e-1d27-4b65-9f0a-2c8e5d71b394"))

// AnswerID is deterministic over (survey, respondent), so two racing
// submissions from the same user collide on _id instead of both landing.
func AnswerID(surveyID, userID string) string {
	return uuid.NewV5(answerNamespace, surveyID+"|"+userID).String()
}

// CreateAnswer inserts a submission. A repeat submission for the same
// (survey, user) pair fails with ErrDuplicateAnswer.
func (s *Service) CreateAnswer(ctx context.Context, answer *model.Answer) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	answer.ID = AnswerID(answer.SurveyID, answer.UserID)
	answer.SubmittedAt = time.Now().UTC()

	_, err := s.answers().InsertOne(ctx, answer)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateAnswer
	}
	if err != nil {
		return err
	}

	s.answerFeed.Publish(Change{
		Op:       OpCreated,
		ID:       answer.ID,
		SurveyID: answer.SurveyID,
		UserID:   answer.UserID,
	})
	return nil
}

// AnswersForSurvey returns a survey's answers in submission order.
func (s *Service) AnswersForSurvey(ctx context.Context, surveyID string) ([]model.Answer, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cursor, err := s.answers().Find(ctx, bson.M{"surveyId": surveyID},
		options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	answers := []model.Answer{}
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// AnsweredSurveyIDs returns the set of survey IDs the user has answered.
func (s *Service) AnsweredSurveyIDs(ctx context.Context, userID string) (map[string]bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cursor, err := s.answers().Find(ctx, bson.M{"userId": userID},
		options.Find().SetProjection(bson.M{"surveyId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	answered := map[string]bool{}
	for cursor.Next(ctx) {
		var doc struct {
			SurveyID string `bson:"surveyId"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		answered[doc.SurveyID] = true
	}
	return answered, cursor.Err()
}
