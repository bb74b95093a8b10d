package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type followUpDocument struct {
	FollowUpID string    `bson:"followUpId"`
	InquiryID  string    `bson:"inquiryId"`
	Reason     string    `bson:"reason"`
	Done       bool      `bson:"done"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// FollowUpStore persists follow-up tasks for the sales team
type FollowUpStore struct {
	collection *mongo.Collection
}

// NewFollowUpStore creates a new FollowUpStore
func NewFollowUpStore(db *mongo.Database) *FollowUpStore {
	collection := db.Collection("followups")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "inquiryId", Value: 1},
				{Key: "done", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &FollowUpStore{collection: collection}
}

// ScheduleFollowUp records a pending follow-up for an inquiry. Scheduling
// twice for the same open inquiry is a no-op.
func (s *FollowUpStore) ScheduleFollowUp(ctx context.Context, inquiryID, reason string) error {
	filter := bson.M{"inquiryId": inquiryID, "done": false}
	update := bson.M{
		"$setOnInsert": followUpDocument{
			FollowUpID: uuid.NewString(),
			InquiryID:  inquiryID,
			Reason:     reason,
			Done:       false,
			CreatedAt:  time.Now().UTC(),
		},
	}

	_, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to schedule follow-up for inquiry %s: %w", inquiryID, err)
	}
	return nil
}

// MarkDone completes all open follow-ups for an inquiry
func (s *FollowUpStore) MarkDone(ctx context.Context, inquiryID string) error {
	_, err := s.collection.UpdateMany(ctx,
		bson.M{"inquiryId": inquiryID, "done": false},
		bson.M{"$set": bson.M{"done": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete follow-ups for inquiry %s: %w", inquiryID, err)
	}
	return nil
}
